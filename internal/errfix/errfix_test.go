package errfix

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autocoder/autocoder/internal/api"
	"github.com/autocoder/autocoder/internal/project"
)

type stubClient struct {
	changes   *api.ChangeSet
	err       error
	lastError string
	lastFiles string
	calls     int
}

func (s *stubClient) SuggestFix(_ context.Context, _, files, errorOutput string) (*api.ChangeSet, error) {
	s.calls++
	s.lastFiles = files
	s.lastError = errorOutput
	return s.changes, s.err
}

func newProject(t *testing.T) (*project.Manager, string) {
	t.Helper()
	mgr := project.NewManager(t.TempDir())
	path, err := mgr.Create(&api.ProjectSpec{
		Name:     "broken",
		Language: "python",
		Files:    []api.ProjectFile{{Path: "main.py", Content: "import flask\n"}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return mgr, path
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFixAppliesSuggestedChanges(t *testing.T) {
	mgr, path := newProject(t)
	client := &stubClient{
		changes: &api.ChangeSet{
			Summary: "remove unused import",
			Files:   []api.ProjectFile{{Path: "main.py", Content: "print('fixed')\n"}},
		},
	}
	h := New(client, mgr, discard())

	if err := h.FixProjectErrors(context.Background(), path, "ModuleNotFoundError: flask"); err != nil {
		t.Fatalf("FixProjectErrors failed: %v", err)
	}

	if client.lastError != "ModuleNotFoundError: flask" {
		t.Errorf("error context not forwarded: %q", client.lastError)
	}
	if !strings.Contains(client.lastFiles, "import flask") {
		t.Errorf("project files not forwarded: %q", client.lastFiles)
	}

	data, err := os.ReadFile(filepath.Join(path, "main.py"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "print('fixed')\n" {
		t.Errorf("fix not applied: %q", data)
	}
}

func TestFixWithoutCapturedError(t *testing.T) {
	mgr, path := newProject(t)
	client := &stubClient{}
	h := New(client, mgr, discard())

	if err := h.FixProjectErrors(context.Background(), path, ""); err == nil {
		t.Fatal("expected an error without captured output")
	}
	if client.calls != 0 {
		t.Error("API should not be called without error context")
	}
}

func TestFixPropagatesAPIFailure(t *testing.T) {
	mgr, path := newProject(t)
	client := &stubClient{err: fmt.Errorf("rate limited")}
	h := New(client, mgr, discard())

	err := h.FixProjectErrors(context.Background(), path, "boom")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected wrapped API error, got %v", err)
	}
}
