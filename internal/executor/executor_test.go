package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/autocoder/autocoder/internal/project"
)

func TestInstallCommandPerLanguage(t *testing.T) {
	cases := []struct {
		language string
		want     string
	}{
		{project.LangPython, "pip install flask requests"},
		{project.LangNode, "npm install express"},
		{project.LangGo, "go get github.com/x/y"},
	}
	deps := map[string][]string{
		project.LangPython: {"flask", "requests"},
		project.LangNode:   {"express"},
		project.LangGo:     {"github.com/x/y"},
	}

	for _, tc := range cases {
		meta := &project.Metadata{Language: tc.language, Dependencies: deps[tc.language]}
		got, err := installCommand(meta)
		if err != nil {
			t.Fatalf("%s: %v", tc.language, err)
		}
		if got != tc.want {
			t.Errorf("%s: installCommand = %q, want %q", tc.language, got, tc.want)
		}
	}
}

func TestInstallCommandUnknownLanguage(t *testing.T) {
	meta := &project.Metadata{Language: "cobol", Dependencies: []string{"x"}}
	if _, err := installCommand(meta); err == nil {
		t.Error("unknown language should error")
	}
}

func TestInstallDependenciesNoopWithoutDeps(t *testing.T) {
	e := New()
	meta := &project.Metadata{Language: "cobol"}
	if err := e.InstallDependencies(context.Background(), t.TempDir(), meta); err != nil {
		t.Errorf("no dependencies should be a no-op, got %v", err)
	}
}

func TestDefaultRunCommand(t *testing.T) {
	cases := map[string]string{
		project.LangPython: "python main.py",
		project.LangNode:   "node index.js",
		project.LangGo:     "go run .",
		"":                 "",
		"cobol":            "",
	}
	for lang, want := range cases {
		if got := defaultRunCommand(lang); got != want {
			t.Errorf("defaultRunCommand(%q) = %q, want %q", lang, got, want)
		}
	}
}

func TestRunProjectSuccess(t *testing.T) {
	e := New()
	meta := &project.Metadata{Name: "echoer", RunCommand: "echo hello world"}

	result := e.RunProject(context.Background(), t.TempDir(), meta)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if !strings.Contains(result.Output, "hello world") {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestRunProjectFailureCapturesOutput(t *testing.T) {
	e := New()
	meta := &project.Metadata{Name: "failer", RunCommand: "echo boom >&2; exit 3"}

	result := e.RunProject(context.Background(), t.TempDir(), meta)
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error, "boom") {
		t.Errorf("Error should carry captured output, got %q", result.Error)
	}
}

func TestRunProjectNoCommandKnown(t *testing.T) {
	e := New()
	meta := &project.Metadata{Name: "mystery"}

	result := e.RunProject(context.Background(), t.TempDir(), meta)
	if result.Success {
		t.Fatal("expected failure without a run command")
	}
	if !strings.Contains(result.Error, "no run command") {
		t.Errorf("Error = %q", result.Error)
	}
}

func TestRunProjectServerTimeoutWithURLIsSuccess(t *testing.T) {
	e := New()
	e.RunTimeout = 500 * time.Millisecond
	meta := &project.Metadata{
		Name:       "server",
		RunCommand: "echo 'Serving at http://localhost:8000'; sleep 30",
	}

	result := e.RunProject(context.Background(), t.TempDir(), meta)
	if !result.Success {
		t.Fatalf("server that announced a URL should count as started, got %q", result.Error)
	}
	if result.URL != "http://localhost:8000" {
		t.Errorf("URL = %q", result.URL)
	}
}

func TestFindURL(t *testing.T) {
	cases := []struct {
		output string
		want   string
	}{
		{"Running on http://127.0.0.1:5000 (Press CTRL+C to quit)", "http://127.0.0.1:5000"},
		{"listening at https://example.com/app", "https://example.com/app"},
		{"no url here", ""},
	}
	for _, tc := range cases {
		if got := findURL(tc.output); got != tc.want {
			t.Errorf("findURL(%q) = %q, want %q", tc.output, got, tc.want)
		}
	}
}

func TestTail(t *testing.T) {
	s := "a\nb\nc\nd\n"
	if got := tail(s, 2); got != "c\nd" {
		t.Errorf("tail = %q", got)
	}
	if got := tail("one", 5); got != "one" {
		t.Errorf("tail short input = %q", got)
	}
}
