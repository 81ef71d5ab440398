// Package errfix turns a captured run failure into an API fix request
// and applies the suggested changes.
package errfix

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/autocoder/autocoder/internal/api"
	"github.com/autocoder/autocoder/internal/project"
	"github.com/autocoder/autocoder/internal/prompt"
)

// FixClient is the slice of the API client the handler needs.
type FixClient interface {
	SuggestFix(ctx context.Context, info, files, errorOutput string) (*api.ChangeSet, error)
}

// Handler diagnoses and repairs project run failures.
type Handler struct {
	client   FixClient
	projects *project.Manager
	log      *slog.Logger
}

// New returns a Handler.
func New(client FixClient, projects *project.Manager, log *slog.Logger) *Handler {
	return &Handler{client: client, projects: projects, log: log}
}

// FixProjectErrors sends the last captured error output to the API and
// applies the returned change set. A nil return means the fix was
// applied and the caller may re-run the project.
func (h *Handler) FixProjectErrors(ctx context.Context, path, errorOutput string) error {
	if errorOutput == "" {
		return fmt.Errorf("no captured error to diagnose")
	}

	meta, err := h.projects.Info(path)
	if err != nil {
		return err
	}
	files, err := h.projects.Files(path)
	if err != nil {
		return err
	}

	changes, err := h.client.SuggestFix(ctx, meta.String(), prompt.FormatFiles(files), errorOutput)
	if err != nil {
		return fmt.Errorf("failed to get fix suggestion: %w", err)
	}

	h.log.Info("applying fix", "project", meta.Name, "summary", changes.Summary, "files", len(changes.Files))
	if err := h.projects.ApplyChanges(path, changes); err != nil {
		return fmt.Errorf("failed to apply fix: %w", err)
	}
	return nil
}
