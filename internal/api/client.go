// Package api talks to an OpenAI-compatible chat completions endpoint
// (OpenRouter by default) and turns model replies into structured
// project specifications and change sets.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/autocoder/autocoder/internal/config"
	"github.com/autocoder/autocoder/internal/prompt"
)

// ProjectSpec is the model's description of a new project.
type ProjectSpec struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Language     string        `json:"language"`
	Description  string        `json:"description"`
	Files        []ProjectFile `json:"files"`
	Dependencies []string      `json:"dependencies"`
	RunCommand   string        `json:"run_command"`
	AutoRun      bool          `json:"auto_run"`
}

// ProjectFile is a single file in a ProjectSpec or ChangeSet.
type ProjectFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ChangeSet is the model's description of file edits to apply.
type ChangeSet struct {
	Summary string        `json:"summary"`
	Files   []ProjectFile `json:"files"`
}

// Client wraps the chat completions API.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New builds a Client from the application config.
func New(cfg *config.Config) *Client {
	cc := openai.DefaultConfig(cfg.APIKey)
	cc.BaseURL = cfg.BaseURL
	return &Client{
		client:  openai.NewClientWithConfig(cc),
		model:   cfg.Model,
		timeout: cfg.Timeout(),
	}
}

// TestConnection verifies the API is reachable with the configured key.
func (c *Client) TestConnection(ctx context.Context) error {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Reply with the single word: ok"},
		},
		MaxTokens: 8,
	}
	if _, err := c.client.CreateChatCompletion(ctx, req); err != nil {
		return fmt.Errorf("API connection test failed: %w", err)
	}
	return nil
}

// GenerateProject asks the model to design a new project from a description.
func (c *Client) GenerateProject(ctx context.Context, description string) (*ProjectSpec, error) {
	raw, err := c.complete(ctx, prompt.Generate(description))
	if err != nil {
		return nil, err
	}

	spec, err := ParseProjectSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated project: %w", err)
	}
	return spec, nil
}

// EditProject asks the model for a change set implementing an instruction
// against the given project metadata and file contents.
func (c *Client) EditProject(ctx context.Context, info, files, instruction string) (*ChangeSet, error) {
	raw, err := c.complete(ctx, prompt.Edit(info, files, instruction))
	if err != nil {
		return nil, err
	}

	changes, err := ParseChangeSet(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse change set: %w", err)
	}
	return changes, nil
}

// SuggestFix asks the model for a change set repairing a failed run.
func (c *Client) SuggestFix(ctx context.Context, info, files, errorOutput string) (*ChangeSet, error) {
	raw, err := c.complete(ctx, prompt.Fix(info, files, errorOutput))
	if err != nil {
		return nil, err
	}

	changes, err := ParseChangeSet(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fix change set: %w", err)
	}
	return changes, nil
}

func (c *Client) complete(ctx context.Context, userPrompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ParseProjectSpec extracts and validates a ProjectSpec from a model reply.
func ParseProjectSpec(raw string) (*ProjectSpec, error) {
	var spec ProjectSpec
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &spec); err != nil {
		return nil, err
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("project spec has no name")
	}
	if len(spec.Files) == 0 {
		return nil, fmt.Errorf("project spec has no files")
	}
	for _, f := range spec.Files {
		if f.Path == "" {
			return nil, fmt.Errorf("project spec contains a file with no path")
		}
	}
	return &spec, nil
}

// ParseChangeSet extracts and validates a ChangeSet from a model reply.
func ParseChangeSet(raw string) (*ChangeSet, error) {
	var changes ChangeSet
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &changes); err != nil {
		return nil, err
	}
	if len(changes.Files) == 0 {
		return nil, fmt.Errorf("change set has no files")
	}
	for _, f := range changes.Files {
		if f.Path == "" {
			return nil, fmt.Errorf("change set contains a file with no path")
		}
	}
	return &changes, nil
}

// ExtractJSON strips markdown fences and surrounding prose from a model
// reply, returning the first top-level JSON object. Models occasionally
// wrap the object in ```json fences despite instructions not to.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
