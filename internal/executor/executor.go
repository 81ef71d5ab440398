// Package executor runs install and run commands against a project
// directory and captures their outcome for the dispatcher.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/autocoder/autocoder/internal/project"
)

// Result is the outcome of running a project.
type Result struct {
	Success bool
	URL     string
	Output  string
	Error   string
}

// Executor spawns project commands through the shell.
type Executor struct {
	// RunTimeout bounds how long a project run is observed before the
	// process is stopped. A server that is still alive and has printed
	// a local URL by then counts as a successful start.
	RunTimeout time.Duration
}

// New returns an Executor with the default run timeout.
func New() *Executor {
	return &Executor{RunTimeout: 15 * time.Second}
}

// InstallDependencies installs the project's dependencies with the
// package manager for its language. No dependencies is a no-op.
func (e *Executor) InstallDependencies(ctx context.Context, path string, meta *project.Metadata) error {
	if len(meta.Dependencies) == 0 {
		return nil
	}

	command, err := installCommand(meta)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = path
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("dependency install failed: %w\n%s", err, tail(string(output), 20))
	}
	return nil
}

// RunProject runs the project and captures the result. The command comes
// from the project metadata, falling back to a language default.
func (e *Executor) RunProject(ctx context.Context, path string, meta *project.Metadata) *Result {
	command := meta.RunCommand
	if command == "" {
		command = defaultRunCommand(meta.Language)
	}
	if command == "" {
		return &Result{Error: fmt.Sprintf("no run command known for project %q", meta.Name)}
	}

	runCtx, cancel := context.WithTimeout(ctx, e.RunTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = path
	// Stop waiting for inherited pipes once the process is killed, or a
	// surviving grandchild (a spawned server) would block Wait forever.
	cmd.WaitDelay = 2 * time.Second
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := buf.String()
	url := findURL(output)

	if err == nil {
		return &Result{Success: true, URL: url, Output: output}
	}

	// A long-running server killed by the observation timeout still
	// started; treat it as success when it announced a URL.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && url != "" {
		return &Result{Success: true, URL: url, Output: output}
	}

	return &Result{
		Output: output,
		Error:  fmt.Sprintf("%v\n%s", err, tail(output, 40)),
	}
}

func installCommand(meta *project.Metadata) (string, error) {
	deps := strings.Join(meta.Dependencies, " ")
	switch meta.Language {
	case project.LangPython:
		return "pip install " + deps, nil
	case project.LangNode:
		return "npm install " + deps, nil
	case project.LangGo:
		return "go get " + deps, nil
	default:
		return "", fmt.Errorf("no package manager known for language %q", meta.Language)
	}
}

func defaultRunCommand(language string) string {
	switch language {
	case project.LangPython:
		return "python main.py"
	case project.LangNode:
		return "node index.js"
	case project.LangGo:
		return "go run ."
	}
	return ""
}

var urlPattern = regexp.MustCompile(`https?://[a-zA-Z0-9.\-]+(?::\d+)?(?:/\S*)?`)

// findURL returns the first URL a project printed, typically a local
// server announcing its address.
func findURL(output string) string {
	return urlPattern.FindString(output)
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
