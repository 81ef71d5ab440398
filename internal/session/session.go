// Package session implements the interactive command dispatcher: it
// parses one line of user input, routes it to a handler, and owns the
// success/failure/confirm flow between handlers.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/autocoder/autocoder/internal/api"
	"github.com/autocoder/autocoder/internal/executor"
	"github.com/autocoder/autocoder/internal/logging"
	"github.com/autocoder/autocoder/internal/project"
	"github.com/autocoder/autocoder/internal/prompt"
)

// ModelClient is the slice of the API client the dispatcher needs.
type ModelClient interface {
	GenerateProject(ctx context.Context, description string) (*api.ProjectSpec, error)
	EditProject(ctx context.Context, info, files, instruction string) (*api.ChangeSet, error)
}

// Runner runs install and run commands against a project directory.
type Runner interface {
	InstallDependencies(ctx context.Context, path string, meta *project.Metadata) error
	RunProject(ctx context.Context, path string, meta *project.Metadata) *executor.Result
}

// Fixer repairs a project from its last captured run error.
type Fixer interface {
	FixProjectErrors(ctx context.Context, path, errorOutput string) error
}

// UI is the console surface the dispatcher talks to the user through.
type UI interface {
	Info(text string)
	Success(text string)
	Warn(text string)
	Error(text string)
	Output(text string)
	Step(text string)
	Prompt(label string) (string, error)
	Confirm(question string) bool
	Help()
}

// Session holds the interactive state: the current-project pointer (via
// the project manager) and the last captured run error.
type Session struct {
	ui       UI
	client   ModelClient
	projects *project.Manager
	runner   Runner
	fixer    Fixer
	log      *logging.Logger

	lastError string
}

// New wires a Session from its collaborators.
func New(ui UI, client ModelClient, projects *project.Manager, runner Runner, fixer Fixer, log *logging.Logger) *Session {
	return &Session{
		ui:       ui,
		client:   client,
		projects: projects,
		runner:   runner,
		fixer:    fixer,
		log:      log,
	}
}

type command int

const (
	cmdFreeform command = iota
	cmdNew
	cmdRun
	cmdEdit
	cmdRetry
	cmdLogs
	cmdList
	cmdLoad
	cmdStatus
	cmdHelp
	cmdExit
)

// parse splits a line into a command and its trailing argument. Anything
// unrecognized is a freeform natural-language instruction and keeps the
// whole line as its argument.
func parse(line string) (command, string) {
	fields := strings.SplitN(line, " ", 2)
	arg := ""
	if len(fields) > 1 {
		arg = strings.TrimSpace(fields[1])
	}

	switch strings.ToLower(fields[0]) {
	case "new":
		return cmdNew, arg
	case "run":
		return cmdRun, arg
	case "edit":
		return cmdEdit, arg
	case "retry":
		return cmdRetry, arg
	case "logs":
		return cmdLogs, arg
	case "list":
		return cmdList, arg
	case "load":
		return cmdLoad, arg
	case "status":
		return cmdStatus, arg
	case "help", "?":
		return cmdHelp, arg
	case "exit", "quit", "q":
		return cmdExit, arg
	default:
		return cmdFreeform, line
	}
}

// Handle dispatches one line of input. It returns false when the user
// asked to exit. Handler failures are logged, reported, and never stop
// the loop.
func (s *Session) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	cmd, arg := parse(line)

	var err error
	switch cmd {
	case cmdExit:
		s.ui.Info("Goodbye!")
		return false
	case cmdNew:
		err = s.handleNew(ctx, arg)
	case cmdRun:
		err = s.handleRun(ctx, arg)
	case cmdEdit:
		err = s.handleEdit(ctx, arg)
	case cmdRetry:
		err = s.handleRetry(ctx)
	case cmdLogs:
		err = s.handleLogs(arg)
	case cmdList:
		err = s.handleList()
	case cmdLoad:
		err = s.handleLoad(arg)
	case cmdStatus:
		err = s.handleStatus()
	case cmdHelp:
		s.ui.Help()
	case cmdFreeform:
		err = s.handleFreeform(ctx, arg)
	}

	if err != nil {
		s.log.Error("command failed", "input", line, "error", err)
		s.ui.Error(err.Error())
	}
	return true
}

// handleNew generates and materializes a new project.
func (s *Session) handleNew(ctx context.Context, description string) error {
	if description == "" {
		answer, err := s.ui.Prompt("Describe your project: ")
		if err != nil {
			return err
		}
		description = answer
	}
	if description == "" {
		s.ui.Error("Project description is required")
		return nil
	}

	s.ui.Info("Creating new project: " + description)
	s.log.Info("generating project", "description", description)

	s.ui.Step("Generating project...")
	spec, err := s.client.GenerateProject(ctx, description)
	if err != nil {
		return fmt.Errorf("project generation failed: %w", err)
	}

	s.ui.Step("Setting up files...")
	path, err := s.projects.Create(spec)
	if err != nil {
		return fmt.Errorf("project creation failed: %w", err)
	}

	if len(spec.Dependencies) > 0 {
		s.ui.Step("Installing dependencies...")
		meta, err := s.projects.Info(path)
		if err != nil {
			return err
		}
		if err := s.runner.InstallDependencies(ctx, path, meta); err != nil {
			s.log.Warn("dependency install failed", "project", spec.Name, "error", err)
			s.ui.Warn("Some dependencies failed to install")
		}
	}

	s.projects.SetCurrent(path)
	s.log.Info("project created", "name", spec.Name, "path", path)
	s.ui.Success("Project created successfully at: " + path)

	if spec.AutoRun {
		s.ui.Info("Starting project...")
		return s.runCurrent(ctx)
	}
	return nil
}

// handleRun runs the current project, optionally switching to a named
// one first.
func (s *Session) handleRun(ctx context.Context, name string) error {
	if name != "" {
		path, ok := s.projects.PathFor(name)
		if !ok {
			s.ui.Error(fmt.Sprintf("Project %q not found", name))
			return nil
		}
		s.projects.SetCurrent(path)
	}
	return s.runCurrent(ctx)
}

func (s *Session) runCurrent(ctx context.Context) error {
	path, ok := s.projects.Current()
	if !ok {
		s.ui.Error("No project loaded. Use 'new' to create one or 'load' to load existing.")
		return nil
	}

	meta, err := s.projects.Info(path)
	if err != nil {
		return err
	}

	s.ui.Step("Starting project...")
	result := s.runner.RunProject(ctx, path, meta)

	if result.Success {
		s.lastError = ""
		s.ui.Success("Project started successfully!")
		if result.URL != "" {
			s.ui.Info("Server running at: " + result.URL)
		}
		if result.Output != "" {
			s.ui.Output(result.Output)
		}
		return nil
	}

	s.lastError = result.Error
	s.log.Error("project run failed", "project", meta.Name, "error", result.Error)
	s.ui.Error("Project failed to start")
	if result.Error != "" {
		s.ui.Error(result.Error)
	}

	if s.ui.Confirm("Would you like me to try to fix the error?") {
		return s.handleRetry(ctx)
	}
	return nil
}

// handleEdit applies an instruction to the current project.
func (s *Session) handleEdit(ctx context.Context, instruction string) error {
	path, ok := s.projects.Current()
	if !ok {
		s.ui.Error("No project loaded")
		return nil
	}

	if instruction == "" {
		answer, err := s.ui.Prompt("What would you like to change? ")
		if err != nil {
			return err
		}
		instruction = answer
	}
	if instruction == "" {
		s.ui.Error("Edit instruction is required")
		return nil
	}

	s.ui.Info("Applying changes: " + instruction)

	s.ui.Step("Analyzing project...")
	meta, err := s.projects.Info(path)
	if err != nil {
		return err
	}
	files, err := s.projects.Files(path)
	if err != nil {
		return err
	}

	s.ui.Step("Generating changes...")
	changes, err := s.client.EditProject(ctx, meta.String(), prompt.FormatFiles(files), instruction)
	if err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}

	s.ui.Step("Applying changes...")
	if err := s.projects.ApplyChanges(path, changes); err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}

	s.log.Info("changes applied", "project", meta.Name, "summary", changes.Summary, "files", len(changes.Files))
	s.ui.Success("Changes applied successfully!")

	if s.ui.Confirm("Would you like to run the updated project?") {
		return s.runCurrent(ctx)
	}
	return nil
}

// handleRetry asks the error handler to repair the last failure, then
// re-runs on success.
func (s *Session) handleRetry(ctx context.Context) error {
	path, ok := s.projects.Current()
	if !ok {
		s.ui.Error("No project loaded")
		return nil
	}

	s.ui.Info("Analyzing and fixing errors...")
	s.ui.Step("Diagnosing issues...")

	if err := s.fixer.FixProjectErrors(ctx, path, s.lastError); err != nil {
		s.log.Error("fix failed", "error", err)
		s.ui.Error("Could not automatically fix the errors")
		return nil
	}

	s.ui.Success("Errors fixed! Trying to run again...")
	return s.runCurrent(ctx)
}

// handleLogs shows recent log lines, optionally filtered.
func (s *Session) handleLogs(filter string) error {
	lines, err := s.log.Recent(50, filter)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		s.ui.Info("No logs found")
		return nil
	}

	s.ui.Info("Recent logs:")
	for _, line := range lines {
		s.ui.Output(line)
	}
	return nil
}

// handleList lists all projects, marking the current one.
func (s *Session) handleList() error {
	names, err := s.projects.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		s.ui.Info("No projects found")
		return nil
	}

	current, _ := s.projects.Current()
	s.ui.Info("Available projects:")
	for _, name := range names {
		marker := ""
		if current != "" && filepath.Base(current) == name {
			marker = " (current)"
		}
		s.ui.Info("  - " + name + marker)
	}
	return nil
}

// handleLoad switches the current project by name or 1-based index.
func (s *Session) handleLoad(arg string) error {
	names, err := s.projects.List()
	if err != nil {
		return err
	}

	if arg == "" {
		if len(names) == 0 {
			s.ui.Error("No projects available")
			return nil
		}
		s.ui.Info("Available projects:")
		for i, name := range names {
			s.ui.Info(fmt.Sprintf("  %d. %s", i+1, name))
		}
		answer, err := s.ui.Prompt("Select project (number or name): ")
		if err != nil {
			return err
		}
		arg = answer
	}

	name := arg
	if idx, err := strconv.Atoi(arg); err == nil {
		if idx < 1 || idx > len(names) {
			s.ui.Error("Invalid selection")
			return nil
		}
		name = names[idx-1]
	}

	path, ok := s.projects.PathFor(name)
	if !ok {
		s.ui.Error(fmt.Sprintf("Project %q not found", name))
		return nil
	}

	s.projects.SetCurrent(path)
	s.log.Info("project loaded", "name", name)
	s.ui.Success("Loaded project: " + name)
	return nil
}

// handleStatus reports the session state.
func (s *Session) handleStatus() error {
	s.ui.Info("=== AutoCoder Status ===")
	s.ui.Info("API Status: Connected")

	path, ok := s.projects.Current()
	if !ok {
		s.ui.Info("Current Project: None")
		return nil
	}
	s.ui.Info("Current Project: " + path)

	meta, err := s.projects.Info(path)
	if err != nil {
		return err
	}
	s.ui.Info("Project Type: " + orUnknown(meta.Type))
	s.ui.Info("Language: " + orUnknown(meta.Language))
	return nil
}

// handleFreeform routes natural language: edit when a project is loaded,
// otherwise a new project.
func (s *Session) handleFreeform(ctx context.Context, instruction string) error {
	if _, ok := s.projects.Current(); ok {
		return s.handleEdit(ctx, instruction)
	}
	return s.handleNew(ctx, instruction)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
