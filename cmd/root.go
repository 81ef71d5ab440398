package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/autocoder/autocoder/internal/api"
	"github.com/autocoder/autocoder/internal/config"
	"github.com/autocoder/autocoder/internal/errfix"
	"github.com/autocoder/autocoder/internal/executor"
	"github.com/autocoder/autocoder/internal/logging"
	"github.com/autocoder/autocoder/internal/project"
	"github.com/autocoder/autocoder/internal/session"
	"github.com/autocoder/autocoder/internal/ui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "autocoder [instruction...]",
	Short:   "Build, edit and run projects from natural language",
	Version: "1.0.0",
	Long: `autocoder turns natural-language instructions into generated software
projects by delegating to a remote model API, then manages, runs, edits
and auto-repairs those projects locally.

With no arguments it starts an interactive session. With arguments it
executes them as a single command and exits:

  autocoder new todo app with flask
  autocoder run todo-app`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
}

func runRoot(cmd *cobra.Command, args []string) error {
	oneShot := len(args) > 0

	signals := []os.Signal{syscall.SIGTERM}
	if oneShot {
		// Interactive mode leaves SIGINT to readline so Ctrl-C does
		// not kill the loop.
		signals = append(signals, os.Interrupt)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), signals...)
	defer stop()

	console := ui.NewConsole()

	sess, log, err := initialize(ctx, console)
	if err != nil {
		return err
	}
	defer log.Close()

	if oneShot {
		sess.Handle(ctx, strings.Join(args, " "))
		return nil
	}

	return runInteractive(ctx, console, sess)
}

// initialize resolves config, checks the API, and wires the session.
// Failure here is fatal; the caller maps it to exit code 1.
func initialize(ctx context.Context, console *ui.Console) (*session.Session, *logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if cfg.APIKey == "" {
		console.Error("OpenRouter API key not found!")
		console.Info("Set the " + config.APIKeyEnv + " environment variable")
		console.Info("or put your key in " + config.DefaultPath())
		return nil, nil, fmt.Errorf("missing API key")
	}

	if err := cfg.EnsureDirs(); err != nil {
		return nil, nil, err
	}

	log, err := logging.New(cfg.LogsDir)
	if err != nil {
		return nil, nil, err
	}

	client := api.New(cfg)
	console.Info("Testing API connection...")
	testCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := client.TestConnection(testCtx); err != nil {
		log.Error("connection test failed", "error", err)
		log.Close()
		console.Error("Failed to connect to the model API")
		return nil, nil, err
	}
	console.Success("API connection successful!")

	projects := project.NewManager(cfg.ProjectsDir)
	fixer := errfix.New(client, projects, log.Logger)
	sess := session.New(console, client, projects, executor.New(), fixer, log)
	return sess, log, nil
}

// runInteractive is the read-eval-print loop.
func runInteractive(ctx context.Context, console *ui.Console, sess *session.Session) error {
	console.Welcome()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "autocoder> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			console.Info("Use 'exit' to quit gracefully")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			console.Info("Shutting down gracefully...")
			return nil
		}

		if !sess.Handle(ctx, line) {
			return nil
		}
	}
}
