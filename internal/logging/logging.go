// Package logging provides the session's structured logger. Records go
// to a per-day file under the logs directory so the `logs` command can
// read them back.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger wraps slog with an append file destination and line retrieval.
type Logger struct {
	*slog.Logger
	file *os.File
	path string
}

// New opens (or creates) today's log file under dir.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("autocoder_%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &Logger{
		Logger: slog.New(handler),
		file:   file,
		path:   path,
	}, nil
}

// Path returns the current log file path.
func (l *Logger) Path() string {
	return l.path
}

// Close closes the underlying log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Recent returns up to n of the newest log lines, oldest first. A
// non-empty filter keeps only lines containing it, case-insensitively.
func (l *Logger) Recent(n int, filter string) ([]string, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if filter != "" {
		needle := strings.ToLower(filter)
		var kept []string
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line), needle) {
				kept = append(kept, line)
			}
		}
		lines = kept
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	return lines, nil
}
