package project

import (
	"os"
	"path/filepath"
)

// Known language identifiers, matching the values the API is asked to
// emit in project specs.
const (
	LangGo     = "go"
	LangPython = "python"
	LangNode   = "node"
)

// DetectLanguage sniffs a project directory for language indicators.
// Returns "" when nothing recognizable is found.
func DetectLanguage(path string) string {
	switch {
	case fileExists(path, "go.mod"), fileExists(path, "go.work"):
		return LangGo
	case fileExists(path, "package.json"):
		return LangNode
	case fileExists(path, "requirements.txt"),
		fileExists(path, "pyproject.toml"),
		fileExists(path, "main.py"),
		fileExists(path, "app.py"):
		return LangPython
	}
	return ""
}

func fileExists(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
