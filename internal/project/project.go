// Package project manages generated project directories under a single
// projects root: creation from an API spec, the session's current-project
// pointer, and change set application.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/autocoder/autocoder/internal/api"
)

// MetadataFile is the per-project metadata file written at creation time.
const MetadataFile = "project.json"

// Metadata describes a materialized project. It is written when the
// project is created and read back by status, edit and run.
type Metadata struct {
	Name         string    `json:"name"`
	Type         string    `json:"type,omitempty"`
	Language     string    `json:"language,omitempty"`
	Description  string    `json:"description,omitempty"`
	Dependencies []string  `json:"dependencies,omitempty"`
	RunCommand   string    `json:"run_command,omitempty"`
	AutoRun      bool      `json:"auto_run,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Manager tracks projects under a root directory and the session's
// current project. It is not safe for concurrent use; the dispatch loop
// is single threaded.
type Manager struct {
	root    string
	current string
}

// NewManager returns a Manager over the given projects root.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the projects root directory.
func (m *Manager) Root() string {
	return m.root
}

// Create materializes a project from the spec. It fails if the target
// directory already exists.
func (m *Manager) Create(spec *api.ProjectSpec) (string, error) {
	name := sanitizeName(spec.Name)
	if name == "" {
		return "", fmt.Errorf("invalid project name %q", spec.Name)
	}

	path := filepath.Join(m.root, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("project %q already exists at %s", name, path)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	if err := writeFiles(path, spec.Files); err != nil {
		return "", err
	}

	meta := &Metadata{
		Name:         name,
		Type:         spec.Type,
		Language:     spec.Language,
		Description:  spec.Description,
		Dependencies: spec.Dependencies,
		RunCommand:   spec.RunCommand,
		AutoRun:      spec.AutoRun,
		CreatedAt:    time.Now().UTC(),
	}
	if err := meta.save(path); err != nil {
		return "", err
	}

	return path, nil
}

// PathFor returns the path of a named project, or false if it does not exist.
func (m *Manager) PathFor(name string) (string, bool) {
	path := filepath.Join(m.root, sanitizeName(name))
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return path, true
}

// SetCurrent updates the current-project pointer.
func (m *Manager) SetCurrent(path string) {
	m.current = path
}

// Current returns the current project path, or false if none is loaded.
func (m *Manager) Current() (string, bool) {
	if m.current == "" {
		return "", false
	}
	return m.current, true
}

// List returns the names of all projects, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ApplyChanges writes each file in the change set into the project
// directory, overwriting existing files. There is no rollback: a failure
// partway leaves earlier files written.
func (m *Manager) ApplyChanges(path string, changes *api.ChangeSet) error {
	return writeFiles(path, changes.Files)
}

// Info reads the project metadata. A project without a metadata file
// gets a best-effort Metadata from the directory name and detected
// language.
func (m *Manager) Info(path string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(path, MetadataFile))
	if os.IsNotExist(err) {
		return &Metadata{
			Name:     filepath.Base(path),
			Language: DetectLanguage(path),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse project metadata: %w", err)
	}
	if meta.Language == "" {
		meta.Language = DetectLanguage(path)
	}
	return &meta, nil
}

// Files reads the project's source files keyed by relative path. The
// metadata file is skipped, as are files larger than maxPromptFileSize,
// since the result is destined for a model prompt.
func (m *Manager) Files(path string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || d.Name() == ".git" || d.Name() == "__pycache__" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		if rel == MetadataFile {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxPromptFileSize {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read project files: %w", err)
	}
	return files, nil
}

const maxPromptFileSize = 64 * 1024

func (meta *Metadata) save(path string) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, MetadataFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write project metadata: %w", err)
	}
	return nil
}

// String renders metadata for inclusion in a prompt.
func (meta *Metadata) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", meta.Name)
	if meta.Type != "" {
		fmt.Fprintf(&b, "type: %s\n", meta.Type)
	}
	if meta.Language != "" {
		fmt.Fprintf(&b, "language: %s\n", meta.Language)
	}
	if meta.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", meta.Description)
	}
	if len(meta.Dependencies) > 0 {
		fmt.Fprintf(&b, "dependencies: %s\n", strings.Join(meta.Dependencies, ", "))
	}
	if meta.RunCommand != "" {
		fmt.Fprintf(&b, "run command: %s\n", meta.RunCommand)
	}
	return b.String()
}

func writeFiles(root string, files []api.ProjectFile) error {
	for _, f := range files {
		rel, err := safeRel(f.Path)
		if err != nil {
			return err
		}
		dst := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(dst, []byte(f.Content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
	}
	return nil
}

// safeRel rejects paths that would escape the project directory.
func safeRel(p string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("refusing to write outside project directory: %s", p)
	}
	return cleaned, nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
