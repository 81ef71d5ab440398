package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// APIKeyEnv is the environment variable checked before any config file.
	APIKeyEnv = "OPENROUTER_API_KEY"

	ConfigDir   = "config"
	ConfigFile  = "config.json"
	ProjectsDir = "projects"
	LogsDir     = "logs"

	defaultModel   = "deepseek/deepseek-r1"
	defaultBaseURL = "https://openrouter.ai/api/v1"
)

// Config holds the application settings resolved from the environment
// and the optional JSON config file.
type Config struct {
	APIKey         string `json:"api_key,omitempty"`
	Model          string `json:"model,omitempty"`
	BaseURL        string `json:"base_url,omitempty"`
	ProjectsDir    string `json:"projects_dir,omitempty"`
	LogsDir        string `json:"logs_dir,omitempty"`
	RequestTimeout int    `json:"request_timeout_seconds,omitempty"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(ConfigDir, ConfigFile)
}

// Load resolves configuration from the file at path (DefaultPath if empty)
// merged with environment variables. The API key environment variable takes
// precedence over any key stored in the file. A missing file is not an
// error; defaults are applied either way.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.APIKey = key
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.ProjectsDir == "" {
		c.ProjectsDir = ProjectsDir
	}
	if c.LogsDir == "" {
		c.LogsDir = LogsDir
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 300
	}
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Save writes the config to the file at path, creating the directory if
// needed. The API key is not persisted when it came from the environment.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *c
	if os.Getenv(APIKeyEnv) != "" {
		out.APIKey = ""
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// EnsureDirs creates the projects and logs directories if they do not exist.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.ProjectsDir, c.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}
	return nil
}
