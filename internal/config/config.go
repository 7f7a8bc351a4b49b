// Package config loads the gateway's runtime configuration: the
// MEMORY_ROOT-relative on-disk layout, the local-model endpoint, the
// subprocess allowlist, and logging settings. The project registry itself
// (config.json/projects[]) is loaded separately and on demand — see
// registry.go — since it must never be cached by the security layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OllamaConfig configures the local-model HTTP endpoint (§6.4).
type OllamaConfig struct {
	URL       string `yaml:"url" json:"url,omitempty"`
	ChatModel string `yaml:"chat_model" json:"chat_model,omitempty"`
}

// ExecutionConfig bounds what the Subprocess Executor may run and pass through.
type ExecutionConfig struct {
	AllowedBinaries  []string `yaml:"allowed_binaries" json:"allowed_binaries,omitempty"`
	IndexTimeout     string   `yaml:"index_timeout" json:"index_timeout,omitempty"`
	ModelTimeout     string   `yaml:"model_timeout" json:"model_timeout,omitempty"`
	AllowedEnvVars   []string `yaml:"allowed_env_vars" json:"allowed_env_vars,omitempty"`
	WorkingDirectory string   `yaml:"working_directory" json:"working_directory,omitempty"`
	// HelperDir holds the fixed set of index/memory helper executables the
	// router invokes by absolute path + explicit argv (§6.3). Defaults under
	// MemoryRoot so a fresh install has a predictable, creatable location.
	HelperDir string `yaml:"helper_dir" json:"helper_dir,omitempty"`
}

// Config holds the gateway's full runtime configuration.
type Config struct {
	// MemoryRoot is the base directory for all persisted state (§6.2).
	MemoryRoot string `yaml:"memory_root" json:"memory_root,omitempty"`

	Ollama    OllamaConfig    `yaml:"ollama" json:"ollama,omitempty"`
	Execution ExecutionConfig `yaml:"execution" json:"execution,omitempty"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging,omitempty"`
}

// DefaultConfig returns the gateway's built-in defaults (§6.5).
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		MemoryRoot: filepath.Join(home, ".claude-dash"),
		Ollama: OllamaConfig{
			URL:       "http://localhost:11434",
			ChatModel: "qwen2.5-coder",
		},
		Execution: ExecutionConfig{
			AllowedBinaries:  []string{"go", "git", "grep", "ls", "npm", "npx", "node", "python", "python3", "rg", "find"},
			IndexTimeout:     "30s",
			ModelTimeout:     "60s",
			AllowedEnvVars:   []string{"PATH", "HOME"},
			WorkingDirectory: ".",
			HelperDir:        filepath.Join(home, ".claude-dash", "helpers"),
		},
		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// LoadFromEnv applies MEMORY_ROOT, OLLAMA_URL, and OLLAMA_CHAT_MODEL
// environment overrides on top of the given config (§6.5).
func LoadFromEnv(c *Config) {
	if v := os.Getenv("MEMORY_ROOT"); v != "" {
		c.MemoryRoot = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("OLLAMA_CHAT_MODEL"); v != "" {
		c.Ollama.ChatModel = v
	}
}

// LoadSettingsFile overlays an optional ambient settings file
// (MEMORY_ROOT/gateway.yaml) atop c. A missing file is not an error —
// the gateway runs fine on defaults plus environment variables alone.
func LoadSettingsFile(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse settings file %s: %w", path, err)
	}
	return nil
}

// Load builds the effective configuration: defaults, then gateway.yaml
// (if present under the default memory root), then environment overrides
// last so MEMORY_ROOT/OLLAMA_* always win regardless of file contents.
func Load() (*Config, error) {
	c := DefaultConfig()
	settingsPath := filepath.Join(c.MemoryRoot, "gateway.yaml")
	if err := LoadSettingsFile(c, settingsPath); err != nil {
		return nil, err
	}
	LoadFromEnv(c)
	return c, nil
}

// CachePath returns the on-disk cache directory (§6.2: cache/<md5>.json).
func (c *Config) CachePath() string {
	return filepath.Join(c.MemoryRoot, "cache")
}

// MetricsPath returns the metrics aggregate file (§6.2: gateway/metrics.json).
func (c *Config) MetricsPath() string {
	return filepath.Join(c.MemoryRoot, "gateway", "metrics.json")
}

// RegistryPath returns the project registry file (§6.2: config.json).
func (c *Config) RegistryPath() string {
	return filepath.Join(c.MemoryRoot, "config.json")
}

// ProjectMemoryPath returns the per-project memory directory
// (§6.2: projects/<id>/...), used for index files and the reindex trigger.
func (c *Config) ProjectMemoryPath(projectID string) string {
	return filepath.Join(c.MemoryRoot, "projects", projectID)
}

// HelperPath resolves a helper executable name to its absolute path under
// the configured helper directory (§6.3: "invoked by absolute path with
// explicit argv").
func (c *Config) HelperPath(name string) string {
	return filepath.Join(c.Execution.HelperDir, name)
}
