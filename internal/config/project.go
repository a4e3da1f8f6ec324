package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfigName is the per-project override file, found at the
// repository root.
const ProjectConfigName = ".shellpool.yaml"

// ProjectConfig is the subset of settings a project may override.
type ProjectConfig struct {
	IntegrationTimeout string `yaml:"integration_timeout"`
	CaptureLines       int    `yaml:"capture_lines"`
	Shell              string `yaml:"shell"`

	Clipboard struct {
		Backend string `yaml:"backend"`
	} `yaml:"clipboard"`

	Tmux struct {
		SessionPrefix string `yaml:"session_prefix"`
		CommandWindow int    `yaml:"command_window"`
	} `yaml:"tmux"`
}

// FindProjectConfig searches for .shellpool.yaml starting from dir and going
// up. Returns the directory containing the file and the loaded config, or
// ("", nil, nil) when no project config exists.
func FindProjectConfig(startDir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", nil, err
	}

	for {
		path := filepath.Join(dir, ProjectConfigName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			cfg, err := LoadProjectConfig(path)
			return dir, cfg, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// LoadProjectConfig loads a project configuration from a file.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing project config: %w", err)
	}
	return &cfg, nil
}

// mergeProject overlays the project's non-zero settings onto cfg.
func mergeProject(cfg *Config, proj *ProjectConfig) {
	if proj.IntegrationTimeout != "" {
		cfg.IntegrationTimeout = proj.IntegrationTimeout
	}
	if proj.CaptureLines != 0 {
		cfg.CaptureLines = proj.CaptureLines
	}
	if proj.Shell != "" {
		cfg.Shell = proj.Shell
	}
	if proj.Clipboard.Backend != "" {
		cfg.Clipboard.Backend = proj.Clipboard.Backend
	}
	if proj.Tmux.SessionPrefix != "" {
		cfg.Tmux.SessionPrefix = proj.Tmux.SessionPrefix
	}
	if proj.Tmux.CommandWindow != 0 {
		cfg.Tmux.CommandWindow = proj.Tmux.CommandWindow
	}
}
