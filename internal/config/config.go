// Package config loads shellpool configuration. Global settings live in a
// TOML file under the user config directory; projects may override a subset
// via a .shellpool.yaml at the repository root.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Dicklesworthstone/shellpool/internal/util"
)

// Config represents the main configuration.
type Config struct {
	IntegrationTimeout string `toml:"integration_timeout" yaml:"integration_timeout"` // e.g. "4s"
	PollInterval       string `toml:"poll_interval" yaml:"poll_interval"`             // stream tail backstop
	CaptureLines       int    `toml:"capture_lines" yaml:"capture_lines"`             // scrollback lines per capture
	Shell              string `toml:"shell" yaml:"shell"`                             // shell for new panes, empty = server default

	Clipboard ClipboardConfig `toml:"clipboard" yaml:"clipboard"`
	Events    EventsConfig    `toml:"events" yaml:"events"`
	Tmux      TmuxConfig      `toml:"tmux" yaml:"tmux"`
}

// ClipboardConfig selects the clipboard backend used for screen captures.
type ClipboardConfig struct {
	Backend string `toml:"backend" yaml:"backend"` // auto, pbcopy, wl, xclip, xsel, tmux, memory
}

// EventsConfig controls the JSONL event log.
type EventsConfig struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	Path          string `toml:"path" yaml:"path"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days"`
}

// TmuxConfig holds tmux-specific settings.
type TmuxConfig struct {
	Remote        string `toml:"remote" yaml:"remote"`                 // user@host for ssh-wrapped tmux, empty = local
	SessionPrefix string `toml:"session_prefix" yaml:"session_prefix"` // prefix for sessions shellpool creates
	CommandWindow int    `toml:"command_window" yaml:"command_window"` // lines per command region in captures
}

// DefaultEventsPath is where the event log lands unless overridden.
const DefaultEventsPath = "~/.local/share/shellpool/events.jsonl"

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		IntegrationTimeout: "4s",
		PollInterval:       "200ms",
		CaptureLines:       2000,
		Clipboard: ClipboardConfig{
			Backend: "auto",
		},
		Events: EventsConfig{
			Enabled:       true,
			Path:          DefaultEventsPath,
			RetentionDays: 7,
		},
		Tmux: TmuxConfig{
			SessionPrefix: "shellpool",
			CommandWindow: 50,
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shellpool", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shellpool", "config.toml")
}

// Load loads configuration. A missing file is not an error; defaults apply.
// Precedence, lowest first: built-in defaults, global TOML, project YAML,
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if cwd, err := os.Getwd(); err == nil {
		if _, proj, err := FindProjectConfig(cwd); err != nil {
			return nil, err
		} else if proj != nil {
			mergeProject(cfg, proj)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SHELLPOOL_INTEGRATION_TIMEOUT"); v != "" {
		cfg.IntegrationTimeout = v
	}
	if v := os.Getenv("SHELLPOOL_CLIPBOARD"); v != "" {
		cfg.Clipboard.Backend = v
	}
	if v := os.Getenv("SHELLPOOL_TMUX_REMOTE"); v != "" {
		cfg.Tmux.Remote = v
	}
	if v := os.Getenv("SHELLPOOL_EVENTS"); v != "" {
		cfg.Events.Enabled = v == "1" || v == "true"
	}
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.IntegrationTimeout == "" {
		cfg.IntegrationTimeout = def.IntegrationTimeout
	}
	if cfg.PollInterval == "" {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.CaptureLines == 0 {
		cfg.CaptureLines = def.CaptureLines
	}
	if cfg.Clipboard.Backend == "" {
		cfg.Clipboard.Backend = def.Clipboard.Backend
	}
	if cfg.Events.Path == "" {
		cfg.Events.Path = def.Events.Path
	}
	if cfg.Events.RetentionDays == 0 {
		cfg.Events.RetentionDays = def.Events.RetentionDays
	}
	if cfg.Tmux.SessionPrefix == "" {
		cfg.Tmux.SessionPrefix = def.Tmux.SessionPrefix
	}
	if cfg.Tmux.CommandWindow == 0 {
		cfg.Tmux.CommandWindow = def.Tmux.CommandWindow
	}
}

func (c *Config) validate() error {
	if _, err := util.ParseDuration(c.IntegrationTimeout); err != nil {
		return fmt.Errorf("integration_timeout: %w", err)
	}
	if _, err := util.ParseDuration(c.PollInterval); err != nil {
		return fmt.Errorf("poll_interval: %w", err)
	}
	if c.CaptureLines < 0 {
		return fmt.Errorf("capture_lines must not be negative, got %d", c.CaptureLines)
	}
	return nil
}

// IntegrationTimeoutDuration returns the parsed integration timeout.
func (c *Config) IntegrationTimeoutDuration() time.Duration {
	d, err := util.ParseDuration(c.IntegrationTimeout)
	if err != nil {
		d, _ = util.ParseDuration(Default().IntegrationTimeout)
	}
	return d
}

// PollIntervalDuration returns the parsed stream poll interval.
func (c *Config) PollIntervalDuration() time.Duration {
	d, err := util.ParseDuration(c.PollInterval)
	if err != nil {
		d, _ = util.ParseDuration(Default().PollInterval)
	}
	return d
}

// EventsPath returns the event log path with ~ expanded.
func (c *Config) EventsPath() string {
	return util.ExpandPath(c.Events.Path)
}

// CreateDefault creates a default config file at the default path.
func CreateDefault() (string, error) {
	path := DefaultPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := Print(Default(), f); err != nil {
		return "", err
	}
	return path, nil
}

// Print writes config to a writer in TOML format.
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# shellpool configuration")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# How long to wait for shell integration before degrading")
	fmt.Fprintf(w, "integration_timeout = %q\n", cfg.IntegrationTimeout)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Stream tail poll backstop interval")
	fmt.Fprintf(w, "poll_interval = %q\n", cfg.PollInterval)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Scrollback lines captured per screen read")
	fmt.Fprintf(w, "capture_lines = %d\n", cfg.CaptureLines)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Shell for new panes (empty = tmux server default)")
	if cfg.Shell != "" {
		fmt.Fprintf(w, "shell = %q\n", cfg.Shell)
	} else {
		fmt.Fprintln(w, "# shell = \"/bin/zsh\"")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[clipboard]")
	fmt.Fprintln(w, "# Backend: auto, pbcopy, wl, xclip, xsel, tmux, memory")
	fmt.Fprintf(w, "backend = %q\n", cfg.Clipboard.Backend)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[events]")
	fmt.Fprintln(w, "# JSONL event log of session lifecycle")
	fmt.Fprintf(w, "enabled = %t\n", cfg.Events.Enabled)
	fmt.Fprintf(w, "path = %q\n", cfg.Events.Path)
	fmt.Fprintf(w, "retention_days = %d\n", cfg.Events.RetentionDays)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[tmux]")
	if cfg.Tmux.Remote != "" {
		fmt.Fprintf(w, "remote = %q\n", cfg.Tmux.Remote)
	} else {
		fmt.Fprintln(w, "# remote = \"user@host\"  # run tmux over ssh")
	}
	fmt.Fprintf(w, "session_prefix = %q\n", cfg.Tmux.SessionPrefix)
	fmt.Fprintf(w, "command_window = %d\n", cfg.Tmux.CommandWindow)

	return nil
}
