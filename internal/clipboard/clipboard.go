// Package clipboard exposes a unified copy/paste interface across platforms.
// Terminal-contents retrieval saves and restores the clipboard around its
// select+copy dance, so Paste must round-trip exactly what Copy wrote.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Clipboard is the read/write text clipboard contract.
type Clipboard interface {
	Copy(text string) error
	Paste() (string, error)
	Backend() string
}

// probe abstracts the environment checks used to choose a backend, so the
// choice is testable without the real tools installed.
type probe struct {
	goos     string
	getenv   func(string) string
	lookPath func(string) error
}

func defaultProbe() probe {
	return probe{
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		lookPath: func(bin string) error {
			_, err := exec.LookPath(bin)
			return err
		},
	}
}

// New constructs a Clipboard using the current platform and available tools.
func New() (Clipboard, error) {
	return chooseBackend(defaultProbe())
}

// Named constructs a specific backend by name. "auto" (or "") falls back to
// platform detection.
func Named(name string) (Clipboard, error) {
	switch name {
	case "", "auto":
		return New()
	case "pbcopy":
		return pbcopyBackend{}, nil
	case "wl", "wl-copy":
		return wlBackend{}, nil
	case "xclip":
		return xclipBackend{}, nil
	case "xsel":
		return xselBackend{}, nil
	case "tmux", "tmux-buffer":
		return tmuxBackend{}, nil
	case "memory":
		return NewMemory(""), nil
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", name)
	}
}

func chooseBackend(p probe) (Clipboard, error) {
	switch p.goos {
	case "darwin":
		if p.lookPath("pbcopy") == nil && p.lookPath("pbpaste") == nil {
			return pbcopyBackend{}, nil
		}
		return nil, fmt.Errorf("pbcopy/pbpaste not found; install Xcode command line tools")

	case "linux":
		if isWayland(p) && p.lookPath("wl-copy") == nil && p.lookPath("wl-paste") == nil {
			return wlBackend{}, nil
		}

		// X11 tools - require DISPLAY
		if p.getenv("DISPLAY") != "" {
			if p.lookPath("xclip") == nil {
				return xclipBackend{}, nil
			}
			if p.lookPath("xsel") == nil {
				return xselBackend{}, nil
			}
		}

		// Inside tmux the server's paste buffer works without any display.
		if p.getenv("TMUX") != "" && p.lookPath("tmux") == nil {
			return tmuxBackend{}, nil
		}

		return nil, errors.New("no clipboard utility found (install wl-copy, xclip, or xsel)")

	default:
		return nil, fmt.Errorf("clipboard not supported on %s", p.goos)
	}
}

func isWayland(p probe) bool {
	if strings.ToLower(p.getenv("XDG_SESSION_TYPE")) == "wayland" {
		return true
	}
	return p.getenv("WAYLAND_DISPLAY") != ""
}

// ==== Backends ====

type pbcopyBackend struct{}

func (pbcopyBackend) Copy(text string) error {
	cmd := exec.Command("pbcopy")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func (pbcopyBackend) Paste() (string, error) {
	out, err := exec.Command("pbpaste").Output()
	return string(out), err
}

func (pbcopyBackend) Backend() string { return "pbcopy" }

type wlBackend struct{}

func (wlBackend) Copy(text string) error {
	cmd := exec.Command("wl-copy")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func (wlBackend) Paste() (string, error) {
	out, err := exec.Command("wl-paste", "--no-newline").Output()
	return string(out), err
}

func (wlBackend) Backend() string { return "wl-copy" }

type xclipBackend struct{}

func (xclipBackend) Copy(text string) error {
	cmd := exec.Command("xclip", "-selection", "clipboard")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func (xclipBackend) Paste() (string, error) {
	out, err := exec.Command("xclip", "-selection", "clipboard", "-o").Output()
	return string(out), err
}

func (xclipBackend) Backend() string { return "xclip" }

type xselBackend struct{}

func (xselBackend) Copy(text string) error {
	cmd := exec.Command("xsel", "--clipboard", "--input")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func (xselBackend) Paste() (string, error) {
	out, err := exec.Command("xsel", "--clipboard", "--output").Output()
	return string(out), err
}

func (xselBackend) Backend() string { return "xsel" }

type tmuxBackend struct{}

func (tmuxBackend) Copy(text string) error {
	cmd := exec.Command("tmux", "load-buffer", "-")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func (tmuxBackend) Paste() (string, error) {
	out, err := exec.Command("tmux", "show-buffer").Output()
	return string(out), err
}

func (tmuxBackend) Backend() string { return "tmux-buffer" }

// Memory is an in-process clipboard for tests and headless environments.
type Memory struct {
	mu   sync.Mutex
	text string

	// CopyErr and PasteErr, when set, are returned by the corresponding
	// operation. Used to exercise failure paths.
	CopyErr  error
	PasteErr error
}

// NewMemory returns a Memory clipboard holding the given initial text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CopyErr != nil {
		return m.CopyErr
	}
	m.text = text
	return nil
}

func (m *Memory) Paste() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PasteErr != nil {
		return "", m.PasteErr
	}
	return m.text, nil
}

func (m *Memory) Backend() string { return "memory" }
