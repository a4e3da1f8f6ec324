package tmux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Pane identifies one tmux pane hosting a shellpool terminal.
type Pane struct {
	Session string
	Index   int
}

// Target returns the tmux target string for the pane.
func (p Pane) Target() string {
	return fmt.Sprintf("%s.%d", p.Session, p.Index)
}

// IsInstalled checks if tmux is available (default client).
func IsInstalled() bool {
	return DefaultClient.IsInstalled()
}

// EnsureInstalled returns an error if tmux is not installed.
func EnsureInstalled() error {
	if !IsInstalled() {
		return errors.New("tmux is not installed. Install it with: brew install tmux (macOS) or apt install tmux (Linux)")
	}
	return nil
}

// InTmux returns true if currently inside a tmux session.
func InTmux() bool {
	return os.Getenv("TMUX") != ""
}

// SessionExists checks if a session exists.
func (c *Client) SessionExists(name string) bool {
	return c.RunSilent("has-session", "-t", name) == nil
}

// NewSession creates a detached session running the given shell. An empty
// shell uses the server default.
func (c *Client) NewSession(name, dir, shell string) error {
	args := []string{"new-session", "-d", "-s", name}
	if dir != "" {
		args = append(args, "-c", dir)
	}
	if shell != "" {
		args = append(args, shell)
	}
	return c.RunSilent(args...)
}

// KillSession terminates a session.
func (c *Client) KillSession(name string) error {
	return c.RunSilent("kill-session", "-t", name)
}

// ListSessions returns the names of all sessions. A missing server means no
// sessions, not an error.
func (c *Client) ListSessions() ([]string, error) {
	out, err := c.Run("list-sessions", "-F", "#{session_name}")
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "no server running") || strings.Contains(msg, "no sessions") {
			return nil, nil
		}
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// SendKeys types text into a pane. enter appends a carriage return.
func (c *Client) SendKeys(target, text string, enter bool) error {
	// -l sends the text literally so it is not interpreted as key names.
	if err := c.RunSilent("send-keys", "-t", target, "-l", text); err != nil {
		return err
	}
	if enter {
		return c.RunSilent("send-keys", "-t", target, "Enter")
	}
	return nil
}

// SendInterrupt sends Ctrl+C to a pane.
func (c *Client) SendInterrupt(target string) error {
	return c.RunSilent("send-keys", "-t", target, "C-c")
}

// CapturePane returns the last lines of a pane's visible output and
// scrollback. lines <= 0 captures the entire history.
func (c *Client) CapturePane(target string, lines int) (string, error) {
	return c.CapturePaneContext(context.Background(), target, lines)
}

// CapturePaneContext is CapturePane with cancellation support.
func (c *Client) CapturePaneContext(ctx context.Context, target string, lines int) (string, error) {
	args := []string{"capture-pane", "-p", "-t", target}
	if lines > 0 {
		args = append(args, "-S", strconv.Itoa(-lines))
	} else {
		args = append(args, "-S", "-")
	}
	return c.RunContext(ctx, args...)
}

// PipePane streams a pane's output into the given file, appending.
func (c *Client) PipePane(target, path string) error {
	return c.RunSilent("pipe-pane", "-t", target, "-o", "cat >> "+ShellQuote(path))
}

// UnpipePane stops piping a pane's output.
func (c *Client) UnpipePane(target string) error {
	return c.RunSilent("pipe-pane", "-t", target)
}

// SetPaneOption sets a pane-scoped user option.
func (c *Client) SetPaneOption(target, name, value string) error {
	return c.RunSilent("set-option", "-p", "-t", target, name, value)
}

// PaneOption reads a pane-scoped user option. Returns "" when unset.
func (c *Client) PaneOption(target, name string) (string, error) {
	out, err := c.Run("show-options", "-p", "-t", target, "-v", name)
	if err != nil {
		// tmux errors on unknown options; treat as unset.
		return "", nil
	}
	return strings.TrimSpace(out), nil
}
