// Package tmux wraps the tmux commands shellpool drives terminals with.
package tmux

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Client handles tmux operations, optionally on a remote host.
type Client struct {
	Remote string // "user@host" or empty for local
}

// NewClient creates a new tmux client.
func NewClient(remote string) *Client {
	return &Client{Remote: remote}
}

// DefaultClient is the default local client.
var DefaultClient = NewClient("")

// Run executes a tmux command.
func (c *Client) Run(args ...string) (string, error) {
	return c.RunContext(context.Background(), args...)
}

// RunContext executes a tmux command with cancellation support.
func (c *Client) RunContext(ctx context.Context, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Remote == "" {
		return runCommandContext(ctx, "tmux", args...)
	}

	// OpenSSH transmits a single command string to the remote shell, so the
	// argv vector has to be re-quoted.
	parts := make([]string, 0, 1+len(args))
	parts = append(parts, "tmux")
	for _, arg := range args {
		parts = append(parts, ShellQuote(arg))
	}
	// "--" prevents Remote from being parsed as an ssh option.
	return runCommandContext(ctx, "ssh", "--", c.Remote, strings.Join(parts, " "))
}

// RunSilent executes a tmux command ignoring stdout.
func (c *Client) RunSilent(args ...string) error {
	_, err := c.Run(args...)
	return err
}

// RunSilentContext executes a tmux command with cancellation, ignoring stdout.
func (c *Client) RunSilentContext(ctx context.Context, args ...string) error {
	_, err := c.RunContext(ctx, args...)
	return err
}

// IsInstalled checks if tmux is available on the target host.
func (c *Client) IsInstalled() bool {
	if c.Remote == "" {
		_, err := exec.LookPath("tmux")
		return err == nil
	}
	return c.RunSilent("-V") == nil
}

// ShellQuote returns a POSIX-shell-safe single-quoted string.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	// Close-quote, escape single quote, reopen: ' -> '\''.
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func runCommandContext(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}
