package tmux

import (
	"fmt"

	"github.com/Dicklesworthstone/shellpool/internal/clipboard"
)

// DefaultCommandWindow is the number of lines assumed per command region when
// selecting previous commands. tmux exposes no structured command
// boundaries, so the window is an approximation tuned for interactive use.
const DefaultCommandWindow = 50

// Selector implements screen.Selector over a tmux pane. tmux has no
// persistent selection object, so "select" records the requested range and
// "copy" captures that range onto the clipboard.
type Selector struct {
	client *Client
	target string
	clip   clipboard.Clipboard

	commandWindow int
	captureLines  int // bound on whole-history captures, 0 = unbounded
	lines         int // 0 = nothing selected, -1 = entire history
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithCommandWindow overrides DefaultCommandWindow.
func WithCommandWindow(lines int) SelectorOption {
	return func(s *Selector) { s.commandWindow = lines }
}

// WithCaptureLines bounds whole-history captures to the last n lines of
// scrollback. Zero leaves them unbounded.
func WithCaptureLines(n int) SelectorOption {
	return func(s *Selector) { s.captureLines = n }
}

// NewSelector creates a selector for the given pane target. Copied text is
// placed on clip.
func NewSelector(client *Client, target string, clip clipboard.Clipboard, opts ...SelectorOption) *Selector {
	s := &Selector{
		client:        client,
		target:        target,
		clip:          clip,
		commandWindow: DefaultCommandWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectAll selects the pane's entire scrollback.
func (s *Selector) SelectAll() error {
	s.lines = -1
	return nil
}

// SelectPreviousCommands extends the selection back over the last n command
// regions, approximated as n command windows of scrollback.
func (s *Selector) SelectPreviousCommands(n int) error {
	if n < 0 {
		return fmt.Errorf("negative command count %d", n)
	}
	s.lines = n * s.commandWindow
	return nil
}

// CopySelection captures the selected range and places it on the clipboard.
func (s *Selector) CopySelection() error {
	if s.lines == 0 {
		return fmt.Errorf("nothing selected in pane %s", s.target)
	}
	text, err := s.client.CapturePane(s.target, s.captureBound())
	if err != nil {
		return fmt.Errorf("capturing pane %s: %w", s.target, err)
	}
	return s.clip.Copy(text)
}

// captureBound resolves the recorded selection to a capture-pane line count.
// Whole-history selections fall back to the configured capture bound.
func (s *Selector) captureBound() int {
	if s.lines < 0 {
		return s.captureLines
	}
	return s.lines
}

// ClearSelection resets the recorded range.
func (s *Selector) ClearSelection() error {
	s.lines = 0
	return nil
}
