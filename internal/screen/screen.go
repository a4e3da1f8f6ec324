// Package screen implements terminal-contents retrieval through the host
// terminal's selection and clipboard facilities.
//
// The terminal gives no structured access to past command output; the only
// portable path is select, copy, read the clipboard, and undo the damage.
// The clipboard is treated as user property: its prior value is restored on
// every exit path, including failures mid-selection.
package screen

import (
	"fmt"

	"github.com/Dicklesworthstone/shellpool/internal/clipboard"
	"github.com/Dicklesworthstone/shellpool/internal/extract"
)

// Selector drives the host terminal's selection primitives. Implementations
// place the selected text on the clipboard when CopySelection is called.
type Selector interface {
	// SelectAll selects the terminal's entire scrollback.
	SelectAll() error

	// SelectPreviousCommands extends the selection back over the last n
	// command regions.
	SelectPreviousCommands(n int) error

	// CopySelection copies the current selection to the clipboard.
	CopySelection() error

	// ClearSelection removes the visible selection.
	ClearSelection() error
}

// Capturer retrieves terminal contents via an injected Selector and
// Clipboard pair.
type Capturer struct {
	sel  Selector
	clip clipboard.Clipboard
}

// NewCapturer wires a Capturer to its collaborators.
func NewCapturer(sel Selector, clip clipboard.Clipboard) *Capturer {
	return &Capturer{sel: sel, clip: clip}
}

// Contents captures terminal contents and recovers the command output from
// the raw selection. commandsBack < 0 selects the entire scrollback;
// otherwise the last commandsBack command regions are selected.
//
// The clipboard's prior value is restored before returning, on success and
// failure alike.
func (c *Capturer) Contents(commandsBack int) (out string, err error) {
	prior, err := c.clip.Paste()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	defer func() {
		if rerr := c.clip.Copy(prior); rerr != nil && err == nil {
			err = fmt.Errorf("restoring clipboard: %w", rerr)
		}
	}()

	if commandsBack < 0 {
		if err := c.sel.SelectAll(); err != nil {
			return "", fmt.Errorf("selecting scrollback: %w", err)
		}
	} else {
		if err := c.sel.SelectPreviousCommands(commandsBack); err != nil {
			return "", fmt.Errorf("selecting previous commands: %w", err)
		}
	}

	if err := c.sel.CopySelection(); err != nil {
		return "", fmt.Errorf("copying selection: %w", err)
	}

	captured, err := c.clip.Paste()
	if err != nil {
		return "", fmt.Errorf("reading captured selection: %w", err)
	}

	if err := c.sel.ClearSelection(); err != nil {
		return "", fmt.Errorf("clearing selection: %w", err)
	}

	return extract.CommandOutput(captured, prior), nil
}
