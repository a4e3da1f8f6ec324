package tmux

import (
	"strings"
	"testing"

	"github.com/Dicklesworthstone/shellpool/internal/clipboard"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "''"},
		{"simple", "'simple'"},
		{"two words", "'two words'"},
		{"don't", `'don'\''t'`},
		{"$HOME", "'$HOME'"},
		{"a;b|c", "'a;b|c'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ShellQuote(tt.input); got != tt.want {
				t.Errorf("ShellQuote(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestPaneTarget(t *testing.T) {
	p := Pane{Session: "work", Index: 2}
	if got := p.Target(); got != "work.2" {
		t.Errorf("Target = %q, want work.2", got)
	}
}

func TestIntegrationHookQuotesTarget(t *testing.T) {
	hook := IntegrationHook("main.0")
	if !strings.Contains(hook, "'main.0'") {
		t.Errorf("hook %q does not quote the target", hook)
	}
	if !strings.Contains(hook, ReadyOption) {
		t.Errorf("hook %q does not set %s", hook, ReadyOption)
	}
}

func TestSelectorStateTransitions(t *testing.T) {
	clip := clipboard.NewMemory("")
	sel := NewSelector(NewClient(""), "main.0", clip)

	// Copy before any selection is a sequencing error.
	if err := sel.CopySelection(); err == nil {
		t.Error("CopySelection with empty selection should fail")
	}

	if err := sel.SelectAll(); err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if sel.lines != -1 {
		t.Errorf("SelectAll lines = %d, want -1", sel.lines)
	}

	if err := sel.SelectPreviousCommands(3); err != nil {
		t.Fatalf("SelectPreviousCommands: %v", err)
	}
	if sel.lines != 3*DefaultCommandWindow {
		t.Errorf("lines = %d, want %d", sel.lines, 3*DefaultCommandWindow)
	}

	if err := sel.SelectPreviousCommands(-1); err == nil {
		t.Error("negative command count should fail")
	}

	if err := sel.ClearSelection(); err != nil {
		t.Fatalf("ClearSelection: %v", err)
	}
	if sel.lines != 0 {
		t.Errorf("lines after clear = %d, want 0", sel.lines)
	}
}

func TestSelectorCaptureBound(t *testing.T) {
	sel := NewSelector(NewClient(""), "main.0", clipboard.NewMemory(""), WithCaptureLines(2000))

	sel.SelectAll()
	if got := sel.captureBound(); got != 2000 {
		t.Errorf("captureBound after SelectAll = %d, want 2000", got)
	}

	// Command-scoped selections keep their own line count.
	sel.SelectPreviousCommands(2)
	if got := sel.captureBound(); got != 2*DefaultCommandWindow {
		t.Errorf("captureBound = %d, want %d", got, 2*DefaultCommandWindow)
	}

	// Without a configured bound, SelectAll captures the entire history.
	unbounded := NewSelector(NewClient(""), "main.0", clipboard.NewMemory(""))
	unbounded.SelectAll()
	if got := unbounded.captureBound(); got != 0 {
		t.Errorf("captureBound = %d, want 0 for unbounded capture", got)
	}
}

func TestSelectorCommandWindowOption(t *testing.T) {
	sel := NewSelector(NewClient(""), "main.0", clipboard.NewMemory(""), WithCommandWindow(10))
	sel.SelectPreviousCommands(2)
	if sel.lines != 20 {
		t.Errorf("lines = %d, want 20", sel.lines)
	}
}
