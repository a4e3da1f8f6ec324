package screen

import (
	"errors"
	"testing"

	"github.com/Dicklesworthstone/shellpool/internal/clipboard"
)

// fakeSelector scripts selection behavior and records the calls made.
type fakeSelector struct {
	clip *clipboard.Memory

	// copied is placed on the clipboard by CopySelection.
	copied string

	selectAllErr  error
	selectPrevErr error
	copyErr       error
	clearErr      error

	calls []string
	prevN int
}

func (f *fakeSelector) SelectAll() error {
	f.calls = append(f.calls, "select-all")
	return f.selectAllErr
}

func (f *fakeSelector) SelectPreviousCommands(n int) error {
	f.calls = append(f.calls, "select-prev")
	f.prevN = n
	return f.selectPrevErr
}

func (f *fakeSelector) CopySelection() error {
	f.calls = append(f.calls, "copy")
	if f.copyErr != nil {
		return f.copyErr
	}
	return f.clip.Copy(f.copied)
}

func (f *fakeSelector) ClearSelection() error {
	f.calls = append(f.calls, "clear")
	return f.clearErr
}

func TestContentsSelectsEverythingForNegative(t *testing.T) {
	clip := clipboard.NewMemory("old clipboard")
	sel := &fakeSelector{clip: clip, copied: "ls\nfoo.txt\nbar.txt\nls\nfoo.txt"}

	got, err := NewCapturer(sel, clip).Contents(-1)
	if err != nil {
		t.Fatalf("Contents: %v", err)
	}
	if want := "foo.txt\nbar.txt\nls"; got != want {
		t.Errorf("Contents = %q, want %q", got, want)
	}
	if sel.calls[0] != "select-all" {
		t.Errorf("first call = %s, want select-all", sel.calls[0])
	}

	// Clipboard restored to the user's prior value.
	restored, _ := clip.Paste()
	if restored != "old clipboard" {
		t.Errorf("clipboard = %q, want prior value restored", restored)
	}
}

func TestContentsSelectsPreviousCommands(t *testing.T) {
	clip := clipboard.NewMemory("")
	sel := &fakeSelector{clip: clip, copied: "output\ntail"}

	if _, err := NewCapturer(sel, clip).Contents(2); err != nil {
		t.Fatalf("Contents: %v", err)
	}
	if sel.prevN != 2 {
		t.Errorf("SelectPreviousCommands n = %d, want 2", sel.prevN)
	}
}

func TestContentsEmptySelection(t *testing.T) {
	// CopySelection that copies nothing leaves the clipboard unchanged, so
	// the capture equals the prior value and nothing new was selected.
	clip := clipboard.NewMemory("unchanged")
	sel := &fakeSelector{clip: clip, copied: "unchanged"}

	got, err := NewCapturer(sel, clip).Contents(-1)
	if err != nil {
		t.Fatalf("Contents: %v", err)
	}
	if got != "" {
		t.Errorf("Contents = %q, want empty for unchanged clipboard", got)
	}
}

func TestContentsRestoresClipboardOnCopyFailure(t *testing.T) {
	clip := clipboard.NewMemory("precious user data")
	sel := &fakeSelector{clip: clip, copyErr: errors.New("copy exploded")}

	_, err := NewCapturer(sel, clip).Contents(-1)
	if err == nil {
		t.Fatal("expected error from failing copy")
	}

	restored, _ := clip.Paste()
	if restored != "precious user data" {
		t.Errorf("clipboard = %q, want prior value restored after failure", restored)
	}
}

func TestContentsRestoresClipboardOnClearFailure(t *testing.T) {
	clip := clipboard.NewMemory("before")
	sel := &fakeSelector{clip: clip, copied: "captured text", clearErr: errors.New("no clear")}

	_, err := NewCapturer(sel, clip).Contents(-1)
	if err == nil {
		t.Fatal("expected error from failing clear")
	}

	restored, _ := clip.Paste()
	if restored != "before" {
		t.Errorf("clipboard = %q, want prior value restored after failure", restored)
	}
}

func TestContentsSelectionFailure(t *testing.T) {
	clip := clipboard.NewMemory("keep me")
	sel := &fakeSelector{clip: clip, selectAllErr: errors.New("selection unavailable")}

	if _, err := NewCapturer(sel, clip).Contents(-1); err == nil {
		t.Fatal("expected error from failing selection")
	}
	restored, _ := clip.Paste()
	if restored != "keep me" {
		t.Errorf("clipboard = %q, want prior value restored", restored)
	}
}
