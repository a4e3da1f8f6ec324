// Package extract recovers command output from raw terminal selection captures.
//
// Terminal selection APIs expose no structured command/output boundaries, so
// the boundary is inferred from an artifact of the copy mechanism itself:
// emulators duplicate the last rendered line when a selection is copied. The
// heuristic is best-effort and falls back to the whole capture when the
// artifact is absent.
package extract

import "strings"

// CommandOutput recovers the meaningful output from a selection capture.
//
// captured is the text read back from the clipboard after a select+copy;
// prior is the clipboard content from immediately before the copy. Identical
// values mean the selection was empty and nothing new was copied.
//
// The trailing line of the capture (trimmed) is the anchor. The scan walks
// backward for the closest earlier line whose trimmed content starts with the
// anchor text, and the remaining lines are truncated to begin there, dropping
// prompts and stale echoes that precede the output window.
func CommandOutput(captured, prior string) string {
	if captured == prior {
		return ""
	}

	lines := strings.Split(captured, "\n")
	anchor := strings.TrimSpace(lines[len(lines)-1])
	lines = lines[:len(lines)-1]

	// A blank anchor would prefix-match every line; truncating on it eats
	// legitimately blank-ended output, so return the capture untouched.
	if anchor == "" {
		return captured
	}

	start := 0
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), anchor) {
			start = i
			break
		}
	}

	return strings.Join(lines[start:], "\n")
}
