package output

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffResult holds the result of comparing two screen captures.
type DiffResult struct {
	LinesBefore int     `json:"lines_before"`
	LinesAfter  int     `json:"lines_after"`
	Similarity  float64 `json:"similarity"`
	UnifiedDiff string  `json:"diff,omitempty"`
}

// ComputeDiff compares two captures, typically the previous and current
// contents of the same pane.
func ComputeDiff(before, after string) *DiffResult {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, true)

	dist := dmp.DiffLevenshtein(diffs)
	maxLen := len(before)
	if len(after) > maxLen {
		maxLen = len(after)
	}
	similarity := 0.0
	if maxLen > 0 {
		similarity = 1.0 - (float64(dist) / float64(maxLen))
	}

	patches := dmp.PatchMake(before, diffs)

	return &DiffResult{
		LinesBefore: len(strings.Split(before, "\n")),
		LinesAfter:  len(strings.Split(after, "\n")),
		Similarity:  similarity,
		UnifiedDiff: dmp.PatchToText(patches),
	}
}
