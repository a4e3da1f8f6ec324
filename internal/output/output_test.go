package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := New(FormatJSON, WithWriter(&buf))

	if !f.IsJSON() {
		t.Error("FormatJSON formatter should report IsJSON")
	}

	payload := map[string]any{"session": 1, "command": "ls"}
	if err := f.JSON(payload); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["command"] != "ls" {
		t.Errorf("command = %v, want ls", decoded["command"])
	}
}

func TestFormatterCompactJSON(t *testing.T) {
	var buf bytes.Buffer
	f := New(FormatJSON, WithWriter(&buf), WithPretty(false))

	if err := f.JSON(map[string]int{"a": 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if strings.Contains(strings.TrimSpace(buf.String()), "\n") {
		t.Errorf("compact JSON contains newlines: %q", buf.String())
	}
}

func TestDetectFormat(t *testing.T) {
	if got := DetectFormat(true); got != FormatJSON {
		t.Errorf("DetectFormat(true) = %v, want json", got)
	}

	t.Setenv("SHELLPOOL_OUTPUT_FORMAT", "JSON")
	if got := DetectFormat(false); got != FormatJSON {
		t.Errorf("DetectFormat with env JSON = %v, want json", got)
	}

	// An explicit flag beats the env var.
	t.Setenv("SHELLPOOL_OUTPUT_FORMAT", "text")
	if got := DetectFormat(true); got != FormatJSON {
		t.Errorf("DetectFormat(true) with env text = %v, want json", got)
	}
}

func TestFormatString(t *testing.T) {
	if FormatText.String() != "text" || FormatJSON.String() != "json" {
		t.Errorf("Format strings = %q, %q", FormatText, FormatJSON)
	}
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "ID", "COMMAND")
	tbl.AddRow("1", "make build")
	tbl.AddRow("2", "go test ./...")
	tbl.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("table has %d lines, want 4", len(lines))
	}
	if !strings.Contains(lines[0], "ID") || !strings.Contains(lines[0], "COMMAND") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[3], "go test ./...") {
		t.Errorf("row line = %q", lines[3])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxWidth int
		want     string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is too long", 10, "this is..."},
		{"ab", 2, "ab"},
		{"abcd", 3, "abc"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.input, tt.maxWidth); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
		}
	}
}

func TestComputeDiff(t *testing.T) {
	before := "line one\nline two\n"
	after := "line one\nline three\n"

	result := ComputeDiff(before, after)

	if result.Similarity <= 0 || result.Similarity >= 1 {
		t.Errorf("similarity = %f, want between 0 and 1 for partial change", result.Similarity)
	}
	if result.UnifiedDiff == "" {
		t.Error("differing inputs produced an empty diff")
	}
	if result.LinesBefore != 3 || result.LinesAfter != 3 {
		t.Errorf("line counts = %d, %d", result.LinesBefore, result.LinesAfter)
	}
}

func TestComputeDiffIdentical(t *testing.T) {
	result := ComputeDiff("same\n", "same\n")
	if result.Similarity != 1.0 {
		t.Errorf("similarity = %f, want 1.0", result.Similarity)
	}
	if result.UnifiedDiff != "" {
		t.Errorf("identical inputs produced diff %q", result.UnifiedDiff)
	}
}

func TestCLIErrorFormatting(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	e := NewCLIError("session 3 not found").
		WithCause("it may have been removed").
		WithHint("run: shellpool sessions")

	got := FormatCLIError(e)
	for _, want := range []string{"Error: session 3 not found", "Cause: it may have been removed", "Hint: run: shellpool sessions"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted error missing %q:\n%s", want, got)
		}
	}
}
