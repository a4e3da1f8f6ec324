// Package output provides unified output formatting for text and JSON.
// All commands go through this package so output stays consistent across
// the CLI.
package output

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects between human-readable text and machine-readable JSON.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// Formatter writes command output in a single format. Commands construct one
// per invocation from the detected format and route all output through it.
type Formatter struct {
	format Format
	writer io.Writer
	pretty bool
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithWriter redirects output away from stdout.
func WithWriter(w io.Writer) Option {
	return func(f *Formatter) { f.writer = w }
}

// WithPretty controls JSON indentation. Indented by default.
func WithPretty(pretty bool) Option {
	return func(f *Formatter) { f.pretty = pretty }
}

// New creates a Formatter writing to stdout in the given format.
func New(format Format, opts ...Option) *Formatter {
	f := &Formatter{format: format, writer: os.Stdout, pretty: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format returns the formatter's output format.
func (f *Formatter) Format() Format { return f.format }

// IsJSON reports whether the formatter emits JSON.
func (f *Formatter) IsJSON() bool { return f.format == FormatJSON }

// Writer returns the destination writer.
func (f *Formatter) Writer() io.Writer { return f.writer }

// DetectFormat picks the format for a command invocation. An explicit --json
// flag wins, then SHELLPOOL_OUTPUT_FORMAT, then pipe detection.
func DetectFormat(jsonFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	switch strings.ToLower(os.Getenv("SHELLPOOL_OUTPUT_FORMAT")) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	}
	// Piped stdout gets JSON so `shellpool sessions | jq .` just works.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return FormatJSON
	}
	return FormatText
}
