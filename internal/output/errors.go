package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// CLIError represents a structured CLI error with remediation hints.
type CLIError struct {
	Message string // What failed
	Cause   string // Why it failed (optional)
	Hint    string // Fastest command/action to fix it (optional)
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// NewCLIError creates a new CLI error with just a message.
func NewCLIError(msg string) *CLIError {
	return &CLIError{Message: msg}
}

// WithCause adds a cause to the error.
func (e *CLIError) WithCause(cause string) *CLIError {
	e.Cause = cause
	return e
}

// WithHint adds a remediation hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	causeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func isStderrTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd())
}

// FormatCLIError formats a CLIError for terminal output with colors.
// Returns plain text if stderr is not a terminal or NO_COLOR is set.
func FormatCLIError(e *CLIError) string {
	useColor := isStderrTerminal() && os.Getenv("NO_COLOR") == ""

	var sb strings.Builder

	if useColor {
		sb.WriteString(errorStyle.Render("Error: "))
	} else {
		sb.WriteString("Error: ")
	}
	sb.WriteString(e.Message)
	sb.WriteString("\n")

	if e.Cause != "" {
		if useColor {
			sb.WriteString(causeStyle.Render("  Cause: "))
		} else {
			sb.WriteString("  Cause: ")
		}
		sb.WriteString(e.Cause)
		sb.WriteString("\n")
	}

	if e.Hint != "" {
		if useColor {
			sb.WriteString(hintStyle.Render("  Hint: "))
		} else {
			sb.WriteString("  Hint: ")
		}
		sb.WriteString(e.Hint)
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintCLIError prints an error to stderr. CLIErrors render with cause and
// hint; everything else gets the plain Error: prefix.
func PrintCLIError(err error) {
	if e, ok := err.(*CLIError); ok {
		fmt.Fprint(os.Stderr, FormatCLIError(e))
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
