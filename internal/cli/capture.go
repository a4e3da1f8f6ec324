package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shellpool/internal/clipboard"
	"github.com/Dicklesworthstone/shellpool/internal/output"
	"github.com/Dicklesworthstone/shellpool/internal/screen"
	"github.com/Dicklesworthstone/shellpool/internal/tmux"
)

func newCaptureCmd() *cobra.Command {
	var commandsBack int
	var diffLast bool

	cmd := &cobra.Command{
		Use:   "capture <session>",
		Short: "Read command output from a session's screen",
		Long: `Capture the session's screen contents, trimmed to the output of the
most recent commands. The clipboard is used as transport and restored
afterwards.

Examples:
  shellpool capture myproj                    # Everything since the prior capture
  shellpool capture myproj --commands-back 2  # Only the last two commands
  shellpool capture myproj --diff-last        # Diff against the previous capture`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(args[0], commandsBack, diffLast)
		},
	}

	cmd.Flags().IntVar(&commandsBack, "commands-back", -1, "Limit capture to the last N commands (-1 = everything)")
	cmd.Flags().BoolVar(&diffLast, "diff-last", false, "Show a diff against the previous capture instead of raw output")

	return cmd
}

func runCapture(name string, commandsBack int, diffLast bool) error {
	if err := tmux.EnsureInstalled(); err != nil {
		return err
	}

	client := tmux.DefaultClient
	full := sessionName(name)
	if !client.SessionExists(full) {
		return output.NewCLIError(fmt.Sprintf("session %s not found", name)).
			WithHint("run: shellpool sessions")
	}
	target := tmux.Pane{Session: full, Index: 0}.Target()

	clip, err := clipboard.Named(cfg.Clipboard.Backend)
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}

	sel := tmux.NewSelector(client, target, clip,
		tmux.WithCommandWindow(cfg.Tmux.CommandWindow),
		tmux.WithCaptureLines(cfg.CaptureLines))
	capturer := screen.NewCapturer(sel, clip)

	contents, err := capturer.Contents(commandsBack)
	if err != nil {
		return fmt.Errorf("capturing %s: %w", name, err)
	}

	f := formatter()

	if diffLast {
		prev, _ := readLastCapture(full)
		if err := writeLastCapture(full, contents); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save capture: %v\n", err)
		}
		result := output.ComputeDiff(prev, contents)
		if f.IsJSON() {
			return f.JSON(result)
		}
		if result.UnifiedDiff == "" {
			f.Textln("no changes since last capture")
			return nil
		}
		f.Println(result.UnifiedDiff)
		return nil
	}

	if err := writeLastCapture(full, contents); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save capture: %v\n", err)
	}

	if f.IsJSON() {
		return f.JSON(map[string]any{
			"session":  full,
			"contents": contents,
		})
	}
	if contents != "" {
		f.Println(strings.TrimRight(contents, "\n"))
	}
	return nil
}

// captureCachePath is where the previous capture is stashed for --diff-last.
func captureCachePath(session string) string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "shellpool", session+".capture")
}

func readLastCapture(session string) (string, error) {
	data, err := os.ReadFile(captureCachePath(session))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeLastCapture(session, contents string) error {
	path := captureCachePath(session)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(contents), 0644)
}
