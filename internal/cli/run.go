package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shellpool/internal/events"
	"github.com/Dicklesworthstone/shellpool/internal/output"
	"github.com/Dicklesworthstone/shellpool/internal/proc"
	"github.com/Dicklesworthstone/shellpool/internal/registry"
	"github.com/Dicklesworthstone/shellpool/internal/session"
	"github.com/Dicklesworthstone/shellpool/internal/tmux"
	"github.com/Dicklesworthstone/shellpool/internal/util"
)

func newRunCmd() *cobra.Command {
	var timeout string
	var taskID string
	var noWait bool

	cmd := &cobra.Command{
		Use:   "run <session> <command...>",
		Short: "Run a command in a pooled shell session",
		Long: `Run a command in the named session's shell, wait for it to finish, and
print its output. The session is created on first use.

Examples:
  shellpool run myproj "make build"
  shellpool run myproj --timeout 30s "go test ./..."
  shellpool run myproj --task t42 --no-wait "npm run dev"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.Join(args[1:], " ")
			return runRun(args[0], command, taskID, timeout, noWait)
		},
	}

	cmd.Flags().StringVar(&timeout, "timeout", "5m", "How long to wait for completion")
	cmd.Flags().StringVar(&taskID, "task", "", "Task id to tag the session with")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Dispatch without waiting for completion")

	return cmd
}

func runRun(name, command, taskID, timeout string, noWait bool) error {
	if err := tmux.EnsureInstalled(); err != nil {
		return err
	}
	wait, err := util.ParseDuration(timeout)
	if err != nil {
		return fmt.Errorf("invalid --timeout: %w", err)
	}

	client := tmux.DefaultClient
	full := sessionName(name)
	created, err := ensureTmuxSession(client, full)
	if err != nil {
		return err
	}
	target := tmux.Pane{Session: full, Index: 0}.Target()

	bus := events.NewBus(events.DefaultHistorySize)
	if logger := openEventLog(bus); logger != nil {
		defer logger.Close()
	}

	reg := registry.New(registry.WithBus(bus))
	opts := []session.Option{
		session.WithIntegrationTimeout(cfg.IntegrationTimeoutDuration()),
	}
	if taskID != "" {
		opts = append(opts, session.WithTaskID(taskID))
	}
	sess := reg.Create(
		tmux.NewIntegration(client, target),
		proc.Factory(client, target, proc.WithPollInterval(cfg.PollIntervalDuration())),
		opts...,
	)

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	run, err := sess.RunCommand(ctx, command)
	if err != nil {
		return err
	}

	f := formatter()
	if noWait {
		if f.IsJSON() {
			return f.JSON(map[string]any{
				"session":    full,
				"command":    command,
				"dispatched": true,
			})
		}
		f.Textln("dispatched to %s", full)
		return nil
	}

	waitErr := run.Wait(ctx)

	p := run.Process()
	var out string
	if p != nil && p.HasUnretrievedOutput() {
		out = p.UnretrievedOutput()
	}
	var exit *session.ExitDetails
	if tp, ok := p.(*proc.Proc); ok {
		exit = tp.Exit()
	}

	if f.IsJSON() {
		payload := map[string]any{
			"session": full,
			"created": created,
			"command": command,
			"output":  out,
		}
		if exit != nil {
			payload["exit_code"] = exit.Code
		}
		if waitErr != nil {
			payload["error"] = waitErr.Error()
		}
		if err := f.JSON(payload); err != nil {
			return err
		}
		return waitErr
	}

	if out != "" {
		f.Println(strings.TrimRight(out, "\n"))
	}
	if waitErr != nil {
		return waitFailure(waitErr, timeout, name)
	}
	if exit != nil && exit.Code != 0 {
		return output.NewCLIError(fmt.Sprintf("command exited with status %d", exit.Code))
	}
	return nil
}

// waitFailure maps a Wait error to a user-facing error. Deadline errors may
// arrive wrapped, so they are matched with errors.Is.
func waitFailure(waitErr error, timeout, name string) error {
	if errors.Is(waitErr, context.DeadlineExceeded) {
		return output.NewCLIError("command did not complete in time").
			WithCause(fmt.Sprintf("no completion marker after %s", timeout)).
			WithHint("the shell may lack integration; try: shellpool capture " + name)
	}
	return waitErr
}

// ensureTmuxSession creates the backing tmux session on first use and
// installs the shell integration marker. Returns whether it was created.
func ensureTmuxSession(client *tmux.Client, name string) (bool, error) {
	if client.SessionExists(name) {
		return false, nil
	}
	dir, _ := os.Getwd()
	if err := client.NewSession(name, dir, cfg.Shell); err != nil {
		return false, fmt.Errorf("creating session %s: %w", name, err)
	}
	target := tmux.Pane{Session: name, Index: 0}.Target()
	if err := tmux.MarkReady(client, target); err != nil {
		return true, fmt.Errorf("installing shell integration: %w", err)
	}
	return true, nil
}

// openEventLog attaches a JSONL logger to the bus when event logging is
// enabled. Returns nil when disabled or the log cannot be opened.
func openEventLog(bus *events.Bus) *events.Logger {
	if !cfg.Events.Enabled {
		return nil
	}
	logger, err := events.NewLogger(events.LoggerOptions{
		Path:          cfg.EventsPath(),
		RetentionDays: cfg.Events.RetentionDays,
		Enabled:       true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: event log unavailable: %v\n", err)
		return nil
	}
	logger.Attach(bus)
	return logger
}
