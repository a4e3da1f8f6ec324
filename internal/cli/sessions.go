package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shellpool/internal/output"
	"github.com/Dicklesworthstone/shellpool/internal/tmux"
)

func newSessionsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List pooled shell sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include tmux sessions not created by shellpool")

	return cmd
}

type sessionInfo struct {
	Name    string `json:"name"`
	Session string `json:"tmux_session"`
	Pooled  bool   `json:"pooled"`
}

func runSessions(all bool) error {
	if err := tmux.EnsureInstalled(); err != nil {
		return err
	}

	names, err := tmux.DefaultClient.ListSessions()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	prefix := cfg.Tmux.SessionPrefix + "-"
	var infos []sessionInfo
	for _, n := range names {
		pooled := strings.HasPrefix(n, prefix)
		if !pooled && !all {
			continue
		}
		short := n
		if pooled {
			short = strings.TrimPrefix(n, prefix)
		}
		infos = append(infos, sessionInfo{Name: short, Session: n, Pooled: pooled})
	}

	f := formatter()
	if f.IsJSON() {
		if infos == nil {
			infos = []sessionInfo{}
		}
		return f.JSON(infos)
	}

	if len(infos) == 0 {
		f.Textln("no sessions")
		return nil
	}

	tbl := output.NewTable(os.Stdout, "NAME", "TMUX SESSION", "POOLED")
	for _, info := range infos {
		pooled := "yes"
		if !info.Pooled {
			pooled = "no"
		}
		tbl.AddRow(info.Name, info.Session, pooled)
	}
	tbl.Render()
	return nil
}

func newKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill <session>",
		Short: "Terminate a pooled shell session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tmux.EnsureInstalled(); err != nil {
				return err
			}
			full := sessionName(args[0])
			if !tmux.DefaultClient.SessionExists(full) {
				return output.NewCLIError(fmt.Sprintf("session %s not found", args[0])).
					WithHint("run: shellpool sessions")
			}
			if err := tmux.DefaultClient.KillSession(full); err != nil {
				return fmt.Errorf("killing session: %w", err)
			}
			f := formatter()
			if f.IsJSON() {
				return f.JSON(map[string]any{"session": full, "killed": true})
			}
			f.Textln("killed %s", args[0])
			return nil
		},
	}
}
