package cli

import (
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shellpool/internal/tmux"
)

func newHookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook <session>",
		Short: "Print the shell integration hook for a session",
		Long: `Print the command that marks a session's shell as ready. shellpool
installs it automatically when creating sessions; use this to repair
integration in a pane whose shell was restarted.

Example:
  shellpool hook myproj | pbcopy   # then paste into the pane`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			full := sessionName(args[0])
			target := tmux.Pane{Session: full, Index: 0}.Target()
			f := formatter()
			if f.IsJSON() {
				return f.JSON(map[string]string{
					"session": full,
					"hook":    tmux.IntegrationHook(target),
				})
			}
			f.Println(tmux.IntegrationHook(target))
			return nil
		},
	}
}
