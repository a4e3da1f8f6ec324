// Package cli implements the shellpool command line interface.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shellpool/internal/config"
	"github.com/Dicklesworthstone/shellpool/internal/output"
	"github.com/Dicklesworthstone/shellpool/internal/tmux"
)

var (
	cfgFile string
	cfg     *config.Config
	sshHost string

	// Global JSON output flag - inherited by all subcommands
	jsonOutput bool

	// Build information - set by goreleaser via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "shellpool",
	Short: "Pooled shell sessions for automated agents",
	Long: `shellpool runs commands in persistent tmux-backed shell sessions and
harvests their output, built for automated agents that need real shells.

Quick Start:
  shellpool run myproj "make build"      # Run a command, wait, print output
  shellpool capture myproj               # Read what the shell printed
  shellpool sessions                     # List live sessions

Each session detects shell readiness before dispatching, streams output
live, and keeps completed command output until it is retrieved.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			if cfgFile != "" {
				return err
			}
			// An unreadable default config should not block every command.
			cfg = config.Default()
		}

		remote := cfg.Tmux.Remote
		if sshHost != "" {
			remote = sshHost
		}
		if remote != "" {
			tmux.DefaultClient = tmux.NewClient(remote)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default ~/.config/shellpool/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&sshHost, "ssh", "", "Run tmux on a remote host (user@host)")

	rootCmd.AddCommand(
		newRunCmd(),
		newCaptureCmd(),
		newSessionsCmd(),
		newKillCmd(),
		newHookCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if !jsonOutput {
			output.PrintCLIError(err)
		}
		return err
	}
	return nil
}

func formatter() *output.Formatter {
	return output.New(output.DetectFormat(jsonOutput))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			f := formatter()
			if f.IsJSON() {
				f.JSON(map[string]string{
					"version": Version,
					"commit":  Commit,
					"date":    Date,
					"go":      runtime.Version(),
				})
				return
			}
			f.Textln("shellpool %s (%s, built %s, %s)", Version, Commit, Date, runtime.Version())
		},
	}
}

// sessionName applies the configured prefix to a short session name so
// shellpool sessions are distinguishable from user tmux sessions.
func sessionName(name string) string {
	prefix := cfg.Tmux.SessionPrefix
	if prefix == "" {
		return name
	}
	return fmt.Sprintf("%s-%s", prefix, name)
}
