package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/shellpool/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter()
			if f.IsJSON() {
				return f.JSON(cfg)
			}
			return config.Print(cfg, os.Stdout)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefault()
			if err != nil {
				return err
			}
			formatter().Textln("created %s", path)
			return nil
		},
	})

	return cmd
}
