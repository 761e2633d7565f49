package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itsmostafa/modelrun/internal/config"
	"github.com/itsmostafa/modelrun/internal/display"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "List script files in the scripts directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := config.ListFiles(cfg.Paths.ScriptsDir)
		if err != nil {
			return err
		}
		display.FormatList(cmd.OutOrStdout(), "Scripts in "+cfg.Paths.ScriptsDir, names)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scriptsCmd)
}
