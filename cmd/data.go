package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itsmostafa/modelrun/internal/config"
	"github.com/itsmostafa/modelrun/internal/display"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "List data files in the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := config.ListFiles(cfg.Paths.DataDir)
		if err != nil {
			return err
		}
		display.FormatList(cmd.OutOrStdout(), "Data files in "+cfg.Paths.DataDir, names)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dataCmd)
}
