package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itsmostafa/modelrun/internal/display"
	"github.com/itsmostafa/modelrun/internal/model"

	// registers the bundled models
	_ "github.com/itsmostafa/modelrun/internal/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List registered models",
	RunE: func(cmd *cobra.Command, args []string) error {
		display.FormatList(cmd.OutOrStdout(), "Models", model.Default.Names())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
