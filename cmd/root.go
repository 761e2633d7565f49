package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/modelrun/internal/config"
	"github.com/itsmostafa/modelrun/internal/ctxlog"
	"github.com/itsmostafa/modelrun/internal/version"
)

var configFile string
var logLevel string
var logFormat string

// cfg is loaded before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "modelrun",
	Short: "Run time-series economic models over tabular data",
	Long: `modelrun loads a whitespace-separated data file of yearly series, runs a
registered model against it, optionally post-processes the variables with
JavaScript or Tengo scripts, and prints the result as a table, TSV or xlsx.

Data and script paths that do not exist are looked up in the configured
data and scripts directories (default ~/Modeling/data and ~/Modeling/scripts).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}

		// Flags take precedence over file and environment
		if cmd.Flags().Changed("log-level") {
			loaded.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			loaded.Logging.Format = logFormat
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger := ctxlog.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("Config file (default %s)", config.DefaultPath()))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
