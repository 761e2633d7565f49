package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/modelrun/internal/ctxlog"
	"github.com/itsmostafa/modelrun/internal/display"
	"github.com/itsmostafa/modelrun/internal/model"
	"github.com/itsmostafa/modelrun/internal/script"
	"github.com/itsmostafa/modelrun/internal/session"
)

// Output formats
const (
	FormatTable = "table"
	FormatTSV   = "tsv"
	FormatXLSX  = "xlsx"
)

var modelName string
var dataFile string
var scriptFiles []string
var evalCode []string
var engine string
var format string
var outFile string
var lenient bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load a data file, run a model and scripts, print the result",
	Long: `Load a data file, run a model against it, then run each --script file and
each --eval snippet in order. Scripts may change existing variables but new
variables they create are not kept.`,
	Example: `  modelrun run --model Model1 --data data1.txt
  modelrun run --model Model1 --data data1.txt --script grow.js --format tsv
  modelrun run --data data1.txt --eval 'PKB = PKB.map(function (v) { return v / 1000 })'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("engine") {
			name, err := script.ValidateEngine(engine)
			if err != nil {
				return err
			}
			cfg.Script.Engine = name
		}
		if lenient {
			cfg.Model.OnError = string(model.Lenient)
		}
		if err := validateFormat(format, outFile); err != nil {
			return err
		}

		sess := session.New(session.Options{
			Policy: cfg.Policy(),
			Script: cfg.ScriptEngineConfig(),
			Logger: ctxlog.FromContext(ctx),
		})

		// Status lines go to stderr when stdout carries machine-readable output
		status := cmd.OutOrStdout()
		if format != FormatTable || outFile != "" {
			status = cmd.ErrOrStderr()
		}

		dataPath := cfg.ResolveData(dataFile)
		display.FormatHeader(status, display.SessionInfo{
			ID:     sess.ID,
			Model:  modelName,
			Data:   dataPath,
			Engine: cfg.Script.Engine,
		})

		if err := sess.Load(ctx, dataPath); err != nil {
			return err
		}

		if modelName != "" {
			result, err := sess.RunModel(ctx, modelName)
			if err != nil {
				return err
			}
			display.FormatModelResult(status, result)
		}

		for _, file := range scriptFiles {
			result, err := sess.RunScriptFile(ctx, cfg.ResolveScript(file))
			if err != nil {
				return err
			}
			display.FormatScriptResult(status, file, result)
		}

		for _, code := range evalCode {
			result, err := sess.RunScript(ctx, code)
			if err != nil {
				return err
			}
			display.FormatScriptResult(status, "eval", result)
		}

		return writeOutput(cmd.OutOrStdout(), sess)
	},
}

func validateFormat(name, out string) error {
	switch name {
	case FormatTable, FormatTSV:
		return nil
	case FormatXLSX:
		if out == "" {
			return fmt.Errorf("xlsx output requires --out")
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %q (valid options: table, tsv, xlsx)", name)
	}
}

// writeOutput writes the report to --out, or stdout when none is given.
func writeOutput(stdout io.Writer, sess *session.Session) (err error) {
	w := stdout
	if outFile != "" {
		f, createErr := os.Create(outFile)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = f
	}

	switch format {
	case FormatTSV:
		return sess.WriteTSV(w)
	case FormatXLSX:
		return sess.WriteXLSX(w)
	default:
		display.FormatTable(w, sess.Store())
		return nil
	}
}

func init() {
	runCmd.Flags().StringVarP(&modelName, "model", "m", "", "Model to run (see 'modelrun models')")
	runCmd.Flags().StringVarP(&dataFile, "data", "d", "", "Data file to load")
	runCmd.Flags().StringArrayVarP(&scriptFiles, "script", "s", nil, "Script file to run after the model (repeatable)")
	runCmd.Flags().StringArrayVarP(&evalCode, "eval", "e", nil, "Script code to run after the script files (repeatable)")
	runCmd.Flags().StringVar(&engine, "engine", "", "Engine for --eval and unknown file extensions (js, tengo)")
	runCmd.Flags().StringVarP(&format, "format", "f", FormatTable, "Output format (table, tsv, xlsx)")
	runCmd.Flags().StringVarP(&outFile, "out", "o", "", "Write output to a file instead of stdout")
	runCmd.Flags().BoolVar(&lenient, "lenient", false, "Keep partial results when the model fails")
	_ = runCmd.MarkFlagRequired("data")

	rootCmd.AddCommand(runCmd)
}
