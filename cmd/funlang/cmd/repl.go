package cmd

import (
	"io"
	"path/filepath"

	"github.com/msto63/funlang/internal/tui/repl"
	"github.com/spf13/cobra"
)

var replNoHistory bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive REPL",
	Long: `Starts an interactive session. Definitions persist between inputs.

Commands inside the REPL:
  :reset    forget all variables and functions
  :globals  list top-level variables
  :clear    clear the transcript
  :quit     leave`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// output is shown in the transcript
		engine, err := newEngine(io.Discard)
		if err != nil {
			return err
		}
		history, err := openHistory(replNoHistory)
		if err != nil {
			return err
		}
		if history != nil {
			defer history.Close()
		}

		return repl.Run(repl.Config{
			Session:     engine.NewSession(),
			History:     history,
			HistoryFile: filepath.Join(appConfig.General.DataDir, "repl.json"),
			Timeout:     appConfig.Interpreter.Timeout.Duration,
		})
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().BoolVar(&replNoHistory, "no-history", false, "do not record evaluations")
}
