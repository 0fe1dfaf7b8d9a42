package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/msto63/funlang/foundation/lang/ast"
	"github.com/spf13/cobra"
)

var astJSON bool

var astCmd = &cobra.Command{
	Use:   "ast <file|->",
	Short: "Print the syntax tree of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}
		engine, err := newEngine(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		file, err := engine.Parse(src)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if astJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ast.Dump(file))
		}
		fmt.Fprint(out, ast.Print(file))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(astCmd)
	astCmd.Flags().BoolVar(&astJSON, "json", false, "print JSON")
}
