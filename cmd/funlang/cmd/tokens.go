package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var tokensJSON bool

var tokensCmd = &cobra.Command{
	Use:   "tokens <file|->",
	Short: "Print the tokens of a program",
	Long: `Prints one token per line as "line kind text".

Examples:
  funlang tokens fib.fun
  funlang tokens --json fib.fun`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}
		engine, err := newEngine(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		tokens, err := engine.Tokenize(src)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if tokensJSON {
			type jsonToken struct {
				Line int    `json:"line"`
				Kind string `json:"kind"`
				Text string `json:"text"`
			}
			list := make([]jsonToken, len(tokens))
			for i, tok := range tokens {
				list[i] = jsonToken{Line: tok.Line, Kind: tok.Kind.String(), Text: tok.Text}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		for _, tok := range tokens {
			fmt.Fprintf(out, "%d %s %s\n", tok.Line, tok.Kind, tok.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "print JSON")
}
