package cmd

import (
	"fmt"
	"runtime"

	"github.com/msto63/funlang/pkg/core/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.String())
		fmt.Fprintf(out, "  Interpreter: %s\n", version.Interpreter)
		fmt.Fprintf(out, "  History:     %s\n", version.History)
		fmt.Fprintf(out, "  Go Version:  %s\n", runtime.Version())
		fmt.Fprintf(out, "  OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
