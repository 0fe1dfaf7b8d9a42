package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	"github.com/msto63/funlang/internal/history/store"
	"github.com/msto63/funlang/internal/interpreter/server"
	"github.com/spf13/cobra"
)

var (
	runRemote    string
	runNoHistory bool
	runStats     bool
)

var runCmd = &cobra.Command{
	Use:   "run <file|->",
	Short: "Run a program",
	Long: `Runs a program file. With "-" the program is read from stdin.

Program output goes to stdout. On failure the error is printed as
"error: line N: message" and the exit status is 1.

Examples:
  funlang run fib.fun
  echo 'println(6 * 7)' | funlang run -
  funlang run --remote 127.0.0.1:9400 fib.fun`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runRemote, "remote", "", "run on the gRPC server at host:port")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the run")
	runCmd.Flags().BoolVar(&runStats, "stats", false, "print run id and duration to stderr")
}

func runProgram(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runRemote != "" {
		return runOnServer(ctx, cmd, src)
	}

	// output is streamed while the program runs
	svc, cleanup, err := newService(cmd.OutOrStdout(), runNoHistory)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := svc.Run(ctx, src, store.OriginCLI)
	if err != nil {
		return err
	}
	if runStats {
		fmt.Fprintf(cmd.ErrOrStderr(), "run %s finished in %s\n", run.ID, run.Duration)
	}
	if run.Failed() {
		return mdwerror.New(run.Error).WithCode(mdwerror.Code(run.ErrorCode))
	}
	return nil
}

func runOnServer(ctx context.Context, cmd *cobra.Command, src string) error {
	client, err := server.Dial(runRemote, appConfig.Interpreter.Timeout.Duration, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Run(ctx, src)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), resp.Output)
	if runStats {
		fmt.Fprintf(cmd.ErrOrStderr(), "run %s finished in %dms\n", resp.RunID, resp.DurationMS)
	}
	return resp.Err()
}
