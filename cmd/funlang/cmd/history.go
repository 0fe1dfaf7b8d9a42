package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/msto63/funlang/internal/history/store"
	"github.com/spf13/cobra"
)

var (
	historyLimit     int
	historyFailed    bool
	historyOrigin    string
	historyJSON      bool
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Long: `Lists recorded runs, newest first.

Examples:
  funlang history --limit 5
  funlang history --failed --origin grpc
  funlang history show <id>
  funlang history prune --older-than 168h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := requireHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		runs, err := history.List(cmd.Context(), store.Filter{
			Limit:      historyLimit,
			OnlyFailed: historyFailed,
			Origin:     store.Origin(historyOrigin),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			return writeJSON(out, runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "no runs recorded")
			return nil
		}
		for _, run := range runs {
			fmt.Fprintln(out, run.String())
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := requireHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		run, err := history.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			return writeJSON(out, run)
		}
		fmt.Fprintf(out, "id:       %s\n", run.ID)
		fmt.Fprintf(out, "time:     %s\n", run.CreatedAt.Local().Format(time.RFC3339))
		fmt.Fprintf(out, "origin:   %s\n", run.Origin)
		fmt.Fprintf(out, "duration: %s\n", run.Duration)
		if run.Failed() {
			fmt.Fprintf(out, "error:    %s (%s)\n", run.Error, run.ErrorCode)
		}
		fmt.Fprintf(out, "--- source\n%s\n", run.Source)
		fmt.Fprintf(out, "--- output\n%s", run.Output)
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := requireHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		olderThan := historyOlderThan
		if olderThan == 0 {
			olderThan = appConfig.History.Retention.Duration
		}
		deleted, err := history.Prune(cmd.Context(), olderThan)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d runs\n", deleted)
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := requireHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		stats, err := history.Stats(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			return writeJSON(out, stats)
		}
		fmt.Fprintf(out, "total:  %d\nfailed: %d\n", stats.Total, stats.Failed)

		origins := make([]string, 0, len(stats.ByOrigin))
		for origin := range stats.ByOrigin {
			origins = append(origins, string(origin))
		}
		sort.Strings(origins)
		for _, origin := range origins {
			fmt.Fprintf(out, "  %-5s %d\n", origin, stats.ByOrigin[store.Origin(origin)])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyPruneCmd, historyStatsCmd)

	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "print JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only failed runs")
	historyCmd.Flags().StringVar(&historyOrigin, "origin", "", "only runs from cli, grpc, ws or repl")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 0, "age limit (default: configured retention)")
}

func requireHistory() (store.Store, error) {
	if !appConfig.HistoryEnabled() {
		return nil, errors.New("history is disabled in the configuration")
	}
	return openHistory(false)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
