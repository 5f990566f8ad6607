package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	DB    string
	Graph string
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recorded runs",
		Long:          `List runs recorded with "eventgraph run --db", oldest first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", rootOpts.Env.DB, "SQLite history database")
	cmd.Flags().StringVar(&opts.Graph, "graph", "", "only list runs of this graph")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only list the most recent runs (0 lists all)")

	return cmd
}

func runHistory(opts *HistoryOptions, out io.Writer) error {
	if opts.DB == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}

	store, err := history.NewSQLiteStore(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "open history", err)
	}
	defer store.Close()

	records, err := store.List(opts.Graph)
	if err != nil {
		return WrapExitError(ExitCommandError, "list history", err)
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[len(records)-opts.Limit:]
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tGRAPH\tSTATE\tNODES\tDEPTH\tDURATION\tRUN\tREASON")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Format(time.RFC3339),
			r.Graph,
			r.State,
			r.NodesInvoked,
			r.PeakDepth,
			r.Duration().Round(time.Microsecond),
			r.RunID,
			r.Reason,
		)
	}
	return tw.Flush()
}
