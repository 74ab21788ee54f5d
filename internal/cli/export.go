package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/cli/helpers"
	"github.com/coral-mesh/clockwork-mcp/internal/duckdb"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
	"github.com/coral-mesh/clockwork-mcp/internal/export"
)

func newExportCmd(env *environment) *cobra.Command {
	var scopeFlags helpers.ScopeFlags

	cmd := &cobra.Command{
		Use:   "export <file.duckdb>",
		Short: "Snapshot requests into a DuckDB database for ad-hoc SQL",
		Long: `Write the selected requests into the requests, queries and logs tables of a
DuckDB database file, replacing earlier snapshots. Without scope flags
every captured HTTP request is exported (at most 100).

Example:
  clockwork-mcp export clockwork.duckdb --since 1h
  duckdb clockwork.duckdb "SELECT pattern, count(*) FROM queries GROUP BY 1 ORDER BY 2 DESC"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scopeFlags.Scope()
			if err != nil {
				return err
			}
			if s.RequestID == "" && s.Count == nil && s.Since == "" {
				s.All = true
			}

			ctx := cmd.Context()
			sess, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer errors.DeferClose(sess.logger, sess, "Failed to close storage")

			requests, meta, err := sess.inspector.Requests(ctx, s)
			if err != nil {
				return err
			}

			db, err := duckdb.OpenDB(args[0])
			if err != nil {
				return fmt.Errorf("failed to open duckdb database %s: %w", args[0], err)
			}
			defer errors.DeferClose(sess.logger, db, "Failed to close duckdb database")

			stats, err := export.Snapshot(ctx, db, requests, sess.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "Exported %d requests, %d queries and %d log entries to %s\n",
				stats.Requests, stats.Queries, stats.Logs, args[0]); err != nil {
				return err
			}
			if meta.Capped {
				_, err = fmt.Fprintf(out, "Only the %d most recent of %d matching requests were exported.\n",
					meta.RequestsAnalyzed, meta.TotalMatched)
			}
			return err
		},
	}

	scopeFlags.AddFlags(cmd.Flags())

	return cmd
}
