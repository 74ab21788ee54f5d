package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/analysis"
	"github.com/coral-mesh/clockwork-mcp/internal/cli/helpers"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
	"github.com/coral-mesh/clockwork-mcp/internal/scope"
)

func newAnalyzeCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run cross-request analyses",
		Long: `Run an analysis over a scope of captured HTTP requests.

Without scope flags only the latest HTTP request is analyzed. Use --count,
--since or --all to widen the scope (at most 100 requests), --uri to narrow
it, or --request to pin a single request.`,
	}

	cmd.AddCommand(newAnalyzeSlowQueriesCmd(env))
	cmd.AddCommand(newAnalyzeNPlusOneCmd(env))
	cmd.AddCommand(newAnalyzeExceptionsCmd(env))
	cmd.AddCommand(newAnalyzeRoutesCmd(env))
	cmd.AddCommand(newAnalyzeMemoryCmd(env))

	return cmd
}

// analysisCmd builds an analyze subcommand: run receives the resolved scope
// and returns the full report plus its table rows.
func analysisCmd(env *environment, use, short string, run func(ctx context.Context, insp *inspector.Inspector, s scope.Scope) (any, any, error)) *cobra.Command {
	var (
		scopeFlags helpers.ScopeFlags
		format     string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scopeFlags.Scope()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sess, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer errors.DeferClose(sess.logger, sess, "Failed to close storage")

			report, rows, err := run(ctx, sess.inspector, s)
			if err != nil {
				return err
			}
			return helpers.Output(cmd, format, report, rows)
		},
	}

	scopeFlags.AddFlags(cmd.Flags())
	helpers.AddFormatFlag(cmd, &format, helpers.FormatAuto, helpers.StandardFormats)

	return cmd
}

type slowQueryRow struct {
	Pattern     string  `header:"PATTERN"`
	Occurrences int     `header:"COUNT"`
	Avg         float64 `header:"AVG (MS)"`
	Max         float64 `header:"MAX (MS)"`
	Total       float64 `header:"TOTAL (MS)"`
	Requests    int     `header:"REQUESTS"`
}

func newAnalyzeSlowQueriesCmd(env *environment) *cobra.Command {
	var threshold float64
	var limit int

	cmd := analysisCmd(env, "slow-queries", "Group slow database queries by pattern",
		func(ctx context.Context, insp *inspector.Inspector, s scope.Scope) (any, any, error) {
			in := inspector.SlowQueryInput{Scope: s}
			if threshold > 0 {
				in.Threshold = &threshold
			}
			in.Limit = &limit
			report, err := insp.AnalyzeSlowQueries(ctx, in)
			if err != nil {
				return nil, nil, err
			}
			rows := make([]slowQueryRow, len(report.Queries))
			for i, q := range report.Queries {
				rows[i] = slowQueryRow{
					Pattern:     truncate(q.Pattern, 80),
					Occurrences: q.Occurrences,
					Avg:         q.AvgDuration,
					Max:         q.MaxDuration,
					Total:       q.TotalDuration,
					Requests:    len(q.AffectedRequests),
				}
			}
			return report, rows, nil
		})

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Slow query threshold in ms (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Max patterns to return")
	return cmd
}

type nPlusOneRow struct {
	Pattern     string  `header:"PATTERN"`
	Occurrences int     `header:"OCCURRENCES"`
	PerRequest  float64 `header:"PER REQUEST"`
	Requests    int     `header:"REQUESTS"`
	Total       float64 `header:"TOTAL (MS)"`
}

func newAnalyzeNPlusOneCmd(env *environment) *cobra.Command {
	var threshold int

	cmd := analysisCmd(env, "n-plus-one", "Detect repeated query patterns (N+1)",
		func(ctx context.Context, insp *inspector.Inspector, s scope.Scope) (any, any, error) {
			in := inspector.NPlusOneInput{Scope: s}
			if threshold > 0 {
				in.Threshold = &threshold
			}
			report, err := insp.DetectNPlusOne(ctx, in)
			if err != nil {
				return nil, nil, err
			}
			rows := make([]nPlusOneRow, len(report.Patterns))
			for i, p := range report.Patterns {
				rows[i] = nPlusOneRow{
					Pattern:     truncate(p.Pattern, 80),
					Occurrences: p.TotalOccurrences,
					PerRequest:  p.AvgOccurrencesPerRequest,
					Requests:    p.RequestsAffected,
					Total:       p.TotalDuration,
				}
			}
			return report, rows, nil
		})

	cmd.Flags().IntVar(&threshold, "threshold", 0, "Min repetitions within a request (default from config)")
	return cmd
}

type exceptionRow struct {
	Message string `header:"MESSAGE"`
	Level   string `header:"LEVEL"`
	Count   int    `header:"COUNT"`
}

func newAnalyzeExceptionsCmd(env *environment) *cobra.Command {
	var (
		noGroup bool
		limit   int
	)

	cmd := analysisCmd(env, "exceptions", "Group error and critical log entries",
		func(ctx context.Context, insp *inspector.Inspector, s scope.Scope) (any, any, error) {
			in := inspector.ExceptionsInput{Scope: s}
			if noGroup {
				group := false
				in.GroupByMessage = &group
			}
			if limit > 0 {
				in.Limit = &limit
			}
			report, err := insp.AnalyzeExceptions(ctx, in)
			if err != nil {
				return nil, nil, err
			}
			rows := make([]exceptionRow, len(report.Exceptions))
			for i, g := range report.Exceptions {
				rows[i] = exceptionRow{Message: truncate(g.NormalizedMessage, 100), Level: g.Level, Count: g.Count}
			}
			return report, rows, nil
		})

	cmd.Flags().BoolVar(&noGroup, "no-group", false, "Group by exact message instead of normalized message")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max groups to return (default 20)")
	return cmd
}

type routeRow struct {
	Route   string   `header:"ROUTE"`
	Samples int      `header:"SAMPLES"`
	Avg     float64  `header:"AVG (MS)"`
	P50     float64  `header:"P50"`
	P95     float64  `header:"P95"`
	P99     float64  `header:"P99"`
	Max     float64  `header:"MAX"`
	Memory  *float64 `header:"AVG MEM (MB)"`
}

func newAnalyzeRoutesCmd(env *environment) *cobra.Command {
	var (
		groupBy    string
		minSamples int
	)

	cmd := analysisCmd(env, "routes", "Latency percentiles per route",
		func(ctx context.Context, insp *inspector.Inspector, s scope.Scope) (any, any, error) {
			in := inspector.RoutesInput{Scope: s, GroupBy: analysis.GroupBy(groupBy)}
			if minSamples > 0 {
				in.MinSamples = &minSamples
			}
			report, err := insp.AnalyzeRoutePerformance(ctx, in)
			if err != nil {
				return nil, nil, err
			}
			rows := make([]routeRow, len(report.Routes))
			for i, r := range report.Routes {
				rows[i] = routeRow{
					Route:   r.Route,
					Samples: r.Samples,
					Avg:     r.AvgDuration,
					P50:     r.P50,
					P95:     r.P95,
					P99:     r.P99,
					Max:     r.MaxDuration,
					Memory:  r.AvgMemoryMB,
				}
			}
			return report, rows, nil
		})

	cmd.Flags().StringVar(&groupBy, "group-by", string(analysis.GroupByURI), "Group by uri, route or controller")
	cmd.Flags().IntVar(&minSamples, "min-samples", 0, "Minimum samples per route (default 1)")
	return cmd
}

type memoryRow struct {
	RequestID string  `header:"REQUEST"`
	Type      string  `header:"ISSUE"`
	MemoryMB  float64 `header:"MEMORY (MB)"`
	Details   string  `header:"DETAILS"`
}

func newAnalyzeMemoryCmd(env *environment) *cobra.Command {
	var (
		thresholdMB float64
		noGrowth    bool
	)

	cmd := analysisCmd(env, "memory", "Detect high memory usage and growth",
		func(ctx context.Context, insp *inspector.Inspector, s scope.Scope) (any, any, error) {
			in := inspector.MemoryInput{Scope: s}
			if thresholdMB > 0 {
				in.ThresholdMB = &thresholdMB
			}
			if noGrowth {
				growth := false
				in.DetectGrowth = &growth
			}
			report, err := insp.DetectMemoryIssues(ctx, in)
			if err != nil {
				return nil, nil, err
			}
			rows := make([]memoryRow, len(report.Issues))
			for i, issue := range report.Issues {
				rows[i] = memoryRow{RequestID: issue.RequestID, Type: issue.Type, MemoryMB: issue.MemoryMB, Details: issue.Details}
			}
			return report, rows, nil
		})

	cmd.Flags().Float64Var(&thresholdMB, "threshold", 0, "Memory threshold in MB (default from config)")
	cmd.Flags().BoolVar(&noGrowth, "no-growth", false, "Skip growth detection")
	return cmd
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
