package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/cli/helpers"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
	"github.com/coral-mesh/clockwork-mcp/internal/scope"
)

func newReportCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "report [id|latest]",
		Short: "Render a Markdown debugging report for one request",
		Long: `Render a Markdown report for one request: its flow, performance figures,
slow queries, N+1 patterns and error logs. The report is styled on a
terminal and printed as plain Markdown otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer errors.DeferClose(sess.logger, sess, "Failed to close storage")

			id := "latest"
			if len(args) == 1 {
				id = args[0]
			}
			if id == "latest" {
				latest, err := sess.inspector.GetLatestRequest(ctx)
				if err != nil {
					return err
				}
				if latest == nil {
					return fmt.Errorf("no requests captured yet")
				}
				id = latest.ID
			}

			md, err := buildReport(ctx, sess.inspector, id)
			if err != nil {
				return err
			}
			return helpers.RenderMarkdown(cmd.OutOrStdout(), md)
		},
	}
}

// buildReport renders the Markdown report of request id.
func buildReport(ctx context.Context, insp *inspector.Inspector, id string) (string, error) {
	r, err := insp.GetRequest(ctx, id)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", fmt.Errorf("request %s not found", id)
	}
	flow, err := insp.ExplainRequestFlow(ctx, id)
	if err != nil {
		return "", err
	}

	perf, err := insp.GetPerformanceSummary(ctx, inspector.PerformanceInput{RequestID: id})
	if err != nil {
		return "", err
	}
	slow, err := insp.GetQueries(ctx, inspector.QueriesInput{RequestID: id, Slow: true})
	if err != nil {
		return "", err
	}
	nPlusOne, err := insp.DetectNPlusOne(ctx, inspector.NPlusOneInput{Scope: scope.Scope{RequestID: id}})
	if err != nil {
		return "", err
	}
	errorLogs, err := insp.GetLogs(ctx, inspector.LogsInput{RequestID: id, Level: "error"})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	title := strings.TrimSpace(flow.Method + " " + flow.URI)
	if title == "" {
		title = id
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **Request:** `%s`\n", flow.ID)
	if flow.Controller != "" {
		fmt.Fprintf(&b, "- **Controller:** `%s`\n", flow.Controller)
	}
	if flow.Status != nil {
		fmt.Fprintf(&b, "- **Status:** %d\n", *flow.Status)
	}
	if flow.Duration != nil {
		fmt.Fprintf(&b, "- **Duration:** %.2f ms\n", *flow.Duration)
	}
	if flow.MemoryMB != nil {
		fmt.Fprintf(&b, "- **Memory:** %.2f MB\n", *flow.MemoryMB)
	}
	if len(flow.Middleware) > 0 {
		fmt.Fprintf(&b, "- **Middleware:** %s\n", strings.Join(flow.Middleware, " → "))
	}

	b.WriteString("\n## Performance\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Queries | %d (%.2f ms) |\n", flow.QueryCount, flow.TotalQueryDuration)
	fmt.Fprintf(&b, "| Cache hits | %d / %d reads |\n", perf.CacheHits, perf.CacheReads)
	if perf.CacheReads > 0 {
		fmt.Fprintf(&b, "| Cache hit ratio | %.0f%% |\n", perf.CacheHitRatio*100)
	}

	b.WriteString("\n## Slow queries\n\n")
	if len(slow) == 0 {
		b.WriteString("None.\n")
	}
	for _, q := range slow {
		fmt.Fprintf(&b, "- %.2f ms: `%s`\n", q.Duration, oneLine(q.Query))
	}

	b.WriteString("\n## N+1 patterns\n\n")
	if len(nPlusOne.Patterns) == 0 {
		b.WriteString("None.\n")
	}
	for _, p := range nPlusOne.Patterns {
		fmt.Fprintf(&b, "- %d× `%s` (%.2f ms total)\n", p.TotalOccurrences, oneLine(p.Pattern), p.TotalDuration)
	}

	b.WriteString("\n## Errors\n\n")
	if len(errorLogs) == 0 {
		b.WriteString("None.\n")
	}
	for _, l := range errorLogs {
		fmt.Fprintf(&b, "- **%s** %s\n", l.Level, oneLine(l.Message))
	}

	return b.String(), nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
