package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/cli/helpers"
	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
)

type requestRow struct {
	ID       string   `header:"ID"`
	Time     string   `header:"TIME"`
	Type     string   `header:"TYPE"`
	Method   string   `header:"METHOD"`
	URI      string   `header:"URI"`
	Status   *int     `header:"STATUS"`
	Duration *float64 `header:"DURATION (MS)"`
}

func requestRows(entries []clockwork.IndexEntry) []requestRow {
	rows := make([]requestRow, len(entries))
	for i, e := range entries {
		uri := e.URI
		if e.Type == clockwork.TypeCommand {
			uri = e.CommandName
		}
		rows[i] = requestRow{
			ID:       e.ID,
			Time:     formatUnix(e.Time),
			Type:     string(e.EffectiveType()),
			Method:   e.Method,
			URI:      uri,
			Status:   e.ResponseStatus,
			Duration: e.ResponseDuration,
		}
	}
	return rows
}

func formatUnix(ts float64) string {
	return time.UnixMilli(int64(ts * 1000)).Local().Format("2006-01-02 15:04:05")
}

func newRequestsCmd(env *environment) *cobra.Command {
	var (
		in        inspector.ListRequestsInput
		status    int
		limit     int
		timeFlags helpers.TimeFlags
		format    string
	)

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List captured requests, most recent first",
		Long: `List captured requests, most recent first.

The --filter flag takes a CEL expression over id, time, type, method, uri,
controller, status, duration and command, for example:

  clockwork-mcp requests --filter 'status >= 500 || duration > 1000.0'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := timeFlags.Parse(time.Now())
			if err != nil {
				return err
			}
			in.TimeRange = tr
			if cmd.Flags().Changed("status") {
				in.Status = &status
			}
			if cmd.Flags().Changed("limit") {
				in.Limit = &limit
			}

			ctx := cmd.Context()
			sess, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer errors.DeferClose(sess.logger, sess, "Failed to close storage")

			entries, err := sess.inspector.ListRequests(ctx, in)
			if err != nil {
				return err
			}
			return helpers.Output(cmd, format, entries, requestRows(entries))
		},
	}

	flags := cmd.Flags()
	flags.StringVar((*string)(&in.Type), "type", "", "Filter by type (request, command, queue-job, test)")
	flags.IntVar(&status, "status", 0, "Filter by HTTP status code")
	flags.StringVar(&in.URI, "uri", "", "Filter by URI substring")
	flags.StringVar(&in.Method, "method", "", "Filter by HTTP method")
	flags.StringVar(&in.Expr, "filter", "", "CEL filter expression")
	flags.IntVarP(&limit, "limit", "l", 0, "Max results (default 20, max 500)")
	flags.IntVar(&in.Offset, "offset", 0, "Number of results to skip")
	timeFlags.AddFlags(flags)
	helpers.AddFormatFlag(cmd, &format, helpers.FormatAuto, helpers.StandardFormats)

	cmd.AddCommand(newShowCmd(env))

	return cmd
}

func newShowCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|latest>",
		Short: "Print a full request as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer errors.DeferClose(sess.logger, sess, "Failed to close storage")

			var r *clockwork.Request
			if args[0] == "latest" {
				r, err = sess.inspector.GetLatestRequest(ctx)
			} else {
				r, err = sess.inspector.GetRequest(ctx, args[0])
			}
			if err != nil {
				return err
			}
			if r == nil {
				return fmt.Errorf("request %s not found", args[0])
			}
			return helpers.Output(cmd, string(helpers.FormatJSON), r, nil)
		},
	}
}
