package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/cli/helpers"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
)

type statusRow struct {
	Field string `header:"FIELD"`
	Value string `header:"VALUE"`
}

func statusRows(st inspector.Status) []statusRow {
	rows := []statusRow{
		{Field: "Found", Value: strconv.FormatBool(st.Found)},
		{Field: "Driver", Value: st.Driver},
		{Field: "Location", Value: st.StoragePath},
		{Field: "Requests", Value: strconv.Itoa(st.RequestCount)},
	}
	if st.NewestRequest != nil {
		rows = append(rows, statusRow{Field: "Newest", Value: formatUnix(*st.NewestRequest)})
	}
	if st.OldestRequest != nil {
		rows = append(rows, statusRow{Field: "Oldest", Value: formatUnix(*st.OldestRequest)})
	}
	if st.StorageSizeBytes != nil {
		rows = append(rows, statusRow{Field: "Size", Value: formatBytes(*st.StorageSizeBytes)})
	}
	if st.DiskFreeBytes != nil {
		rows = append(rows, statusRow{Field: "Disk free", Value: formatBytes(*st.DiskFreeBytes)})
	}
	return rows
}

func newStatusCmd(env *environment) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which Clockwork storage is used and what it holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer errors.DeferClose(sess.logger, sess, "Failed to close storage")

			st, err := sess.inspector.GetStatus(ctx)
			if err != nil {
				return err
			}
			return helpers.Output(cmd, format, st, statusRows(st))
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatAuto, helpers.StandardFormats)

	return cmd
}

// formatBytes renders n with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
