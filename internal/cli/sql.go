package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/cli/helpers"
	"github.com/coral-mesh/clockwork-mcp/internal/duckdb"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
	"github.com/coral-mesh/clockwork-mcp/internal/logging"
)

func newSQLCmd(env *environment) *cobra.Command {
	var (
		format  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sql <file.duckdb> <query>",
		Short: "Run a SQL query against an exported snapshot",
		Long: `Run a one-shot SQL query against a DuckDB snapshot written by 'export'.

Examples:
  # Most expensive query patterns
  clockwork-mcp sql clockwork.duckdb "SELECT pattern, count(*) n, sum(duration_ms) total FROM queries GROUP BY 1 ORDER BY total DESC LIMIT 10"

  # Error logs per route (CSV format)
  clockwork-mcp sql clockwork.duckdb "SELECT r.uri, count(*) FROM logs l JOIN requests r ON r.id = l.request_id WHERE l.level = 'error' GROUP BY 1" -o csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, query := args[0], args[1]
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("snapshot %s not found: %w", path, err)
			}

			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}
			logger := logging.Component(env.logger(cfg), "sql")

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := duckdb.OpenDB(path + "?access_mode=read_only")
			if err != nil {
				return fmt.Errorf("failed to open snapshot: %w", err)
			}
			defer errors.DeferClose(logger, db, "Failed to close snapshot")

			records, grid, err := runQuery(ctx, db, query)
			if err != nil {
				return err
			}
			return helpers.Output(cmd, format, records, grid)
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatAuto, helpers.StandardFormats)
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Query timeout")

	return cmd
}

// runQuery executes query and returns its rows both as JSON records and as a grid.
func runQuery(ctx context.Context, db *sql.DB, query string) ([]map[string]any, helpers.Grid, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, helpers.Grid{}, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, helpers.Grid{}, fmt.Errorf("failed to get columns: %w", err)
	}

	records := make([]map[string]any, 0)
	grid := helpers.Grid{Headers: columns, Rows: make([][]string, 0)}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, helpers.Grid{}, fmt.Errorf("failed to scan row: %w", err)
		}

		record := make(map[string]any, len(columns))
		cells := make([]string, len(columns))
		for i, col := range columns {
			record[col] = values[i]
			cells[i] = formatSQLValue(values[i])
		}
		records = append(records, record)
		grid.Rows = append(grid.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.Grid{}, fmt.Errorf("failed to read rows: %w", err)
	}
	return records, grid, nil
}

// formatSQLValue formats a scanned value for table or CSV output.
func formatSQLValue(val any) string {
	if val == nil {
		return "NULL"
	}

	switch v := val.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
