package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/cli/helpers"
	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
)

func newCallCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [arguments-json]",
		Short: "Call an MCP tool once and print its result",
		Long: `Call an MCP tool directly, without an MCP client, and print its JSON result.

Examples:
  clockwork-mcp call get_latest_request
  clockwork-mcp call analyze_slow_queries '{"count": 20, "threshold": 50}'
  clockwork-mcp call get_logs '{"requestId": "1700000000-1234-5678", "level": "error"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer errors.DeferClose(sess.logger, sess, "Failed to close storage")

			server, err := newMCPServer(sess, sess.cfg.Server, nil)
			if err != nil {
				return err
			}

			arguments := "{}"
			if len(args) == 2 {
				arguments = args[1]
			}
			out, err := server.ExecuteTool(ctx, args[0], arguments)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

type toolRow struct {
	Name        string `header:"TOOL" json:"name"`
	Description string `header:"DESCRIPTION" json:"description"`
}

func newToolsCmd(env *environment) *cobra.Command {
	var (
		format  string
		schemas bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools the server registers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}
			logger := env.logger(cfg)
			// Tool registration needs no storage access.
			sess := &session{cfg: cfg, logger: logger, inspector: inspector.New(offlineStorage{}, inspector.Config{}, logger)}
			server, err := newMCPServer(sess, cfg.Server, nil)
			if err != nil {
				return err
			}

			meta := server.GetToolMetadata()
			sort.Slice(meta, func(i, j int) bool { return meta[i].Name < meta[j].Name })

			if schemas {
				return helpers.Output(cmd, string(helpers.FormatJSON), meta, nil)
			}
			rows := make([]toolRow, len(meta))
			for i, m := range meta {
				rows[i] = toolRow{Name: m.Name, Description: firstLine(m.Description)}
			}
			return helpers.Output(cmd, format, rows, rows)
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatAuto, helpers.StandardFormats)
	cmd.Flags().BoolVar(&schemas, "schemas", false, "Print every tool with its JSON input schema")

	return cmd
}

// offlineStorage backs an inspector that only registers tools.
type offlineStorage struct{}

func (offlineStorage) Find(context.Context, string) (*clockwork.Request, error) { return nil, nil }

func (offlineStorage) FindMany(context.Context, []string) ([]*clockwork.Request, error) {
	return []*clockwork.Request{}, nil
}

func (offlineStorage) Latest(context.Context) (*clockwork.Request, error) { return nil, nil }

func (offlineStorage) List(context.Context) ([]clockwork.IndexEntry, error) {
	return []clockwork.IndexEntry{}, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
