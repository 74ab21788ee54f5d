package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/config"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
	"github.com/coral-mesh/clockwork-mcp/internal/logging"
	"github.com/coral-mesh/clockwork-mcp/internal/mcp"
	"github.com/coral-mesh/clockwork-mcp/internal/metrics"
)

func newServeCmd(env *environment) *cobra.Command {
	var (
		transport string
		addr      string
		tools     []string
		audit     bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server over stdio (default) or server-sent events.

In stdio mode the protocol owns stdout; logs go to stderr. In SSE mode the
server also exposes Prometheus metrics at /metrics and a /healthz probe.

Example MCP client configuration:

  {
    "mcpServers": {
      "clockwork": {
        "command": "clockwork-mcp",
        "args": ["serve"],
        "env": {"CLOCKWORK_PROJECT_PATH": "/path/to/laravel"}
      }
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer errors.DeferClose(sess.logger, sess, "Failed to close storage")

			server := sess.cfg.Server
			if cmd.Flags().Changed("transport") {
				server.Transport = transport
			}
			if cmd.Flags().Changed("addr") {
				server.Addr = addr
			}
			if cmd.Flags().Changed("tools") {
				server.EnabledTools = tools
			}
			if audit {
				server.AuditEnabled = true
			}
			if noMetrics {
				server.MetricsEnabled = false
			}

			return serve(ctx, cmd, sess, server)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", config.TransportStdio, "Transport (stdio, sse)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address for the sse transport")
	cmd.Flags().StringSliceVar(&tools, "tools", nil, "Only register these tools (comma-separated)")
	cmd.Flags().BoolVar(&audit, "audit", false, "Log every tool call with its arguments")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Disable Prometheus metrics")

	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, sess *session, cfg config.ServerConfig) error {
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	server, err := newMCPServer(sess, cfg, m)
	if err != nil {
		return err
	}

	sess.logger.Info().
		Str("driver", sess.store.Driver()).
		Str("location", sess.store.Location()).
		Str("transport", cfg.Transport).
		Int("tools", len(server.ListToolNames())).
		Msg("Clockwork MCP server ready")

	switch cfg.Transport {
	case config.TransportSSE:
		return server.ServeSSE(ctx, cfg.Addr)
	case config.TransportStdio:
		return server.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	default:
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func newMCPServer(sess *session, cfg config.ServerConfig, m *metrics.Metrics) (*mcp.Server, error) {
	return mcp.New(sess.inspector, mcp.Config{
		EnabledTools: cfg.EnabledTools,
		AuditEnabled: cfg.AuditEnabled,
	}, logging.Component(sess.logger, "mcp"), m)
}
