// Package cli implements the clockwork-mcp command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the clockwork-mcp command tree.
func NewRootCmd() *cobra.Command {
	env := &environment{}

	rootCmd := &cobra.Command{
		Use:   "clockwork-mcp",
		Short: "Inspect Clockwork request traces from an AI agent or the terminal",
		Long: `clockwork-mcp exposes the request traces captured by the Clockwork PHP
profiler (database queries, cache operations, logs, timelines) as Model
Context Protocol tools, and as CLI commands for the same analyses.

Storage is located automatically from the current Laravel project, or set
explicitly with --storage-path, --project or the CLOCKWORK_* environment
variables. Run 'clockwork-mcp serve' from your MCP client configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	env.addFlags(rootCmd)

	rootCmd.AddCommand(newServeCmd(env))
	rootCmd.AddCommand(newCallCmd(env))
	rootCmd.AddCommand(newToolsCmd(env))
	rootCmd.AddCommand(newRequestsCmd(env))
	rootCmd.AddCommand(newAnalyzeCmd(env))
	rootCmd.AddCommand(newReportCmd(env))
	rootCmd.AddCommand(newCallGraphCmd(env))
	rootCmd.AddCommand(newExportCmd(env))
	rootCmd.AddCommand(newSQLCmd(env))
	rootCmd.AddCommand(newStatusCmd(env))
	rootCmd.AddCommand(newConfigCmd(env))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
