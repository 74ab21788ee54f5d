package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/cli/helpers"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
	"github.com/coral-mesh/clockwork-mcp/internal/export"
	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
)

func newCallGraphCmd(env *environment) *cobra.Command {
	var (
		minDuration float64
		slow        float64
		pprofPath   string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "callgraph <id>",
		Short: "Show the call hierarchy rebuilt from a request timeline",
		Long: `Rebuild the call hierarchy of a request from its timeline events.

By default the hierarchy is printed as a tree. With --pprof the self time of
every node is written as a gzip'd pprof profile, viewable with:

  go tool pprof -http=:8080 callgraph.pb.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer errors.DeferClose(sess.logger, sess, "Failed to close storage")

			in := inspector.CallGraphInput{RequestID: args[0]}
			if minDuration > 0 {
				in.MinDuration = &minDuration
			}
			roots, err := sess.inspector.GetCallGraph(ctx, in)
			if err != nil {
				return err
			}

			if pprofPath != "" {
				//nolint:gosec // G304: output path comes from the user.
				f, err := os.Create(pprofPath)
				if err != nil {
					return fmt.Errorf("failed to create profile file: %w", err)
				}
				defer errors.DeferClose(sess.logger, f, "Failed to close profile file")
				if err := export.WriteCallGraphProfile(f, roots); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote pprof profile to %s\n", pprofPath)
				return err
			}

			if asJSON || !helpers.IsTerminal(cmd.OutOrStdout()) {
				return helpers.Output(cmd, string(helpers.FormatJSON), roots, nil)
			}

			var total float64
			for _, r := range roots {
				total += r.Duration
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), helpers.RenderCallGraph(roots, total, slow))
			return err
		},
	}

	cmd.Flags().Float64Var(&minDuration, "min-duration", 0, "Drop events shorter than this many ms")
	cmd.Flags().Float64Var(&slow, "slow", 100, "Mark nodes taking at least this many ms")
	cmd.Flags().StringVar(&pprofPath, "pprof", "", "Write a gzip'd pprof profile to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the call graph as JSON")

	return cmd
}
