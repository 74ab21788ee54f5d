package mcp

import (
	"context"
	"errors"

	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
)

func (s *Server) registerTraceTools() error {
	insp := s.inspector
	return errors.Join(
		register(s, "get_call_graph",
			"Rebuild the call hierarchy of a request from its timeline. Events nest when one fully contains another.",
			result(insp.GetCallGraph)),
		register(s, "get_query_stack_trace",
			"Get the source file and line that issued a query, by its index in the request.",
			result(insp.GetQueryStackTrace)),
		register(s, "get_log_stack_trace",
			"Get the source file and line that wrote a log entry, by its index in the request.",
			result(insp.GetLogStackTrace)),
		register(s, "get_xdebug_profile",
			"Report Xdebug profile availability for a request. Clockwork does not store cachegrind output.",
			func(ctx context.Context, in inspector.RequestInput) (any, error) {
				return insp.GetXdebugProfile(ctx, in.RequestID), nil
			}),
		register(s, "get_xdebug_hotspots",
			"Report Xdebug hotspot availability for a request. Clockwork does not store cachegrind output.",
			func(ctx context.Context, in inspector.HotspotsInput) (any, error) {
				return insp.GetXdebugHotspots(ctx, in), nil
			}),
	)
}
