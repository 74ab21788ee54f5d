package mcp

import (
	"context"
	"errors"
)

func (s *Server) registerUtilityTools() error {
	insp := s.inspector
	return errors.Join(
		register(s, "get_clockwork_status",
			"Check Clockwork storage status and statistics: driver, location, request count and time span.",
			func(ctx context.Context, _ NoInput) (any, error) { return insp.GetStatus(ctx) }),
		register(s, "explain_request_flow",
			"Get high-level summary of what happened in a request.",
			byID(insp.ExplainRequestFlow)),
	)
}
