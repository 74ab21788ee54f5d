package mcp

import (
	"context"
	"errors"

	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
)

// NoInput is the input of tools without parameters.
type NoInput struct{}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() error {
	return errors.Join(
		s.registerRequestTools(),
		s.registerDatabaseTools(),
		s.registerPerformanceTools(),
		s.registerCacheTools(),
		s.registerContextTools(),
		s.registerJobTools(),
		s.registerTraceTools(),
		s.registerAnalysisTools(),
		s.registerUtilityTools(),
	)
}

// byID adapts an accessor taking a request ID.
func byID[T any](fn func(context.Context, string) (T, error)) func(context.Context, inspector.RequestInput) (any, error) {
	return func(ctx context.Context, in inspector.RequestInput) (any, error) {
		return fn(ctx, in.RequestID)
	}
}

// result adapts an accessor returning a concrete type.
func result[In, Out any](fn func(context.Context, In) (Out, error)) func(context.Context, In) (any, error) {
	return func(ctx context.Context, in In) (any, error) {
		return fn(ctx, in)
	}
}
