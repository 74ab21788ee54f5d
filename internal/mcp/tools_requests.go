package mcp

import (
	"context"
	"errors"
)

func (s *Server) registerRequestTools() error {
	insp := s.inspector
	return errors.Join(
		register(s, "list_requests",
			"List recent Clockwork requests with optional filtering by type, status, URI, method, time range or a CEL expression. Most recent first.",
			result(insp.ListRequests)),
		register(s, "get_request",
			"Get full details of a specific request by ID. Returns null when the request does not exist.",
			byID(insp.GetRequest)),
		register(s, "get_latest_request",
			"Get the most recent Clockwork request.",
			func(ctx context.Context, _ NoInput) (any, error) { return insp.GetLatestRequest(ctx) }),
		register(s, "search_requests",
			"Search requests by controller, URI, status, or duration range.",
			result(insp.SearchRequests)),
	)
}

func (s *Server) registerDatabaseTools() error {
	insp := s.inspector
	return errors.Join(
		register(s, "get_queries",
			"Get database queries for a request in execution order, optionally only the slow ones.",
			result(insp.GetQueries)),
		register(s, "get_query_stats",
			"Get aggregate query statistics (totals, average, slowest, counts by statement type) for a request or for every HTTP request in a time range.",
			result(insp.GetQueryStats)),
	)
}

func (s *Server) registerPerformanceTools() error {
	insp := s.inspector
	return errors.Join(
		register(s, "get_performance_summary",
			"Get performance overview (duration, memory, database and cache figures) for a request or a time range.",
			result(insp.GetPerformanceSummary)),
		register(s, "get_timeline",
			"Get timeline events for a request.",
			byID(insp.GetTimeline)),
		register(s, "compare_requests",
			"Compare duration, query count and memory of two requests side by side.",
			result(insp.CompareRequests)),
	)
}

func (s *Server) registerCacheTools() error {
	insp := s.inspector
	return errors.Join(
		register(s, "get_cache_operations",
			"Get cache operations for a request.",
			byID(insp.GetCacheOperations)),
		register(s, "get_cache_stats",
			"Get cache statistics (hits, misses, writes, deletes, hit ratio) for a request or a time range.",
			result(insp.GetCacheStats)),
		register(s, "get_redis_commands",
			"Get Redis commands for a request.",
			byID(insp.GetRedisCommands)),
	)
}
