package mcp

import (
	"errors"
)

const scopeHelp = " Scope defaults to the latest HTTP request; use requestId, count, since, all or uri to widen it (at most 100 requests)."

func (s *Server) registerAnalysisTools() error {
	insp := s.inspector
	return errors.Join(
		register(s, "analyze_slow_queries",
			"Find slow database queries above a threshold and group them by normalized pattern."+scopeHelp,
			result(insp.AnalyzeSlowQueries)),
		register(s, "detect_n_plus_one",
			"Detect N+1 query patterns: the same normalized query repeated within a request."+scopeHelp,
			result(insp.DetectNPlusOne)),
		register(s, "analyze_exceptions",
			"Group error and critical log entries by normalized message."+scopeHelp,
			result(insp.AnalyzeExceptions)),
		register(s, "analyze_route_performance",
			"Compute latency percentiles (p50, p95, p99) per URI, route or controller."+scopeHelp,
			result(insp.AnalyzeRoutePerformance)),
		register(s, "detect_memory_issues",
			"Flag requests with high peak memory and memory growth across requests."+scopeHelp,
			result(insp.DetectMemoryIssues)),
	)
}
