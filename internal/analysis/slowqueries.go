package analysis

import (
	"sort"
	"strings"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// SlowQueries returns the queries taking at least thresholdMs, slowest first.
// Queries with equal durations keep their execution order.
func SlowQueries(queries []clockwork.DatabaseQuery, thresholdMs float64) []clockwork.DatabaseQuery {
	slow := make([]clockwork.DatabaseQuery, 0)
	for _, q := range queries {
		if q.Duration >= thresholdMs {
			slow = append(slow, q)
		}
	}
	sort.SliceStable(slow, func(i, j int) bool {
		return slow[i].Duration > slow[j].Duration
	})
	return slow
}

// QueryGroup aggregates the queries of one request sharing a pattern.
type QueryGroup struct {
	Pattern       string                    `json:"pattern"`
	Fingerprint   string                    `json:"fingerprint"`
	Count         int                       `json:"count"`
	TotalDuration float64                   `json:"totalDuration"`
	AvgDuration   float64                   `json:"avgDuration"`
	MaxDuration   float64                   `json:"maxDuration"`
	Examples      []clockwork.DatabaseQuery `json:"examples"`
}

// GroupByPattern groups queries by normalized pattern, most expensive
// (by total duration) first.
func GroupByPattern(queries []clockwork.DatabaseQuery) []QueryGroup {
	groups := newOrdered[QueryGroup]()
	for _, q := range queries {
		pattern := NormalizeQuery(q.Query)
		g := groups.get(pattern, func() QueryGroup {
			return QueryGroup{Pattern: pattern, Fingerprint: Fingerprint(pattern)}
		})
		g.Count++
		g.TotalDuration += q.Duration
		if q.Duration > g.MaxDuration {
			g.MaxDuration = q.Duration
		}
		g.Examples = append(g.Examples, q)
	}

	out := make([]QueryGroup, 0, groups.len())
	groups.each(func(_ string, g *QueryGroup) {
		g.AvgDuration = g.TotalDuration / float64(g.Count)
		out = append(out, *g)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalDuration > out[j].TotalDuration
	})
	return out
}

// QueriesByType counts statements by leading SQL verb.
type QueriesByType struct {
	Select int `json:"select"`
	Insert int `json:"insert"`
	Update int `json:"update"`
	Delete int `json:"delete"`
	Other  int `json:"other"`
}

// QueryStats summarizes the queries of one request.
type QueryStats struct {
	TotalQueries  int                      `json:"totalQueries"`
	TotalDuration float64                  `json:"totalDuration"`
	AvgDuration   float64                  `json:"avgDuration"`
	SlowestQuery  *clockwork.DatabaseQuery `json:"slowestQuery"`
	QueriesByType QueriesByType            `json:"queriesByType"`
}

// ComputeQueryStats totals, averages and classifies queries. The slowest
// query is the first one with the highest duration.
func ComputeQueryStats(queries []clockwork.DatabaseQuery) QueryStats {
	var stats QueryStats
	if len(queries) == 0 {
		return stats
	}

	slowest := 0
	for i, q := range queries {
		stats.TotalDuration += q.Duration
		if q.Duration > queries[slowest].Duration {
			slowest = i
		}

		verb := strings.ToUpper(strings.TrimSpace(q.Query))
		switch {
		case strings.HasPrefix(verb, "SELECT"):
			stats.QueriesByType.Select++
		case strings.HasPrefix(verb, "INSERT"):
			stats.QueriesByType.Insert++
		case strings.HasPrefix(verb, "UPDATE"):
			stats.QueriesByType.Update++
		case strings.HasPrefix(verb, "DELETE"):
			stats.QueriesByType.Delete++
		default:
			stats.QueriesByType.Other++
		}
	}

	stats.TotalQueries = len(queries)
	stats.AvgDuration = stats.TotalDuration / float64(len(queries))
	q := queries[slowest]
	stats.SlowestQuery = &q
	return stats
}
