package analysis

import (
	"sort"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// GroupBy selects the key routes are grouped under.
type GroupBy string

const (
	GroupByURI        GroupBy = "uri"
	GroupByRoute      GroupBy = "route"
	GroupByController GroupBy = "controller"
)

const bytesPerMB = 1024 * 1024

// RouteStats holds latency and memory statistics for one route.
type RouteStats struct {
	Route       string   `json:"route"`
	Samples     int      `json:"samples"`
	AvgDuration float64  `json:"avgDuration"`
	MinDuration float64  `json:"minDuration"`
	MaxDuration float64  `json:"maxDuration"`
	P50         float64  `json:"p50"`
	P95         float64  `json:"p95"`
	P99         float64  `json:"p99"`
	AvgMemoryMB *float64 `json:"avgMemoryMB"`
}

// RouteSummary describes the analyzed route set.
type RouteSummary struct {
	TotalRequests int     `json:"totalRequests"`
	UniqueRoutes  int     `json:"uniqueRoutes"`
	SlowestRoute  *string `json:"slowestRoute"`
	FastestRoute  *string `json:"fastestRoute"`
}

// RoutePerformance is the result of AnalyzeRoutePerformance.
type RoutePerformance struct {
	Routes  []RouteStats `json:"routes"`
	Summary RouteSummary `json:"summary"`
}

// RouteOptions configures AnalyzeRoutePerformance.
type RouteOptions struct {
	GroupBy    GroupBy
	MinSamples int
}

func routeKey(r *clockwork.Request, groupBy GroupBy) string {
	switch groupBy {
	case GroupByRoute:
		if r.Route != nil {
			return *r.Route
		}
		if r.RouteName != nil {
			return *r.RouteName
		}
		return r.URI
	case GroupByController:
		return r.Controller
	default:
		return r.URI
	}
}

type routeSamples struct {
	durations []float64
	memory    []float64
}

// AnalyzeRoutePerformance groups HTTP requests that carry a response
// duration and computes per-group latency percentiles. Requests of other
// types, without a duration or without a grouping key are ignored. Groups
// with fewer than MinSamples samples are dropped; the rest are ordered
// slowest average first.
func AnalyzeRoutePerformance(requests []*clockwork.Request, opts RouteOptions) RoutePerformance {
	groupBy := opts.GroupBy
	if groupBy == "" {
		groupBy = GroupByURI
	}
	minSamples := max(opts.MinSamples, 1)

	totalHTTP := 0
	groups := newOrdered[routeSamples]()
	for _, r := range requests {
		if r == nil || r.Type != clockwork.TypeRequest {
			continue
		}
		totalHTTP++

		key := routeKey(r, groupBy)
		if key == "" || r.ResponseDuration == nil {
			continue
		}

		g := groups.get(key, func() routeSamples { return routeSamples{} })
		g.durations = append(g.durations, *r.ResponseDuration)
		if r.MemoryUsage != nil {
			g.memory = append(g.memory, *r.MemoryUsage)
		}
	}

	routes := make([]RouteStats, 0, groups.len())
	groups.each(func(key string, g *routeSamples) {
		if len(g.durations) < minSamples {
			return
		}
		sorted := append([]float64(nil), g.durations...)
		sort.Float64s(sorted)

		stats := RouteStats{
			Route:       key,
			Samples:     len(sorted),
			AvgDuration: sum(sorted) / float64(len(sorted)),
			MinDuration: sorted[0],
			MaxDuration: sorted[len(sorted)-1],
			P50:         Percentile(sorted, 50),
			P95:         Percentile(sorted, 95),
			P99:         Percentile(sorted, 99),
		}
		if len(g.memory) > 0 {
			avg := sum(g.memory) / float64(len(g.memory)) / bytesPerMB
			stats.AvgMemoryMB = &avg
		}
		routes = append(routes, stats)
	})

	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].AvgDuration > routes[j].AvgDuration
	})

	summary := RouteSummary{
		TotalRequests: totalHTTP,
		UniqueRoutes:  len(routes),
	}
	if len(routes) > 0 {
		slowest, fastest := routes[0].Route, routes[len(routes)-1].Route
		summary.SlowestRoute = &slowest
		summary.FastestRoute = &fastest
	}

	return RoutePerformance{Routes: routes, Summary: summary}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
