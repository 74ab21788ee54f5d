package inspector

import (
	"context"

	"github.com/coral-mesh/clockwork-mcp/internal/analysis"
	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// QueriesInput is the input of GetQueries.
type QueriesInput struct {
	RequestID string   `json:"requestId" jsonschema:"description=Clockwork request ID"`
	Slow      bool     `json:"slow,omitempty" jsonschema:"description=Only return slow queries"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"description=Slow query threshold in ms,default=100"`
}

// GetQueries returns the database queries of a request in execution order,
// optionally only those at or above the slow threshold.
func (i *Inspector) GetQueries(ctx context.Context, in QueriesInput) ([]clockwork.DatabaseQuery, error) {
	r, err := i.find(ctx, in.RequestID)
	if err != nil || r == nil {
		return []clockwork.DatabaseQuery{}, err
	}
	queries := r.DatabaseQueries
	if queries == nil {
		queries = []clockwork.DatabaseQuery{}
	}
	if !in.Slow {
		return queries, nil
	}

	threshold := i.cfg.Analysis.SlowQueryThresholdMs
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	slow := make([]clockwork.DatabaseQuery, 0)
	for _, q := range queries {
		if q.Duration >= threshold {
			slow = append(slow, q)
		}
	}
	return slow, nil
}

// QueryStatsInput is the input of GetQueryStats.
type QueryStatsInput struct {
	RequestID string `json:"requestId,omitempty" jsonschema:"description=Stats for one request; omit and set from/to to aggregate a time range"`
	TimeRange
}

// GetQueryStats summarizes the queries of a request, or of every HTTP
// request in a time range when no request is named.
func (i *Inspector) GetQueryStats(ctx context.Context, in QueryStatsInput) (analysis.QueryStats, error) {
	requests, err := i.requestsFor(ctx, in.RequestID, in.TimeRange)
	if err != nil {
		return analysis.QueryStats{}, err
	}
	var queries []clockwork.DatabaseQuery
	for _, r := range requests {
		queries = append(queries, r.DatabaseQueries...)
	}
	return analysis.ComputeQueryStats(queries), nil
}
