package inspector

import (
	"context"
	"fmt"

	"github.com/coral-mesh/clockwork-mcp/internal/analysis"
	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/scope"
)

// Meta describes the scope an analysis ran over.
type Meta struct {
	RequestsAnalyzed int  `json:"requestsAnalyzed"`
	Capped           bool `json:"capped"`
	TotalMatched     int  `json:"totalMatched"`
}

// scoped resolves s and loads exactly the resolved requests.
func (i *Inspector) scoped(ctx context.Context, s scope.Scope) ([]*clockwork.Request, Meta, error) {
	res, err := i.resolver.Resolve(ctx, s)
	if err != nil {
		return nil, Meta{}, err
	}
	requests, err := i.store.FindMany(ctx, res.IDs)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to load requests: %w", err)
	}
	meta := Meta{
		RequestsAnalyzed: len(res.IDs),
		Capped:           res.Capped,
		TotalMatched:     res.TotalMatched,
	}
	i.logger.Debug().
		Int("resolved", len(res.IDs)).
		Int("loaded", len(requests)).
		Int("matched", res.TotalMatched).
		Bool("capped", res.Capped).
		Msg("Resolved scope")
	return requests, meta, nil
}

// Requests loads the requests selected by s, most recent first.
func (i *Inspector) Requests(ctx context.Context, s scope.Scope) ([]*clockwork.Request, Meta, error) {
	return i.scoped(ctx, s)
}

// SlowQueryInput is the input of AnalyzeSlowQueries.
type SlowQueryInput struct {
	scope.Scope
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"description=Slow query threshold in ms,default=100"`
	Limit     *int     `json:"limit,omitempty" jsonschema:"description=Max query patterns to return,default=20"`
}

// SlowQuerySummary summarizes AnalyzeSlowQueries.
type SlowQuerySummary struct {
	TotalSlowQueries        int  `json:"totalSlowQueries"`
	UniquePatterns          int  `json:"uniquePatterns"`
	RequestsAnalyzed        int  `json:"requestsAnalyzed"`
	RequestsWithSlowQueries int  `json:"requestsWithSlowQueries"`
	Capped                  bool `json:"capped"`
	TotalMatched            int  `json:"totalMatched"`
}

// SlowQueryReport is the result of AnalyzeSlowQueries.
type SlowQueryReport struct {
	Queries []analysis.SlowQueryPattern `json:"queries"`
	Summary SlowQuerySummary            `json:"summary"`
}

// AnalyzeSlowQueries groups slow queries of the scoped requests by pattern.
func (i *Inspector) AnalyzeSlowQueries(ctx context.Context, in SlowQueryInput) (*SlowQueryReport, error) {
	requests, meta, err := i.scoped(ctx, in.Scope)
	if err != nil {
		return nil, err
	}

	threshold := i.cfg.Analysis.SlowQueryThresholdMs
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	agg := analysis.AggregateSlowQueries(requests, threshold, in.Limit)

	return &SlowQueryReport{
		Queries: agg.Patterns,
		Summary: SlowQuerySummary{
			TotalSlowQueries:        agg.TotalSlowQueries,
			UniquePatterns:          agg.UniquePatterns,
			RequestsAnalyzed:        meta.RequestsAnalyzed,
			RequestsWithSlowQueries: agg.RequestsWithSlowQueries,
			Capped:                  meta.Capped,
			TotalMatched:            meta.TotalMatched,
		},
	}, nil
}

// NPlusOneInput is the input of DetectNPlusOne.
type NPlusOneInput struct {
	scope.Scope
	Threshold *int `json:"threshold,omitempty" jsonschema:"description=Min repetitions within one request to flag as N+1,default=2"`
}

// NPlusOneSummary summarizes DetectNPlusOne.
type NPlusOneSummary struct {
	PatternsFound        int  `json:"patternsFound"`
	RequestsAnalyzed     int  `json:"requestsAnalyzed"`
	RequestsWithNPlusOne int  `json:"requestsWithNPlusOne"`
	Capped               bool `json:"capped"`
	TotalMatched         int  `json:"totalMatched"`
}

// NPlusOneReport is the result of DetectNPlusOne.
type NPlusOneReport struct {
	Patterns []analysis.NPlusOneAggregate `json:"patterns"`
	Summary  NPlusOneSummary              `json:"summary"`
}

// DetectNPlusOne finds repeated query patterns in each scoped request and merges them.
func (i *Inspector) DetectNPlusOne(ctx context.Context, in NPlusOneInput) (*NPlusOneReport, error) {
	requests, meta, err := i.scoped(ctx, in.Scope)
	if err != nil {
		return nil, err
	}

	threshold := i.cfg.Analysis.NPlusOneThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	patterns, affected := analysis.AggregateNPlusOne(requests, threshold)

	return &NPlusOneReport{
		Patterns: patterns,
		Summary: NPlusOneSummary{
			PatternsFound:        len(patterns),
			RequestsAnalyzed:     meta.RequestsAnalyzed,
			RequestsWithNPlusOne: affected,
			Capped:               meta.Capped,
			TotalMatched:         meta.TotalMatched,
		},
	}, nil
}

// ExceptionsInput is the input of AnalyzeExceptions.
type ExceptionsInput struct {
	scope.Scope
	GroupByMessage *bool `json:"groupByMessage,omitempty" jsonschema:"description=Group exceptions by normalized message,default=true"`
	Limit          *int  `json:"limit,omitempty" jsonschema:"description=Max exception groups to return,default=20"`
}

// ExceptionsReport is the result of AnalyzeExceptions.
type ExceptionsReport struct {
	analysis.ExceptionAnalysis
	Meta Meta `json:"meta"`
}

// AnalyzeExceptions groups the error and critical log entries of the scoped requests.
func (i *Inspector) AnalyzeExceptions(ctx context.Context, in ExceptionsInput) (*ExceptionsReport, error) {
	requests, meta, err := i.scoped(ctx, in.Scope)
	if err != nil {
		return nil, err
	}
	result := analysis.GroupExceptions(analysis.CollectExceptions(requests), analysis.ExceptionOptions{
		GroupByMessage: in.GroupByMessage,
		Limit:          deref(in.Limit),
	})
	return &ExceptionsReport{ExceptionAnalysis: result, Meta: meta}, nil
}

// RoutesInput is the input of AnalyzeRoutePerformance.
type RoutesInput struct {
	scope.Scope
	GroupBy    analysis.GroupBy `json:"groupBy,omitempty" jsonschema:"description=How to group routes,enum=uri,enum=route,enum=controller,default=uri"`
	MinSamples *int             `json:"minSamples,omitempty" jsonschema:"description=Minimum samples required for a route,default=1"`
}

// RoutesReport is the result of AnalyzeRoutePerformance.
type RoutesReport struct {
	analysis.RoutePerformance
	Meta Meta `json:"meta"`
}

// AnalyzeRoutePerformance computes latency percentiles per route over the scoped requests.
func (i *Inspector) AnalyzeRoutePerformance(ctx context.Context, in RoutesInput) (*RoutesReport, error) {
	requests, meta, err := i.scoped(ctx, in.Scope)
	if err != nil {
		return nil, err
	}
	result := analysis.AnalyzeRoutePerformance(requests, analysis.RouteOptions{
		GroupBy:    in.GroupBy,
		MinSamples: deref(in.MinSamples),
	})
	return &RoutesReport{RoutePerformance: result, Meta: meta}, nil
}

// MemoryInput is the input of DetectMemoryIssues.
type MemoryInput struct {
	scope.Scope
	ThresholdMB  *float64 `json:"thresholdMB,omitempty" jsonschema:"description=Memory threshold in MB to flag as high,default=128"`
	DetectGrowth *bool    `json:"detectGrowth,omitempty" jsonschema:"description=Detect memory growth across requests,default=true"`
}

// MemoryReport is the result of DetectMemoryIssues.
type MemoryReport struct {
	analysis.MemoryAnalysis
	Meta Meta `json:"meta"`
}

// DetectMemoryIssues flags high memory usage and growth across the scoped requests.
func (i *Inspector) DetectMemoryIssues(ctx context.Context, in MemoryInput) (*MemoryReport, error) {
	requests, meta, err := i.scoped(ctx, in.Scope)
	if err != nil {
		return nil, err
	}
	threshold := in.ThresholdMB
	if threshold == nil {
		def := i.cfg.Analysis.MemoryThresholdMB
		threshold = &def
	}
	result := analysis.DetectMemoryIssues(requests, analysis.MemoryOptions{
		ThresholdMB:  threshold,
		DetectGrowth: in.DetectGrowth,
	})
	return &MemoryReport{MemoryAnalysis: result, Meta: meta}, nil
}
