package inspector

import (
	"context"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// PerformanceInput is the input of GetPerformanceSummary.
type PerformanceInput struct {
	RequestID string `json:"requestId,omitempty" jsonschema:"description=Summary for one request; omit and set from/to to aggregate a time range"`
	TimeRange
}

// PerformanceSummary is an overview of one or more requests. Duration and
// memory are averages; query and cache figures are totals.
type PerformanceSummary struct {
	Requests         int     `json:"requests"`
	ResponseDuration float64 `json:"responseDuration"`
	MemoryUsageMB    float64 `json:"memoryUsageMB"`
	DatabaseQueries  int     `json:"databaseQueries"`
	DatabaseDuration float64 `json:"databaseDuration"`
	CacheHits        int     `json:"cacheHits"`
	CacheReads       int     `json:"cacheReads"`
	CacheHitRatio    float64 `json:"cacheHitRatio"`
}

// GetPerformanceSummary reports duration, memory, database and cache figures.
// Missing values count as zero.
func (i *Inspector) GetPerformanceSummary(ctx context.Context, in PerformanceInput) (PerformanceSummary, error) {
	requests, err := i.requestsFor(ctx, in.RequestID, in.TimeRange)
	if err != nil {
		return PerformanceSummary{}, err
	}

	var s PerformanceSummary
	for _, r := range requests {
		s.Requests++
		s.ResponseDuration += deref(r.ResponseDuration)
		s.MemoryUsageMB += toMB(r.MemoryUsage)
		s.DatabaseQueries += deref(r.DatabaseQueriesCount)
		s.DatabaseDuration += deref(r.DatabaseDuration)
		s.CacheHits += deref(r.CacheHits)
		s.CacheReads += deref(r.CacheReads)
	}
	if s.Requests > 0 {
		s.ResponseDuration /= float64(s.Requests)
		s.MemoryUsageMB /= float64(s.Requests)
	}
	if s.CacheReads > 0 {
		s.CacheHitRatio = float64(s.CacheHits) / float64(s.CacheReads)
	}
	return s, nil
}

// GetTimeline returns the timeline events of a request.
func (i *Inspector) GetTimeline(ctx context.Context, id string) ([]clockwork.TimelineEvent, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil || r.TimelineData == nil {
		return []clockwork.TimelineEvent{}, err
	}
	return r.TimelineData, nil
}

// CompareInput is the input of CompareRequests.
type CompareInput struct {
	RequestID1 string `json:"requestId1" jsonschema:"description=First request ID"`
	RequestID2 string `json:"requestId2" jsonschema:"description=Second request ID"`
}

// RequestFigures are the compared figures of one request.
type RequestFigures struct {
	ID       string  `json:"id"`
	Found    bool    `json:"found"`
	Duration float64 `json:"duration"`
	Queries  int     `json:"queries"`
	MemoryMB float64 `json:"memoryMB"`
}

// Comparison is the result of CompareRequests. Diffs are second minus first.
type Comparison struct {
	Request1       RequestFigures `json:"request1"`
	Request2       RequestFigures `json:"request2"`
	DurationDiff   float64        `json:"durationDiff"`
	QueryCountDiff int            `json:"queryCountDiff"`
	MemoryDiff     float64        `json:"memoryDiff"`
}

// CompareRequests compares duration, query count and memory of two requests.
// A missing request compares as zeros.
func (i *Inspector) CompareRequests(ctx context.Context, in CompareInput) (Comparison, error) {
	figures := func(id string) (RequestFigures, error) {
		r, err := i.find(ctx, id)
		if err != nil {
			return RequestFigures{}, err
		}
		f := RequestFigures{ID: id}
		if r != nil {
			f.Found = true
			f.Duration = deref(r.ResponseDuration)
			f.Queries = deref(r.DatabaseQueriesCount)
			f.MemoryMB = toMB(r.MemoryUsage)
		}
		return f, nil
	}

	r1, err := figures(in.RequestID1)
	if err != nil {
		return Comparison{}, err
	}
	r2, err := figures(in.RequestID2)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		Request1:       r1,
		Request2:       r2,
		DurationDiff:   r2.Duration - r1.Duration,
		QueryCountDiff: r2.Queries - r1.Queries,
		MemoryDiff:     r2.MemoryMB - r1.MemoryMB,
	}, nil
}
