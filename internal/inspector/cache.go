package inspector

import (
	"context"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// GetCacheOperations returns the cache operations of a request.
func (i *Inspector) GetCacheOperations(ctx context.Context, id string) ([]clockwork.CacheQuery, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil || r.CacheQueries == nil {
		return []clockwork.CacheQuery{}, err
	}
	return r.CacheQueries, nil
}

// CacheStatsInput is the input of GetCacheStats.
type CacheStatsInput struct {
	RequestID string `json:"requestId,omitempty" jsonschema:"description=Stats for one request; omit and set from/to to aggregate a time range"`
	TimeRange
}

// CacheStats summarizes cache operations. HitRatio is hits over hits plus misses.
type CacheStats struct {
	Hits            int     `json:"hits"`
	Misses          int     `json:"misses"`
	Writes          int     `json:"writes"`
	Deletes         int     `json:"deletes"`
	TotalOperations int     `json:"totalOperations"`
	HitRatio        float64 `json:"hitRatio"`
	TotalDuration   float64 `json:"totalDuration"`
}

// GetCacheStats counts the cache operations of a request, or of every HTTP
// request in a time range when no request is named.
func (i *Inspector) GetCacheStats(ctx context.Context, in CacheStatsInput) (CacheStats, error) {
	requests, err := i.requestsFor(ctx, in.RequestID, in.TimeRange)
	if err != nil {
		return CacheStats{}, err
	}

	var s CacheStats
	for _, r := range requests {
		for _, q := range r.CacheQueries {
			s.TotalOperations++
			s.TotalDuration += deref(q.Duration)
			switch q.Type {
			case clockwork.CacheHit:
				s.Hits++
			case clockwork.CacheMiss:
				s.Misses++
			case clockwork.CacheWrite:
				s.Writes++
			case clockwork.CacheDelete:
				s.Deletes++
			}
		}
	}
	if reads := s.Hits + s.Misses; reads > 0 {
		s.HitRatio = float64(s.Hits) / float64(reads)
	}
	return s, nil
}

// GetRedisCommands returns the Redis commands of a request.
func (i *Inspector) GetRedisCommands(ctx context.Context, id string) ([]clockwork.RedisCommand, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil || r.RedisCommands == nil {
		return []clockwork.RedisCommand{}, err
	}
	return r.RedisCommands, nil
}
