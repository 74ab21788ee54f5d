// Package scope turns a request selection ("the latest request", "the last
// 20 requests to /checkout", "everything in the past hour") into a bounded,
// most-recent-first list of request IDs.
package scope

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
)

// Scope selects requests for a cross-request analysis.
type Scope struct {
	// RequestID pins the scope to one request; every other field is ignored.
	RequestID string `json:"requestId,omitempty" jsonschema:"description=Specific request ID (overrides every other scope field)"`
	// Count selects the N most recent matching requests (capped at MaxRequests).
	Count *int `json:"count,omitempty" jsonschema:"description=Number of recent HTTP requests to analyze (max 100)"`
	// Since restricts to a relative window such as "1h" or "2d".
	Since string `json:"since,omitempty" jsonschema:"description=Time window to look back (e.g. 30m 1h 2d 1w)"`
	// All selects every matching request (capped at MaxRequests).
	All bool `json:"all,omitempty" jsonschema:"description=Analyze all available requests (max 100)"`
	// URI keeps requests whose URI contains it, case-insensitively.
	URI string `json:"uri,omitempty" jsonschema:"description=Filter by URI substring (case-insensitive)"`
}

// Resolution is a resolved scope.
type Resolution struct {
	IDs []string `json:"ids"`
	// TotalMatched counts matching requests before the limit was applied.
	TotalMatched int  `json:"totalMatched"`
	Capped       bool `json:"capped"`
}

// Lister is the part of storage a scope is resolved against.
type Lister interface {
	List(ctx context.Context) ([]clockwork.IndexEntry, error)
}

// Resolve applies s to a time-descending index listing.
//
// Only HTTP entries (type request or absent) count. The limit is
// min(Count, MaxRequests) when Count is set, MaxRequests for All or a valid
// Since, and 1 otherwise. An unparsable Since is ignored entirely.
func Resolve(s Scope, entries []clockwork.IndexEntry, now time.Time) Resolution {
	if s.RequestID != "" {
		return Resolution{IDs: []string{s.RequestID}, TotalMatched: 1}
	}

	uri := strings.ToLower(s.URI)
	window, hasWindow := ParseDuration(s.Since)
	cutoff := float64(now.Add(-window).UnixMilli()) / 1000

	matched := make([]string, 0)
	for _, e := range entries {
		if uri != "" && !strings.Contains(strings.ToLower(e.URI), uri) {
			continue
		}
		if hasWindow && e.Time < cutoff {
			continue
		}
		if e.Type != "" && e.Type != clockwork.TypeRequest {
			continue
		}
		matched = append(matched, e.ID)
	}

	limit := s.limit(hasWindow)
	return Resolution{
		IDs:          matched[:min(limit, len(matched))],
		TotalMatched: len(matched),
		Capped:       len(matched) > limit,
	}
}

func (s Scope) limit(hasWindow bool) int {
	switch {
	case s.Count != nil:
		return max(min(*s.Count, constants.MaxRequests), 0)
	case s.All || hasWindow:
		return constants.MaxRequests
	default:
		return 1
	}
}

// Resolver resolves scopes against a storage listing.
type Resolver struct {
	lister Lister
	now    func() time.Time
}

// NewResolver creates a Resolver. A nil now defaults to time.Now.
func NewResolver(lister Lister, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{lister: lister, now: now}
}

// Resolve resolves s. The storage listing is only read when s does not pin a request.
func (r *Resolver) Resolve(ctx context.Context, s Scope) (Resolution, error) {
	if s.RequestID != "" {
		return Resolve(s, nil, r.now()), nil
	}
	entries, err := r.lister.List(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to list requests: %w", err)
	}
	return Resolve(s, entries, r.now()), nil
}
