// Package inspector answers questions about captured Clockwork requests:
// per-request accessors (queries, logs, cache, timeline, ...) and
// cross-request analyses over a scope of recent requests.
//
// Missing requests and missing sub-records are data, not errors: accessors
// return empty results and analyses skip what is absent. Storage failures
// are returned wrapped and never retried here.
package inspector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/config"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
	"github.com/coral-mesh/clockwork-mcp/internal/scope"
	"github.com/coral-mesh/clockwork-mcp/internal/storage"
)

// Config configures an Inspector.
type Config struct {
	// Analysis holds thresholds used when a call omits them.
	Analysis config.AnalysisConfig

	// Driver and Location describe the backing store for status reports.
	Driver   string
	Location string

	// Now is the clock used for relative scopes. Defaults to time.Now.
	Now func() time.Time
}

// Inspector runs inspections against a storage backend.
type Inspector struct {
	store    storage.Storage
	resolver *scope.Resolver
	cfg      Config
	logger   zerolog.Logger
}

// New creates an Inspector over store.
func New(store storage.Storage, cfg Config, logger zerolog.Logger) *Inspector {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Analysis.SlowQueryThresholdMs <= 0 {
		cfg.Analysis.SlowQueryThresholdMs = constants.DefaultSlowQueryThresholdMs
	}
	if cfg.Analysis.NPlusOneThreshold <= 0 {
		cfg.Analysis.NPlusOneThreshold = constants.DefaultNPlusOneThreshold
	}
	if cfg.Analysis.MemoryThresholdMB <= 0 {
		cfg.Analysis.MemoryThresholdMB = constants.DefaultMemoryThresholdMB
	}
	return &Inspector{
		store:    store,
		resolver: scope.NewResolver(store, cfg.Now),
		cfg:      cfg,
		logger:   logger,
	}
}

// find loads one request; a missing request is (nil, nil).
func (i *Inspector) find(ctx context.Context, id string) (*clockwork.Request, error) {
	if id == "" {
		return nil, nil
	}
	r, err := i.store.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %s: %w", id, err)
	}
	return r, nil
}

func (i *Inspector) list(ctx context.Context) ([]clockwork.IndexEntry, error) {
	entries, err := i.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return entries, nil
}

// Page selects a window of a listing.
type Page struct {
	Limit  *int `json:"limit,omitempty" jsonschema:"description=Max results to return,default=20"`
	Offset int  `json:"offset,omitempty" jsonschema:"description=Number of results to skip,default=0"`
}

// apply returns the page of items. The limit defaults to 20 and is capped at MaxListLimit.
func (p Page) apply(items []clockwork.IndexEntry) []clockwork.IndexEntry {
	limit := constants.DefaultListLimit
	if p.Limit != nil {
		limit = min(max(*p.Limit, 0), constants.MaxListLimit)
	}
	offset := min(max(p.Offset, 0), len(items))
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// TimeRange restricts a listing to [From, To] in unix seconds.
type TimeRange struct {
	From *float64 `json:"from,omitempty" jsonschema:"description=Unix timestamp start"`
	To   *float64 `json:"to,omitempty" jsonschema:"description=Unix timestamp end"`
}

func (t TimeRange) set() bool { return t.From != nil || t.To != nil }

func (t TimeRange) contains(ts float64) bool {
	if t.From != nil && ts < *t.From {
		return false
	}
	if t.To != nil && ts > *t.To {
		return false
	}
	return true
}

// RequestInput names a single request.
type RequestInput struct {
	RequestID string `json:"requestId" jsonschema:"description=Clockwork request ID"`
}

const (
	bytesPerMB  = 1024 * 1024
	maxRequests = constants.MaxRequests
)

func toMB(bytes *float64) float64 {
	if bytes == nil {
		return 0
	}
	return *bytes / bytesPerMB
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
