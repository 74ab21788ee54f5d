package inspector

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/coral-mesh/clockwork-mcp/internal/safe"
)

// Status describes the backing store.
type Status struct {
	Found            bool     `json:"found"`
	Driver           string   `json:"driver"`
	StoragePath      string   `json:"storagePath"`
	RequestCount     int      `json:"requestCount"`
	OldestRequest    *float64 `json:"oldestRequest,omitempty"`
	NewestRequest    *float64 `json:"newestRequest,omitempty"`
	StorageSizeBytes *int64   `json:"storageSizeBytes,omitempty"`
	DiskFreeBytes    *int64   `json:"diskFreeBytes,omitempty"`
}

// GetStatus reports whether storage is reachable, how many requests it
// indexes and their time span. Size and free space are reported for the
// file driver only.
func (i *Inspector) GetStatus(ctx context.Context) (Status, error) {
	st := Status{Driver: i.cfg.Driver, StoragePath: i.cfg.Location}
	if st.Driver == "file" {
		if info, err := os.Stat(st.StoragePath); err != nil || !info.IsDir() {
			return st, nil
		}
	}

	entries, err := i.list(ctx)
	if err != nil {
		i.logger.Warn().Err(err).Str("driver", st.Driver).Msg("Storage unreachable")
		return st, nil
	}
	st.Found = true
	st.RequestCount = len(entries)
	if n := len(entries); n > 0 {
		newest, oldest := entries[0].Time, entries[n-1].Time
		st.NewestRequest, st.OldestRequest = &newest, &oldest
	}

	if st.Driver == "file" {
		if size, err := safe.DirSize(st.StoragePath); err == nil {
			st.StorageSizeBytes = &size
		}
		if usage, err := disk.UsageWithContext(ctx, st.StoragePath); err == nil {
			free, _ := safe.Uint64ToInt64(usage.Free)
			st.DiskFreeBytes = &free
		}
	}
	return st, nil
}

// RequestFlow is a one-screen summary of how a request was handled.
type RequestFlow struct {
	ID                 string   `json:"id"`
	Method             string   `json:"method,omitempty"`
	URI                string   `json:"uri,omitempty"`
	Controller         string   `json:"controller,omitempty"`
	Middleware         []string `json:"middleware,omitempty"`
	QueryCount         int      `json:"queryCount"`
	TotalQueryDuration float64  `json:"totalQueryDuration"`
	Status             *int     `json:"status,omitempty"`
	Duration           *float64 `json:"duration,omitempty"`
	MemoryMB           *float64 `json:"memoryMB,omitempty"`
}

// ExplainRequestFlow summarizes a request. A missing request yields only its ID.
func (i *Inspector) ExplainRequestFlow(ctx context.Context, id string) (RequestFlow, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil {
		return RequestFlow{ID: id}, err
	}

	flow := RequestFlow{
		ID:         r.ID,
		Method:     r.Method,
		URI:        r.URI,
		Controller: r.Controller,
		Middleware: r.Middleware,
		QueryCount: len(r.DatabaseQueries),
		Status:     r.ResponseStatus,
		Duration:   r.ResponseDuration,
	}
	for _, q := range r.DatabaseQueries {
		flow.TotalQueryDuration += q.Duration
	}
	if r.MemoryUsage != nil && *r.MemoryUsage != 0 {
		mb := toMB(r.MemoryUsage)
		flow.MemoryMB = &mb
	}
	return flow, nil
}
