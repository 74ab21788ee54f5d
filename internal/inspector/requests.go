package inspector

import (
	"context"
	"fmt"
	"strings"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/filter"
)

// ListRequestsInput is the input of ListRequests.
type ListRequestsInput struct {
	Type   clockwork.RequestType `json:"type,omitempty" jsonschema:"description=Filter by request type,enum=request,enum=command,enum=queue-job,enum=test"`
	Status *int                  `json:"status,omitempty" jsonschema:"description=Filter by HTTP status code"`
	URI    string                `json:"uri,omitempty" jsonschema:"description=Filter by URI substring"`
	Method string                `json:"method,omitempty" jsonschema:"description=Filter by HTTP method"`
	Expr   string                `json:"expr,omitempty" jsonschema:"description=CEL filter over id time type method uri controller status duration command (e.g. status >= 500 && duration > 200.0)"`
	TimeRange
	Page
}

// ListRequests lists index entries, most recent first.
func (i *Inspector) ListRequests(ctx context.Context, in ListRequestsInput) ([]clockwork.IndexEntry, error) {
	f, err := filter.Compile(in.Expr)
	if err != nil {
		return nil, err
	}
	entries, err := i.list(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]clockwork.IndexEntry, 0, len(entries))
	for _, e := range entries {
		if in.Type != "" && e.EffectiveType() != in.Type {
			continue
		}
		if in.Status != nil && (e.ResponseStatus == nil || *e.ResponseStatus != *in.Status) {
			continue
		}
		if in.URI != "" && !strings.Contains(e.URI, in.URI) {
			continue
		}
		if in.Method != "" && !strings.EqualFold(e.Method, in.Method) {
			continue
		}
		if !in.TimeRange.contains(e.Time) {
			continue
		}
		out = append(out, e)
	}

	if out, err = f.Apply(out); err != nil {
		return nil, err
	}
	return in.Page.apply(out), nil
}

// SearchRequestsInput is the input of SearchRequests.
type SearchRequestsInput struct {
	Controller  string   `json:"controller,omitempty" jsonschema:"description=Filter by controller substring"`
	URI         string   `json:"uri,omitempty" jsonschema:"description=Filter by URI substring"`
	Status      *int     `json:"status,omitempty" jsonschema:"description=Filter by HTTP status code"`
	MinDuration *float64 `json:"minDuration,omitempty" jsonschema:"description=Minimum response duration in ms"`
	MaxDuration *float64 `json:"maxDuration,omitempty" jsonschema:"description=Maximum response duration in ms"`
	Expr        string   `json:"expr,omitempty" jsonschema:"description=CEL filter expression over index fields"`
	Page
}

// SearchRequests finds index entries by controller, URI, status or duration.
// Entries without a duration count as 0 ms.
func (i *Inspector) SearchRequests(ctx context.Context, in SearchRequestsInput) ([]clockwork.IndexEntry, error) {
	f, err := filter.Compile(in.Expr)
	if err != nil {
		return nil, err
	}
	entries, err := i.list(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]clockwork.IndexEntry, 0, len(entries))
	for _, e := range entries {
		if in.Controller != "" && !strings.Contains(e.Controller, in.Controller) {
			continue
		}
		if in.URI != "" && !strings.Contains(e.URI, in.URI) {
			continue
		}
		if in.Status != nil && (e.ResponseStatus == nil || *e.ResponseStatus != *in.Status) {
			continue
		}
		duration := deref(e.ResponseDuration)
		if in.MinDuration != nil && duration < *in.MinDuration {
			continue
		}
		if in.MaxDuration != nil && duration > *in.MaxDuration {
			continue
		}
		out = append(out, e)
	}

	if out, err = f.Apply(out); err != nil {
		return nil, err
	}
	return in.Page.apply(out), nil
}

// GetRequest returns the full request, or nil when it does not exist.
func (i *Inspector) GetRequest(ctx context.Context, id string) (*clockwork.Request, error) {
	return i.find(ctx, id)
}

// GetLatestRequest returns the most recent request, or nil when storage is empty.
func (i *Inspector) GetLatestRequest(ctx context.Context) (*clockwork.Request, error) {
	r, err := i.store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest request: %w", err)
	}
	return r, nil
}

// requestsFor returns the single request named by id, or when id is empty
// and a time range is set, the HTTP requests in that range (at most
// MaxRequests, most recent first). Neither yields nothing.
func (i *Inspector) requestsFor(ctx context.Context, id string, tr TimeRange) ([]*clockwork.Request, error) {
	if id != "" {
		r, err := i.find(ctx, id)
		if err != nil || r == nil {
			return nil, err
		}
		return []*clockwork.Request{r}, nil
	}
	if !tr.set() {
		return nil, nil
	}

	entries, err := i.list(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	for _, e := range entries {
		if len(ids) >= maxRequests {
			break
		}
		if e.EffectiveType() == clockwork.TypeRequest && tr.contains(e.Time) {
			ids = append(ids, e.ID)
		}
	}
	requests, err := i.store.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	return requests, nil
}
