// Package storage reads Clockwork requests from the backends Clockwork can
// persist to.
//
// Every driver implements Storage. A missing request is not an error: Find
// and Latest return (nil, nil) and FindMany drops the ID. Backend failures are
// returned wrapped.
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// Storage is the read interface over captured requests.
type Storage interface {
	// Find returns the request with the given ID, or nil if it does not exist.
	Find(ctx context.Context, id string) (*clockwork.Request, error)
	// FindMany returns the requests that exist among ids, in ids order.
	FindMany(ctx context.Context, ids []string) ([]*clockwork.Request, error)
	// Latest returns the most recent request, or nil if storage is empty.
	Latest(ctx context.Context) (*clockwork.Request, error)
	// List returns index entries, most recent first.
	List(ctx context.Context) ([]clockwork.IndexEntry, error)
}

// Store is an opened storage backend.
type Store interface {
	Storage
	io.Closer
	// Driver names the backend.
	Driver() string
	// Location describes where the backend reads from, for status output.
	Location() string
}

// findEach implements FindMany on top of Find for drivers without a batch lookup.
// A payload that fails to decode is logged and skipped like a missing request.
func findEach(ctx context.Context, s Storage, ids []string, logger zerolog.Logger) ([]*clockwork.Request, error) {
	out := make([]*clockwork.Request, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := s.Find(ctx, id)
		if errors.Is(err, clockwork.ErrMalformed) {
			logger.Warn().Err(err).Str("id", id).Msg("Skipping unreadable request")
			continue
		}
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// orderByIDs returns the found requests in ids order, dropping missing ones.
func orderByIDs(ids []string, found map[string]*clockwork.Request) []*clockwork.Request {
	out := make([]*clockwork.Request, 0, len(ids))
	for _, id := range ids {
		if r, ok := found[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
