package scope

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

var now = time.Unix(1_700_000_000, 0)

func ptr(n int) *int { return &n }

// listing builds n HTTP entries one minute apart, newest first.
func listing(n int, uri string) []clockwork.IndexEntry {
	out := make([]clockwork.IndexEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, clockwork.IndexEntry{
			ID:   fmt.Sprintf("req-%03d", i),
			Time: float64(now.Add(-time.Duration(i) * time.Minute).Unix()),
			Type: clockwork.TypeRequest,
			URI:  uri,
		})
	}
	return out
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{in: "30m", want: 30 * time.Minute, ok: true},
		{in: "1.5h", want: 90 * time.Minute, ok: true},
		{in: "2d", want: 48 * time.Hour, ok: true},
		{in: "1w", want: 7 * 24 * time.Hour, ok: true},
		{in: " 2 H", want: 2 * time.Hour, ok: true},
		{in: "1D", want: 24 * time.Hour, ok: true},
		{in: "90s", ok: false},
		{in: "h", ok: false},
		{in: "-1h", ok: false},
		{in: "1.h", ok: false},
		{in: "", ok: false},
		{in: "1h ago", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDuration(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolve_RequestIDWins(t *testing.T) {
	res := Resolve(Scope{RequestID: "x", Count: ptr(5), All: true, URI: "/nope"}, listing(10, "/a"), now)
	assert.Equal(t, []string{"x"}, res.IDs)
	assert.Equal(t, 1, res.TotalMatched)
	assert.False(t, res.Capped)
}

func TestResolve_DefaultIsLatest(t *testing.T) {
	res := Resolve(Scope{}, listing(5, "/a"), now)
	assert.Equal(t, []string{"req-000"}, res.IDs)
	assert.Equal(t, 5, res.TotalMatched)
	assert.True(t, res.Capped)
}

func TestResolve_AllIsCapped(t *testing.T) {
	res := Resolve(Scope{All: true}, listing(150, "/a"), now)
	assert.Len(t, res.IDs, 100)
	assert.Equal(t, "req-000", res.IDs[0])
	assert.Equal(t, 150, res.TotalMatched)
	assert.True(t, res.Capped)
}

func TestResolve_Count(t *testing.T) {
	entries := listing(150, "/a")

	res := Resolve(Scope{Count: ptr(10)}, entries, now)
	assert.Len(t, res.IDs, 10)
	assert.True(t, res.Capped)

	res = Resolve(Scope{Count: ptr(500)}, entries, now)
	assert.Len(t, res.IDs, 100)

	res = Resolve(Scope{Count: ptr(10)}, listing(3, "/a"), now)
	assert.Len(t, res.IDs, 3)
	assert.False(t, res.Capped)

	res = Resolve(Scope{Count: ptr(-4)}, entries, now)
	assert.Empty(t, res.IDs)
}

func TestResolve_URIFilter(t *testing.T) {
	entries := append(listing(2, "/api/Users"), listing(3, "/checkout")...)

	res := Resolve(Scope{All: true, URI: "users"}, entries, now)
	assert.Len(t, res.IDs, 2)
	assert.Equal(t, 2, res.TotalMatched)
}

func TestResolve_Since(t *testing.T) {
	entries := listing(120, "/a")

	res := Resolve(Scope{Since: "30m"}, entries, now)
	assert.Equal(t, 31, res.TotalMatched, "entries 0..30 minutes old inclusive")
	assert.Len(t, res.IDs, 31)
	assert.False(t, res.Capped)

	res = Resolve(Scope{Since: "1h", Count: ptr(5)}, entries, now)
	assert.Len(t, res.IDs, 5)
	assert.Equal(t, 61, res.TotalMatched)
}

func TestResolve_InvalidSinceIsAbsent(t *testing.T) {
	res := Resolve(Scope{Since: "yesterday"}, listing(10, "/a"), now)
	assert.Equal(t, 10, res.TotalMatched)
	assert.Len(t, res.IDs, 1)
}

func TestResolve_OnlyHTTPEntries(t *testing.T) {
	entries := []clockwork.IndexEntry{
		{ID: "cmd", Type: clockwork.TypeCommand, Time: 3},
		{ID: "http", Type: clockwork.TypeRequest, Time: 2},
		{ID: "job", Type: clockwork.TypeQueueJob, Time: 2},
		{ID: "untyped", Time: 1},
		{ID: "test", Type: clockwork.TypeTest, Time: 0},
	}

	res := Resolve(Scope{All: true}, entries, now)
	assert.Equal(t, []string{"http", "untyped"}, res.IDs)
}

type fakeLister struct {
	entries []clockwork.IndexEntry
	err     error
	calls   int
}

func (f *fakeLister) List(context.Context) ([]clockwork.IndexEntry, error) {
	f.calls++
	return f.entries, f.err
}

func TestResolver(t *testing.T) {
	lister := &fakeLister{entries: listing(3, "/a")}
	r := NewResolver(lister, func() time.Time { return now })

	res, err := r.Resolve(context.Background(), Scope{RequestID: "pinned"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pinned"}, res.IDs)
	assert.Zero(t, lister.calls, "pinned scope never lists")

	res, err = r.Resolve(context.Background(), Scope{All: true})
	require.NoError(t, err)
	assert.Len(t, res.IDs, 3)
	assert.Equal(t, 1, lister.calls)
}

func TestResolver_ListError(t *testing.T) {
	boom := errors.New("disk gone")
	r := NewResolver(&fakeLister{err: boom}, nil)

	_, err := r.Resolve(context.Background(), Scope{All: true})
	assert.ErrorIs(t, err, boom)
}
