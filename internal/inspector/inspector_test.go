package inspector

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// memStore is an in-memory Storage.
type memStore struct {
	requests map[string]*clockwork.Request
	err      error
}

func newMemStore(requests ...*clockwork.Request) *memStore {
	s := &memStore{requests: make(map[string]*clockwork.Request)}
	for _, r := range requests {
		s.requests[r.ID] = r
	}
	return s
}

func (s *memStore) Find(_ context.Context, id string) (*clockwork.Request, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.requests[id], nil
}

func (s *memStore) FindMany(ctx context.Context, ids []string) ([]*clockwork.Request, error) {
	out := make([]*clockwork.Request, 0, len(ids))
	for _, id := range ids {
		r, err := s.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) Latest(ctx context.Context) (*clockwork.Request, error) {
	entries, err := s.List(ctx)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return s.requests[entries[0].ID], nil
}

func (s *memStore) List(_ context.Context) ([]clockwork.IndexEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	entries := make([]clockwork.IndexEntry, 0, len(s.requests))
	for _, r := range s.requests {
		e := r.Index()
		e.Type = r.Type
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Time > entries[j].Time })
	return entries, nil
}

var testNow = time.Unix(1_700_000_000, 0)

func newTestInspector(store *memStore) *Inspector {
	return New(store, Config{
		Driver:   "memory",
		Location: "test",
		Now:      func() time.Time { return testNow },
	}, zerolog.Nop())
}

func httpRequest(id string, at float64, uri string) *clockwork.Request {
	return &clockwork.Request{
		ID:               id,
		Type:             clockwork.TypeRequest,
		Time:             at,
		Method:           "GET",
		URI:              uri,
		ResponseStatus:   clockwork.Int(200),
		ResponseDuration: clockwork.Float(100),
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	i := New(newMemStore(), Config{}, zerolog.Nop())

	assert.Equal(t, 100.0, i.cfg.Analysis.SlowQueryThresholdMs)
	assert.Equal(t, 2, i.cfg.Analysis.NPlusOneThreshold)
	assert.Equal(t, 128.0, i.cfg.Analysis.MemoryThresholdMB)
	assert.NotNil(t, i.cfg.Now)
}

func TestPageApply(t *testing.T) {
	items := make([]clockwork.IndexEntry, 30)
	for n := range items {
		items[n].Time = float64(n)
	}

	tests := []struct {
		name      string
		page      Page
		wantLen   int
		wantFirst float64
	}{
		{name: "default limit", page: Page{}, wantLen: 20, wantFirst: 0},
		{name: "offset", page: Page{Offset: 25}, wantLen: 5, wantFirst: 25},
		{name: "explicit limit", page: Page{Limit: clockwork.Int(3), Offset: 2}, wantLen: 3, wantFirst: 2},
		{name: "offset past end", page: Page{Offset: 40}, wantLen: 0},
		{name: "negative limit", page: Page{Limit: clockwork.Int(-1)}, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.page.apply(items)
			require.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, got[0].Time)
			}
		})
	}
}

func TestTimeRangeContains(t *testing.T) {
	tr := TimeRange{From: clockwork.Float(10), To: clockwork.Float(20)}

	assert.True(t, tr.set())
	assert.True(t, tr.contains(10))
	assert.True(t, tr.contains(20))
	assert.False(t, tr.contains(9.9))
	assert.False(t, tr.contains(20.1))
	assert.False(t, TimeRange{}.set())
	assert.True(t, TimeRange{}.contains(0))
}

func TestFindWrapsStorageErrors(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk on fire")
	i := newTestInspector(store)

	_, err := i.GetRequest(context.Background(), "abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.err)
	assert.Contains(t, err.Error(), "abc")

	_, err = i.ListRequests(context.Background(), ListRequestsInput{})
	assert.ErrorIs(t, err, store.err)
}

func TestGetRequestMissing(t *testing.T) {
	i := newTestInspector(newMemStore())

	r, err := i.GetRequest(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = i.GetRequest(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = i.GetLatestRequest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, r)
}
