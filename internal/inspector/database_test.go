package inspector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

func queryFixture() *memStore {
	r := httpRequest("q1", 100, "/posts")
	r.DatabaseQueries = []clockwork.DatabaseQuery{
		{Query: "SELECT * FROM posts", Duration: 150},
		{Query: "select * from users where id = 1", Duration: 5},
		{Query: "UPDATE posts SET views = 2", Duration: 120},
		{Query: "DELETE FROM sessions", Duration: 1},
	}
	other := httpRequest("q2", 200, "/posts")
	other.DatabaseQueries = []clockwork.DatabaseQuery{
		{Query: "INSERT INTO logs VALUES (1)", Duration: 3},
	}
	return newMemStore(r, other)
}

func TestGetQueries(t *testing.T) {
	i := newTestInspector(queryFixture())
	ctx := context.Background()

	all, err := i.GetQueries(ctx, QueriesInput{RequestID: "q1"})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	slow, err := i.GetQueries(ctx, QueriesInput{RequestID: "q1", Slow: true})
	require.NoError(t, err)
	require.Len(t, slow, 2)
	assert.Equal(t, "SELECT * FROM posts", slow[0].Query)
	assert.Equal(t, "UPDATE posts SET views = 2", slow[1].Query)

	slow, err = i.GetQueries(ctx, QueriesInput{RequestID: "q1", Slow: true, Threshold: clockwork.Float(130)})
	require.NoError(t, err)
	assert.Len(t, slow, 1)

	missing, err := i.GetQueries(ctx, QueriesInput{RequestID: "zzz"})
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestGetQueryStats(t *testing.T) {
	i := newTestInspector(queryFixture())
	ctx := context.Background()

	stats, err := i.GetQueryStats(ctx, QueryStatsInput{RequestID: "q1"})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalQueries)
	assert.Equal(t, 2, stats.QueriesByType.Select)
	assert.Equal(t, 1, stats.QueriesByType.Update)
	assert.Equal(t, 1, stats.QueriesByType.Delete)
	assert.InDelta(t, 276.0, stats.TotalDuration, 1e-9)

	ranged, err := i.GetQueryStats(ctx, QueryStatsInput{TimeRange: TimeRange{From: clockwork.Float(0)}})
	require.NoError(t, err)
	assert.Equal(t, 5, ranged.TotalQueries)
	assert.Equal(t, 1, ranged.QueriesByType.Insert)

	none, err := i.GetQueryStats(ctx, QueryStatsInput{})
	require.NoError(t, err)
	assert.Zero(t, none.TotalQueries)
}
