package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

func queries(pairs ...any) []clockwork.DatabaseQuery {
	var out []clockwork.DatabaseQuery
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, clockwork.DatabaseQuery{
			Query:    pairs[i].(string),
			Duration: pairs[i+1].(float64),
		})
	}
	return out
}

func TestSlowQueries(t *testing.T) {
	qs := queries(
		"SELECT a", 50.0,
		"SELECT b", 150.0,
		"SELECT c", 100.0,
		"SELECT d", 150.0,
	)

	slow := SlowQueries(qs, 100)
	require.Len(t, slow, 3)
	assert.Equal(t, "SELECT b", slow[0].Query)
	assert.Equal(t, "SELECT d", slow[1].Query, "ties keep input order")
	assert.Equal(t, "SELECT c", slow[2].Query, "threshold is inclusive")
}

func TestSlowQueries_Empty(t *testing.T) {
	assert.Empty(t, SlowQueries(nil, 100))
	assert.NotNil(t, SlowQueries(nil, 100))
}

func TestGroupByPattern(t *testing.T) {
	qs := queries(
		"SELECT * FROM users WHERE id = 1", 10.0,
		"SELECT * FROM posts WHERE id = 1", 100.0,
		"SELECT * FROM users WHERE id = 2", 30.0,
	)

	groups := GroupByPattern(qs)
	require.Len(t, groups, 2)
	assert.Equal(t, "SELECT * FROM posts WHERE id = ?", groups[0].Pattern)
	assert.Equal(t, 2, groups[1].Count)
	assert.Equal(t, 40.0, groups[1].TotalDuration)
	assert.Equal(t, 20.0, groups[1].AvgDuration)
	assert.Equal(t, 30.0, groups[1].MaxDuration)
	assert.Len(t, groups[1].Examples, 2)
}

func TestComputeQueryStats(t *testing.T) {
	qs := queries(
		"  select * from users", 10.0,
		"INSERT INTO users VALUES (1)", 30.0,
		"UPDATE users SET a = 1", 30.0,
		"DELETE FROM users", 5.0,
		"SHOW TABLES", 5.0,
	)

	stats := ComputeQueryStats(qs)
	assert.Equal(t, 5, stats.TotalQueries)
	assert.Equal(t, 80.0, stats.TotalDuration)
	assert.Equal(t, 16.0, stats.AvgDuration)
	require.NotNil(t, stats.SlowestQuery)
	assert.Equal(t, "INSERT INTO users VALUES (1)", stats.SlowestQuery.Query, "first of equal maxima wins")
	assert.Equal(t, QueriesByType{Select: 1, Insert: 1, Update: 1, Delete: 1, Other: 1}, stats.QueriesByType)

	empty := ComputeQueryStats(nil)
	assert.Zero(t, empty.TotalQueries)
	assert.Nil(t, empty.SlowestQuery)
}
