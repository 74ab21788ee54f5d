package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRow(t *testing.T) {
	columns := []string{"id", "time", "uri", "responseDuration", "databaseQueries", "log", "headers", "commandName"}
	values := []any{
		"abc",
		float64(1700000000),
		[]byte("/users"),
		int64(42),
		`[{"query":"select * from users where id = 1","duration":3.5}]`,
		"null",
		"[]",
		nil,
	}

	r, err := decodeRow(columns, values)
	require.NoError(t, err)
	assert.Equal(t, "abc", r.ID)
	assert.Equal(t, "/users", r.URI)
	require.NotNil(t, r.ResponseDuration)
	assert.InDelta(t, 42, *r.ResponseDuration, 1e-9)
	require.Len(t, r.DatabaseQueries, 1)
	assert.InDelta(t, 3.5, r.DatabaseQueries[0].Duration, 1e-9)
	assert.Empty(t, r.Log)
	assert.Empty(t, r.Headers)
}

func TestDecodeIndexRow(t *testing.T) {
	e, err := decodeIndexRow(
		[]string{"id", "time", "type", "commandName", "responseStatus"},
		[]any{"c1", 12.5, "command", "queue:work", nil},
	)
	require.NoError(t, err)
	assert.Equal(t, "c1", e.ID)
	assert.Equal(t, "queue:work", e.CommandName)
	assert.Nil(t, e.ResponseStatus)
}

func TestSQLSchemaQueries(t *testing.T) {
	s := newSQLSchema([]string{"db"}, "clockwork")

	q, args, err := s.findQuery([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "db"."clockwork" WHERE "id" IN (?, ?)`, q)
	assert.Equal(t, []any{"a", "b"}, args)

	q, args, err = s.latestQuery()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "db"."clockwork" ORDER BY "time" DESC LIMIT ?`, q)
	assert.Equal(t, []any{1}, args)

	q, _, err = newSQLSchema(nil, "public.clockwork").listQuery()
	require.NoError(t, err)
	assert.Contains(t, q, `FROM "public"."clockwork"`)
	assert.Contains(t, q, `"responseDuration"`)
	assert.Contains(t, q, `ORDER BY "time" DESC LIMIT ?`)
}
