package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newFileFixture(t *testing.T) *FileStorage {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "index",
		"old\t100\tGET\t/a\t\t200\t5\trequest\n"+
			"new\t200\tGET\t/b\t\t200\t7\trequest\n")
	writeFixture(t, dir, "old.json", `{"id":"old","time":100,"uri":"/a","responseDuration":5}`)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(`{"id":"new","time":200,"uri":"/b","databaseQueries":[{"query":"select 1","duration":1.5}]}`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.json.gz"), buf.Bytes(), 0o644))

	return NewFileStorage(dir, 0, zerolog.Nop())
}

func TestFileStorage_List(t *testing.T) {
	s := newFileFixture(t)
	entries, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "old", entries[1].ID)
}

func TestFileStorage_ListMissingIndex(t *testing.T) {
	s := NewFileStorage(t.TempDir(), 0, zerolog.Nop())
	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	latest, err := s.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestFileStorage_Find(t *testing.T) {
	s := newFileFixture(t)
	ctx := context.Background()

	r, err := s.Find(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "/a", r.URI)

	r, err = s.Find(ctx, "new")
	require.NoError(t, err)
	require.NotNil(t, r)
	require.Len(t, r.DatabaseQueries, 1)
	assert.Equal(t, "select 1", r.DatabaseQueries[0].Query)

	r, err = s.Find(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = s.Find(ctx, "../etc/passwd")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestFileStorage_FindCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "bad.json", "{not json")
	s := NewFileStorage(dir, 0, zerolog.Nop())

	_, err := s.Find(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestFileStorage_FindManyKeepsOrderAndDropsMissing(t *testing.T) {
	s := newFileFixture(t)
	found, err := s.FindMany(context.Background(), []string{"new", "missing", "old"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "new", found[0].ID)
	assert.Equal(t, "old", found[1].ID)
}

func TestFileStorage_FindManySkipsMalformed(t *testing.T) {
	s := newFileFixture(t)
	writeFixture(t, s.dir, "broken.json", `{"id":"broken","databaseQueries":"nope"}`)

	_, err := s.Find(context.Background(), "broken")
	require.ErrorIs(t, err, clockwork.ErrMalformed)

	found, err := s.FindMany(context.Background(), []string{"old", "broken", "new"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "old", found[0].ID)
	assert.Equal(t, "new", found[1].ID)
}

func TestFileStorage_Latest(t *testing.T) {
	s := newFileFixture(t)
	r, err := s.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "new", r.ID)
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"1700000000-1234", true},
		{"abc_DEF.1", true},
		{"", false},
		{".hidden", false},
		{"a/b", false},
		{"a'b", false},
		{"a b", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validID(tt.id), tt.id)
	}
}
