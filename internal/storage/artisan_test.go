package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	output string
	err    error
	calls  [][]string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{dir, name}, args...))
	return []byte(f.output), f.err
}

func (f *fakeRunner) code() string {
	last := f.calls[len(f.calls)-1]
	return strings.TrimPrefix(last[len(last)-1], "--execute=")
}

func newArtisanFixture(output string) (*ArtisanStorage, *fakeRunner) {
	runner := &fakeRunner{output: output}
	s := NewArtisanStorage(ArtisanOptions{ProjectPath: "/srv/app", Runner: runner}, zerolog.Nop())
	return s, runner
}

func TestArtisanStorage_Find(t *testing.T) {
	s, runner := newArtisanFixture("Deprecated: something\n{\"data\":{\"id\":\"abc\",\"uri\":\"/x\"}}\n")

	r, err := s.Find(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "/x", r.URI)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "/srv/app", call[0])
	assert.Equal(t, "php", call[1])
	assert.Equal(t, "/srv/app/artisan", call[2])
	assert.Equal(t, "tinker", call[3])
	assert.Contains(t, runner.code(), "find('abc')")
}

func TestArtisanStorage_FindNull(t *testing.T) {
	s, _ := newArtisanFixture(`{"data":null}`)
	r, err := s.Find(context.Background(), "abc")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestArtisanStorage_RejectsUnsafeIDs(t *testing.T) {
	s, runner := newArtisanFixture(`{"data":null}`)

	r, err := s.Find(context.Background(), "x'); system('rm -rf /'); ('")
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Empty(t, runner.calls)

	found, err := s.FindMany(context.Background(), []string{"bad id", "a;b"})
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Empty(t, runner.calls)
}

func TestArtisanStorage_FindMany(t *testing.T) {
	s, runner := newArtisanFixture(`{"data":[{"id":"b"},{"id":"a"}]}`)

	found, err := s.FindMany(context.Background(), []string{"a", "bad id", "b", "c"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a", found[0].ID)
	assert.Equal(t, "b", found[1].ID)
	assert.Contains(t, runner.code(), "['a', 'b', 'c']")
}

func TestArtisanStorage_List(t *testing.T) {
	s, runner := newArtisanFixture(`{"data":[{"id":"old","time":1},{"id":"new","time":2,"type":"command","commandName":"migrate"}]}`)

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "migrate", entries[0].CommandName)
	assert.Contains(t, runner.code(), "previous($r->id, 999)")
}

func TestArtisanStorage_Errors(t *testing.T) {
	s, _ := newArtisanFixture("PHP Fatal error")
	_, err := s.Latest(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON")

	s, runner := newArtisanFixture("")
	runner.err = errors.New("exit status 255")
	_, err = s.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 255")
}

func TestFirstJSONLine(t *testing.T) {
	line, ok := firstJSONLine([]byte("warning\n  [1,2]\n{\"a\":1}\n"))
	require.True(t, ok)
	assert.Equal(t, "[1,2]", string(line))

	_, ok = firstJSONLine([]byte("nothing here\n"))
	assert.False(t, ok)
}
