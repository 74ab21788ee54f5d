package inspector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/storage"
)

func TestGetStatusFileStorage(t *testing.T) {
	dir := t.TempDir()
	index := "a\t1700000100\tGET\t/a\t\t200\t10\trequest\n" +
		"b\t1700000200\tGET\t/b\t\t200\t12\trequest\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index"), []byte(index), 0o600))

	store := storage.NewFileStorage(dir, 0, zerolog.Nop())
	i := New(store, Config{Driver: store.Driver(), Location: store.Location()}, zerolog.Nop())

	st, err := i.GetStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Found)
	assert.Equal(t, "file", st.Driver)
	assert.Equal(t, 2, st.RequestCount)
	require.NotNil(t, st.NewestRequest)
	assert.Equal(t, 1700000200.0, *st.NewestRequest)
	assert.Equal(t, 1700000100.0, *st.OldestRequest)
	require.NotNil(t, st.StorageSizeBytes)
	assert.Equal(t, int64(len(index)), *st.StorageSizeBytes)
}

func TestGetStatusMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	i := New(storage.NewFileStorage(dir, 0, zerolog.Nop()), Config{Driver: "file", Location: dir}, zerolog.Nop())

	st, err := i.GetStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Found)
	assert.Zero(t, st.RequestCount)
	assert.Nil(t, st.NewestRequest)
}

func TestGetStatusUnreachableBackend(t *testing.T) {
	store := newMemStore()
	store.err = assert.AnError
	i := newTestInspector(store)

	st, err := i.GetStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Found)
	assert.Equal(t, "memory", st.Driver)
}

func TestExplainRequestFlow(t *testing.T) {
	r := httpRequest("flow", 100, "/orders")
	r.Middleware = []string{"web"}
	r.MemoryUsage = clockwork.Float(2 * bytesPerMB)
	r.DatabaseQueries = []clockwork.DatabaseQuery{{Query: "a", Duration: 1.5}, {Query: "b", Duration: 2.5}}
	i := newTestInspector(newMemStore(r))

	flow, err := i.ExplainRequestFlow(context.Background(), "flow")
	require.NoError(t, err)
	assert.Equal(t, "/orders", flow.URI)
	assert.Equal(t, 2, flow.QueryCount)
	assert.Equal(t, 4.0, flow.TotalQueryDuration)
	require.NotNil(t, flow.MemoryMB)
	assert.Equal(t, 2.0, *flow.MemoryMB)

	missing, err := i.ExplainRequestFlow(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, RequestFlow{ID: "nope"}, missing)
}
