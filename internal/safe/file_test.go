package safe

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"abc"}`), 0o600))

	data, err := ReadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"abc"}`, string(data))
}

func TestReadFile_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc.json.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"id":"abc"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	data, err := ReadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"abc"}`, string(data))

	_, err = ReadFile(path, &ReadOptions{MaxSize: 5})
	require.Error(t, err)
}

func TestReadFile_Rejections(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.json")
	require.NoError(t, os.WriteFile(target, []byte("0123456789"), 0o600))

	link := filepath.Join(dir, "link.json")
	require.NoError(t, os.Symlink(target, link))

	_, err := ReadFile(link, nil)
	assert.ErrorContains(t, err, "symlink")

	data, err := ReadFile(link, &ReadOptions{AllowSymlinks: true})
	require.NoError(t, err)
	assert.Len(t, data, 10)

	_, err = ReadFile(target, &ReadOptions{MaxSize: 4})
	assert.ErrorContains(t, err, "exceeds maximum")

	_, err = ReadFile(dir, nil)
	assert.ErrorContains(t, err, "not a regular file")

	_, err = ReadFile(filepath.Join(dir, "missing.json"), nil)
	assert.True(t, os.IsNotExist(err))
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("1234"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte("12"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	size, err := DirSize(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(6), size)
}
