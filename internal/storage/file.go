package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
	"github.com/coral-mesh/clockwork-mcp/internal/safe"
)

// FileStorage reads Clockwork's file storage directory: an index file plus
// one <id>.json (or <id>.json.gz) payload per request.
type FileStorage struct {
	dir     string
	readOpt *safe.ReadOptions
	logger  zerolog.Logger
}

// NewFileStorage creates a FileStorage over dir. maxFileSize <= 0 uses the default limit.
func NewFileStorage(dir string, maxFileSize int64, logger zerolog.Logger) *FileStorage {
	return &FileStorage{
		dir:     dir,
		readOpt: &safe.ReadOptions{MaxSize: maxFileSize},
		logger:  logger.With().Str("driver", "file").Logger(),
	}
}

// Driver implements Store.
func (s *FileStorage) Driver() string { return "file" }

// Location implements Store.
func (s *FileStorage) Location() string { return s.dir }

// Close implements Store.
func (s *FileStorage) Close() error { return nil }

// Find implements Storage.
func (s *FileStorage) Find(ctx context.Context, id string) (*clockwork.Request, error) {
	if !validID(id) {
		return nil, nil
	}

	for _, name := range []string{id + ".json", id + ".json.gz"} {
		path := filepath.Join(s.dir, name)
		data, err := safe.ReadFile(path, s.readOpt)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read request %s: %w", id, err)
		}
		r, err := clockwork.DecodeRequest(data)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", id, err)
		}
		s.logger.Trace().Str("id", id).Int("bytes", len(data)).Msg("Read request")
		return r, nil
	}
	return nil, nil
}

// FindMany implements Storage.
func (s *FileStorage) FindMany(ctx context.Context, ids []string) ([]*clockwork.Request, error) {
	return findEach(ctx, s, ids, s.logger)
}

// Latest implements Storage.
func (s *FileStorage) Latest(ctx context.Context) (*clockwork.Request, error) {
	entries, err := s.List(ctx)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return s.Find(ctx, entries[0].ID)
}

// List implements Storage. A missing index means no requests.
func (s *FileStorage) List(_ context.Context) ([]clockwork.IndexEntry, error) {
	data, err := safe.ReadFile(filepath.Join(s.dir, constants.IndexFile), s.readOpt)
	if errors.Is(err, fs.ErrNotExist) {
		return []clockwork.IndexEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return ParseIndex(data), nil
}

// validID rejects IDs that could escape the storage directory or inject code.
func validID(id string) bool {
	if id == "" || len(id) > 128 || strings.HasPrefix(id, ".") {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}

var _ Store = (*FileStorage)(nil)

// dirExists reports whether path is an existing directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
