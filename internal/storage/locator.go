package storage

import (
	"os"
	"path/filepath"

	"github.com/coral-mesh/clockwork-mcp/internal/constants"
)

// FindStoragePath resolves the Clockwork file storage directory. An explicit
// path wins and must exist. Otherwise it tries <project>/storage/clockwork,
// <cwd>/storage/clockwork, then each ancestor of cwd that holds an artisan file.
func FindStoragePath(explicit, project, cwd string) (string, bool) {
	if explicit != "" {
		if dirExists(explicit) {
			return explicit, true
		}
		return "", false
	}

	if project != "" {
		if p := filepath.Join(project, constants.StorageSubdir); dirExists(p) {
			return p, true
		}
	}
	if cwd == "" {
		return "", false
	}
	if p := filepath.Join(cwd, constants.StorageSubdir); dirExists(p) {
		return p, true
	}

	if root, ok := walkUpToArtisan(cwd); ok {
		if p := filepath.Join(root, constants.StorageSubdir); dirExists(p) {
			return p, true
		}
	}
	return "", false
}

// FindProjectPath resolves the Laravel project root: a directory holding an
// artisan file. An explicit path must hold one.
func FindProjectPath(explicit, cwd string) (string, bool) {
	if explicit != "" {
		if fileExists(filepath.Join(explicit, constants.ArtisanFile)) {
			return explicit, true
		}
		return "", false
	}
	if cwd == "" {
		return "", false
	}
	return walkUpToArtisan(cwd)
}

// walkUpToArtisan returns dir or its nearest ancestor that holds an artisan file.
func walkUpToArtisan(dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		if fileExists(filepath.Join(dir, constants.ArtisanFile)) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
