package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/config"
)

// Open creates the Store selected by cfg.Driver. The auto driver picks file
// storage when a storage directory can be located, otherwise artisan when a
// Laravel project can be found.
func Open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (Store, error) {
	cwd, _ := os.Getwd()

	switch cfg.Driver {
	case config.DriverAuto, "":
		if dir, ok := FindStoragePath(cfg.Path, cfg.ProjectPath, cwd); ok {
			logger.Debug().Str("path", dir).Msg("Auto-selected file storage")
			return NewFileStorage(dir, cfg.MaxFileSize, logger), nil
		}
		if project, ok := FindProjectPath(cfg.ProjectPath, cwd); ok {
			logger.Debug().Str("project", project).Msg("Auto-selected artisan storage")
			return newArtisan(project, cfg, logger), nil
		}
		return nil, fmt.Errorf("clockwork storage not found: set CLOCKWORK_STORAGE_PATH or CLOCKWORK_PROJECT_PATH, or run inside a Laravel project")

	case config.DriverFile:
		dir, ok := FindStoragePath(cfg.Path, cfg.ProjectPath, cwd)
		if !ok {
			if cfg.Path != "" {
				return nil, fmt.Errorf("clockwork storage directory does not exist: %s", cfg.Path)
			}
			return nil, fmt.Errorf("clockwork storage directory not found")
		}
		return NewFileStorage(dir, cfg.MaxFileSize, logger), nil

	case config.DriverArtisan:
		project, ok := FindProjectPath(cfg.ProjectPath, cwd)
		if !ok {
			return nil, fmt.Errorf("laravel project not found (no artisan file)")
		}
		return newArtisan(project, cfg, logger), nil

	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, cfg.Table, logger)

	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.PostgresDSN, cfg.Table, logger)

	case config.DriverRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newArtisan(project string, cfg config.StorageConfig, logger zerolog.Logger) *ArtisanStorage {
	return NewArtisanStorage(ArtisanOptions{
		ProjectPath: project,
		PHPBinary:   cfg.PHPBinary,
		Timeout:     cfg.Timeout,
	}, logger)
}
