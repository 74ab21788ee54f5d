package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/clockwork-mcp/internal/config"
	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
	"github.com/coral-mesh/clockwork-mcp/internal/logging"
	"github.com/coral-mesh/clockwork-mcp/internal/storage"
)

// environment carries the global flags and builds what commands share.
type environment struct {
	configPath  string
	driver      string
	storagePath string
	projectPath string
	logLevel    string
	prettyLogs  bool

	// logOutput overrides stderr in tests.
	logOutput io.Writer
}

func (e *environment) addFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&e.configPath, "config", "", "Config file (default $CLOCKWORK_MCP_CONFIG or ~/.clockwork-mcp/config.yaml)")
	flags.StringVar(&e.driver, "driver", "", "Storage driver (auto, file, artisan, sqlite, postgres, redis)")
	flags.StringVar(&e.storagePath, "storage-path", "", "Clockwork file storage directory")
	flags.StringVar(&e.projectPath, "project", "", "Laravel project root")
	flags.StringVar(&e.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.BoolVar(&e.prettyLogs, "pretty-logs", false, "Human-readable log output")
}

// loadConfig reads the config file, applies the environment and then the
// global flags, and validates the result.
func (e *environment) loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(e.configPath).Load()
	if err != nil {
		return nil, err
	}

	if e.driver != "" {
		cfg.Storage.Driver = e.driver
	}
	if e.storagePath != "" {
		cfg.Storage.Path = e.storagePath
	}
	if e.projectPath != "" {
		cfg.Storage.ProjectPath = e.projectPath
	}
	if e.logLevel != "" {
		cfg.Logging.Level = e.logLevel
	}
	if e.prettyLogs {
		cfg.Logging.Pretty = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (e *environment) logger(cfg *config.Config) zerolog.Logger {
	out := e.logOutput
	if out == nil {
		out = os.Stderr
	}
	return logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: out,
	})
}

// session is an opened store with an inspector over it.
type session struct {
	cfg       *config.Config
	logger    zerolog.Logger
	store     storage.Store
	inspector *inspector.Inspector
}

func (s *session) Close() error {
	return s.store.Close()
}

// open loads the configuration and opens the configured storage.
func (e *environment) open(ctx context.Context) (*session, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := e.logger(cfg)

	store, err := storage.Open(ctx, cfg.Storage, logging.Component(logger, "storage"))
	if err != nil {
		return nil, err
	}

	insp := inspector.New(store, inspector.Config{
		Analysis: cfg.Analysis,
		Driver:   store.Driver(),
		Location: store.Location(),
	}, logging.Component(logger, "inspector"))

	return &session{cfg: cfg, logger: logger, store: store, inspector: insp}, nil
}
