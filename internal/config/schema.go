// Package config provides configuration loading and management.
package config

import (
	"time"

	"github.com/coral-mesh/clockwork-mcp/internal/constants"
)

// Storage driver names.
const (
	DriverAuto     = "auto"
	DriverFile     = "file"
	DriverArtisan  = "artisan"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// MCP transport names.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config is the complete clockwork-mcp configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StorageConfig selects and configures the Clockwork storage backend.
type StorageConfig struct {
	// Driver is one of auto, file, artisan, sqlite, postgres, redis.
	Driver string `yaml:"driver" env:"CLOCKWORK_DRIVER"`

	// Path is the Clockwork file storage directory.
	Path string `yaml:"path,omitempty" env:"CLOCKWORK_STORAGE_PATH"`

	// ProjectPath is the Laravel project root (artisan driver, storage discovery).
	ProjectPath string `yaml:"project_path,omitempty" env:"CLOCKWORK_PROJECT_PATH"`

	PHPBinary string        `yaml:"php_binary" env:"CLOCKWORK_PHP_PATH"`
	Timeout   time.Duration `yaml:"timeout" env:"CLOCKWORK_TIMEOUT"`

	// MaxFileSize bounds a single payload read by the file driver, in bytes.
	MaxFileSize int64 `yaml:"max_file_size,omitempty" env:"CLOCKWORK_MAX_FILE_SIZE"`

	SQLitePath  string `yaml:"sqlite_path,omitempty" env:"CLOCKWORK_SQLITE_PATH"`
	PostgresDSN string `yaml:"postgres_dsn,omitempty" env:"CLOCKWORK_POSTGRES_DSN"`
	Table       string `yaml:"table" env:"CLOCKWORK_SQL_TABLE"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis driver.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty" env:"CLOCKWORK_REDIS_ADDR"`
	Password string `yaml:"password,omitempty" env:"CLOCKWORK_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"CLOCKWORK_REDIS_DB"`
	Prefix   string `yaml:"prefix" env:"CLOCKWORK_REDIS_PREFIX"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport" env:"CLOCKWORK_MCP_TRANSPORT"`
	Addr      string `yaml:"addr" env:"CLOCKWORK_MCP_ADDR"`

	// EnabledTools restricts the registered tools. Empty means all.
	EnabledTools []string `yaml:"enabled_tools,omitempty" env:"CLOCKWORK_MCP_TOOLS"`

	AuditEnabled   bool `yaml:"audit_enabled" env:"CLOCKWORK_MCP_AUDIT"`
	MetricsEnabled bool `yaml:"metrics_enabled" env:"CLOCKWORK_MCP_METRICS"`
}

// AnalysisConfig holds defaults applied when a tool call omits a threshold.
type AnalysisConfig struct {
	SlowQueryThresholdMs float64 `yaml:"slow_query_threshold_ms" env:"CLOCKWORK_SLOW_QUERY_MS"`
	NPlusOneThreshold    int     `yaml:"n_plus_one_threshold" env:"CLOCKWORK_N_PLUS_ONE_THRESHOLD"`
	MemoryThresholdMB    float64 `yaml:"memory_threshold_mb" env:"CLOCKWORK_MEMORY_THRESHOLD_MB"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"CLOCKWORK_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"CLOCKWORK_LOG_PRETTY"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:    DriverAuto,
			PHPBinary: constants.DefaultPHPBinary,
			Timeout:   constants.DefaultArtisanTimeout,
			Table:     constants.DefaultSQLTable,
			Redis: RedisConfig{
				Prefix: constants.DefaultRedisPrefix,
			},
		},
		Server: ServerConfig{
			Transport:      TransportStdio,
			Addr:           constants.DefaultSSEAddr,
			MetricsEnabled: true,
		},
		Analysis: AnalysisConfig{
			SlowQueryThresholdMs: constants.DefaultSlowQueryThresholdMs,
			NPlusOneThreshold:    constants.DefaultNPlusOneThreshold,
			MemoryThresholdMB:    constants.DefaultMemoryThresholdMB,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
