package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	validDrivers    = []string{DriverAuto, DriverFile, DriverArtisan, DriverSQLite, DriverPostgres, DriverRedis}
	validTransports = []string{TransportStdio, TransportSSE}
)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	s := c.Storage
	if !slices.Contains(validDrivers, s.Driver) {
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q (want one of %v)", s.Driver, validDrivers))
	}
	switch s.Driver {
	case DriverSQLite:
		if s.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path: required for the sqlite driver"))
		}
	case DriverPostgres:
		if s.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn: required for the postgres driver"))
		}
	case DriverRedis:
		if s.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr: required for the redis driver"))
		}
	}
	if s.Timeout < 0 {
		errs = append(errs, errors.New("storage.timeout: must not be negative"))
	}
	if s.MaxFileSize < 0 {
		errs = append(errs, errors.New("storage.max_file_size: must not be negative"))
	}

	if !slices.Contains(validTransports, c.Server.Transport) {
		errs = append(errs, fmt.Errorf("server.transport: unknown transport %q (want one of %v)", c.Server.Transport, validTransports))
	}
	if c.Server.Transport == TransportSSE && c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr: required for the sse transport"))
	}

	if c.Analysis.SlowQueryThresholdMs < 0 {
		errs = append(errs, errors.New("analysis.slow_query_threshold_ms: must not be negative"))
	}
	if c.Analysis.MemoryThresholdMB < 0 {
		errs = append(errs, errors.New("analysis.memory_threshold_mb: must not be negative"))
	}

	return errors.Join(errs...)
}
