package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/duckdb"
	"github.com/coral-mesh/clockwork-mcp/internal/retry"
)

// PostgresStorage reads Clockwork's SQL storage from PostgreSQL.
type PostgresStorage struct {
	pool     *pgxpool.Pool
	location string
	schema   sqlSchema
	logger   zerolog.Logger
}

// OpenPostgres connects to dsn, waiting for the server with retry.ConnectConfig.
func OpenPostgres(ctx context.Context, dsn, table string, logger zerolog.Logger) (*PostgresStorage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	logger = logger.With().Str("driver", "postgres").Logger()
	err = retry.Do(ctx, retry.ConnectConfig(), func() error {
		if err := pool.Ping(ctx); err != nil {
			logger.Debug().Err(err).Msg("Postgres not ready")
			return err
		}
		return nil
	}, retry.Transient)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	conn := cfg.ConnConfig
	return &PostgresStorage{
		pool:     pool,
		location: fmt.Sprintf("postgres://%s:%d/%s", conn.Host, conn.Port, conn.Database),
		schema:   newSQLSchema(nil, table),
		logger:   logger,
	}, nil
}

// Driver implements Store.
func (s *PostgresStorage) Driver() string { return "postgres" }

// Location implements Store. Credentials are omitted.
func (s *PostgresStorage) Location() string { return s.location }

// Close implements Store.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

// Find implements Storage.
func (s *PostgresStorage) Find(ctx context.Context, id string) (*clockwork.Request, error) {
	found, err := s.FindMany(ctx, []string{id})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// FindMany implements Storage.
func (s *PostgresStorage) FindMany(ctx context.Context, ids []string) ([]*clockwork.Request, error) {
	if len(ids) == 0 {
		return []*clockwork.Request{}, nil
	}
	query, args, err := s.schema.findQuery(ids)
	if err != nil {
		return nil, err
	}
	requests, err := s.queryRequests(ctx, query, args)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*clockwork.Request, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}
	return orderByIDs(ids, byID), nil
}

// Latest implements Storage.
func (s *PostgresStorage) Latest(ctx context.Context) (*clockwork.Request, error) {
	query, args, err := s.schema.latestQuery()
	if err != nil {
		return nil, err
	}
	requests, err := s.queryRequests(ctx, query, args)
	if err != nil || len(requests) == 0 {
		return nil, err
	}
	return requests[0], nil
}

// List implements Storage.
func (s *PostgresStorage) List(ctx context.Context) ([]clockwork.IndexEntry, error) {
	query, args, err := s.schema.listQuery()
	if err != nil {
		return nil, err
	}
	entries := make([]clockwork.IndexEntry, 0)
	err = s.each(ctx, query, args, func(columns []string, values []any) error {
		e, err := decodeIndexRow(columns, values)
		if err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *PostgresStorage) queryRequests(ctx context.Context, query string, args []any) ([]*clockwork.Request, error) {
	requests := make([]*clockwork.Request, 0)
	err := s.each(ctx, query, args, func(columns []string, values []any) error {
		r, err := decodeRow(columns, values)
		if err != nil {
			return err
		}
		requests = append(requests, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// each runs query with ?-placeholders rewritten for PostgreSQL and calls fn per row.
func (s *PostgresStorage) each(ctx context.Context, query string, args []any, fn func([]string, []any) error) error {
	s.logger.Trace().Str("query", duckdb.InterpolateQuery(query, args)).Msg("Querying")

	rows, err := s.pool.Query(ctx, duckdb.Dollar(query), args...)
	if err != nil {
		return fmt.Errorf("postgres query failed: %w", err)
	}
	defer rows.Close()

	columns := fieldNames(rows)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return fmt.Errorf("failed to read row: %w", err)
		}
		if err := fn(columns, values); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres rows: %w", err)
	}
	return nil
}

func fieldNames(rows pgx.Rows) []string {
	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

var _ Store = (*PostgresStorage)(nil)
