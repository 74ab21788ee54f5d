package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/duckdb"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
)

const sqliteAlias = "clockwork_db"

// SQLiteStorage reads Clockwork's SQL storage from a SQLite file attached
// read-only to an in-memory DuckDB database.
type SQLiteStorage struct {
	db     *sql.DB
	path   string
	schema sqlSchema
	logger zerolog.Logger
}

// OpenSQLite attaches the SQLite database at path and reads from table.
func OpenSQLite(ctx context.Context, path, table string, logger zerolog.Logger) (*SQLiteStorage, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite database: %w", err)
	}

	db, err := duckdb.OpenDB("")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := duckdb.AttachSQLite(ctx, db, path, sqliteAlias); err != nil {
		errors.DeferClose(logger, db, "failed to close duckdb")
		return nil, err
	}

	return &SQLiteStorage{
		db:     db,
		path:   path,
		schema: newSQLSchema([]string{sqliteAlias}, table),
		logger: logger.With().Str("driver", "sqlite").Logger(),
	}, nil
}

// Driver implements Store.
func (s *SQLiteStorage) Driver() string { return "sqlite" }

// Location implements Store.
func (s *SQLiteStorage) Location() string { return s.path }

// Close implements Store.
func (s *SQLiteStorage) Close() error { return s.db.Close() }

// Find implements Storage.
func (s *SQLiteStorage) Find(ctx context.Context, id string) (*clockwork.Request, error) {
	found, err := s.FindMany(ctx, []string{id})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// FindMany implements Storage.
func (s *SQLiteStorage) FindMany(ctx context.Context, ids []string) ([]*clockwork.Request, error) {
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
func (s *SQLiteStorage) Latest(ctx context.Context) (*clockwork.Request, error) {
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
func (s *SQLiteStorage) List(ctx context.Context) ([]clockwork.IndexEntry, error) {
	query, args, err := s.schema.listQuery()
	if err != nil {
		return nil, err
	}
	columns, rows, err := s.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	entries := make([]clockwork.IndexEntry, 0, len(rows))
	for _, values := range rows {
		e, err := decodeIndexRow(columns, values)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *SQLiteStorage) queryRequests(ctx context.Context, query string, args []any) ([]*clockwork.Request, error) {
	columns, rows, err := s.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	requests := make([]*clockwork.Request, 0, len(rows))
	for _, values := range rows {
		r, err := decodeRow(columns, values)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, nil
}

func (s *SQLiteStorage) query(ctx context.Context, query string, args []any) ([]string, [][]any, error) {
	s.logger.Trace().Str("query", duckdb.InterpolateQuery(query, args)).Msg("Querying")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite query failed: %w", err)
	}
	defer errors.DeferClose(s.logger, rows, "failed to close rows")

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("sqlite rows: %w", err)
	}
	return columns, out, nil
}

var _ Store = (*SQLiteStorage)(nil)
