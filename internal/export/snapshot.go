package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/analysis"
	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/errors"
)

var snapshotSchema = []string{`
CREATE OR REPLACE TABLE requests (
	id          VARCHAR PRIMARY KEY,
	time        DOUBLE NOT NULL,
	type        VARCHAR NOT NULL,
	method      VARCHAR,
	uri         VARCHAR,
	controller  VARCHAR,
	status      INTEGER,
	duration_ms DOUBLE,
	memory_mb   DOUBLE,
	query_count INTEGER NOT NULL
)`, `
CREATE OR REPLACE TABLE queries (
	request_id  VARCHAR NOT NULL,
	idx         INTEGER NOT NULL,
	query       VARCHAR NOT NULL,
	pattern     VARCHAR NOT NULL,
	fingerprint VARCHAR NOT NULL,
	duration_ms DOUBLE NOT NULL,
	connection  VARCHAR,
	file        VARCHAR,
	line        INTEGER
)`, `
CREATE OR REPLACE TABLE logs (
	request_id VARCHAR NOT NULL,
	idx        INTEGER NOT NULL,
	level      VARCHAR NOT NULL,
	message    VARCHAR NOT NULL,
	file       VARCHAR,
	line       INTEGER
)`,
}

// SnapshotStats counts the rows written by Snapshot.
type SnapshotStats struct {
	Requests int `json:"requests"`
	Queries  int `json:"queries"`
	Logs     int `json:"logs"`
}

// Snapshot replaces the requests, queries and logs tables of db with the
// given requests. Queries carry their normalized pattern and fingerprint so
// they can be grouped in SQL.
func Snapshot(ctx context.Context, db *sql.DB, requests []*clockwork.Request, logger zerolog.Logger) (SnapshotStats, error) {
	var stats SnapshotStats

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, ddl := range snapshotSchema {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return stats, fmt.Errorf("failed to create snapshot tables: %w", err)
		}
	}

	insertRequest, err := tx.PrepareContext(ctx, `
		INSERT INTO requests (id, time, type, method, uri, controller, status, duration_ms, memory_mb, query_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return stats, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer errors.DeferClose(logger, insertRequest, "failed to close statement")

	insertQuery, err := tx.PrepareContext(ctx, `
		INSERT INTO queries (request_id, idx, query, pattern, fingerprint, duration_ms, connection, file, line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return stats, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer errors.DeferClose(logger, insertQuery, "failed to close statement")

	insertLog, err := tx.PrepareContext(ctx, `
		INSERT INTO logs (request_id, idx, level, message, file, line)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return stats, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer errors.DeferClose(logger, insertLog, "failed to close statement")

	for _, r := range requests {
		if r == nil {
			continue
		}
		var memoryMB *float64
		if r.MemoryUsage != nil {
			mb := *r.MemoryUsage / (1024 * 1024)
			memoryMB = &mb
		}
		if _, err := insertRequest.ExecContext(ctx,
			r.ID, r.Time, string(r.EffectiveType()),
			nullString(r.Method), nullString(r.URI), nullString(r.Controller),
			r.ResponseStatus, r.ResponseDuration, memoryMB,
			len(r.DatabaseQueries),
		); err != nil {
			return stats, fmt.Errorf("failed to insert request %s: %w", r.ID, err)
		}
		stats.Requests++

		for n, q := range r.DatabaseQueries {
			pattern := analysis.NormalizeQuery(q.Query)
			if _, err := insertQuery.ExecContext(ctx,
				r.ID, n, q.Query, pattern, analysis.Fingerprint(pattern), q.Duration,
				nullString(q.Connection), nullString(q.File), q.Line,
			); err != nil {
				return stats, fmt.Errorf("failed to insert query of %s: %w", r.ID, err)
			}
			stats.Queries++
		}

		for n, l := range r.Log {
			if _, err := insertLog.ExecContext(ctx,
				r.ID, n, l.Level, l.Message, nullString(l.File), l.Line,
			); err != nil {
				return stats, fmt.Errorf("failed to insert log of %s: %w", r.ID, err)
			}
			stats.Logs++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug().
		Int("requests", stats.Requests).
		Int("queries", stats.Queries).
		Int("logs", stats.Logs).
		Msg("Wrote snapshot")
	return stats, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
