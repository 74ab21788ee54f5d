package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net/url"
	"strings"

	duckdbDriver "github.com/marcboeker/go-duckdb"
)

// OpenDB opens a DuckDB database with autoloading of known extensions
// enabled, and loads the sqlite scanner on every pooled connection.
// An empty dsn opens an in-memory database.
func OpenDB(dsn string) (*sql.DB, error) {
	dsn = injectAutoloadConfig(dsn)

	connector, err := duckdbDriver.NewConnector(dsn, func(execer driver.ExecerContext) error {
		// Non-fatal: the extension may be unavailable offline; ATTACH then fails with a clear error.
		_, _ = execer.ExecContext(context.Background(), "LOAD sqlite", nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(connector), nil
}

// AttachSQLite attaches a SQLite database file read-only under alias.
func AttachSQLite(ctx context.Context, db *sql.DB, path, alias string) error {
	escaped := strings.ReplaceAll(path, "'", "''")
	query := fmt.Sprintf("ATTACH '%s' AS %s (TYPE sqlite, READ_ONLY)", escaped, alias)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to attach sqlite database %s: %w", path, err)
	}
	return nil
}

// injectAutoloadConfig adds autoinstall_known_extensions and
// autoload_known_extensions to the DSN query parameters if not already set.
func injectAutoloadConfig(dsn string) string {
	path, query, _ := strings.Cut(dsn, "?")

	params, err := url.ParseQuery(query)
	if err != nil {
		return dsn
	}

	if !params.Has("autoinstall_known_extensions") {
		params.Set("autoinstall_known_extensions", "true")
	}
	if !params.Has("autoload_known_extensions") {
		params.Set("autoload_known_extensions", "true")
	}

	return path + "?" + params.Encode()
}
