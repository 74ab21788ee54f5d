// Package duckdb provides DuckDB helpers and a SELECT builder shared by the
// SQL-backed storage drivers and the snapshot exporter.
//
// DuckDB is used in two roles: as an engine that reads Clockwork's SQLite
// storage through the sqlite scanner extension without a cgo SQLite driver,
// and as the target of `clockwork-mcp export`.
//
//	q, args, err := duckdb.NewQueryBuilder(duckdb.Quote("cw", "clockwork")).
//	    Select("id", "time").
//	    Eq("type", "request").
//	    OrderBy("-time").
//	    Limit(100).
//	    Build()
//
// The builder emits `?` placeholders; call Dollar on the result for
// PostgreSQL-style `$n` placeholders.
package duckdb
