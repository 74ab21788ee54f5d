// Package export converts captured requests into formats other tools read:
// pprof profiles of a request's call graph and DuckDB snapshots for ad-hoc SQL.
package export
