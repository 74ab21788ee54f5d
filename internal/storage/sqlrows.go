package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
	"github.com/coral-mesh/clockwork-mcp/internal/duckdb"
)

// jsonColumns are the columns Clockwork's SQL storage serializes as JSON text.
var jsonColumns = map[string]bool{
	"headers": true, "getData": true, "postData": true, "requestData": true,
	"sessionData": true, "authenticatedUser": true, "cookies": true,
	"middleware": true, "databaseQueries": true, "cacheQueries": true,
	"modelsActions": true, "modelsRetrieved": true, "modelsCreated": true,
	"modelsUpdated": true, "modelsDeleted": true, "redisCommands": true,
	"queueJobs": true, "timelineData": true, "log": true, "events": true,
	"routes": true, "notifications": true, "emailsData": true, "viewsData": true,
	"userData": true, "subrequests": true, "xdebug": true,
	"commandArguments": true, "commandArgumentsDefaults": true,
	"commandOptions": true, "commandOptionsDefaults": true,
	"jobPayload": true, "jobOptions": true, "testAsserts": true,
	"clientMetrics": true, "webVitals": true, "parent": true,
}

// indexColumns are selected for List.
var indexColumns = []string{
	"id", "time", "method", "uri", "controller",
	"responseStatus", "responseDuration", "type", "commandName",
}

// sqlSchema builds the queries shared by the SQL-backed drivers.
type sqlSchema struct {
	// table is the quoted, possibly qualified table reference.
	table string
}

// newSQLSchema quotes a table name that may be qualified as schema.table.
func newSQLSchema(prefix []string, table string) sqlSchema {
	parts := append(append([]string{}, prefix...), strings.Split(table, ".")...)
	return sqlSchema{table: duckdb.Quote(parts...)}
}

func (s sqlSchema) findQuery(ids []string) (string, []any, error) {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return duckdb.NewQueryBuilder(s.table).In(duckdb.Quote("id"), values...).Build()
}

func (s sqlSchema) latestQuery() (string, []any, error) {
	return duckdb.NewQueryBuilder(s.table).
		OrderBy("-" + duckdb.Quote("time")).
		Limit(1).
		Build()
}

func (s sqlSchema) listQuery() (string, []any, error) {
	cols := make([]string, len(indexColumns))
	for i, c := range indexColumns {
		cols[i] = duckdb.Quote(c)
	}
	return duckdb.NewQueryBuilder(s.table).
		Select(cols...).
		OrderBy("-" + duckdb.Quote("time")).
		Limit(constants.MaxIndexEntries).
		Build()
}

// rowObject maps one result row to a JSON object. NULLs are dropped and JSON
// text columns are embedded as raw JSON when they parse.
func rowObject(columns []string, values []any) map[string]any {
	obj := make(map[string]any, len(columns))
	for i, col := range columns {
		if i >= len(values) || values[i] == nil {
			continue
		}
		v := values[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		if s, ok := v.(string); ok && jsonColumns[col] {
			trimmed := strings.TrimSpace(s)
			if trimmed == "" || trimmed == "null" {
				continue
			}
			if json.Valid([]byte(trimmed)) {
				v = json.RawMessage(trimmed)
			}
		}
		obj[col] = v
	}
	return obj
}

// decodeRow converts a full Clockwork SQL row into a Request.
func decodeRow(columns []string, values []any) (*clockwork.Request, error) {
	data, err := json.Marshal(rowObject(columns, values))
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	return clockwork.DecodeRequest(data)
}

// decodeIndexRow converts a List row into an IndexEntry.
func decodeIndexRow(columns []string, values []any) (clockwork.IndexEntry, error) {
	var e clockwork.IndexEntry
	data, err := json.Marshal(rowObject(columns, values))
	if err != nil {
		return e, fmt.Errorf("failed to encode row: %w", err)
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("failed to decode index row: %w", err)
	}
	return e, nil
}
