package duckdb

import (
	"errors"
	"strings"
)

// Builder assembles the SELECT statements the SQL drivers run against
// Clockwork's request table. Conditions are joined with AND and always use
// `?` placeholders.
type Builder struct {
	table      string
	columns    []string
	conditions []string
	args       []any
	order      []string
	limit      int
}

// NewQueryBuilder starts a query against table. The name is used verbatim, so
// quote it with Quote first when it is camelCase or schema qualified.
func NewQueryBuilder(table string) *Builder {
	return &Builder{table: table}
}

// Select restricts the projected columns. Without it the query selects *.
func (b *Builder) Select(columns ...string) *Builder {
	b.columns = append(b.columns, columns...)
	return b
}

// Eq filters column = value. An empty string value leaves the query unfiltered.
func (b *Builder) Eq(column string, value any) *Builder {
	if s, ok := value.(string); ok && s == "" {
		return b
	}
	return b.cond(column+" = ?", value)
}

// In filters column IN (values...). No values leaves the query unfiltered.
func (b *Builder) In(column string, values ...any) *Builder {
	if len(values) == 0 {
		return b
	}
	return b.cond(column+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")+")", values...)
}

// Since filters column >= value, used for time windows.
func (b *Builder) Since(column string, value any) *Builder {
	return b.cond(column+" >= ?", value)
}

func (b *Builder) cond(expr string, args ...any) *Builder {
	b.conditions = append(b.conditions, expr)
	b.args = append(b.args, args...)
	return b
}

// OrderBy appends sort keys. A leading "-" sorts that key descending:
//
//	OrderBy(`-"time"`)
func (b *Builder) OrderBy(columns ...string) *Builder {
	for _, col := range columns {
		if rest, ok := strings.CutPrefix(col, "-"); ok {
			col = rest + " DESC"
		}
		b.order = append(b.order, col)
	}
	return b
}

// Limit caps the number of rows. Zero means no limit.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Build renders the statement and its arguments. The builder is not consumed,
// so Build may be called repeatedly.
func (b *Builder) Build() (string, []any, error) {
	if b.table == "" {
		return "", nil, errors.New("table name is required")
	}

	cols := "*"
	if len(b.columns) > 0 {
		cols = strings.Join(b.columns, ", ")
	}

	var q strings.Builder
	q.WriteString("SELECT " + cols + " FROM " + b.table)
	if len(b.conditions) > 0 {
		q.WriteString(" WHERE " + strings.Join(b.conditions, " AND "))
	}
	if len(b.order) > 0 {
		q.WriteString(" ORDER BY " + strings.Join(b.order, ", "))
	}

	args := append(make([]any, 0, len(b.args)+1), b.args...)
	if b.limit > 0 {
		q.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	}
	return q.String(), args, nil
}
