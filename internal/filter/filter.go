// Package filter compiles CEL expressions that select index entries.
//
// Expressions see one variable per index column:
//
//	id, type, method, uri, controller, command  string
//	time, duration                              double
//	status                                      int
//
// Missing numbers are 0 and missing strings are empty, so
// `status >= 500 && uri.startsWith("/api")` is always well defined.
package filter

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// Filter is a compiled expression. A nil Filter matches everything.
type Filter struct {
	expr    string
	program cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("time", cel.DoubleType),
		cel.Variable("type", cel.StringType),
		cel.Variable("method", cel.StringType),
		cel.Variable("uri", cel.StringType),
		cel.Variable("controller", cel.StringType),
		cel.Variable("status", cel.IntType),
		cel.Variable("duration", cel.DoubleType),
		cel.Variable("command", cel.StringType),
	)
}

// Compile parses and type-checks expr. An empty expression returns a nil
// Filter. Expressions that do not evaluate to bool are rejected.
func Compile(expr string) (*Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter expression must evaluate to bool, got %s", ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return &Filter{expr: expr, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter against e.
func (f *Filter) Match(e clockwork.IndexEntry) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.program.Eval(activation(e))
	if err != nil {
		return false, fmt.Errorf("filter %q on %s: %w", f.expr, e.ID, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T", f.expr, out.Value())
	}
	return b, nil
}

// Apply returns the entries that match, in order.
func (f *Filter) Apply(entries []clockwork.IndexEntry) ([]clockwork.IndexEntry, error) {
	if f == nil {
		return entries, nil
	}
	out := make([]clockwork.IndexEntry, 0, len(entries))
	for _, e := range entries {
		ok, err := f.Match(e)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func activation(e clockwork.IndexEntry) map[string]any {
	var status int64
	if e.ResponseStatus != nil {
		status = int64(*e.ResponseStatus)
	}
	var duration float64
	if e.ResponseDuration != nil {
		duration = *e.ResponseDuration
	}
	return map[string]any{
		"id":         e.ID,
		"time":       e.Time,
		"type":       string(e.EffectiveType()),
		"method":     e.Method,
		"uri":        e.URI,
		"controller": e.Controller,
		"status":     status,
		"duration":   duration,
		"command":    e.CommandName,
	}
}
