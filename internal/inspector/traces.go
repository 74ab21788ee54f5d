package inspector

import (
	"context"

	"github.com/coral-mesh/clockwork-mcp/internal/analysis"
)

// CallGraphInput is the input of GetCallGraph.
type CallGraphInput struct {
	RequestID   string   `json:"requestId" jsonschema:"description=Clockwork request ID"`
	MinDuration *float64 `json:"minDuration,omitempty" jsonschema:"description=Only include events at least this long in ms"`
}

// GetCallGraph rebuilds the call hierarchy of a request from its timeline.
func (i *Inspector) GetCallGraph(ctx context.Context, in CallGraphInput) ([]*analysis.CallGraphNode, error) {
	r, err := i.find(ctx, in.RequestID)
	if err != nil || r == nil || len(r.TimelineData) == 0 {
		return []*analysis.CallGraphNode{}, err
	}
	return analysis.BuildCallGraph(r.TimelineData, deref(in.MinDuration)), nil
}

// QueryStackTraceInput is the input of GetQueryStackTrace.
type QueryStackTraceInput struct {
	RequestID  string `json:"requestId" jsonschema:"description=Clockwork request ID"`
	QueryIndex int    `json:"queryIndex" jsonschema:"description=Index of the query in the request"`
}

// QueryStackTrace is the source location of one query.
type QueryStackTrace struct {
	Found bool    `json:"found"`
	File  *string `json:"file"`
	Line  *int    `json:"line"`
	Query *string `json:"query"`
}

// GetQueryStackTrace returns where in the application a query was issued.
func (i *Inspector) GetQueryStackTrace(ctx context.Context, in QueryStackTraceInput) (QueryStackTrace, error) {
	r, err := i.find(ctx, in.RequestID)
	if err != nil || r == nil || in.QueryIndex < 0 || in.QueryIndex >= len(r.DatabaseQueries) {
		return QueryStackTrace{}, err
	}
	q := r.DatabaseQueries[in.QueryIndex]
	return QueryStackTrace{
		Found: located(q.File, q.Line),
		File:  nonEmpty(q.File),
		Line:  q.Line,
		Query: &q.Query,
	}, nil
}

// LogStackTraceInput is the input of GetLogStackTrace.
type LogStackTraceInput struct {
	RequestID string `json:"requestId" jsonschema:"description=Clockwork request ID"`
	LogIndex  int    `json:"logIndex" jsonschema:"description=Index of the log entry in the request"`
}

// LogStackTrace is the source location of one log entry.
type LogStackTrace struct {
	Found   bool    `json:"found"`
	File    *string `json:"file"`
	Line    *int    `json:"line"`
	Message *string `json:"message"`
	Level   *string `json:"level"`
}

// GetLogStackTrace returns where in the application a log entry was written.
func (i *Inspector) GetLogStackTrace(ctx context.Context, in LogStackTraceInput) (LogStackTrace, error) {
	r, err := i.find(ctx, in.RequestID)
	if err != nil || r == nil || in.LogIndex < 0 || in.LogIndex >= len(r.Log) {
		return LogStackTrace{}, err
	}
	l := r.Log[in.LogIndex]
	return LogStackTrace{
		Found:   located(l.File, l.Line),
		File:    nonEmpty(l.File),
		Line:    l.Line,
		Message: &l.Message,
		Level:   &l.Level,
	}, nil
}

func located(file string, line *int) bool {
	return file != "" || (line != nil && *line != 0)
}
