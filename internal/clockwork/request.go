package clockwork

import "strings"

// EffectiveType returns the request type, treating an absent type as an HTTP request.
func (r *Request) EffectiveType() RequestType {
	if r.Type == "" {
		return TypeRequest
	}
	return r.Type
}

// IsHTTP reports whether the request is an HTTP request.
func (r *Request) IsHTTP() bool {
	return r.EffectiveType() == TypeRequest
}

// Views returns the rendered views, falling back to the older viewsData field.
func (r *Request) Views() []RenderedView {
	if len(r.ViewsList) > 0 {
		return r.ViewsList
	}
	return r.ViewsData
}

// Index builds the index summary of the request.
func (r *Request) Index() IndexEntry {
	return IndexEntry{
		ID:               r.ID,
		Time:             r.Time,
		Method:           r.Method,
		URI:              r.URI,
		Controller:       r.Controller,
		ResponseStatus:   r.ResponseStatus,
		ResponseDuration: r.ResponseDuration,
		Type:             r.EffectiveType(),
		CommandName:      r.CommandName,
	}
}

// EffectiveType returns the entry type, treating an absent type as an HTTP request.
func (e IndexEntry) EffectiveType() RequestType {
	if e.Type == "" {
		return TypeRequest
	}
	return e.Type
}

// Log levels in increasing severity.
var logLevels = map[string]int{
	"debug":     0,
	"info":      1,
	"notice":    1,
	"warning":   2,
	"error":     3,
	"critical":  3,
	"alert":     3,
	"emergency": 3,
}

// LevelRank returns the severity rank of a log level; unknown levels rank as info.
func LevelRank(level string) int {
	if rank, ok := logLevels[strings.ToLower(level)]; ok {
		return rank
	}
	return 1
}

// IsException reports whether the entry is an error or critical record.
func (l LogEntry) IsException() bool {
	return l.Level == "error" || l.Level == "critical"
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
