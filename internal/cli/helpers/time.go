package helpers

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/coral-mesh/clockwork-mcp/internal/inspector"
	"github.com/coral-mesh/clockwork-mcp/internal/scope"
)

// TimeFlags holds the flag values for an absolute time range.
type TimeFlags struct {
	From string
	To   string
}

// AddFlags adds time range flags to a FlagSet.
func (f *TimeFlags) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&f.From, "from", "", "Start time (RFC3339, YYYY-MM-DD or 'now')")
	flags.StringVar(&f.To, "to", "", "End time (RFC3339, YYYY-MM-DD or 'now')")
}

// Parse converts the flags into a TimeRange of Unix timestamps.
func (f *TimeFlags) Parse(now time.Time) (inspector.TimeRange, error) {
	var tr inspector.TimeRange

	if f.From != "" {
		start, err := parseTime(f.From, now)
		if err != nil {
			return tr, fmt.Errorf("invalid --from time: %w", err)
		}
		tr.From = unix(start)
	}
	if f.To != "" {
		end, err := parseTime(f.To, now)
		if err != nil {
			return tr, fmt.Errorf("invalid --to time: %w", err)
		}
		tr.To = unix(end)
	}

	if tr.From != nil && tr.To != nil && *tr.To < *tr.From {
		return tr, fmt.Errorf("end time cannot be before start time")
	}
	return tr, nil
}

// ScopeFlags holds the flag values selecting requests for an analysis.
type ScopeFlags struct {
	RequestID string
	Count     int
	Since     string
	All       bool
	URI       string
}

// AddFlags adds scope flags to a FlagSet.
func (f *ScopeFlags) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&f.RequestID, "request", "", "Analyze a single request ID")
	flags.IntVarP(&f.Count, "count", "n", 0, "Analyze the N most recent HTTP requests (max 100)")
	flags.StringVar(&f.Since, "since", "", "Analyze requests within a window (e.g. 30m, 1h, 2d, 1w)")
	flags.BoolVar(&f.All, "all", false, "Analyze all available requests (max 100)")
	flags.StringVar(&f.URI, "uri", "", "Only analyze requests whose URI contains this substring")
}

// Scope converts the flags into a request scope.
func (f *ScopeFlags) Scope() (scope.Scope, error) {
	if f.Since != "" {
		if _, ok := scope.ParseDuration(f.Since); !ok {
			return scope.Scope{}, fmt.Errorf("invalid --since window %q (use e.g. 30m, 1h, 2d, 1w)", f.Since)
		}
	}

	s := scope.Scope{
		RequestID: f.RequestID,
		Since:     f.Since,
		All:       f.All,
		URI:       f.URI,
	}
	if f.Count > 0 {
		count := f.Count
		s.Count = &count
	}
	return s, nil
}

func unix(t time.Time) *float64 {
	v := float64(t.UnixMilli()) / 1000
	return &v
}

func parseTime(s string, now time.Time) (time.Time, error) {
	if s == "now" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, now.Location()); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unsupported time format (use RFC3339)")
}
