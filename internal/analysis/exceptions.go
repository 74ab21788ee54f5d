package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
)

// Masks applied by NormalizeExceptionMessage, in order.
var exceptionMasks = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`), "<UUID>"},
	{regexp.MustCompile(`\b\d+\b`), "<ID>"},
	{regexp.MustCompile(`"[^"]*"`), `"<STRING>"`},
	{regexp.MustCompile(`'[^']*'`), `'<STRING>'`},
	{regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), "<EMAIL>"},
	{regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`), "<IP>"},
	{regexp.MustCompile(`/[^\s:]+\.\w+`), "<PATH>"},
	{regexp.MustCompile(`\s+`), " "},
}

// NormalizeExceptionMessage masks the dynamic parts of an error message
// (UUIDs, integers, quoted strings, emails, IPv4 addresses, file paths) and
// collapses whitespace, so occurrences of the same failure group together.
func NormalizeExceptionMessage(message string) string {
	for _, m := range exceptionMasks {
		message = m.re.ReplaceAllString(message, m.repl)
	}
	return strings.TrimSpace(message)
}

// Exception is an error-level log entry tagged with the request it came from.
type Exception struct {
	clockwork.LogEntry
	RequestID string
}

// ExtractExceptions returns the error and critical entries of a log.
func ExtractExceptions(logs []clockwork.LogEntry) []clockwork.LogEntry {
	out := make([]clockwork.LogEntry, 0)
	for _, l := range logs {
		if l.IsException() {
			out = append(out, l)
		}
	}
	return out
}

// ExceptionExample is one raw occurrence kept in a group.
type ExceptionExample struct {
	Message   string   `json:"message"`
	File      string   `json:"file,omitempty"`
	Line      *int     `json:"line,omitempty"`
	Time      *float64 `json:"time,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

// ExceptionGroup is a cluster of exceptions sharing a normalized message.
type ExceptionGroup struct {
	NormalizedMessage string             `json:"normalizedMessage"`
	Fingerprint       string             `json:"fingerprint"`
	Count             int                `json:"count"`
	Level             string             `json:"level"`
	Examples          []ExceptionExample `json:"examples"`
}

// ExceptionSummary describes the whole exception set.
type ExceptionSummary struct {
	TotalExceptions int     `json:"totalExceptions"`
	UniquePatterns  int     `json:"uniquePatterns"`
	MostCommon      *string `json:"mostCommon"`
}

// ExceptionAnalysis is the result of GroupExceptions.
type ExceptionAnalysis struct {
	Exceptions []ExceptionGroup `json:"exceptions"`
	Summary    ExceptionSummary `json:"summary"`
}

// ExceptionOptions configures GroupExceptions.
type ExceptionOptions struct {
	// GroupByMessage buckets by normalized message. When false every
	// exception is its own group with its raw message. Default true.
	GroupByMessage *bool
	// Limit caps the returned groups. Default 20.
	Limit int
}

func (o ExceptionOptions) groupByMessage() bool {
	return o.GroupByMessage == nil || *o.GroupByMessage
}

func (o ExceptionOptions) limit() int {
	if o.Limit <= 0 {
		return constants.DefaultExceptionLimit
	}
	return o.Limit
}

// GroupExceptions clusters exceptions, most frequent first. Each group keeps
// the level of its first occurrence and its first three occurrences.
func GroupExceptions(exceptions []Exception, opts ExceptionOptions) ExceptionAnalysis {
	limit := opts.limit()

	if !opts.groupByMessage() {
		groups := make([]ExceptionGroup, 0, min(limit, len(exceptions)))
		for _, e := range exceptions[:min(limit, len(exceptions))] {
			groups = append(groups, ExceptionGroup{
				NormalizedMessage: e.Message,
				Fingerprint:       Fingerprint(e.Message),
				Count:             1,
				Level:             e.Level,
				Examples:          []ExceptionExample{exampleOf(e)},
			})
		}
		return ExceptionAnalysis{
			Exceptions: groups,
			Summary: ExceptionSummary{
				TotalExceptions: len(exceptions),
				UniquePatterns:  len(exceptions),
				MostCommon:      mostCommon(groups),
			},
		}
	}

	buckets := newOrdered[ExceptionGroup]()
	for _, e := range exceptions {
		normalized := NormalizeExceptionMessage(e.Message)
		g := buckets.get(normalized, func() ExceptionGroup {
			return ExceptionGroup{
				NormalizedMessage: normalized,
				Fingerprint:       Fingerprint(normalized),
				Level:             e.Level,
			}
		})
		g.Count++
		if len(g.Examples) < constants.MaxExceptionExamples {
			g.Examples = append(g.Examples, exampleOf(e))
		}
	}

	groups := make([]ExceptionGroup, 0, buckets.len())
	buckets.each(func(_ string, g *ExceptionGroup) {
		groups = append(groups, *g)
	})
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	groups = groups[:min(limit, len(groups))]

	return ExceptionAnalysis{
		Exceptions: groups,
		Summary: ExceptionSummary{
			TotalExceptions: len(exceptions),
			UniquePatterns:  buckets.len(),
			MostCommon:      mostCommon(groups),
		},
	}
}

func exampleOf(e Exception) ExceptionExample {
	return ExceptionExample{
		Message:   e.Message,
		File:      e.File,
		Line:      e.Line,
		Time:      e.Time,
		RequestID: e.RequestID,
	}
}

func mostCommon(groups []ExceptionGroup) *string {
	if len(groups) == 0 {
		return nil
	}
	msg := groups[0].NormalizedMessage
	return &msg
}
