package analysis

import (
	"sort"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
)

// AffectedRequest identifies a request contributing to a cross-request pattern.
type AffectedRequest struct {
	ID     string `json:"id"`
	URI    string `json:"uri,omitempty"`
	Method string `json:"method,omitempty"`
}

// SlowQueryPattern is a slow query pattern merged across requests.
type SlowQueryPattern struct {
	Pattern          string            `json:"pattern"`
	Fingerprint      string            `json:"fingerprint"`
	Occurrences      int               `json:"occurrences"`
	TotalDuration    float64           `json:"totalDuration"`
	AvgDuration      float64           `json:"avgDuration"`
	MaxDuration      float64           `json:"maxDuration"`
	ExampleQuery     string            `json:"exampleQuery"`
	AffectedRequests []AffectedRequest `json:"affectedRequests"`
}

// SlowQueryAggregate is the result of AggregateSlowQueries.
type SlowQueryAggregate struct {
	// Patterns is sorted by occurrences, most frequent first, and truncated to the limit.
	Patterns []SlowQueryPattern
	// TotalSlowQueries counts slow queries across all patterns, including truncated ones.
	TotalSlowQueries int
	// UniquePatterns counts patterns before truncation.
	UniquePatterns          int
	RequestsWithSlowQueries int
}

// affectedSet records each request once, in first-seen order.
type affectedSet struct {
	seen map[string]bool
	list []AffectedRequest
}

func (a *affectedSet) add(r *clockwork.Request) bool {
	if a.seen == nil {
		a.seen = make(map[string]bool)
	}
	if a.seen[r.ID] {
		return false
	}
	a.seen[r.ID] = true
	a.list = append(a.list, AffectedRequest{ID: r.ID, URI: r.URI, Method: r.Method})
	return true
}

type slowAccumulator struct {
	SlowQueryPattern
	affected affectedSet
}

// AggregateSlowQueries finds queries of at least thresholdMs in every
// request and merges them by normalized pattern. Nil requests and requests
// without queries contribute nothing. A nil limit uses the default of 20; an
// explicit limit of 0 returns no patterns but keeps the totals.
func AggregateSlowQueries(requests []*clockwork.Request, thresholdMs float64, limit *int) SlowQueryAggregate {
	n := constants.DefaultSlowQueryLimit
	if limit != nil {
		n = max(*limit, 0)
	}

	patterns := newOrdered[slowAccumulator]()
	var agg SlowQueryAggregate
	for _, r := range requests {
		if r == nil {
			continue
		}
		slow := SlowQueries(r.DatabaseQueries, thresholdMs)
		if len(slow) == 0 {
			continue
		}
		agg.RequestsWithSlowQueries++
		for _, q := range slow {
			pattern := NormalizeQuery(q.Query)
			p := patterns.get(pattern, func() slowAccumulator {
				return slowAccumulator{SlowQueryPattern: SlowQueryPattern{
					Pattern:      pattern,
					Fingerprint:  Fingerprint(pattern),
					ExampleQuery: q.Query,
				}}
			})
			p.Occurrences++
			p.TotalDuration += q.Duration
			if q.Duration > p.MaxDuration {
				p.MaxDuration = q.Duration
			}
			p.affected.add(r)
			agg.TotalSlowQueries++
		}
	}

	all := make([]SlowQueryPattern, 0, patterns.len())
	patterns.each(func(_ string, p *slowAccumulator) {
		p.AvgDuration = p.TotalDuration / float64(p.Occurrences)
		p.AffectedRequests = p.affected.list
		all = append(all, p.SlowQueryPattern)
	})
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Occurrences > all[j].Occurrences
	})

	agg.UniquePatterns = len(all)
	agg.Patterns = all[:min(n, len(all))]
	return agg
}

// NPlusOneAggregate is an N+1 pattern merged across requests.
type NPlusOneAggregate struct {
	Pattern                  string            `json:"pattern"`
	Fingerprint              string            `json:"fingerprint"`
	TotalOccurrences         int               `json:"totalOccurrences"`
	TotalDuration            float64           `json:"totalDuration"`
	RequestsAffected         int               `json:"requestsAffected"`
	AvgOccurrencesPerRequest float64           `json:"avgOccurrencesPerRequest"`
	Examples                 []string          `json:"examples"`
	AffectedRequests         []AffectedRequest `json:"affectedRequests"`
}

type nPlusOneAccumulator struct {
	NPlusOneAggregate
	affected affectedSet
}

// AggregateNPlusOne runs DetectNPlusOne per request and merges the findings by
// pattern, most total occurrences first. Each pattern keeps up to three example queries.
func AggregateNPlusOne(requests []*clockwork.Request, threshold int) (patterns []NPlusOneAggregate, requestsWithIssues int) {
	merged := newOrdered[nPlusOneAccumulator]()
	for _, r := range requests {
		if r == nil {
			continue
		}
		found := DetectNPlusOne(r.DatabaseQueries, threshold)
		if len(found) == 0 {
			continue
		}
		requestsWithIssues++
		for _, f := range found {
			p := merged.get(f.Pattern, func() nPlusOneAccumulator {
				return nPlusOneAccumulator{NPlusOneAggregate: NPlusOneAggregate{
					Pattern:     f.Pattern,
					Fingerprint: f.Fingerprint,
					Examples:    make([]string, 0, constants.MaxNPlusOneExamples),
				}}
			})
			p.TotalOccurrences += f.Count
			p.TotalDuration += f.TotalDuration
			for _, ex := range f.Examples {
				if len(p.Examples) >= constants.MaxNPlusOneExamples {
					break
				}
				p.Examples = append(p.Examples, ex)
			}
			p.affected.add(r)
		}
	}

	patterns = make([]NPlusOneAggregate, 0, merged.len())
	merged.each(func(_ string, p *nPlusOneAccumulator) {
		p.AffectedRequests = p.affected.list
		p.RequestsAffected = len(p.affected.list)
		p.AvgOccurrencesPerRequest = float64(p.TotalOccurrences) / float64(p.RequestsAffected)
		patterns = append(patterns, p.NPlusOneAggregate)
	})
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].TotalOccurrences > patterns[j].TotalOccurrences
	})
	return patterns, requestsWithIssues
}

// CollectExceptions extracts the exceptions of every request, tagged with its ID.
func CollectExceptions(requests []*clockwork.Request) []Exception {
	out := make([]Exception, 0)
	for _, r := range requests {
		if r == nil {
			continue
		}
		for _, l := range ExtractExceptions(r.Log) {
			out = append(out, Exception{LogEntry: l, RequestID: r.ID})
		}
	}
	return out
}
