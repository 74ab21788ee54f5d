package analysis

import (
	"sort"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
)

// NPlusOnePattern is a query pattern repeated within a single request.
type NPlusOnePattern struct {
	Pattern       string   `json:"pattern"`
	Fingerprint   string   `json:"fingerprint"`
	Count         int      `json:"count"`
	TotalDuration float64  `json:"totalDuration"`
	Examples      []string `json:"examples"`
}

// DetectNPlusOne reports every pattern issued at least threshold times,
// most repeated first; ties keep first-seen order. A threshold below 1
// falls back to the default of 2. Examples hold every raw query of the pattern.
func DetectNPlusOne(queries []clockwork.DatabaseQuery, threshold int) []NPlusOnePattern {
	if threshold < 1 {
		threshold = constants.DefaultNPlusOneThreshold
	}

	patterns := newOrdered[NPlusOnePattern]()
	for _, q := range queries {
		pattern := NormalizeQuery(q.Query)
		p := patterns.get(pattern, func() NPlusOnePattern {
			return NPlusOnePattern{Pattern: pattern, Fingerprint: Fingerprint(pattern)}
		})
		p.Count++
		p.TotalDuration += q.Duration
		p.Examples = append(p.Examples, q.Query)
	}

	out := make([]NPlusOnePattern, 0)
	patterns.each(func(_ string, p *NPlusOnePattern) {
		if p.Count >= threshold {
			out = append(out, *p)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
