package analysis

import "math"

// Percentile returns the p-th percentile (0-100) of an ascending slice using
// linear interpolation between closest ranks (the R-7 / spreadsheet method).
// An empty slice yields 0 and a single sample yields itself. p outside
// [0, 100] is not rejected.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch n {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}

	idx := p / 100 * float64(n-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	weight := idx - float64(lower)

	if upper >= n {
		return sorted[n-1]
	}
	if lower < 0 {
		return sorted[0]
	}
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
