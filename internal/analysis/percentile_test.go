package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	five := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{name: "median", sorted: five, p: 50, want: 3},
		{name: "p0", sorted: five, p: 0, want: 1},
		{name: "p100", sorted: five, p: 100, want: 5},
		{name: "p95", sorted: five, p: 95, want: 4.8},
		{name: "p25", sorted: five, p: 25, want: 2},
		{name: "even count median interpolates", sorted: []float64{100, 200, 300, 400}, p: 50, want: 250},
		{name: "empty", sorted: nil, p: 50, want: 0},
		{name: "single", sorted: []float64{7}, p: 99, want: 7},
		{name: "above range", sorted: five, p: 150, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.sorted, tt.p), 1e-9)
		})
	}
}
