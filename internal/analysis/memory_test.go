package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

const mb = 1024 * 1024

func memoryRequests(values ...float64) []*clockwork.Request {
	out := make([]*clockwork.Request, 0, len(values))
	for i, v := range values {
		out = append(out, &clockwork.Request{
			ID:          fmt.Sprintf("r%d", i),
			Type:        clockwork.TypeRequest,
			URI:         "/report",
			Time:        float64(1700000000 + i),
			MemoryUsage: clockwork.Float(v * mb),
		})
	}
	return out
}

func TestDetectMemoryIssues_HighUsage(t *testing.T) {
	noGrowth := false
	requests := memoryRequests(64, 128, 256)
	requests = append(requests, &clockwork.Request{ID: "nomem"})

	result := DetectMemoryIssues(requests, MemoryOptions{DetectGrowth: &noGrowth})
	require.Len(t, result.Issues, 2)
	assert.Equal(t, "r2", result.Issues[0].RequestID, "largest first")
	assert.Equal(t, 256.0, result.Issues[0].MemoryMB)
	assert.Equal(t, IssueHighUsage, result.Issues[0].Type)
	assert.Equal(t, "Memory usage (256.0 MB) exceeds threshold (128 MB)", result.Issues[0].Details)
	assert.Equal(t, "r1", result.Issues[1].RequestID, "threshold is inclusive")
	require.NotNil(t, result.Issues[1].URI)
	assert.Equal(t, "/report", *result.Issues[1].URI)

	assert.Equal(t, 4, result.Summary.TotalRequests)
	assert.Equal(t, 3, result.Summary.RequestsWithMemoryData)
	assert.Equal(t, 2, result.Summary.IssuesFound)
	assert.InDelta(t, 149.333333, *result.Summary.AvgMemoryMB, 1e-5)
	assert.Equal(t, 256.0, *result.Summary.MaxMemoryMB)
	assert.False(t, result.Summary.GrowthDetected)
}

func TestDetectMemoryIssues_GrowthBoundary(t *testing.T) {
	t.Run("21 percent detects growth", func(t *testing.T) {
		result := DetectMemoryIssues(memoryRequests(10, 10, 12.1, 12.1), MemoryOptions{})
		assert.True(t, result.Summary.GrowthDetected)
		require.Len(t, result.Issues, 1)
		issue := result.Issues[0]
		assert.Equal(t, IssueMemoryGrowth, issue.Type)
		assert.Equal(t, "r2", issue.RequestID, "first peak of the second half")
		assert.Equal(t, "Memory growth detected: average increased from 10.0 MB to 12.1 MB (+21%) over 4 requests", issue.Details)
	})

	t.Run("20 percent does not", func(t *testing.T) {
		result := DetectMemoryIssues(memoryRequests(100, 100, 120, 120), MemoryOptions{})
		assert.False(t, result.Summary.GrowthDetected)
		assert.Empty(t, result.Issues)
	})
}

func TestDetectMemoryIssues_GrowthOrdersByTime(t *testing.T) {
	requests := memoryRequests(10, 10, 20, 20, 30)
	// Reverse capture order; growth is judged on time order.
	for i, j := 0, len(requests)-1; i < j; i, j = i+1, j-1 {
		requests[i], requests[j] = requests[j], requests[i]
	}

	result := DetectMemoryIssues(requests, MemoryOptions{})
	assert.True(t, result.Summary.GrowthDetected)
	require.Len(t, result.Issues, 1)
	// First half [10,10], second half [20,20,30].
	assert.Equal(t, "r4", result.Issues[0].RequestID)
	assert.Equal(t, 30.0, result.Issues[0].MemoryMB)
}

func TestDetectMemoryIssues_TooFewSamples(t *testing.T) {
	result := DetectMemoryIssues(memoryRequests(10, 10, 50), MemoryOptions{})
	assert.False(t, result.Summary.GrowthDetected)
}

func TestDetectMemoryIssues_NoData(t *testing.T) {
	result := DetectMemoryIssues([]*clockwork.Request{{ID: "a"}}, MemoryOptions{})
	assert.Nil(t, result.Summary.AvgMemoryMB)
	assert.Nil(t, result.Summary.MaxMemoryMB)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 1, result.Summary.TotalRequests)
}

func TestDetectMemoryIssues_CustomThreshold(t *testing.T) {
	threshold := 32.5
	result := DetectMemoryIssues(memoryRequests(40), MemoryOptions{ThresholdMB: &threshold})
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 32.5, result.Issues[0].ThresholdMB)
	assert.Equal(t, "Memory usage (40.0 MB) exceeds threshold (32.5 MB)", result.Issues[0].Details)
}
