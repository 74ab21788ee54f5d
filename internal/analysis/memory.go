package analysis

import (
	"fmt"
	"sort"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
)

// Memory issue types.
const (
	IssueHighUsage    = "high_usage"
	IssueMemoryGrowth = "memory_growth"
)

// MemoryIssue flags a request with high memory usage or the peak of a growth trend.
type MemoryIssue struct {
	RequestID   string  `json:"requestId"`
	URI         *string `json:"uri"`
	MemoryMB    float64 `json:"memoryMB"`
	ThresholdMB float64 `json:"thresholdMB"`
	Type        string  `json:"type"`
	Details     string  `json:"details"`
}

// MemorySummary describes the analyzed request set.
type MemorySummary struct {
	TotalRequests          int      `json:"totalRequests"`
	RequestsWithMemoryData int      `json:"requestsWithMemoryData"`
	IssuesFound            int      `json:"issuesFound"`
	AvgMemoryMB            *float64 `json:"avgMemoryMB"`
	MaxMemoryMB            *float64 `json:"maxMemoryMB"`
	GrowthDetected         bool     `json:"growthDetected"`
}

// MemoryAnalysis is the result of DetectMemoryIssues.
type MemoryAnalysis struct {
	Issues  []MemoryIssue `json:"issues"`
	Summary MemorySummary `json:"summary"`
}

// MemoryOptions configures DetectMemoryIssues.
type MemoryOptions struct {
	// ThresholdMB flags requests at or above it. Default 128.
	ThresholdMB *float64
	// DetectGrowth enables the first-half/second-half trend check. Default true.
	DetectGrowth *bool
}

type memorySample struct {
	requestID string
	uri       *string
	memoryMB  float64
	time      float64
}

// DetectMemoryIssues flags requests whose peak memory reaches the threshold
// and, given at least four samples, a growth trend: the samples are ordered
// by time and split at the midpoint (the second half takes the odd one out);
// a second-half mean more than 20% above the first-half mean yields one
// memory_growth issue for the second half's peak request. Issues are ordered
// by memory, largest first.
func DetectMemoryIssues(requests []*clockwork.Request, opts MemoryOptions) MemoryAnalysis {
	thresholdMB := constants.DefaultMemoryThresholdMB
	if opts.ThresholdMB != nil {
		thresholdMB = *opts.ThresholdMB
	}
	detectGrowth := opts.DetectGrowth == nil || *opts.DetectGrowth
	thresholdBytes := thresholdMB * bytesPerMB

	issues := make([]MemoryIssue, 0)
	var samples []memorySample
	total := 0

	for _, r := range requests {
		if r == nil {
			continue
		}
		total++
		if r.MemoryUsage == nil {
			continue
		}

		s := memorySample{
			requestID: r.ID,
			uri:       optionalString(r.URI),
			memoryMB:  *r.MemoryUsage / bytesPerMB,
			time:      r.Time,
		}
		samples = append(samples, s)

		if *r.MemoryUsage >= thresholdBytes {
			issues = append(issues, MemoryIssue{
				RequestID:   s.requestID,
				URI:         s.uri,
				MemoryMB:    s.memoryMB,
				ThresholdMB: thresholdMB,
				Type:        IssueHighUsage,
				Details:     fmt.Sprintf("Memory usage (%.1f MB) exceeds threshold (%s MB)", s.memoryMB, formatNumber(thresholdMB)),
			})
		}
	}

	growth := false
	if detectGrowth && len(samples) >= constants.MemoryGrowthMinSamples {
		ordered := append([]memorySample(nil), samples...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].time < ordered[j].time
		})

		mid := len(ordered) / 2
		first, second := ordered[:mid], ordered[mid:]
		firstAvg, secondAvg := meanMB(first), meanMB(second)

		percent := (secondAvg - firstAvg) / firstAvg * 100
		if percent > constants.MemoryGrowthPercent {
			growth = true

			peak := second[0]
			for _, s := range second[1:] {
				if s.memoryMB > peak.memoryMB {
					peak = s
				}
			}
			issues = append(issues, MemoryIssue{
				RequestID:   peak.requestID,
				URI:         peak.uri,
				MemoryMB:    peak.memoryMB,
				ThresholdMB: thresholdMB,
				Type:        IssueMemoryGrowth,
				Details: fmt.Sprintf("Memory growth detected: average increased from %.1f MB to %.1f MB (+%.0f%%) over %d requests",
					firstAvg, secondAvg, percent, len(ordered)),
			})
		}
	}

	summary := MemorySummary{
		TotalRequests:          total,
		RequestsWithMemoryData: len(samples),
		GrowthDetected:         growth,
	}
	if len(samples) > 0 {
		avg := meanMB(samples)
		peak := samples[0].memoryMB
		for _, s := range samples[1:] {
			peak = max(peak, s.memoryMB)
		}
		summary.AvgMemoryMB = &avg
		summary.MaxMemoryMB = &peak
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].MemoryMB > issues[j].MemoryMB
	})
	summary.IssuesFound = len(issues)

	return MemoryAnalysis{Issues: issues, Summary: summary}
}

func meanMB(samples []memorySample) float64 {
	var total float64
	for _, s := range samples {
		total += s.memoryMB
	}
	return total / float64(len(samples))
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// formatNumber renders integral thresholds without a decimal part.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
