package constants

import "time"

// Aggregation bounds.
const (
	// MaxRequests caps how many requests one cross-request analysis may load.
	MaxRequests = 100

	// MaxIndexEntries caps listings pulled from backends without a cheap index.
	MaxIndexEntries = 1000

	// MaxExceptionExamples is the number of raw messages kept per exception group.
	MaxExceptionExamples = 3

	// MaxNPlusOneExamples is the number of raw queries kept per merged N+1 pattern.
	MaxNPlusOneExamples = 3
)

// Analysis defaults.
const (
	DefaultSlowQueryThresholdMs = 100.0
	DefaultNPlusOneThreshold    = 2
	DefaultExceptionLimit       = 20
	DefaultSlowQueryLimit       = 20
	DefaultRouteMinSamples      = 1
	DefaultMemoryThresholdMB    = 128.0

	// MemoryGrowthMinSamples is the minimum series length for growth detection.
	MemoryGrowthMinSamples = 4

	// MemoryGrowthPercent is the second-half over first-half increase that flags growth.
	MemoryGrowthPercent = 20.0
)

// Listing defaults.
const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

// Timeouts.
const (
	// DefaultArtisanTimeout bounds a single `php artisan tinker` invocation.
	DefaultArtisanTimeout = 30 * time.Second

	// DefaultConnectTimeout bounds a network backend ping.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultShutdownTimeout bounds graceful HTTP shutdown.
	DefaultShutdownTimeout = 5 * time.Second
)
