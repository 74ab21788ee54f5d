// Package analysis turns raw Clockwork telemetry into diagnostic signals:
// slow and repeated (N+1) queries, clustered exceptions, per-route latency
// percentiles, memory pressure and a call hierarchy rebuilt from timeline
// intervals.
//
// Every function here is pure: it reads the records it is given, never
// mutates them, performs no I/O and starts no goroutines. Grouping results
// keep first-seen order wherever counts tie, so output is deterministic.
package analysis
