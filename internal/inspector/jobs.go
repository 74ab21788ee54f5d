package inspector

import (
	"context"
	"fmt"
	"strings"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// Job statuses.
const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// Test statuses.
const (
	TestPassed  = "passed"
	TestFailed  = "failed"
	TestSkipped = "skipped"
)

// ListCommandsInput is the input of ListCommands.
type ListCommandsInput struct {
	Name string `json:"name,omitempty" jsonschema:"description=Filter by command name substring"`
	TimeRange
	Page
}

// ListCommands lists profiled console command executions.
func (i *Inspector) ListCommands(ctx context.Context, in ListCommandsInput) ([]clockwork.IndexEntry, error) {
	entries, err := i.entriesOfType(ctx, clockwork.TypeCommand, in.TimeRange)
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if in.Name == "" || strings.Contains(e.CommandName, in.Name) {
			out = append(out, e)
		}
	}
	return in.Page.apply(out), nil
}

// GetCommand returns a command execution, or nil when it does not exist.
func (i *Inspector) GetCommand(ctx context.Context, id string) (*clockwork.Request, error) {
	return i.find(ctx, id)
}

// ListQueueJobsInput is the input of ListQueueJobs.
type ListQueueJobsInput struct {
	Queue  string `json:"queue,omitempty" jsonschema:"description=Filter by queue name substring"`
	Job    string `json:"job,omitempty" jsonschema:"description=Filter by job class substring"`
	Status string `json:"status,omitempty" jsonschema:"description=Filter by job status,enum=pending,enum=processing,enum=completed,enum=failed"`
	TimeRange
	Page
}

// ListQueueJobs lists profiled queue jobs. Queue, job and status filters
// load the full records since the index does not carry them.
func (i *Inspector) ListQueueJobs(ctx context.Context, in ListQueueJobsInput) ([]clockwork.IndexEntry, error) {
	entries, err := i.entriesOfType(ctx, clockwork.TypeQueueJob, in.TimeRange)
	if err != nil {
		return nil, err
	}
	if in.Queue != "" || in.Job != "" || in.Status != "" {
		entries, err = i.keepMatching(ctx, entries, func(r *clockwork.Request) bool {
			if in.Queue != "" && !strings.Contains(QueueName(r), in.Queue) {
				return false
			}
			if in.Job != "" && !strings.Contains(JobName(r), in.Job) {
				return false
			}
			return in.Status == "" || JobStatus(r) == in.Status
		})
		if err != nil {
			return nil, err
		}
	}
	return in.Page.apply(entries), nil
}

// GetQueueJob returns a queue job, or nil when it does not exist or is not a queue job.
func (i *Inspector) GetQueueJob(ctx context.Context, id string) (*clockwork.Request, error) {
	return i.findOfType(ctx, id, clockwork.TypeQueueJob)
}

// ListTestsInput is the input of ListTests.
type ListTestsInput struct {
	Name   string `json:"name,omitempty" jsonschema:"description=Filter by test name substring"`
	Status string `json:"status,omitempty" jsonschema:"description=Filter by test status,enum=passed,enum=failed,enum=skipped"`
	TimeRange
	Page
}

// ListTests lists profiled test runs.
func (i *Inspector) ListTests(ctx context.Context, in ListTestsInput) ([]clockwork.IndexEntry, error) {
	entries, err := i.entriesOfType(ctx, clockwork.TypeTest, in.TimeRange)
	if err != nil {
		return nil, err
	}
	if in.Name != "" || in.Status != "" {
		entries, err = i.keepMatching(ctx, entries, func(r *clockwork.Request) bool {
			if in.Name != "" && !strings.Contains(TestName(r), in.Name) {
				return false
			}
			return in.Status == "" || TestStatus(r) == in.Status
		})
		if err != nil {
			return nil, err
		}
	}
	return in.Page.apply(entries), nil
}

// GetTest returns a test run, or nil when it does not exist or is not a test.
func (i *Inspector) GetTest(ctx context.Context, id string) (*clockwork.Request, error) {
	return i.findOfType(ctx, id, clockwork.TypeTest)
}

// QueueName is the queue a job ran on: a queue:* command name, else the
// queue recorded in the request data, else the command name.
func QueueName(r *clockwork.Request) string {
	if strings.Contains(r.CommandName, "queue:") {
		return r.CommandName
	}
	if q, ok := r.RequestData["queue"].(string); ok && q != "" {
		return q
	}
	return r.CommandName
}

// JobName is the job class: the controller, else the job argument.
func JobName(r *clockwork.Request) string {
	if r.Controller != "" {
		return r.Controller
	}
	if j, ok := r.CommandArguments["job"].(string); ok {
		return j
	}
	return ""
}

// JobStatus infers a job's status from its exit code, response status or
// recorded duration, in that order.
func JobStatus(r *clockwork.Request) string {
	if r.CommandExitCode != nil {
		if *r.CommandExitCode == 0 {
			return JobCompleted
		}
		return JobFailed
	}
	if s := r.ResponseStatus; s != nil {
		switch {
		case *s >= 200 && *s < 300:
			return JobCompleted
		case *s >= 400:
			return JobFailed
		}
	}
	if r.ResponseDuration != nil {
		return JobCompleted
	}
	return JobPending
}

// TestName is the command name, else the controller, else the URI.
func TestName(r *clockwork.Request) string {
	switch {
	case r.CommandName != "":
		return r.CommandName
	case r.Controller != "":
		return r.Controller
	default:
		return r.URI
	}
}

// TestStatus infers a test's outcome from its exit code, response status or
// error-level logs, in that order.
func TestStatus(r *clockwork.Request) string {
	if r.CommandExitCode != nil {
		if *r.CommandExitCode == 0 {
			return TestPassed
		}
		return TestFailed
	}
	if s := r.ResponseStatus; s != nil {
		switch {
		case *s >= 200 && *s < 300:
			return TestPassed
		case *s >= 400:
			return TestFailed
		}
	}
	for _, l := range r.Log {
		if l.Level == "error" {
			return TestFailed
		}
	}
	return TestPassed
}

// entriesOfType lists index entries whose stored type is exactly typ.
func (i *Inspector) entriesOfType(ctx context.Context, typ clockwork.RequestType, tr TimeRange) ([]clockwork.IndexEntry, error) {
	entries, err := i.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]clockwork.IndexEntry, 0)
	for _, e := range entries {
		if e.Type == typ && tr.contains(e.Time) {
			out = append(out, e)
		}
	}
	return out, nil
}

// keepMatching loads the full records of entries and keeps those matching keep.
func (i *Inspector) keepMatching(ctx context.Context, entries []clockwork.IndexEntry, keep func(*clockwork.Request) bool) ([]clockwork.IndexEntry, error) {
	ids := make([]string, len(entries))
	for n, e := range entries {
		ids[n] = e.ID
	}
	requests, err := i.store.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}

	matched := make(map[string]bool, len(requests))
	for _, r := range requests {
		if r != nil && keep(r) {
			matched[r.ID] = true
		}
	}
	out := make([]clockwork.IndexEntry, 0, len(matched))
	for _, e := range entries {
		if matched[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (i *Inspector) findOfType(ctx context.Context, id string, typ clockwork.RequestType) (*clockwork.Request, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil {
		return nil, err
	}
	if r.Type != typ {
		return nil, nil
	}
	return r, nil
}
