package mcp

import (
	"errors"
)

func (s *Server) registerJobTools() error {
	insp := s.inspector
	return errors.Join(
		register(s, "list_commands",
			"List profiled Artisan command executions, optionally filtered by name and time range.",
			result(insp.ListCommands)),
		register(s, "get_command",
			"Get full details of an Artisan command execution.",
			byID(insp.GetCommand)),
		register(s, "list_queue_jobs",
			"List profiled queue jobs, optionally filtered by queue, job class, inferred status and time range.",
			result(insp.ListQueueJobs)),
		register(s, "get_queue_job",
			"Get full details of a queue job. Returns null when the ID is not a queue job.",
			byID(insp.GetQueueJob)),
		register(s, "list_tests",
			"List profiled test runs, optionally filtered by name, inferred status and time range.",
			result(insp.ListTests)),
		register(s, "get_test",
			"Get full details of a test run. Returns null when the ID is not a test.",
			byID(insp.GetTest)),
	)
}
