package inspector

import "errors"

var errRequestIDRequired = errors.New("requestId is required")

func requireID(id string) error {
	if id == "" {
		return errRequestIDRequired
	}
	return nil
}

// Validate checks required fields.
func (in RequestInput) Validate() error { return requireID(in.RequestID) }

// Validate checks required fields.
func (in LogsInput) Validate() error { return requireID(in.RequestID) }

// Validate checks required fields.
func (in SessionInput) Validate() error { return requireID(in.RequestID) }

// Validate checks required fields.
func (in QueriesInput) Validate() error { return requireID(in.RequestID) }

// Validate checks required fields.
func (in CallGraphInput) Validate() error { return requireID(in.RequestID) }

// Validate checks required fields.
func (in QueryStackTraceInput) Validate() error { return requireID(in.RequestID) }

// Validate checks required fields.
func (in LogStackTraceInput) Validate() error { return requireID(in.RequestID) }

// Validate checks required fields.
func (in HotspotsInput) Validate() error { return requireID(in.RequestID) }

// Validate checks required fields.
func (in CompareInput) Validate() error {
	if in.RequestID1 == "" || in.RequestID2 == "" {
		return errors.New("requestId1 and requestId2 are required")
	}
	return nil
}
