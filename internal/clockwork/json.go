package clockwork

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformed marks a payload that is not a Clockwork request at all.
var ErrMalformed = errors.New("malformed request payload")

// Object is a JSON object that also accepts the empty array PHP's
// json_encode emits for an empty associative array.
type Object map[string]any

// UnmarshalJSON implements json.Unmarshaler.
func (o *Object) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*o = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []any
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			*o = nil
			return nil
		}
		m := make(Object, len(list))
		for i, v := range list {
			m[fmt.Sprint(i)] = v
		}
		*o = m
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*o = m
	return nil
}

// Timeline is the list of timeline events. Clockwork serializes it either as
// an array or as an object keyed by event name; both decode to a slice, the
// object form ordered by start time.
type Timeline []TimelineEvent

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timeline) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = nil
		return nil
	}
	if trimmed[0] == '[' {
		var events []TimelineEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return err
		}
		*t = events
		return nil
	}

	var byName map[string]TimelineEvent
	if err := json.Unmarshal(trimmed, &byName); err != nil {
		return err
	}
	events := make([]TimelineEvent, 0, len(byName))
	for name, e := range byName {
		if e.Name == "" {
			e.Name = name
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Start != events[j].Start {
			return events[i].Start < events[j].Start
		}
		return events[i].Name < events[j].Name
	})
	*t = events
	return nil
}

// DecodeRequest parses a Clockwork request payload. Errors wrap ErrMalformed.
func DecodeRequest(data []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w: %w", ErrMalformed, err)
	}
	return &r, nil
}

// Numeric fields that older Clockwork versions, or payloads that went through
// a PHP array cast, may carry as strings.
var (
	requestFloats = []string{"version", "time", "responseDuration", "memoryUsage", "databaseDuration", "cacheDuration"}
	requestInts   = []string{
		"responseStatus", "commandExitCode",
		"databaseQueriesCount", "databaseSlowQueries", "databaseSelects", "databaseInserts",
		"databaseUpdates", "databaseDeletes", "databaseOthers",
		"cacheReads", "cacheHits", "cacheWrites", "cacheDeletes",
	}
)

// UnmarshalJSON implements json.Unmarshaler.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	data, err := coerceNumbers(data, requestFloats, requestInts)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(r))
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *DatabaseQuery) UnmarshalJSON(data []byte) error {
	type plain DatabaseQuery
	data, err := coerceNumbers(data, []string{"duration"}, []string{"line"})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(q))
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	type plain LogEntry
	data, err := coerceNumbers(data, []string{"time"}, []string{"line"})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(e))
}

// coerceNumbers rewrites the named members of a JSON object so they decode
// into numeric fields: numeric strings become numbers, ints are truncated,
// and values that are not numbers at all are dropped as absent. Data that is
// not an object is returned unchanged.
func coerceNumbers(data []byte, floats, ints []string) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}

	changed := false
	fix := func(key string, integer bool) {
		raw, ok := obj[key]
		if !ok {
			return
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return
		}
		f, ok := parseNumber(raw)
		if !ok {
			delete(obj, key)
			changed = true
			return
		}
		if integer {
			if math.Abs(f) > maxExactInt {
				delete(obj, key)
				changed = true
				return
			}
			f = math.Trunc(f)
		} else if raw[0] != '"' {
			return
		}
		formatted := []byte(strconv.FormatFloat(f, 'f', -1, 64))
		if !bytes.Equal(formatted, raw) {
			obj[key] = formatted
			changed = true
		}
	}
	for _, key := range floats {
		fix(key, false)
	}
	for _, key := range ints {
		fix(key, true)
	}

	if !changed {
		return data, nil
	}
	return json.Marshal(obj)
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// parseNumber reads a JSON number or a string holding one.
func parseNumber(raw []byte) (float64, bool) {
	s := string(raw)
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
