package storage

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// Columns of a file storage index line.
const (
	colID = iota
	colTime
	colMethod
	colURI
	colController
	colStatus
	colDuration
	colType
)

// ParseIndex parses a Clockwork file storage index: one tab-separated line
// per request with id, time, method, uri (the command name for commands),
// controller, response status, response duration and type. Lines have no
// length limit; blank and malformed lines are skipped. Entries are returned most recent first.
func ParseIndex(data []byte) []clockwork.IndexEntry {
	entries := make([]clockwork.IndexEntry, 0)
	for line := range bytes.Lines(data) {
		if e, ok := parseIndexLine(string(line)); ok {
			entries = append(entries, e)
		}
	}

	return sortEntries(entries)
}

// sortEntries orders entries most recent first, keeping input order for equal times.
func sortEntries(entries []clockwork.IndexEntry) []clockwork.IndexEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time > entries[j].Time
	})
	return entries
}

func parseIndexLine(line string) (clockwork.IndexEntry, bool) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return clockwork.IndexEntry{}, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 2 || fields[colID] == "" {
		return clockwork.IndexEntry{}, false
	}
	ts, err := strconv.ParseFloat(fields[colTime], 64)
	if err != nil {
		return clockwork.IndexEntry{}, false
	}

	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	e := clockwork.IndexEntry{
		ID:   fields[colID],
		Time: ts,
		Type: clockwork.RequestType(field(colType)),
	}
	if e.Type == clockwork.TypeCommand {
		e.CommandName = field(colURI)
	} else {
		e.Method = field(colMethod)
		e.URI = field(colURI)
		e.Controller = field(colController)
	}
	if n, err := strconv.Atoi(field(colStatus)); err == nil {
		e.ResponseStatus = &n
	}
	if d, err := strconv.ParseFloat(field(colDuration), 64); err == nil {
		e.ResponseDuration = &d
	}
	return e, true
}
