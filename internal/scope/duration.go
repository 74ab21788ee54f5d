package scope

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`(?i)^\s*(\d+(\.\d+)?)\s*(m|h|d|w)$`)

var unitDurations = map[string]time.Duration{
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParseDuration parses a relative window such as "30m", "1.5h", "2d" or "1w".
// Units are case-insensitive. ok is false for anything else, including Go
// duration syntax such as "90s".
func ParseDuration(s string) (d time.Duration, ok bool) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	unit := unitDurations[strings.ToLower(m[3])]
	return time.Duration(value * float64(unit)), true
}
