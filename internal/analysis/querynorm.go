package analysis

import (
	"fmt"
	"regexp"

	"github.com/zeebo/xxh3"
)

var (
	sqlStringLiteral = regexp.MustCompile(`'[^']*'`)
	sqlNumberLiteral = regexp.MustCompile(`\b\d+\b`)
	sqlInList        = regexp.MustCompile(`(?i)IN\s*\([^)]+\)`)
)

// NormalizeQuery strips literal values from a SQL statement so that queries
// differing only in parameters share a pattern. Single-quoted strings become
// ?, standalone integers become ? and IN (...) lists collapse to IN (?).
// Malformed SQL is normalized as far as the substitutions reach.
func NormalizeQuery(query string) string {
	query = sqlStringLiteral.ReplaceAllString(query, "?")
	query = sqlNumberLiteral.ReplaceAllString(query, "?")
	return sqlInList.ReplaceAllString(query, "IN (?)")
}

// Fingerprint returns a short stable identifier for a pattern.
func Fingerprint(pattern string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(pattern))
}
