package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	assert.Equal(t, `"clockwork"`, Quote("clockwork"))
	assert.Equal(t, `"cw"."clockwork"`, Quote("cw", "clockwork"))
	assert.Equal(t, `"we""ird"`, Quote(`we"ird`))
}

func TestInterpolateQuery(t *testing.T) {
	got := InterpolateQuery("SELECT * FROM t WHERE id = ? AND time >= ? AND ok = ? AND x = ? AND n = ?",
		[]any{"it's", 1.5, true, nil, 7})
	assert.Equal(t, "SELECT * FROM t WHERE id = 'it''s' AND time >= 1.5 AND ok = true AND x = NULL AND n = 7", got)
}

func TestDollar(t *testing.T) {
	assert.Equal(t, `SELECT * FROM t WHERE a = $1 AND b IN ($2, $3) AND c = '?'`,
		Dollar(`SELECT * FROM t WHERE a = ? AND b IN (?, ?) AND c = '?'`))
}

func TestInjectAutoloadConfig(t *testing.T) {
	assert.Equal(t, "?autoinstall_known_extensions=true&autoload_known_extensions=true", injectAutoloadConfig(""))
	assert.Equal(t, "/tmp/x.duckdb?access_mode=read_only&autoinstall_known_extensions=true&autoload_known_extensions=true",
		injectAutoloadConfig("/tmp/x.duckdb?access_mode=read_only"))
	assert.Equal(t, "/tmp/x.duckdb?autoinstall_known_extensions=false&autoload_known_extensions=true",
		injectAutoloadConfig("/tmp/x.duckdb?autoinstall_known_extensions=false"))
}
