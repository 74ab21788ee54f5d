package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

func TestParseIndex(t *testing.T) {
	data := []byte(
		"a1\t1700000000.5\tGET\t/users\tUserController@index\t200\t12.5\trequest\n" +
			"\n" +
			"c1\t1700000100\t\tmigrate\t\t\t300\tcommand\n" +
			"garbage line\n" +
			"b1\t1700000050\tPOST\t/orders\t\t500\t\t\r\n",
	)

	entries := ParseIndex(data)
	require.Len(t, entries, 3)

	assert.Equal(t, "c1", entries[0].ID)
	assert.Equal(t, clockwork.TypeCommand, entries[0].Type)
	assert.Equal(t, "migrate", entries[0].CommandName)
	assert.Empty(t, entries[0].URI)
	assert.Nil(t, entries[0].ResponseStatus)

	assert.Equal(t, "b1", entries[1].ID)
	assert.Equal(t, "/orders", entries[1].URI)
	assert.Equal(t, 500, *entries[1].ResponseStatus)
	assert.Nil(t, entries[1].ResponseDuration)
	assert.Equal(t, clockwork.RequestType(""), entries[1].Type)
	assert.Equal(t, clockwork.TypeRequest, entries[1].EffectiveType())

	assert.Equal(t, "a1", entries[2].ID)
	assert.Equal(t, "GET", entries[2].Method)
	assert.Equal(t, "UserController@index", entries[2].Controller)
	assert.InDelta(t, 12.5, *entries[2].ResponseDuration, 1e-9)
}

func TestParseIndex_Empty(t *testing.T) {
	entries := ParseIndex(nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestParseIndex_StableForEqualTimes(t *testing.T) {
	entries := ParseIndex([]byte("x\t10\ny\t10\nz\t11\n"))
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"z", "x", "y"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestParseIndex_LongLines(t *testing.T) {
	long := "big\t300\tGET\t/" + strings.Repeat("a", 2*1024*1024) + "\t\t200\t1\trequest\n"
	entries := ParseIndex([]byte("first\t100\n" + long + "last\t200"))
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"big", "last", "first"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Len(t, entries[0].URI, 2*1024*1024+1)
}
