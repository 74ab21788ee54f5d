package clockwork

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest_PHPEmptyArrays(t *testing.T) {
	r, err := DecodeRequest([]byte(`{
		"id": "1",
		"time": 1700000000.25,
		"headers": [],
		"sessionData": {"cart": [1, 2]},
		"getData": ["x", "y"],
		"authenticatedUser": null
	}`))
	require.NoError(t, err)

	assert.Nil(t, r.Headers)
	assert.Equal(t, []any{float64(1), float64(2)}, r.SessionData["cart"])
	assert.Equal(t, Object{"0": "x", "1": "y"}, r.GetData)
	assert.Nil(t, r.AuthenticatedUser)
}

func TestDecodeRequest_TimelineForms(t *testing.T) {
	r, err := DecodeRequest([]byte(`{"id":"1","timelineData":[
		{"description":"Total","start":0,"end":10,"duration":10000}
	]}`))
	require.NoError(t, err)
	require.Len(t, r.TimelineData, 1)
	assert.Equal(t, "Total", r.TimelineData[0].Description)

	r, err = DecodeRequest([]byte(`{"id":"1","timelineData":{
		"render": {"description":"Render","start":5,"end":6,"duration":1000},
		"boot":   {"description":"Boot","start":1,"end":2,"duration":1000},
		"total":  {"description":"Total","start":1,"end":9,"duration":8000, "name":"request"}
	}}`))
	require.NoError(t, err)
	require.Len(t, r.TimelineData, 3)
	assert.Equal(t, "boot", r.TimelineData[0].Name)
	assert.Equal(t, "request", r.TimelineData[1].Name)
	assert.Equal(t, "render", r.TimelineData[2].Name)
}

func TestDecodeRequest_Invalid(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"id":`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRequest_NamedBindings(t *testing.T) {
	r, err := DecodeRequest([]byte(`{"id":"1","databaseQueries":[
		{"query":"select * from users where id = :id","bindings":{"id":5},"duration":2},
		{"query":"select * from users where id = ?","bindings":[5],"duration":1}
	]}`))
	require.NoError(t, err)
	require.Len(t, r.DatabaseQueries, 2)
	assert.Equal(t, map[string]any{"id": float64(5)}, r.DatabaseQueries[0].Bindings)
	assert.Equal(t, []any{float64(5)}, r.DatabaseQueries[1].Bindings)
}

func TestDecodeRequest_NumericStrings(t *testing.T) {
	r, err := DecodeRequest([]byte(`{
		"id": "1",
		"time": "1700000000.5",
		"responseStatus": "200",
		"responseDuration": "850.5",
		"memoryUsage": 4194304,
		"databaseQueriesCount": 2.0,
		"databaseQueries": [{"query":"select 1","duration":"1.25","line":"42"}],
		"log": [{"level":"error","message":"boom","line":"17","time":"1700000000.6"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, 1700000000.5, r.Time)
	require.NotNil(t, r.ResponseStatus)
	assert.Equal(t, 200, *r.ResponseStatus)
	require.NotNil(t, r.ResponseDuration)
	assert.Equal(t, 850.5, *r.ResponseDuration)
	require.NotNil(t, r.MemoryUsage)
	assert.Equal(t, 4194304.0, *r.MemoryUsage)
	require.NotNil(t, r.DatabaseQueriesCount)
	assert.Equal(t, 2, *r.DatabaseQueriesCount)

	require.Len(t, r.DatabaseQueries, 1)
	assert.Equal(t, 1.25, r.DatabaseQueries[0].Duration)
	require.NotNil(t, r.DatabaseQueries[0].Line)
	assert.Equal(t, 42, *r.DatabaseQueries[0].Line)

	require.Len(t, r.Log, 1)
	require.NotNil(t, r.Log[0].Line)
	assert.Equal(t, 17, *r.Log[0].Line)
	require.NotNil(t, r.Log[0].Time)
	assert.Equal(t, 1700000000.6, *r.Log[0].Time)
}

func TestDecodeRequest_UnusableNumbersAreAbsent(t *testing.T) {
	r, err := DecodeRequest([]byte(`{"id":"1","responseDuration":"","memoryUsage":"n/a","responseStatus":true,
		"log":[{"level":"info","message":"x","line":null}]}`))
	require.NoError(t, err)
	assert.Nil(t, r.ResponseDuration)
	assert.Nil(t, r.MemoryUsage)
	assert.Nil(t, r.ResponseStatus)
	require.Len(t, r.Log, 1)
	assert.Nil(t, r.Log[0].Line)
}
