package inspector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

func listFixture() *memStore {
	post := httpRequest("r3", 300, "/checkout")
	post.Method = "POST"
	post.ResponseStatus = clockwork.Int(500)
	post.ResponseDuration = clockwork.Float(900)
	post.Controller = "CheckoutController@store"

	untyped := httpRequest("r1", 100, "/users/1")
	untyped.Controller = "UserController@show"
	untyped.Type = ""

	return newMemStore(
		untyped,
		httpRequest("r2", 200, "/users/2"),
		post,
		&clockwork.Request{ID: "c1", Time: 250, Type: clockwork.TypeCommand, CommandName: "migrate"},
	)
}

func ids(entries []clockwork.IndexEntry) []string {
	out := make([]string, len(entries))
	for n, e := range entries {
		out[n] = e.ID
	}
	return out
}

func TestListRequests(t *testing.T) {
	i := newTestInspector(listFixture())
	ctx := context.Background()

	tests := []struct {
		name string
		in   ListRequestsInput
		want []string
	}{
		{name: "all most recent first", in: ListRequestsInput{}, want: []string{"r3", "c1", "r2", "r1"}},
		{name: "untyped counts as request", in: ListRequestsInput{Type: clockwork.TypeRequest}, want: []string{"r3", "r2", "r1"}},
		{name: "commands", in: ListRequestsInput{Type: clockwork.TypeCommand}, want: []string{"c1"}},
		{name: "status", in: ListRequestsInput{Status: clockwork.Int(500)}, want: []string{"r3"}},
		{name: "uri substring", in: ListRequestsInput{URI: "/users"}, want: []string{"r2", "r1"}},
		{name: "method case-insensitive", in: ListRequestsInput{Method: "post"}, want: []string{"r3"}},
		{name: "time range", in: ListRequestsInput{TimeRange: TimeRange{From: clockwork.Float(150), To: clockwork.Float(260)}}, want: []string{"c1", "r2"}},
		{name: "expression", in: ListRequestsInput{Expr: `duration > 500.0`}, want: []string{"r3"}},
		{name: "paged", in: ListRequestsInput{Page: Page{Limit: clockwork.Int(2), Offset: 1}}, want: []string{"c1", "r2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := i.ListRequests(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestListRequestsRejectsBadExpression(t *testing.T) {
	i := newTestInspector(listFixture())

	_, err := i.ListRequests(context.Background(), ListRequestsInput{Expr: "uri +"})
	assert.Error(t, err)
}

func TestSearchRequests(t *testing.T) {
	i := newTestInspector(listFixture())
	ctx := context.Background()

	got, err := i.SearchRequests(ctx, SearchRequestsInput{Controller: "Controller"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r1"}, ids(got))

	got, err = i.SearchRequests(ctx, SearchRequestsInput{MinDuration: clockwork.Float(50), MaxDuration: clockwork.Float(500)})
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, ids(got))

	// The command has no duration and counts as 0 ms.
	got, err = i.SearchRequests(ctx, SearchRequestsInput{MaxDuration: clockwork.Float(10)})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids(got))
}

func TestGetLatestRequest(t *testing.T) {
	i := newTestInspector(listFixture())

	r, err := i.GetLatestRequest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "r3", r.ID)
}
