package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

func httpRequest(id, uri string, durationMs float64) *clockwork.Request {
	return &clockwork.Request{
		ID:               id,
		Type:             clockwork.TypeRequest,
		URI:              uri,
		ResponseDuration: clockwork.Float(durationMs),
	}
}

func TestAnalyzeRoutePerformance(t *testing.T) {
	requests := []*clockwork.Request{
		httpRequest("1", "/users", 100),
		httpRequest("2", "/users", 300),
		httpRequest("3", "/users", 200),
		httpRequest("4", "/health", 5),
	}
	requests[0].MemoryUsage = clockwork.Float(2 * 1024 * 1024)
	requests[1].MemoryUsage = clockwork.Float(4 * 1024 * 1024)

	result := AnalyzeRoutePerformance(requests, RouteOptions{})
	require.Len(t, result.Routes, 2)

	users := result.Routes[0]
	assert.Equal(t, "/users", users.Route)
	assert.Equal(t, 3, users.Samples)
	assert.Equal(t, 200.0, users.AvgDuration)
	assert.Equal(t, 100.0, users.MinDuration)
	assert.Equal(t, 300.0, users.MaxDuration)
	assert.Equal(t, 200.0, users.P50)
	assert.InDelta(t, 290.0, users.P95, 1e-9)
	assert.InDelta(t, 298.0, users.P99, 1e-9)
	require.NotNil(t, users.AvgMemoryMB)
	assert.Equal(t, 3.0, *users.AvgMemoryMB)

	assert.Nil(t, result.Routes[1].AvgMemoryMB)

	assert.Equal(t, 4, result.Summary.TotalRequests)
	assert.Equal(t, 2, result.Summary.UniqueRoutes)
	assert.Equal(t, "/users", *result.Summary.SlowestRoute)
	assert.Equal(t, "/health", *result.Summary.FastestRoute)
}

func TestAnalyzeRoutePerformance_EvenSamplesInterpolate(t *testing.T) {
	requests := []*clockwork.Request{
		httpRequest("1", "/a", 100),
		httpRequest("2", "/a", 200),
		httpRequest("3", "/a", 300),
		httpRequest("4", "/a", 400),
	}
	result := AnalyzeRoutePerformance(requests, RouteOptions{})
	require.Len(t, result.Routes, 1)
	assert.Equal(t, 250.0, result.Routes[0].P50)
}

func TestAnalyzeRoutePerformance_Filters(t *testing.T) {
	noDuration := &clockwork.Request{ID: "x", Type: clockwork.TypeRequest, URI: "/x"}
	command := &clockwork.Request{ID: "c", Type: clockwork.TypeCommand, CommandName: "migrate", ResponseDuration: clockwork.Float(10)}
	noURI := httpRequest("n", "", 10)

	result := AnalyzeRoutePerformance([]*clockwork.Request{noDuration, command, noURI, nil}, RouteOptions{})
	assert.Empty(t, result.Routes)
	assert.Equal(t, 2, result.Summary.TotalRequests)
	assert.Nil(t, result.Summary.SlowestRoute)
	assert.Nil(t, result.Summary.FastestRoute)
}

func TestAnalyzeRoutePerformance_GroupBy(t *testing.T) {
	named := httpRequest("1", "/users/1", 100)
	named.RouteName = clockwork.String("users.show")
	routed := httpRequest("2", "/users/2", 200)
	routed.Route = clockwork.String("users/{id}")
	routed.RouteName = clockwork.String("users.show")
	plain := httpRequest("3", "/about", 50)
	plain.Controller = "PageController@about"

	result := AnalyzeRoutePerformance([]*clockwork.Request{named, routed, plain}, RouteOptions{GroupBy: GroupByRoute})
	var keys []string
	for _, r := range result.Routes {
		keys = append(keys, r.Route)
	}
	assert.Equal(t, []string{"users/{id}", "users.show", "/about"}, keys)

	byController := AnalyzeRoutePerformance([]*clockwork.Request{named, routed, plain}, RouteOptions{GroupBy: GroupByController})
	require.Len(t, byController.Routes, 1)
	assert.Equal(t, "PageController@about", byController.Routes[0].Route)
}

func TestAnalyzeRoutePerformance_MinSamples(t *testing.T) {
	requests := []*clockwork.Request{
		httpRequest("1", "/a", 100),
		httpRequest("2", "/a", 100),
		httpRequest("3", "/b", 100),
	}
	result := AnalyzeRoutePerformance(requests, RouteOptions{MinSamples: 2})
	require.Len(t, result.Routes, 1)
	assert.Equal(t, "/a", result.Routes[0].Route)
}
