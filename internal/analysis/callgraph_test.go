package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

func event(desc string, start, end float64) clockwork.TimelineEvent {
	return clockwork.TimelineEvent{Description: desc, Start: start, End: end, Duration: end - start}
}

func TestBuildCallGraph_Nesting(t *testing.T) {
	events := []clockwork.TimelineEvent{
		event("inner-b", 50, 90),
		event("outer", 0, 100),
		event("inner-a", 10, 40),
	}

	roots := BuildCallGraph(events, 0)
	require.Len(t, roots, 1)
	assert.Equal(t, "outer", roots[0].Description)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "inner-a", roots[0].Children[0].Description)
	assert.Equal(t, "inner-b", roots[0].Children[1].Description)
	assert.Empty(t, roots[0].Children[0].Children)
}

func TestBuildCallGraph_PartialOverlapIsNotNested(t *testing.T) {
	events := []clockwork.TimelineEvent{
		event("outer", 0, 100),
		event("inner-a", 10, 40),
		event("inner-b", 50, 90),
		event("straddle", 60, 140),
	}

	roots := BuildCallGraph(events, 0)
	require.Len(t, roots, 2)
	assert.Equal(t, "outer", roots[0].Description)
	assert.Len(t, roots[0].Children, 2)
	assert.Equal(t, "straddle", roots[1].Description)
}

func TestBuildCallGraph_SameStartLongerFirst(t *testing.T) {
	events := []clockwork.TimelineEvent{
		event("short", 0, 10),
		event("long", 0, 50),
	}

	roots := BuildCallGraph(events, 0)
	require.Len(t, roots, 1)
	assert.Equal(t, "long", roots[0].Description)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "short", roots[0].Children[0].Description)
}

func TestBuildCallGraph_DeepNesting(t *testing.T) {
	events := []clockwork.TimelineEvent{
		event("request", 0, 1000),
		event("controller", 100, 900),
		event("query", 200, 300),
		event("view", 400, 800),
		event("partial", 500, 600),
		event("terminate", 950, 990),
	}

	roots := BuildCallGraph(events, 0)
	require.Len(t, roots, 1)

	var paths []string
	Walk(roots, func(path []*CallGraphNode) {
		names := make([]string, len(path))
		for i, n := range path {
			names[i] = n.Description
		}
		paths = append(paths, strings.Join(names, ">"))
	})
	assert.Equal(t, []string{
		"request",
		"request>controller",
		"request>controller>query",
		"request>controller>view",
		"request>controller>view>partial",
		"request>terminate",
	}, paths)
}

func TestBuildCallGraph_MinDuration(t *testing.T) {
	events := []clockwork.TimelineEvent{
		event("outer", 0, 100),
		event("tiny", 10, 11),
		event("medium", 20, 40),
	}

	roots := BuildCallGraph(events, 5)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "medium", roots[0].Children[0].Description)
}

func TestBuildCallGraph_Empty(t *testing.T) {
	roots := BuildCallGraph(nil, 0)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)
}

func TestCallGraphNode_SelfDuration(t *testing.T) {
	roots := BuildCallGraph([]clockwork.TimelineEvent{
		event("outer", 0, 100),
		event("a", 10, 40),
		event("b", 50, 90),
	}, 0)
	require.Len(t, roots, 1)
	assert.Equal(t, 30.0, roots[0].SelfDuration())
	assert.Equal(t, 30.0, roots[0].Children[0].SelfDuration())

	// Children reported longer than the parent never go negative.
	n := &CallGraphNode{Duration: 10, Children: []*CallGraphNode{{Duration: 15}}}
	assert.Equal(t, 0.0, n.SelfDuration())
}
