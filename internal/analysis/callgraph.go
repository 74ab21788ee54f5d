package analysis

import (
	"sort"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// CallGraphNode is a timeline event with the events nested inside it.
type CallGraphNode struct {
	Description string           `json:"description"`
	Duration    float64          `json:"duration"`
	Start       float64          `json:"start"`
	End         float64          `json:"end"`
	Children    []*CallGraphNode `json:"children"`
}

// BuildCallGraph rebuilds the call hierarchy implied by timeline intervals.
//
// Events shorter than minDuration are dropped when minDuration is positive.
// The rest are swept in (start asc, duration desc) order against a stack of
// open intervals: intervals that ended before the event starts are popped,
// the nearest stacked interval fully containing the event becomes its parent
// (otherwise it is a root), and the event is pushed. Partially overlapping
// intervals are never nested.
func BuildCallGraph(events []clockwork.TimelineEvent, minDuration float64) []*CallGraphNode {
	sorted := make([]clockwork.TimelineEvent, 0, len(events))
	for _, e := range events {
		if minDuration > 0 && e.Duration < minDuration {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Duration > sorted[j].Duration
	})

	roots := make([]*CallGraphNode, 0)
	var stack []*CallGraphNode

	for _, e := range sorted {
		node := &CallGraphNode{
			Description: e.Description,
			Duration:    e.Duration,
			Start:       e.Start,
			End:         e.End,
			Children:    make([]*CallGraphNode, 0),
		}

		for len(stack) > 0 && stack[len(stack)-1].End < e.Start {
			stack = stack[:len(stack)-1]
		}

		var parent *CallGraphNode
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].Start <= e.Start && stack[i].End >= e.End {
				parent = stack[i]
				break
			}
		}

		if parent != nil {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
		stack = append(stack, node)
	}

	return roots
}

// Walk visits every node depth-first with its ancestry, root first.
// The path slice is reused between calls; copy it to retain it.
func Walk(roots []*CallGraphNode, fn func(path []*CallGraphNode)) {
	var visit func(n *CallGraphNode, path []*CallGraphNode)
	visit = func(n *CallGraphNode, path []*CallGraphNode) {
		path = append(path, n)
		fn(path)
		for _, c := range n.Children {
			visit(c, path)
		}
	}
	for _, r := range roots {
		visit(r, nil)
	}
}

// SelfDuration is the node duration not covered by its direct children, floored at zero.
func (n *CallGraphNode) SelfDuration() float64 {
	self := n.Duration
	for _, c := range n.Children {
		self -= c.Duration
	}
	return max(self, 0)
}
