package export

import (
	"fmt"
	"io"
	"math"

	"github.com/google/pprof/profile"

	"github.com/coral-mesh/clockwork-mcp/internal/analysis"
)

// CallGraphProfile converts a call graph into a wall-time profile. Every node
// contributes one sample holding its self time on the stack root..node.
// Nodes sharing a description share a function.
func CallGraphProfile(roots []*analysis.CallGraphNode) *profile.Profile {
	prof := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "wall", Unit: "microseconds"}},
		PeriodType: &profile.ValueType{Type: "wall", Unit: "microseconds"},
		Period:     1,
	}

	locs := make(map[string]*profile.Location)
	location := func(name string) *profile.Location {
		if loc, ok := locs[name]; ok {
			return loc
		}
		fn := &profile.Function{
			ID:         uint64(len(prof.Function) + 1),
			Name:       name,
			SystemName: name,
		}
		loc := &profile.Location{
			ID:   uint64(len(prof.Location) + 1),
			Line: []profile.Line{{Function: fn}},
		}
		prof.Function = append(prof.Function, fn)
		prof.Location = append(prof.Location, loc)
		locs[name] = loc
		return loc
	}

	analysis.Walk(roots, func(path []*analysis.CallGraphNode) {
		self := int64(math.Round(path[len(path)-1].SelfDuration() * 1000))
		if self <= 0 {
			return
		}
		// pprof stacks are leaf first.
		stack := make([]*profile.Location, len(path))
		for n, node := range path {
			stack[len(path)-1-n] = location(nodeName(node))
		}
		prof.Sample = append(prof.Sample, &profile.Sample{
			Location: stack,
			Value:    []int64{self},
		})
	})
	return prof
}

// WriteCallGraphProfile writes the gzip-compressed profile of roots to w.
func WriteCallGraphProfile(w io.Writer, roots []*analysis.CallGraphNode) error {
	prof := CallGraphProfile(roots)
	if err := prof.CheckValid(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	if err := prof.Write(w); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func nodeName(n *analysis.CallGraphNode) string {
	if n.Description == "" {
		return "(unnamed)"
	}
	return n.Description
}
