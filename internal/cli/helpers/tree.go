package helpers

import (
	"fmt"
	"strings"

	"github.com/coral-mesh/clockwork-mcp/internal/analysis"
)

// RenderCallGraph renders a call graph forest in ASCII art format.
// Nodes taking at least slowMs are marked; totalMs is used for percentages.
func RenderCallGraph(roots []*analysis.CallGraphNode, totalMs, slowMs float64) string {
	if len(roots) == 0 {
		return "No timeline data available.\n"
	}

	var buf strings.Builder
	for i, root := range roots {
		renderTreeNode(&buf, root, "", i == len(roots)-1, totalMs, slowMs)
	}
	buf.WriteString("\n" + renderTreeLegend())
	return buf.String()
}

func renderTreeNode(buf *strings.Builder, node *analysis.CallGraphNode, prefix string, isLast bool, totalMs, slowMs float64) {
	connector := "├─"
	if isLast {
		connector = "└─"
	}

	percentage := 0.0
	if totalMs > 0 {
		percentage = node.Duration / totalMs * 100
	}

	slowMarker := ""
	if slowMs > 0 && node.Duration >= slowMs {
		slowMarker = " ← SLOW"
	}

	name := node.Description
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(buf, "%s%s %s (%s, self %s, %.1f%%)%s\n",
		prefix,
		connector,
		name,
		FormatMillis(node.Duration),
		FormatMillis(node.SelfDuration()),
		percentage,
		slowMarker,
	)

	childPrefix := prefix
	if isLast {
		childPrefix += "  "
	} else {
		childPrefix += "│ "
	}

	for i, child := range node.Children {
		renderTreeNode(buf, child, childPrefix, i == len(node.Children)-1, totalMs, slowMs)
	}
}

// FormatMillis formats a millisecond duration in a human-readable way.
func FormatMillis(ms float64) string {
	switch {
	case ms < 1:
		return fmt.Sprintf("%.1fµs", ms*1000)
	case ms < 1000:
		return fmt.Sprintf("%.1fms", ms)
	default:
		return fmt.Sprintf("%.2fs", ms/1000)
	}
}

func renderTreeLegend() string {
	return `Legend:
  ├─ = intermediate node    │  = continuation
  └─ = last child           ← SLOW = exceeds the slow threshold
`
}
