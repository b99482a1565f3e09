package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
)

// TreeFormatter renders reachability search results as a tree: the base,
// then one branch per hop, then zones, then their candidate nodes
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

type treeNode struct {
	label    string
	children []*treeNode
}

// FormatTree renders the candidates of base grouped by hop and zone
func (f *TreeFormatter) FormatTree(base string, candidates []remote.Candidate) string {
	root := &treeNode{label: base}

	hops := map[int]*treeNode{}
	zones := map[string]*treeNode{}
	for _, c := range candidates {
		hop, ok := hops[c.Depth]
		if !ok {
			hop = &treeNode{label: fmt.Sprintf("hop %d", c.Depth)}
			hops[c.Depth] = hop
			root.children = append(root.children, hop)
		}

		zone, ok := zones[c.Zone]
		if !ok {
			zone = &treeNode{label: f.zoneLabel(c)}
			zones[c.Zone] = zone
			hop.children = append(hop.children, zone)
		}
		zone.children = append(zone.children, &treeNode{label: c.NodeID.String()})
	}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

// formatNode recursively formats a node and its children
func (f *TreeFormatter) formatNode(builder *strings.Builder, node *treeNode, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}
	builder.WriteString(linePrefix + node.label + "\n")

	var childPrefix string
	if isRoot {
		childPrefix = ""
	} else if isLast {
		childPrefix = prefix + "    "
	} else {
		childPrefix = prefix + "│   "
	}

	for i, child := range node.children {
		f.formatNode(builder, child, childPrefix, i == len(node.children)-1, false)
	}
}

func (f *TreeFormatter) zoneLabel(c remote.Candidate) string {
	if !c.IsHighYield() {
		return c.Zone
	}
	if !f.useColors {
		return c.Zone + " (high-yield)"
	}
	return "\033[33m" + c.Zone + " (high-yield)" + f.colorReset()
}

// colorReset returns ANSI reset code
func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// FormatTreeSummary creates a compact summary of the search
func (f *TreeFormatter) FormatTreeSummary(candidates []remote.Candidate) string {
	zones := map[string]bool{}
	highYield, depth := 0, 0
	for _, c := range candidates {
		zones[c.Zone] = true
		if c.IsHighYield() {
			highYield++
		}
		if c.Depth > depth {
			depth = c.Depth
		}
	}

	return fmt.Sprintf("Search: %d candidates in %d zones (%d high-yield), depth=%d",
		len(candidates), len(zones), highYield, depth)
}
