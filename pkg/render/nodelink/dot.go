package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/panotour/pkg/graph"
	"github.com/matzehuels/panotour/pkg/tour"
)

// Options configures DOT generation.
type Options struct {
	// Start is highlighted as the tour entry point.
	Start string
	// Detailed adds scene titles to node labels.
	Detailed bool
	// GroupFloors draws one cluster per floor.
	GroupFloors bool
}

// ToDOT converts a graph view to Graphviz DOT. Edges to scenes that are not
// part of the view are drawn to dashed placeholder nodes.
func ToDOT(v graph.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(v.Nodes))
	for _, n := range v.Nodes {
		known[n.ID] = true
	}

	if opts.GroupFloors {
		for i, f := range floorsOf(v) {
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
			fmt.Fprintf(&buf, "    label=%q;\n", floorLabel(f))
			buf.WriteString("    style=\"rounded,dashed\";\n")
			for _, n := range v.Nodes {
				if n.Floor == f {
					writeNode(&buf, "    ", n, opts)
				}
			}
			buf.WriteString("  }\n")
		}
	} else {
		for _, n := range v.Nodes {
			writeNode(&buf, "  ", n, opts)
		}
	}

	missing := make(map[string]bool)
	for _, e := range v.Edges {
		if known[e.To] || missing[e.To] {
			continue
		}
		missing[e.To] = true
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,dashed\", color=red, fontcolor=red];\n", e.To, e.To+"\n(missing)")
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		if missing[e.To] {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=red];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, n graph.ViewNode, opts Options) {
	label := n.ID
	if opts.Detailed && n.Title != "" {
		label += "\n" + n.Title
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.ID == opts.Start {
		attrs = append(attrs, "penwidth=3", "fillcolor=lightyellow")
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
}

func floorsOf(v graph.View) []tour.Floor {
	var floors []tour.Floor
	for _, n := range v.Nodes {
		if !slices.Contains(floors, n.Floor) {
			floors = append(floors, n.Floor)
		}
	}
	slices.SortFunc(floors, func(a, b tour.Floor) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return floors
}

func floorLabel(f tour.Floor) string {
	if !f.IsSet() {
		return "Unspecified floor"
	}
	return "Floor " + f.String()
}

// Layout runs the Graphviz dot engine over the view and returns a copy whose
// nodes carry the computed x/y positions in points.
func Layout(ctx context.Context, v graph.View, opts Options) (graph.View, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return v, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ToDOT(v, opts)))
	if err != nil {
		return v, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("dot"), &buf); err != nil {
		return v, fmt.Errorf("layout: %w", err)
	}
	return ApplyPositions(v, ParsePositions(buf.Bytes())), nil
}

// Position is a node center in Graphviz points.
type Position struct {
	X, Y float64
}

var (
	continuationRe = regexp.MustCompile(`\\\r?\n`)
	nodeStmtRe     = regexp.MustCompile(`(?m)^\s*("(?:[^"\\]|\\.)*"|[A-Za-z_\x{80}-\x{10FFFF}][A-Za-z0-9_\x{80}-\x{10FFFF}]*|-?(?:\.[0-9]+|[0-9]+(?:\.[0-9]*)?))\s*\[([^\]]*)\]`)
	posAttrRe      = regexp.MustCompile(`(?:^|[\s,])pos="(-?[0-9.eE+-]+),(-?[0-9.eE+-]+)!?"`)
)

// ParsePositions extracts node positions from laid-out DOT output.
// Edge statements and graph defaults are skipped.
func ParsePositions(dot []byte) map[string]Position {
	dot = continuationRe.ReplaceAll(dot, nil)
	positions := make(map[string]Position)
	for _, m := range nodeStmtRe.FindAllSubmatch(dot, -1) {
		id := string(m[1])
		switch id {
		case "graph", "node", "edge":
			continue
		}
		if strings.HasPrefix(id, `"`) {
			unquoted, err := strconv.Unquote(id)
			if err != nil {
				continue
			}
			id = unquoted
		}
		pos := posAttrRe.FindSubmatch(m[2])
		if pos == nil {
			continue
		}
		x, errX := strconv.ParseFloat(string(pos[1]), 64)
		y, errY := strconv.ParseFloat(string(pos[2]), 64)
		if errX != nil || errY != nil {
			continue
		}
		positions[id] = Position{X: x, Y: y}
	}
	return positions
}

// ApplyPositions returns a copy of v with positions set on matching nodes.
func ApplyPositions(v graph.View, positions map[string]Position) graph.View {
	out := graph.View{
		Nodes: make([]graph.ViewNode, len(v.Nodes)),
		Edges: slices.Clone(v.Edges),
	}
	for i, n := range v.Nodes {
		if p, ok := positions[n.ID]; ok {
			x, y := p.X, p.Y
			n.X, n.Y = &x, &y
		}
		out.Nodes[i] = n
	}
	return out
}
