// Package render turns a computed layout into Graphviz DOT and SVG.
// The layout engine owns all positioning; Graphviz is used purely as a
// drawing surface, with every node pinned to its computed coordinates
// through the neato engine.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/mkarlsen/rivalmap/pkg/graph"
	"github.com/mkarlsen/rivalmap/pkg/pipeline"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes the layer degree in node labels.
	Detailed bool
}

// pointsPerUnit converts layout user units to Graphviz points. The
// layout's pixel-ish coordinates are too coarse for DOT's inch-based
// world, so they are scaled down.
const pointsPerUnit = 1.0

// ToDOT converts a computed layout to Graphviz DOT with pinned node
// positions ("x,y!" with neato). Canonical-path nodes and edges are
// emphasized; the y axis is flipped because layouts grow downward
// while Graphviz grows upward.
func ToDOT(l pipeline.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	if l.Empty {
		fmt.Fprintf(&buf, "  %q [shape=plaintext, style=\"\"];\n", "no connection at this bound")
		buf.WriteString("}\n")
		return buf.String()
	}

	onPath := make(map[string]bool, len(l.CanonicalPath))
	for _, id := range l.CanonicalPath {
		onPath[id] = true
	}
	pathEdge := make(map[string]bool, len(l.CanonicalPath))
	for i := 1; i < len(l.CanonicalPath); i++ {
		pathEdge[graph.EdgeKey(l.CanonicalPath[i-1], l.CanonicalPath[i])] = true
	}

	for _, n := range l.Nodes {
		p := l.Positions[n.ID]
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(l, n, opts.Detailed)),
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", p.X*pointsPerUnit, -p.Y*pointsPerUnit),
		}
		switch {
		case n.ID == l.Source || n.ID == l.Destination:
			attrs = append(attrs, "fillcolor=lightblue", "penwidth=2")
		case onPath[n.ID]:
			attrs = append(attrs, "fillcolor=lightyellow")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		if pathEdge[e.Key()] {
			fmt.Fprintf(&buf, "  %q -- %q [penwidth=2];\n", e.A, e.B)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [color=grey];\n", e.A, e.B)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(l pipeline.Layout, n graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	if d, ok := l.Degrees[n.ID]; ok {
		return fmt.Sprintf("%s\ndegree: %g", label, d)
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using the neato engine, which
// honors the pinned positions instead of computing its own.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
