package pipeline

import (
	"github.com/mkarlsen/rivalmap/pkg/place"
)

// Visible narrows an already computed layout to the nodes whose degree
// does not exceed maxDegree, plus the destination, which stays visible
// at every display bound. Edges survive only when both endpoints do.
//
// This is a pure filter: positions and degrees of the surviving nodes
// are carried over unchanged, guaranteeing visual stability when a
// user drags a display slider. Lowering or raising the display bound
// must go through here, never through a new pipeline run.
func Visible(l Layout, maxDegree float64) Layout {
	if l.Empty {
		return l
	}

	out := Layout{
		Source:        l.Source,
		Destination:   l.Destination,
		MaxHops:       l.MaxHops,
		CanonicalPath: l.CanonicalPath,
		Degrees:       make(map[string]float64),
		Positions:     make(map[string]place.Point),
	}

	keep := func(id string) bool {
		if id == l.Destination {
			return true
		}
		d, ok := l.Degrees[id]
		return ok && d <= maxDegree
	}

	for _, n := range l.Nodes {
		if !keep(n.ID) {
			continue
		}
		out.Nodes = append(out.Nodes, n)
		out.Degrees[n.ID] = l.Degrees[n.ID]
		out.Positions[n.ID] = l.Positions[n.ID]
	}
	for _, e := range l.Edges {
		if keep(e.A) && keep(e.B) {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
