// Package layer assigns every node of a comparison subgraph to a
// horizontal layer: its hop distance from the source endpoint, with two
// adjustments. The destination is pinned to the hop count of the
// canonical weighted shortest path, which may exceed its raw BFS
// distance. Nodes off the canonical path that sit one hop from the
// destination while the canonical path takes longer are "bridges" and
// land on a half-integer layer, drawn strictly between their BFS layer
// and the destination.
package layer

import (
	"slices"

	"github.com/mkarlsen/rivalmap/pkg/span"
)

// Assignment maps every node of the subgraph to its layer degree: a
// non-negative value that is either an integer or an integer plus 0.5
// for bridge nodes.
type Assignment struct {
	Degrees map[string]float64 `json:"degrees" bson:"degrees"`
}

// Degree returns the assigned degree for a node and whether the node
// was assigned at all.
func (a Assignment) Degree(id string) (float64, bool) {
	d, ok := a.Degrees[id]
	return d, ok
}

// IsBridge reports whether the node sits on a half-integer layer.
func (a Assignment) IsBridge(id string) bool {
	d, ok := a.Degrees[id]
	return ok && d != float64(int(d))
}

// MaxDegree returns the highest assigned degree, or 0 for an empty
// assignment.
func (a Assignment) MaxDegree() float64 {
	max := 0.0
	for _, d := range a.Degrees {
		if d > max {
			max = d
		}
	}
	return max
}

// Layers groups the assigned nodes by degree. Keys come back sorted
// ascending and every layer's node list is sorted by ID, so iteration
// over the result is deterministic.
func (a Assignment) Layers() (degrees []float64, layers map[float64][]string) {
	layers = make(map[float64][]string)
	for id, d := range a.Degrees {
		layers[d] = append(layers[d], id)
	}
	degrees = make([]float64, 0, len(layers))
	for d := range layers {
		degrees = append(degrees, d)
		slices.Sort(layers[d])
	}
	slices.Sort(degrees)
	return degrees, layers
}

// Assign computes the layer assignment for a subgraph. The empty
// sentinel yields an empty assignment.
//
// Source is always at degree 0 and the destination at the canonical
// path's hop count W. Every other reachable node gets its BFS hop
// distance, bumped by 0.5 when the bridge rule applies: the node is off
// the canonical path, adjacent to the destination, and its one-hop
// route to the destination beats W.
func Assign(s *span.Subgraph) Assignment {
	a := Assignment{Degrees: make(map[string]float64)}
	if s.IsEmpty() {
		return a
	}

	hops := bfs(s, s.Source)
	w := s.CanonicalHops()

	destNeighbor := make(map[string]bool)
	for _, id := range s.Neighbors(s.Destination) {
		destNeighbor[id] = true
	}

	for _, n := range s.Nodes {
		id := n.ID
		h, reachable := hops[id]
		if !reachable {
			// Disconnected nodes are absent from the result, never an
			// error.
			continue
		}
		switch {
		case id == s.Source:
			a.Degrees[id] = 0
		case id == s.Destination:
			a.Degrees[id] = float64(w)
		case !s.OnCanonicalPath(id) && destNeighbor[id] && h+1 < w:
			a.Degrees[id] = float64(h) + 0.5
		default:
			a.Degrees[id] = float64(h)
		}
	}
	return a
}

// bfs returns unweighted hop distances from start over the subgraph's
// adjacency. Neighbor lists are already sorted, so the traversal order
// is deterministic.
func bfs(s *span.Subgraph, start string) map[string]int {
	hops := map[string]int{start: 0}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range s.Neighbors(cur) {
			if _, seen := hops[next]; seen {
				continue
			}
			hops[next] = hops[cur] + 1
			queue = append(queue, next)
		}
	}
	return hops
}
