package order

import (
	"slices"

	"github.com/mkarlsen/rivalmap/pkg/span"
)

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// CountCrossings returns the total number of edge crossings of an
// ordering: the sum of crossings between each numerically adjacent
// pair of layers. Edges that skip layers or stay within a layer do not
// participate.
func CountCrossings(o Ordering, s *span.Subgraph) int {
	crossings := 0
	for i := 0; i < len(o.Degrees)-1; i++ {
		upper := o.Rows[o.Degrees[i]]
		lower := o.Rows[o.Degrees[i+1]]
		crossings += CountLayerCrossings(s, upper, lower)
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two adjacent
// layers using a Fenwick tree for O(E log V) inversion counting.
//
// Two edges (u1,v1) and (u2,v2) cross iff pos(u1) < pos(u2) and
// pos(v1) > pos(v2): sorting the edges by their upper position turns
// crossing counting into inversion counting over the lower positions.
//
// Returns 0 when either layer is empty; no edges, no crossings.
func CountLayerCrossings(s *span.Subgraph, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := PosMap(lower)

	type pair struct{ upper, lower int }
	pairs := make([]pair, 0, len(upper)*2)
	for i, id := range upper {
		for _, nb := range s.Neighbors(id) {
			if pos, ok := lowerPos[nb]; ok {
				pairs = append(pairs, pair{i, pos})
			}
		}
	}
	if len(pairs) < 2 {
		return 0
	}

	slices.SortFunc(pairs, func(a, b pair) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	// Count inversions over the lower positions.
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, p := range pairs {
		lessOrEqual := 0
		for q := p.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := p.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
