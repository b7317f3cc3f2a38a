// Package order arranges the nodes within each layer to reduce edge
// crossings between numerically adjacent layers.
//
// The heuristic is the classic layered-drawing median method: each node
// moves toward the median position of its neighbors in the adjacent
// layer, alternating top-down and bottom-up sweeps for a bounded number
// of iterations. Minimum crossing number is NP-hard in general; the
// contract here is non-increasing crossings, a bounded iteration count,
// and deterministic output given identical input.
package order

import (
	"math"
	"slices"

	"github.com/mkarlsen/rivalmap/pkg/layer"
	"github.com/mkarlsen/rivalmap/pkg/span"
)

// MaxSweeps caps the number of alternating sweep iterations. The
// effective cap for a given graph is min(MaxSweeps, 2×layers+1).
const MaxSweeps = 7

// Ordering is an immutable per-layer arrangement of nodes. Degrees is
// sorted ascending; Rows holds each layer's nodes in draw order.
type Ordering struct {
	Degrees []float64            `json:"degrees" bson:"degrees"`
	Rows    map[float64][]string `json:"rows" bson:"rows"`
}

// clone returns a deep copy so sweeps never mutate a published value.
func (o Ordering) clone() Ordering {
	c := Ordering{
		Degrees: slices.Clone(o.Degrees),
		Rows:    make(map[float64][]string, len(o.Rows)),
	}
	for d, row := range o.Rows {
		c.Rows[d] = slices.Clone(row)
	}
	return c
}

// Minimize reorders the layers of an assignment to reduce crossings
// and returns the best ordering found. The input assignment is not
// modified.
//
// Sweeps alternate: a down-sweep orders each layer by the medians of
// its neighbors in the layer above, an up-sweep by the layer below.
// Iteration stops at the cap or as soon as two consecutive iterations
// fail to reduce the total crossing count.
func Minimize(a layer.Assignment, s *span.Subgraph) Ordering {
	cur := initialOrdering(a, s)
	if len(cur.Degrees) < 2 {
		return cur
	}

	best := cur.clone()
	bestCrossings := CountCrossings(best, s)

	maxIter := 2*len(cur.Degrees) + 1
	if maxIter > MaxSweeps {
		maxIter = MaxSweeps
	}

	stale := 0
	for iter := 0; iter < maxIter && bestCrossings > 0; iter++ {
		if iter%2 == 0 {
			cur = sweepDown(cur, s)
		} else {
			cur = sweepUp(cur, s)
		}
		crossings := CountCrossings(cur, s)
		if crossings < bestCrossings {
			best = cur.clone()
			bestCrossings = crossings
			stale = 0
		} else {
			stale++
			if stale >= 2 {
				break
			}
		}
	}
	return best
}

// initialOrdering seeds each layer with canonical-path nodes first,
// then the rest alphabetically by label. This is also the tie-break
// order used inside every sweep.
func initialOrdering(a layer.Assignment, s *span.Subgraph) Ordering {
	degrees, layers := a.Layers()
	labels := s.Labels()

	o := Ordering{Degrees: degrees, Rows: make(map[float64][]string, len(layers))}
	for _, d := range degrees {
		row := slices.Clone(layers[d])
		slices.SortFunc(row, func(x, y string) int {
			return compareTieBreak(x, y, s, labels)
		})
		o.Rows[d] = row
	}
	return o
}

func sweepDown(o Ordering, s *span.Subgraph) Ordering {
	next := o.clone()
	for i := 1; i < len(next.Degrees); i++ {
		ref := next.Rows[next.Degrees[i-1]]
		next.Rows[next.Degrees[i]] = orderByMedian(next.Rows[next.Degrees[i]], ref, s)
	}
	return next
}

func sweepUp(o Ordering, s *span.Subgraph) Ordering {
	next := o.clone()
	for i := len(next.Degrees) - 2; i >= 0; i-- {
		ref := next.Rows[next.Degrees[i+1]]
		next.Rows[next.Degrees[i]] = orderByMedian(next.Rows[next.Degrees[i]], ref, s)
	}
	return next
}

// orderByMedian sorts a row by the median position of each node's
// neighbors in the reference row. Nodes without a placed neighbor sort
// last; ties fall back to canonical-path membership, label, then ID.
func orderByMedian(row, ref []string, s *span.Subgraph) []string {
	refPos := PosMap(ref)
	labels := s.Labels()

	medians := make(map[string]float64, len(row))
	for _, id := range row {
		medians[id] = neighborMedian(id, refPos, s)
	}

	out := slices.Clone(row)
	slices.SortFunc(out, func(x, y string) int {
		mx, my := medians[x], medians[y]
		if mx != my {
			if mx < my {
				return -1
			}
			return 1
		}
		return compareTieBreak(x, y, s, labels)
	})
	return out
}

// neighborMedian returns the median reference position of the node's
// placed neighbors, or +Inf when none of its neighbors are in the
// reference row.
func neighborMedian(id string, refPos map[string]int, s *span.Subgraph) float64 {
	var positions []int
	for _, nb := range s.Neighbors(id) {
		if pos, ok := refPos[nb]; ok {
			positions = append(positions, pos)
		}
	}
	if len(positions) == 0 {
		return math.Inf(1)
	}
	slices.Sort(positions)
	mid := len(positions) / 2
	if len(positions)%2 == 1 {
		return float64(positions[mid])
	}
	return float64(positions[mid-1]+positions[mid]) / 2
}

// compareTieBreak orders canonical-path nodes first (they stay visually
// central), then by label, then by ID for full determinism.
func compareTieBreak(x, y string, s *span.Subgraph, labels map[string]string) int {
	px, py := s.OnCanonicalPath(x), s.OnCanonicalPath(y)
	if px != py {
		if px {
			return -1
		}
		return 1
	}
	lx, ly := labels[x], labels[y]
	if lx != ly {
		if lx < ly {
			return -1
		}
		return 1
	}
	if x != y {
		if x < y {
			return -1
		}
		return 1
	}
	return 0
}
