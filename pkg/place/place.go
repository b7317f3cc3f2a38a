// Package place turns an ordered layer arrangement into final 2D
// coordinates. The x coordinate is a pure function of a node's layer
// degree, so half-integer bridge layers land strictly between their
// integer neighbors; y coordinates spread each layer symmetrically
// around a vertical midline in sweep order.
package place

import (
	"math"
	"slices"

	"github.com/mkarlsen/rivalmap/pkg/order"
)

// Point is a final node position.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Spacing holds the layout constants. Request validation treats a zero
// field as "use the DefaultSpacing value" and rejects negative fields,
// so callers can override selectively.
type Spacing struct {
	// MarginX offsets the first layer from the left edge.
	MarginX float64 `json:"margin_x" bson:"margin_x"`
	// Horizontal is the x distance per unit of layer degree.
	Horizontal float64 `json:"horizontal" bson:"horizontal"`
	// Vertical is the base y distance between nodes of a layer.
	Vertical float64 `json:"vertical" bson:"vertical"`
	// CenterY is the vertical midline layers are centered on.
	CenterY float64 `json:"center_y" bson:"center_y"`
	// DensityThreshold is the layer cardinality beyond which vertical
	// spacing scales up to bound visual density.
	DensityThreshold int `json:"density_threshold" bson:"density_threshold"`
	// MinSeparation is the smallest allowed vertical gap between two
	// nodes in the same horizontal proximity window.
	MinSeparation float64 `json:"min_separation" bson:"min_separation"`
	// ProximityWindow is the horizontal distance within which two
	// nodes are checked for vertical collisions.
	ProximityWindow float64 `json:"proximity_window" bson:"proximity_window"`
}

// DefaultSpacing returns the spacing constants used when a request
// does not override them.
func DefaultSpacing() Spacing {
	return Spacing{
		MarginX:          60,
		Horizontal:       160,
		Vertical:         70,
		CenterY:          300,
		DensityThreshold: 6,
		MinSeparation:    40,
		ProximityWindow:  80,
	}
}

// collisionPasses bounds the collision resolution loop. Perfect
// collision freedom is not the contract; two passes give "good enough"
// spacing without risking slow convergence.
const collisionPasses = 2

// Place computes final coordinates for every node of the ordering.
// x depends only on the layer degree (monotonic, so a larger degree
// never means a smaller x); y spreads the layer symmetrically around
// the midline, with wider spacing for crowded layers and a single-node
// layer centered exactly on the midline.
func Place(o order.Ordering, spacing Spacing) map[string]Point {
	positions := make(map[string]Point)

	for _, d := range o.Degrees {
		row := o.Rows[d]
		x := spacing.MarginX + d*spacing.Horizontal
		v := spacing.Vertical
		if n := len(row); n > spacing.DensityThreshold && spacing.DensityThreshold > 0 {
			v *= float64(n) / float64(spacing.DensityThreshold)
		}
		offset := float64(len(row)-1) / 2
		for i, id := range row {
			positions[id] = Point{
				X: x,
				Y: spacing.CenterY + (float64(i)-offset)*v,
			}
		}
	}

	resolveCollisions(positions, spacing)
	return positions
}

// resolveCollisions pushes the lower node of any too-close pair down by
// the minimum separation, for a fixed number of passes. Iteration is
// over IDs sorted by (x, y, id) so the outcome is deterministic.
func resolveCollisions(positions map[string]Point, spacing Spacing) {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}

	for pass := 0; pass < collisionPasses; pass++ {
		slices.SortFunc(ids, func(a, b string) int {
			pa, pb := positions[a], positions[b]
			if pa.X != pb.X {
				if pa.X < pb.X {
					return -1
				}
				return 1
			}
			if pa.Y != pb.Y {
				if pa.Y < pb.Y {
					return -1
				}
				return 1
			}
			if a < b {
				return -1
			}
			if a > b {
				return 1
			}
			return 0
		})

		moved := false
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				upper, lower := positions[ids[i]], positions[ids[j]]
				if math.Abs(upper.X-lower.X) >= spacing.ProximityWindow {
					continue
				}
				if math.Abs(upper.Y-lower.Y) >= spacing.MinSeparation {
					continue
				}
				// ids[j] sorts after ids[i], so it is the one pushed
				// down.
				lower.Y = upper.Y + spacing.MinSeparation
				positions[ids[j]] = lower
				moved = true
			}
		}
		if !moved {
			break
		}
	}
}
