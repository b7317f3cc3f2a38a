package place

import (
	"math"
	"testing"

	"github.com/mkarlsen/rivalmap/pkg/order"
)

func TestPlaceXFromDegree(t *testing.T) {
	o := order.Ordering{
		Degrees: []float64{0, 1.5, 3},
		Rows: map[float64][]string{
			0:   {"S"},
			1.5: {"bridge"},
			3:   {"T"},
		},
	}
	spacing := DefaultSpacing()
	pos := Place(o, spacing)

	if got, want := pos["S"].X, spacing.MarginX; got != want {
		t.Errorf("x(S) = %v, want margin %v", got, want)
	}
	if got, want := pos["bridge"].X, spacing.MarginX+1.5*spacing.Horizontal; got != want {
		t.Errorf("x(bridge) = %v, want %v", got, want)
	}
	if pos["S"].X >= pos["bridge"].X || pos["bridge"].X >= pos["T"].X {
		t.Error("x must grow strictly with layer degree")
	}
}

func TestPlaceSingletonOnMidline(t *testing.T) {
	o := order.Ordering{
		Degrees: []float64{0},
		Rows:    map[float64][]string{0: {"only"}},
	}
	spacing := DefaultSpacing()
	pos := Place(o, spacing)
	if got := pos["only"].Y; got != spacing.CenterY {
		t.Errorf("y = %v, want midline %v", got, spacing.CenterY)
	}
}

func TestPlaceSymmetricAroundMidline(t *testing.T) {
	o := order.Ordering{
		Degrees: []float64{1},
		Rows:    map[float64][]string{1: {"a", "b", "c"}},
	}
	spacing := DefaultSpacing()
	pos := Place(o, spacing)

	if got := pos["b"].Y; got != spacing.CenterY {
		t.Errorf("middle node y = %v, want midline %v", got, spacing.CenterY)
	}
	above := spacing.CenterY - pos["a"].Y
	below := pos["c"].Y - spacing.CenterY
	if above != below {
		t.Errorf("asymmetric spread: %v above vs %v below", above, below)
	}
	if above != spacing.Vertical {
		t.Errorf("gap = %v, want base vertical %v", above, spacing.Vertical)
	}
}

func TestPlaceCrowdedLayerSpreadsWider(t *testing.T) {
	spacing := DefaultSpacing()
	crowded := make([]string, spacing.DensityThreshold*2)
	for i := range crowded {
		crowded[i] = string(rune('a' + i))
	}
	o := order.Ordering{
		Degrees: []float64{1},
		Rows:    map[float64][]string{1: crowded},
	}
	pos := Place(o, spacing)

	gap := pos[crowded[1]].Y - pos[crowded[0]].Y
	if gap <= spacing.Vertical {
		t.Errorf("crowded gap = %v, want wider than base %v", gap, spacing.Vertical)
	}
}

func TestPlaceNoCollisions(t *testing.T) {
	// Two half-layer-adjacent columns fall inside the proximity window;
	// the resolver must keep every close pair at least the minimum
	// separation apart.
	spacing := DefaultSpacing()
	spacing.ProximityWindow = 2 * spacing.Horizontal
	spacing.Vertical = 10
	spacing.MinSeparation = 40

	o := order.Ordering{
		Degrees: []float64{1, 1.5},
		Rows: map[float64][]string{
			1:   {"a", "b", "c"},
			1.5: {"x", "y"},
		},
	}
	pos := Place(o, spacing)

	ids := []string{"a", "b", "c", "x", "y"}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			p, q := pos[ids[i]], pos[ids[j]]
			if math.Abs(p.X-q.X) >= spacing.ProximityWindow {
				continue
			}
			if math.Abs(p.Y-q.Y) < spacing.MinSeparation {
				t.Errorf("%s and %s are %v apart, want at least %v",
					ids[i], ids[j], math.Abs(p.Y-q.Y), spacing.MinSeparation)
			}
		}
	}
}

func TestPlaceDeterministic(t *testing.T) {
	o := order.Ordering{
		Degrees: []float64{0, 1, 2},
		Rows: map[float64][]string{
			0: {"S"},
			1: {"a", "b", "c"},
			2: {"T"},
		},
	}
	spacing := DefaultSpacing()
	first := Place(o, spacing)
	for i := 0; i < 5; i++ {
		got := Place(o, spacing)
		for id, p := range first {
			if got[id] != p {
				t.Fatalf("run %d moved %s from %v to %v", i, id, p, got[id])
			}
		}
	}
}

func TestPlaceEmptyOrdering(t *testing.T) {
	pos := Place(order.Ordering{}, DefaultSpacing())
	if len(pos) != 0 {
		t.Errorf("empty ordering should place nothing, got %v", pos)
	}
}
