package span

import (
	"reflect"
	"testing"

	"github.com/mkarlsen/rivalmap/pkg/graph"
)

// bridgeUniverse is the canonical five-node scenario: a heavy two-hop
// route S-A-T next to a light three-hop route S-B-C-T. The weighted
// shortest path goes the long way.
func bridgeUniverse() *graph.Universe {
	return graph.NewUniverse(
		[]graph.Node{{ID: "S"}, {ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "T"}},
		[]graph.Edge{
			{A: "S", B: "A", Weight: 10},
			{A: "A", B: "T", Weight: 10},
			{A: "S", B: "B", Weight: 1},
			{A: "B", B: "C", Weight: 1},
			{A: "C", B: "T", Weight: 1},
		},
	)
}

func nodeIDs(s *Subgraph) []string {
	ids := make([]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestBuildCanonicalPath(t *testing.T) {
	s := Build("S", "T", 3, bridgeUniverse(), graph.Predicate{})
	if s.IsEmpty() {
		t.Fatal("subgraph should not be empty")
	}
	want := []string{"S", "B", "C", "T"}
	if !reflect.DeepEqual(s.CanonicalPath, want) {
		t.Errorf("CanonicalPath = %v, want %v (weighted, not hop-shortest)", s.CanonicalPath, want)
	}
	if s.CanonicalHops() != 3 {
		t.Errorf("CanonicalHops() = %d, want 3", s.CanonicalHops())
	}
	if got := nodeIDs(s); !reflect.DeepEqual(got, []string{"A", "B", "C", "S", "T"}) {
		t.Errorf("nodes = %v, want all five sorted", got)
	}
}

func TestBuildEmptySentinel(t *testing.T) {
	u := bridgeUniverse()
	tests := []struct {
		name                string
		source, destination string
		maxHops             int
	}{
		{"same endpoints", "S", "S", 3},
		{"unknown source", "ghost", "T", 3},
		{"unknown destination", "S", "ghost", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Build(tt.source, tt.destination, tt.maxHops, u, graph.Predicate{})
			if !s.IsEmpty() {
				t.Error("expected the empty sentinel")
			}
			if s.CanonicalHops() != 0 {
				t.Errorf("CanonicalHops() = %d, want 0 for empty", s.CanonicalHops())
			}
		})
	}
}

func TestBuildEmptyWhenBoundTooTight(t *testing.T) {
	// S-a-b-T needs three hops; a bound of two must yield the sentinel
	// rather than a partial result.
	u := graph.NewUniverse(
		[]graph.Node{{ID: "S"}, {ID: "a"}, {ID: "b"}, {ID: "T"}},
		[]graph.Edge{
			{A: "S", B: "a", Weight: 1},
			{A: "a", B: "b", Weight: 1},
			{A: "b", B: "T", Weight: 1},
		},
	)
	s := Build("S", "T", 2, u, graph.Predicate{})
	if !s.IsEmpty() {
		t.Errorf("expected empty sentinel at bound 2, got nodes %v", nodeIDs(s))
	}
	if s3 := Build("S", "T", 3, u, graph.Predicate{}); s3.IsEmpty() {
		t.Error("bound 3 should find the chain")
	}
}

func TestBuildDirect(t *testing.T) {
	u := graph.NewUniverse(
		[]graph.Node{{ID: "S"}, {ID: "T"}, {ID: "X"}},
		[]graph.Edge{
			{A: "S", B: "T", Weight: 2},
			{A: "S", B: "X", Weight: 1},
			{A: "X", B: "T", Weight: 1},
		},
	)
	s := Build("S", "T", 0, u, graph.Predicate{})
	if s.IsEmpty() {
		t.Fatal("direct edge exists, subgraph should not be empty")
	}
	if got := nodeIDs(s); !reflect.DeepEqual(got, []string{"S", "T"}) {
		t.Errorf("nodes = %v, want only the endpoints", got)
	}
	if len(s.Edges) != 1 {
		t.Errorf("edges = %d, want only the direct edge", len(s.Edges))
	}
	// At bound zero both endpoints share a layer.
	if s.CanonicalHops() != 0 {
		t.Errorf("CanonicalHops() = %d, want 0 at bound zero", s.CanonicalHops())
	}
}

func TestBuildDirectNoEdge(t *testing.T) {
	u := graph.NewUniverse(
		[]graph.Node{{ID: "S"}, {ID: "X"}, {ID: "T"}},
		[]graph.Edge{
			{A: "S", B: "X", Weight: 1},
			{A: "X", B: "T", Weight: 1},
		},
	)
	if s := Build("S", "T", 0, u, graph.Predicate{}); !s.IsEmpty() {
		t.Error("no direct edge, bound zero should yield the sentinel")
	}
}

func TestBuildNegativeBoundTreatedAsZero(t *testing.T) {
	u := bridgeUniverse()
	if s := Build("S", "T", -1, u, graph.Predicate{}); !s.IsEmpty() {
		t.Error("no direct S-T edge, negative bound should behave like zero")
	}
}

func TestBuildMonotonicGrowth(t *testing.T) {
	u := bridgeUniverse()
	var prev map[string]bool
	for bound := 1; bound <= 5; bound++ {
		s := Build("S", "T", bound, u, graph.Predicate{})
		cur := make(map[string]bool)
		for _, n := range s.Nodes {
			cur[n.ID] = true
		}
		for id := range prev {
			if !cur[id] {
				t.Errorf("bound %d lost node %s present at bound %d", bound, id, bound-1)
			}
		}
		prev = cur
	}
}

func TestBuildCanonicalRetainedBeyondBound(t *testing.T) {
	// The weighted shortest path takes three hops; the bound admits only
	// the heavy direct edge. The canonical path is kept anyway so the
	// destination layer can anchor on it.
	u := graph.NewUniverse(
		[]graph.Node{{ID: "S"}, {ID: "a"}, {ID: "b"}, {ID: "T"}},
		[]graph.Edge{
			{A: "S", B: "T", Weight: 100},
			{A: "S", B: "a", Weight: 0.1},
			{A: "a", B: "b", Weight: 0.1},
			{A: "b", B: "T", Weight: 0.1},
		},
	)
	s := Build("S", "T", 1, u, graph.Predicate{})
	if s.IsEmpty() {
		t.Fatal("direct edge within bound, should not be empty")
	}
	if !reflect.DeepEqual(s.CanonicalPath, []string{"S", "a", "b", "T"}) {
		t.Fatalf("CanonicalPath = %v, want the light three-hop route", s.CanonicalPath)
	}
	for _, id := range s.CanonicalPath {
		if !s.HasNode(id) {
			t.Errorf("canonical node %s missing from subgraph", id)
		}
	}
	// Consecutive canonical pairs must be edges of the set.
	for i := 1; i < len(s.CanonicalPath); i++ {
		a, b := s.CanonicalPath[i-1], s.CanonicalPath[i]
		found := false
		for _, e := range s.Edges {
			if e.Key() == graph.EdgeKey(a, b) {
				found = true
			}
		}
		if !found {
			t.Errorf("canonical edge %s-%s missing from subgraph", a, b)
		}
	}
}

func TestBuildPredicateFiltering(t *testing.T) {
	u := graph.NewUniverse(
		[]graph.Node{{ID: "S"}, {ID: "X"}, {ID: "Y"}, {ID: "T"}},
		[]graph.Edge{
			{A: "S", B: "X", Weight: 1, Category: "open"},
			{A: "X", B: "T", Weight: 1, Category: "open"},
			{A: "S", B: "Y", Weight: 1, Category: "invitational"},
			{A: "Y", B: "T", Weight: 1, Category: "invitational"},
		},
	)
	s := Build("S", "T", 2, u, graph.Predicate{Categories: []string{"open"}})
	if s.HasNode("Y") {
		t.Error("node Y should be excluded by the category predicate")
	}
	if !s.HasNode("X") {
		t.Error("node X should survive the category predicate")
	}
}

func TestBuildDeterministic(t *testing.T) {
	u := bridgeUniverse()
	a := Build("S", "T", 3, u, graph.Predicate{})
	b := Build("S", "T", 3, u, graph.Predicate{})
	if !reflect.DeepEqual(a.Nodes, b.Nodes) {
		t.Error("node sets differ across identical builds")
	}
	if !reflect.DeepEqual(a.Edges, b.Edges) {
		t.Error("edge sets differ across identical builds")
	}
	if !reflect.DeepEqual(a.CanonicalPath, b.CanonicalPath) {
		t.Error("canonical paths differ across identical builds")
	}
}

func TestShortestPathTieBreak(t *testing.T) {
	// Two equal-weight routes; the lexicographically smaller label wins
	// so the canonical path is reproducible.
	u := graph.NewUniverse(
		[]graph.Node{{ID: "S"}, {ID: "m1"}, {ID: "m2"}, {ID: "T"}},
		[]graph.Edge{
			{A: "S", B: "m1", Weight: 1},
			{A: "m1", B: "T", Weight: 1},
			{A: "S", B: "m2", Weight: 1},
			{A: "m2", B: "T", Weight: 1},
		},
	)
	for i := 0; i < 5; i++ {
		s := Build("S", "T", 2, u, graph.Predicate{})
		if !reflect.DeepEqual(s.CanonicalPath, []string{"S", "m1", "T"}) {
			t.Fatalf("CanonicalPath = %v, want the m1 route every time", s.CanonicalPath)
		}
	}
}

func TestNeighborsSorted(t *testing.T) {
	s := Build("S", "T", 3, bridgeUniverse(), graph.Predicate{})
	got := s.Neighbors("S")
	if !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Neighbors(S) = %v, want sorted [A B]", got)
	}
	if s.Neighbors("ghost") != nil {
		t.Error("Neighbors of an absent node should be nil")
	}
}
