package span

import (
	"slices"

	"github.com/mkarlsen/rivalmap/pkg/graph"
)

// Subgraph is the bounded comparison subgraph between two endpoints.
// Nodes are sorted by ID and edges by key, so two builds over identical
// inputs produce identical values.
//
// Invariants: Source and Destination are members of Nodes (except in
// the Empty sentinel); CanonicalPath is acyclic and every consecutive
// pair is an edge of the set.
type Subgraph struct {
	Source      string `json:"source" bson:"source"`
	Destination string `json:"destination" bson:"destination"`

	// Bound is the hop bound the subgraph was built with. Zero means
	// only the direct edge between the endpoints was considered.
	Bound int `json:"bound" bson:"bound"`

	Nodes []graph.Node `json:"nodes" bson:"nodes"`
	Edges []graph.Edge `json:"edges" bson:"edges"`

	// CanonicalPath is the minimum-total-weight path from Source to
	// Destination, as an ordered list of node IDs. Nil in the Empty
	// sentinel.
	CanonicalPath []string `json:"canonical_path,omitempty" bson:"canonical_path,omitempty"`

	neighbors map[string][]string
	onPath    map[string]bool
}

// Empty returns the sentinel for "no connection at this bound". It is
// a valid result, not an error.
func Empty(source, destination string, bound int) *Subgraph {
	return &Subgraph{Source: source, Destination: destination, Bound: bound}
}

// IsEmpty reports whether the subgraph is the no-connection sentinel.
func (s *Subgraph) IsEmpty() bool { return len(s.Nodes) == 0 }

// CanonicalHops returns the hop count of the canonical shortest path,
// or 0 when the subgraph is empty or was built at bound 0 (the direct
// edge draws both endpoints in the same layer).
func (s *Subgraph) CanonicalHops() int {
	if s.Bound == 0 || len(s.CanonicalPath) < 2 {
		return 0
	}
	return len(s.CanonicalPath) - 1
}

// OnCanonicalPath reports whether the node lies on the canonical
// shortest path.
func (s *Subgraph) OnCanonicalPath(id string) bool { return s.onPath[id] }

// Neighbors returns the IDs adjacent to id within the subgraph, in
// sorted order. The returned slice is a read-only view.
func (s *Subgraph) Neighbors(id string) []string { return s.neighbors[id] }

// HasNode reports whether the node is part of the subgraph.
func (s *Subgraph) HasNode(id string) bool {
	_, ok := s.neighbors[id]
	return ok
}

// Labels returns a node ID → display label map for every node of the
// subgraph.
func (s *Subgraph) Labels() map[string]string {
	labels := make(map[string]string, len(s.Nodes))
	for _, n := range s.Nodes {
		labels[n.ID] = n.DisplayLabel()
	}
	return labels
}

// finish sorts the node and edge sets and rebuilds the adjacency and
// canonical-path indices. Every constructor of a non-empty subgraph
// must call it exactly once.
func (s *Subgraph) finish() {
	slices.SortFunc(s.Nodes, func(a, b graph.Node) int {
		return compareStrings(a.ID, b.ID)
	})
	slices.SortFunc(s.Edges, func(a, b graph.Edge) int {
		return compareStrings(a.Key(), b.Key())
	})

	s.neighbors = make(map[string][]string, len(s.Nodes))
	for _, n := range s.Nodes {
		s.neighbors[n.ID] = nil
	}
	for _, e := range s.Edges {
		s.neighbors[e.A] = append(s.neighbors[e.A], e.B)
		s.neighbors[e.B] = append(s.neighbors[e.B], e.A)
	}
	for id := range s.neighbors {
		slices.Sort(s.neighbors[id])
	}

	s.onPath = make(map[string]bool, len(s.CanonicalPath))
	for _, id := range s.CanonicalPath {
		s.onPath[id] = true
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
