package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// KeyDelimiter joins the two sorted program IDs of an edge key.
// It is exactly two characters so that SplitEdgeKey can reject keys
// that were not produced by EdgeKey.
const KeyDelimiter = "__"

// Node is a program participating in the contest graph. The core owns
// nothing beyond the ID and a display label; the label doubles as the
// deterministic tie-breaker in ordering and path selection.
type Node struct {
	ID    string `json:"id" bson:"id"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is an undirected connection between two programs, weighted by an
// importance score where lower means closer. Contests lists the
// underlying contest IDs the edge aggregates.
type Edge struct {
	A        string   `json:"a" bson:"a"`
	B        string   `json:"b" bson:"b"`
	Weight   float64  `json:"weight" bson:"weight"`
	Category string   `json:"category,omitempty" bson:"category,omitempty"`
	Contests []string `json:"contests,omitempty" bson:"contests,omitempty"`
}

// Key returns the canonical key of the edge's unordered pair.
func (e Edge) Key() string { return EdgeKey(e.A, e.B) }

// Other returns the endpoint opposite to id, and whether id is an
// endpoint of the edge at all.
func (e Edge) Other(id string) (string, bool) {
	switch id {
	case e.A:
		return e.B, true
	case e.B:
		return e.A, true
	}
	return "", false
}

// EdgeKey builds the canonical key for an unordered pair: both IDs
// sorted lexicographically, joined with KeyDelimiter. The same key is
// produced regardless of argument order.
func EdgeKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + KeyDelimiter + b
}

// SplitEdgeKey splits a canonical edge key back into its two program
// IDs. It reports ok=false for malformed keys (no delimiter, or an
// empty side); callers are expected to skip such edges silently.
func SplitEdgeKey(key string) (a, b string, ok bool) {
	a, b, found := strings.Cut(key, KeyDelimiter)
	if !found || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}

// Predicate restricts which edges of a universe participate in a
// layout computation. The zero value admits every edge.
type Predicate struct {
	Categories []string `json:"categories,omitempty" bson:"categories,omitempty"`
	MinWeight  float64  `json:"min_weight,omitempty" bson:"min_weight,omitempty"`
}

// Admit reports whether the edge passes the category and minimum
// weight filters. An empty category list admits all categories.
func (p Predicate) Admit(e Edge) bool {
	if e.Weight < p.MinWeight {
		return false
	}
	if len(p.Categories) == 0 {
		return true
	}
	for _, c := range p.Categories {
		if c == e.Category {
			return true
		}
	}
	return false
}

// Universe is the full node and edge set a layout request is computed
// over. Edges are deduplicated per unordered pair; when the same pair
// appears twice the lighter (more important) edge wins and contest
// lists are merged.
type Universe struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`

	byKey map[string]int
	byID  map[string]int
}

// NewUniverse builds a universe from raw node and edge slices,
// deduplicating edges per unordered pair. Self-loops and edges with an
// empty endpoint are dropped.
func NewUniverse(nodes []Node, edges []Edge) *Universe {
	u := &Universe{
		byKey: make(map[string]int, len(edges)),
		byID:  make(map[string]int, len(nodes)),
	}
	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := u.byID[n.ID]; dup {
			continue
		}
		u.byID[n.ID] = len(u.Nodes)
		u.Nodes = append(u.Nodes, n)
	}
	for _, e := range edges {
		u.addEdge(e)
	}
	return u
}

func (u *Universe) addEdge(e Edge) {
	if e.A == "" || e.B == "" || e.A == e.B {
		return
	}
	key := e.Key()
	if i, dup := u.byKey[key]; dup {
		kept := &u.Edges[i]
		if e.Weight < kept.Weight {
			kept.Weight = e.Weight
		}
		kept.Contests = append(kept.Contests, e.Contests...)
		return
	}
	u.byKey[key] = len(u.Edges)
	u.Edges = append(u.Edges, e)
}

// Node returns the node with the given ID and whether it exists.
func (u *Universe) Node(id string) (Node, bool) {
	i, ok := u.byID[id]
	if !ok {
		return Node{}, false
	}
	return u.Nodes[i], true
}

// Edge returns the edge for the unordered pair (a, b) and whether it
// exists.
func (u *Universe) Edge(a, b string) (Edge, bool) {
	i, ok := u.byKey[EdgeKey(a, b)]
	if !ok {
		return Edge{}, false
	}
	return u.Edges[i], true
}

// Label returns the display label for a program ID, falling back to
// the ID itself for programs absent from the node set.
func (u *Universe) Label(id string) string {
	if n, ok := u.Node(id); ok {
		return n.DisplayLabel()
	}
	return id
}

// NodeCount returns the number of nodes in the universe.
func (u *Universe) NodeCount() int { return len(u.Nodes) }

// EdgeCount returns the number of deduplicated edges in the universe.
func (u *Universe) EdgeCount() int { return len(u.Edges) }

// UnmarshalUniverse deserializes JSON bytes into a Universe, rebuilding
// the dedup indices.
func UnmarshalUniverse(data []byte) (*Universe, error) {
	var raw struct {
		Nodes []Node `json:"nodes"`
		Edges []Edge `json:"edges"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal universe: %w", err)
	}
	return NewUniverse(raw.Nodes, raw.Edges), nil
}

// MarshalUniverse serializes a Universe to pretty-printed JSON bytes.
func MarshalUniverse(u *Universe) ([]byte, error) {
	return json.MarshalIndent(u, "", "  ")
}
