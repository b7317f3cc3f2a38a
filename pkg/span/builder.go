package span

import (
	"container/heap"
	"slices"

	"github.com/mkarlsen/rivalmap/pkg/graph"
)

// Build derives the bounded comparison subgraph between source and
// destination over the predicate-filtered universe.
//
// The canonical weighted shortest path is computed first (Dijkstra over
// edge weights); then every simple path of hop length at most maxHops
// is enumerated and the union of their nodes and edges is retained.
// The canonical path is always part of the result, even when its hop
// count exceeds the bound, so that downstream stages can anchor the
// destination layer on it.
//
// maxHops of 0 is the direct-comparison special case: only the edge
// between the two endpoints is considered. A negative bound is treated
// as 0.
//
// Build returns the Empty sentinel when the endpoints coincide, when
// either endpoint is unknown, or when no path within the bound exists.
func Build(source, destination string, maxHops int, u *graph.Universe, pred graph.Predicate) *Subgraph {
	if maxHops < 0 {
		maxHops = 0
	}
	if source == destination {
		return Empty(source, destination, maxHops)
	}
	if _, ok := u.Node(source); !ok {
		return Empty(source, destination, maxHops)
	}
	if _, ok := u.Node(destination); !ok {
		return Empty(source, destination, maxHops)
	}

	if maxHops == 0 {
		return buildDirect(source, destination, u, pred)
	}

	adj := filteredAdjacency(u, pred)
	canonical := shortestPath(source, destination, adj, u)

	retained := enumerate(source, destination, maxHops, adj)
	if retained == nil {
		return Empty(source, destination, maxHops)
	}
	for _, id := range canonical {
		retained.nodes[id] = true
	}
	for i := 1; i < len(canonical); i++ {
		retained.edges[graph.EdgeKey(canonical[i-1], canonical[i])] = true
	}

	s := &Subgraph{
		Source:        source,
		Destination:   destination,
		Bound:         maxHops,
		CanonicalPath: canonical,
	}
	for id := range retained.nodes {
		n, ok := u.Node(id)
		if !ok {
			n = graph.Node{ID: id}
		}
		s.Nodes = append(s.Nodes, n)
	}
	for key := range retained.edges {
		a, b, ok := graph.SplitEdgeKey(key)
		if !ok {
			continue
		}
		if e, ok := u.Edge(a, b); ok {
			s.Edges = append(s.Edges, e)
		}
	}
	s.finish()
	return s
}

// buildDirect handles the maxHops == 0 special case: the subgraph is
// the direct edge between the endpoints, or Empty when no such edge
// passes the predicate.
func buildDirect(source, destination string, u *graph.Universe, pred graph.Predicate) *Subgraph {
	e, ok := u.Edge(source, destination)
	if !ok || !pred.Admit(e) {
		return Empty(source, destination, 0)
	}
	src, _ := u.Node(source)
	dst, _ := u.Node(destination)
	s := &Subgraph{
		Source:        source,
		Destination:   destination,
		Bound:         0,
		Nodes:         []graph.Node{src, dst},
		Edges:         []graph.Edge{e},
		CanonicalPath: []string{source, destination},
	}
	s.finish()
	return s
}

// halfEdge is one direction of a filtered undirected edge.
type halfEdge struct {
	to     string
	weight float64
}

// filteredAdjacency builds per-node neighbor lists over the edges the
// predicate admits. Neighbor lists are sorted by target ID so every
// traversal over them is deterministic.
func filteredAdjacency(u *graph.Universe, pred graph.Predicate) map[string][]halfEdge {
	adj := make(map[string][]halfEdge, u.NodeCount())
	for _, e := range u.Edges {
		if !pred.Admit(e) {
			continue
		}
		adj[e.A] = append(adj[e.A], halfEdge{to: e.B, weight: e.Weight})
		adj[e.B] = append(adj[e.B], halfEdge{to: e.A, weight: e.Weight})
	}
	for id := range adj {
		slices.SortFunc(adj[id], func(a, b halfEdge) int {
			return compareStrings(a.to, b.to)
		})
	}
	return adj
}

// pqItem is a Dijkstra frontier entry. Ties on distance are broken by
// label then ID so the canonical path is reproducible across runs.
type pqItem struct {
	id    string
	label string
	dist  float64
}

type frontier []pqItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	if f[i].label != f[j].label {
		return f[i].label < f[j].label
	}
	return f[i].id < f[j].id
}
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)         { *f = append(*f, x.(pqItem)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// shortestPath runs Dijkstra from source and reconstructs the
// minimum-weight path to destination. Returns nil when the destination
// is unreachable through the filtered edges.
func shortestPath(source, destination string, adj map[string][]halfEdge, u *graph.Universe) []string {
	dist := map[string]float64{source: 0}
	prev := map[string]string{}
	done := map[string]bool{}

	f := &frontier{{id: source, label: u.Label(source)}}
	heap.Init(f)

	for f.Len() > 0 {
		cur := heap.Pop(f).(pqItem)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if cur.id == destination {
			break
		}
		for _, he := range adj[cur.id] {
			if done[he.to] {
				continue
			}
			nd := cur.dist + he.weight
			old, seen := dist[he.to]
			if !seen || nd < old {
				dist[he.to] = nd
				prev[he.to] = cur.id
				heap.Push(f, pqItem{id: he.to, label: u.Label(he.to), dist: nd})
			}
		}
	}

	if !done[destination] {
		return nil
	}
	var path []string
	for at := destination; ; at = prev[at] {
		path = append(path, at)
		if at == source {
			break
		}
	}
	slices.Reverse(path)
	return path
}

// pathUnion accumulates the nodes and edge keys seen on enumerated
// paths.
type pathUnion struct {
	nodes map[string]bool
	edges map[string]bool
}

// enumerate walks every simple path from source to destination with at
// most maxHops edges and returns the union of visited path elements.
// Returns nil when no such path exists.
func enumerate(source, destination string, maxHops int, adj map[string][]halfEdge) *pathUnion {
	retained := &pathUnion{
		nodes: make(map[string]bool),
		edges: make(map[string]bool),
	}
	onPath := map[string]bool{source: true}
	path := []string{source}

	var walk func(at string)
	walk = func(at string) {
		if at == destination {
			for i, id := range path {
				retained.nodes[id] = true
				if i > 0 {
					retained.edges[graph.EdgeKey(path[i-1], id)] = true
				}
			}
			return
		}
		if len(path) > maxHops {
			return
		}
		for _, he := range adj[at] {
			if onPath[he.to] {
				continue
			}
			onPath[he.to] = true
			path = append(path, he.to)
			walk(he.to)
			path = path[:len(path)-1]
			onPath[he.to] = false
		}
	}
	walk(source)

	if len(retained.nodes) == 0 {
		return nil
	}
	return retained
}
