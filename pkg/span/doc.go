// Package span derives the bounded comparison subgraph between two
// endpoint programs: every node and edge lying on at least one simple
// path of hop length within the requested bound, plus the canonical
// weighted shortest path that anchors the later layout stages.
//
// Enumeration is a depth-first walk that never revisits a node already
// on the current path, so it always terminates; cost is exponential in
// the bound, which callers keep small (typically at most 6).
//
// The absence of any path within the bound is a valid negative result,
// reported through the Empty sentinel rather than an error.
package span
