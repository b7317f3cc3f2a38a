// Package graph defines the data model shared by every layout stage:
// programs (nodes), contest links (edges), and the edge universe a
// layout request is computed over.
//
// Edges are undirected and deduplicated per unordered pair. The
// canonical identity of an edge is its key: both program IDs sorted
// lexicographically and joined with "__". A key that cannot be split
// back into two IDs is treated as malformed and skipped by consumers,
// never surfaced as an error.
//
// The types in this package are plain values with JSON and BSON tags so
// that a Universe round-trips unchanged through files, the HTTP API,
// and the MongoDB dataset store.
package graph
