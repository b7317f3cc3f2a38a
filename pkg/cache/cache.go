// Package cache provides pluggable result caching for layout requests.
//
// Three backends are available: NullCache (caching disabled), FileCache
// (local directory, CLI usage), and RedisCache (shared cache for the
// HTTP server). All backends store opaque bytes under string keys with
// a TTL; key construction lives in Keyer so every entry point hashes
// requests identically.
//
// A layout key covers everything that forces recomputation: the dataset
// content hash, the endpoints, the hop bound, the edge predicate, and
// the spacing constants. Display-only settings are deliberately absent
// so that visibility toggles hit the cache.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Implementations must treat a missing key as a miss, not an error.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A non-positive TTL means no
	// expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts carries every request parameter that participates in
// the layout cache key.
type LayoutKeyOpts struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	MaxHops     int      `json:"max_hops"`
	Categories  []string `json:"categories,omitempty"`
	MinWeight   float64  `json:"min_weight,omitempty"`
	Spacing     any      `json:"spacing,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey builds the key for a computed layout over the dataset
	// identified by its content hash.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string

	// UniverseKey builds the key for a cached dataset universe.
	UniverseKey(dataset string) string
}

// DefaultKeyer is the standard key construction.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard Keyer.
func NewDefaultKeyer() DefaultKeyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

// UniverseKey implements Keyer.
func (DefaultKeyer) UniverseKey(dataset string) string {
	return "universe:" + dataset
}

// ScopedKeyer prefixes every key produced by an inner Keyer. It is
// used to isolate cache entries per tenant or per store backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps a Keyer with a prefix. A nil inner falls back
// to the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) ScopedKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey implements Keyer.
func (k ScopedKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(datasetHash, opts)
}

// UniverseKey implements Keyer.
func (k ScopedKeyer) UniverseKey(dataset string) string {
	return k.prefix + k.inner.UniverseKey(dataset)
}
