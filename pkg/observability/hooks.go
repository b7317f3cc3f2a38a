// Package observability provides hooks for metrics, tracing, and logging.
//
// The layout core is pure and must stay free of embedded console
// output, so all instrumentation flows through injected hooks with
// no-op defaults. Consumers register implementations at startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnStageStart(ctx, "span")
//	// ... build subgraph ...
//	observability.Layout().OnStageComplete(ctx, "span", nodeCount, duration)
//
// This pattern avoids import cycles (hooks are registered by main, not
// by libraries) and keeps the core free of observability framework
// dependencies while allowing any backend behind the interfaces.
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage names reported by the layout pipeline.
const (
	StageSpan  = "span"
	StageLayer = "layer"
	StageOrder = "order"
	StagePlace = "place"
)

// LayoutHooks receives events from the layout pipeline.
type LayoutHooks interface {
	// OnLayoutStart fires once per layout request, before any stage.
	OnLayoutStart(ctx context.Context, source, destination string, maxHops int)

	// OnLayoutComplete fires after the position map is produced.
	// empty is true for the no-connection sentinel.
	OnLayoutComplete(ctx context.Context, duration time.Duration, nodeCount int, empty bool)

	// Stage events; nodeCount is the node count after the stage ran.
	OnStageStart(ctx context.Context, stage string)
	OnStageComplete(ctx context.Context, stage string, nodeCount int, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// StoreHooks receives events from dataset store operations.
type StoreHooks interface {
	// OnQuery records a dataset load with its outcome.
	OnQuery(ctx context.Context, dataset string, duration time.Duration, err error)
}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, string, int)          {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, time.Duration, int, bool)  {}
func (NoopLayoutHooks) OnStageStart(context.Context, string)                        {}
func (NoopLayoutHooks) OnStageComplete(context.Context, string, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnQuery(context.Context, string, time.Duration, error) {}

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
}
