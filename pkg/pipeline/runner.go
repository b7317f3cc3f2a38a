package pipeline

import (
	"context"
	"time"

	"github.com/mkarlsen/rivalmap/pkg/cache"
	"github.com/mkarlsen/rivalmap/pkg/graph"
	"github.com/mkarlsen/rivalmap/pkg/layer"
	"github.com/mkarlsen/rivalmap/pkg/observability"
	"github.com/mkarlsen/rivalmap/pkg/order"
	"github.com/mkarlsen/rivalmap/pkg/place"
	"github.com/mkarlsen/rivalmap/pkg/span"
)

// Runner executes layout requests against a universe, consulting the
// cache before computing. The zero value is not usable; create one
// with NewRunner.
type Runner struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewRunner creates a pipeline runner. A nil cache disables caching
// and a nil keyer falls back to the default key construction.
func NewRunner(c cache.Cache, k cache.Keyer) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &Runner{cache: c, keyer: k, ttl: DefaultCacheTTL}
}

// Execute runs the full pipeline for one request. Cached layouts are
// returned without recomputation unless opts.Refresh is set; either
// way the request parameters alone decide the cache key, per the
// stability contract.
func (r *Runner) Execute(ctx context.Context, u *graph.Universe, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	datasetHash := opts.DatasetHash
	if datasetHash == "" {
		data, err := graph.MarshalUniverse(u)
		if err != nil {
			return nil, err
		}
		datasetHash = cache.Hash(data)
	}

	key := r.keyer.LayoutKey(datasetHash, cache.LayoutKeyOpts{
		Source:      opts.Source,
		Destination: opts.Destination,
		MaxHops:     opts.MaxHops,
		Categories:  opts.Categories,
		MinWeight:   opts.MinWeight,
		Spacing:     opts.EffectiveSpacing(),
	})

	if !opts.Refresh {
		if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
			if l, err := UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				opts.Logger.Debug("layout cache hit", "key", key)
				return &Result{Layout: l, CacheInfo: CacheInfo{Hit: true, Key: key}}, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	result := Compute(ctx, u, opts)
	result.CacheInfo = CacheInfo{Key: key}

	if data, err := MarshalLayout(result.Layout); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		} else {
			opts.Logger.Warn("layout cache write failed", "err", err)
		}
	}
	return result, nil
}

// Compute runs the four stages without touching the cache. It never
// fails: an unreachable destination yields the empty layout. Options
// must already be validated when called directly.
func Compute(ctx context.Context, u *graph.Universe, opts Options) *Result {
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, opts.Source, opts.Destination, opts.MaxHops)
	started := time.Now()

	var stats Stats

	s := timedStage(ctx, observability.StageSpan, &stats.SpanTime, func() *span.Subgraph {
		return span.Build(opts.Source, opts.Destination, opts.MaxHops, u, opts.Predicate())
	}, func(s *span.Subgraph) int { return len(s.Nodes) })

	layout := Layout{
		Source:      opts.Source,
		Destination: opts.Destination,
		MaxHops:     opts.MaxHops,
	}

	if s.IsEmpty() {
		layout.Empty = true
		hooks.OnLayoutComplete(ctx, time.Since(started), 0, true)
		opts.Logger.Info("no connection at this bound",
			"source", opts.Source, "destination", opts.Destination, "max_hops", opts.MaxHops)
		return &Result{Layout: layout, Stats: stats}
	}

	assignment := timedStage(ctx, observability.StageLayer, &stats.LayerTime, func() layer.Assignment {
		return layer.Assign(s)
	}, func(a layer.Assignment) int { return len(a.Degrees) })

	ordering := timedStage(ctx, observability.StageOrder, &stats.OrderTime, func() order.Ordering {
		return order.Minimize(assignment, s)
	}, func(o order.Ordering) int { return len(o.Degrees) })
	stats.Crossings = order.CountCrossings(ordering, s)

	positions := timedStage(ctx, observability.StagePlace, &stats.PlaceTime, func() map[string]place.Point {
		return place.Place(ordering, opts.EffectiveSpacing())
	}, func(p map[string]place.Point) int { return len(p) })

	layout.Nodes = s.Nodes
	layout.Edges = s.Edges
	layout.CanonicalPath = s.CanonicalPath
	layout.Degrees = assignment.Degrees
	layout.Positions = positions

	stats.NodeCount = len(s.Nodes)
	stats.EdgeCount = len(s.Edges)

	hooks.OnLayoutComplete(ctx, time.Since(started), len(positions), false)
	opts.Logger.Debug("layout computed",
		"nodes", stats.NodeCount, "edges", stats.EdgeCount, "crossings", stats.Crossings)
	return &Result{Layout: layout, Stats: stats}
}

// timedStage wraps one pipeline stage with hook emission and duration
// accounting.
func timedStage[T any](ctx context.Context, stage string, dur *time.Duration, fn func() T, count func(T) int) T {
	hooks := observability.Layout()
	hooks.OnStageStart(ctx, stage)
	started := time.Now()
	out := fn()
	*dur = time.Since(started)
	hooks.OnStageComplete(ctx, stage, count(out), *dur)
	return out
}
