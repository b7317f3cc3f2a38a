package pipeline

import (
	"bytes"
	"context"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/mkarlsen/rivalmap/pkg/cache"
	"github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/graph"
	"github.com/mkarlsen/rivalmap/pkg/observability"
	"github.com/mkarlsen/rivalmap/pkg/place"
)

func testUniverse() *graph.Universe {
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

func validOptions(t *testing.T, opts Options) Options {
	t.Helper()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	return opts
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr errors.Code
	}{
		{"valid", Options{Source: "S", Destination: "T"}, ""},
		{"missing source", Options{Destination: "T"}, errors.ErrCodeInvalidProgram},
		{"missing destination", Options{Source: "S"}, errors.ErrCodeInvalidProgram},
		{"same endpoints", Options{Source: "S", Destination: "S"}, errors.ErrCodeInvalidRequest},
		{"negative hops", Options{Source: "S", Destination: "T", MaxHops: -1}, errors.ErrCodeInvalidRequest},
		{"excessive hops", Options{Source: "S", Destination: "T", MaxHops: 99}, errors.ErrCodeInvalidRequest},
		{"negative spacing", Options{Source: "S", Destination: "T", Spacing: &place.Spacing{Vertical: -1}}, errors.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if errors.GetCode(err) != tt.wantErr {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), tt.wantErr)
			}
		})
	}
}

func TestOptionsMaxHopsZeroIsLiteral(t *testing.T) {
	opts := validOptions(t, Options{Source: "S", Destination: "T"})
	if opts.MaxHops != 0 {
		t.Errorf("MaxHops = %d, validation must not default zero away", opts.MaxHops)
	}
}

func TestOptionsSpacingNormalized(t *testing.T) {
	def := place.DefaultSpacing()

	partial := validOptions(t, Options{Source: "S", Destination: "T", Spacing: &place.Spacing{Horizontal: 200}})
	s := partial.EffectiveSpacing()
	if s.Horizontal != 200 {
		t.Errorf("Horizontal = %v, want the override 200", s.Horizontal)
	}
	if s.Vertical != def.Vertical || s.MinSeparation != def.MinSeparation || s.DensityThreshold != def.DensityThreshold {
		t.Errorf("unset spacing fields should take the defaults, got %+v", s)
	}

	// An all-zero spacing would collapse every layer onto x=0 with no
	// separation; validation must fill it entirely.
	empty := validOptions(t, Options{Source: "S", Destination: "T", Spacing: &place.Spacing{}})
	if *empty.Spacing != def {
		t.Errorf("all-zero spacing = %+v, want defaults", *empty.Spacing)
	}
}

func TestComputeDeterministic(t *testing.T) {
	u := testUniverse()
	opts := validOptions(t, Options{Source: "S", Destination: "T", MaxHops: 3})

	first, err := MarshalLayout(Compute(context.Background(), u, opts).Layout)
	if err != nil {
		t.Fatalf("MarshalLayout() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := MarshalLayout(Compute(context.Background(), u, opts).Layout)
		if err != nil {
			t.Fatalf("MarshalLayout() error = %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d produced different bytes", i)
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	u := graph.NewUniverse(
		[]graph.Node{{ID: "S"}, {ID: "T"}},
		nil,
	)
	opts := validOptions(t, Options{Source: "S", Destination: "T", MaxHops: 3})
	result := Compute(context.Background(), u, opts)

	if !result.Layout.Empty {
		t.Fatal("disconnected endpoints should yield the empty layout")
	}
	if len(result.Layout.Nodes) != 0 || len(result.Layout.Positions) != 0 {
		t.Error("empty layout must carry no nodes or positions")
	}
}

func TestComputeBridgeLayout(t *testing.T) {
	u := testUniverse()
	opts := validOptions(t, Options{Source: "S", Destination: "T", MaxHops: 3})
	l := Compute(context.Background(), u, opts).Layout

	if l.Degrees["A"] != 1.5 {
		t.Errorf("degree(A) = %v, want bridge 1.5", l.Degrees["A"])
	}
	if l.Degrees["S"] != 0 || l.Degrees["T"] != 3 {
		t.Errorf("endpoint degrees = %v/%v, want 0/3", l.Degrees["S"], l.Degrees["T"])
	}
	if len(l.Positions) != len(l.Nodes) {
		t.Errorf("%d positions for %d nodes", len(l.Positions), len(l.Nodes))
	}
	spacing := opts.EffectiveSpacing()
	wantX := spacing.MarginX + 1.5*spacing.Horizontal
	if got := l.Positions["A"].X; got != wantX {
		t.Errorf("x(A) = %v, want %v", got, wantX)
	}
}

func TestVisible(t *testing.T) {
	u := testUniverse()
	opts := validOptions(t, Options{Source: "S", Destination: "T", MaxHops: 3})
	full := Compute(context.Background(), u, opts).Layout

	narrowed := Visible(full, 1)

	if len(narrowed.Nodes) >= len(full.Nodes) {
		t.Error("narrowing should drop high-degree nodes")
	}
	found := false
	for _, n := range narrowed.Nodes {
		if n.ID == full.Destination {
			found = true
		}
	}
	if !found {
		t.Error("destination must stay visible at every display bound")
	}
	for _, n := range narrowed.Nodes {
		if narrowed.Positions[n.ID] != full.Positions[n.ID] {
			t.Errorf("position of %s changed during narrowing", n.ID)
		}
		if narrowed.Degrees[n.ID] != full.Degrees[n.ID] {
			t.Errorf("degree of %s changed during narrowing", n.ID)
		}
	}
	for _, e := range narrowed.Edges {
		if _, ok := narrowed.Degrees[e.A]; !ok {
			t.Errorf("edge %s-%s kept without endpoint %s", e.A, e.B, e.A)
		}
		if _, ok := narrowed.Degrees[e.B]; !ok {
			t.Errorf("edge %s-%s kept without endpoint %s", e.A, e.B, e.B)
		}
	}
}

func TestVisibleEmptyPassthrough(t *testing.T) {
	l := Layout{Source: "S", Destination: "T", Empty: true}
	if got := Visible(l, 2); !got.Empty {
		t.Error("empty layout should pass through unchanged")
	}
}

// countingHooks records how often the pipeline starts.
type countingHooks struct {
	observability.NoopLayoutHooks
	starts atomic.Int64
}

func (h *countingHooks) OnLayoutStart(ctx context.Context, source, destination string, maxHops int) {
	h.starts.Add(1)
}

func TestVisibleNeverRecomputes(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	u := testUniverse()
	opts := validOptions(t, Options{Source: "S", Destination: "T", MaxHops: 3})
	full := Compute(context.Background(), u, opts).Layout
	if hooks.starts.Load() != 1 {
		t.Fatalf("starts = %d after one compute", hooks.starts.Load())
	}

	for _, bound := range []float64{0, 0.5, 1, 1.5, 2, 3} {
		Visible(full, bound)
	}
	if hooks.starts.Load() != 1 {
		t.Errorf("starts = %d, visibility changes must not re-run the pipeline", hooks.starts.Load())
	}
}

func TestRunnerCacheHit(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(c, nil)
	u := testUniverse()
	opts := Options{Source: "S", Destination: "T", MaxHops: 3}

	first, err := runner.Execute(context.Background(), u, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheInfo.Hit {
		t.Error("first execution should miss the cache")
	}

	second, err := runner.Execute(context.Background(), u, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !second.CacheInfo.Hit {
		t.Error("second execution should hit the cache")
	}
	if !reflect.DeepEqual(first.Layout, second.Layout) {
		t.Error("cached layout differs from the computed one")
	}
}

func TestRunnerRefreshBypassesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(c, nil)
	u := testUniverse()

	if _, err := runner.Execute(context.Background(), u, Options{Source: "S", Destination: "T", MaxHops: 3}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	refreshed, err := runner.Execute(context.Background(), u, Options{Source: "S", Destination: "T", MaxHops: 3, Refresh: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if refreshed.CacheInfo.Hit {
		t.Error("refresh must bypass the cache read")
	}
}

func TestRunnerKeyChangesWithParameters(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(c, nil)
	u := testUniverse()

	if _, err := runner.Execute(context.Background(), u, Options{Source: "S", Destination: "T", MaxHops: 3}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	other, err := runner.Execute(context.Background(), u, Options{Source: "S", Destination: "T", MaxHops: 2})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if other.CacheInfo.Hit {
		t.Error("a different hop bound must not reuse the cached layout")
	}
}

func TestLayoutMarshalRoundTrip(t *testing.T) {
	u := testUniverse()
	opts := validOptions(t, Options{Source: "S", Destination: "T", MaxHops: 3})
	l := Compute(context.Background(), u, opts).Layout

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout() error = %v", err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error = %v", err)
	}
	if !reflect.DeepEqual(got, l) {
		t.Error("round trip should preserve the layout")
	}
}

func TestStatsPopulated(t *testing.T) {
	u := testUniverse()
	opts := validOptions(t, Options{Source: "S", Destination: "T", MaxHops: 3})
	result := Compute(context.Background(), u, opts)

	if result.Stats.NodeCount != 5 {
		t.Errorf("NodeCount = %d, want 5", result.Stats.NodeCount)
	}
	if result.Stats.EdgeCount != 5 {
		t.Errorf("EdgeCount = %d, want 5", result.Stats.EdgeCount)
	}
	if result.Stats.SpanTime < 0 || result.Stats.PlaceTime < 0 {
		t.Error("stage durations must be non-negative")
	}
}
