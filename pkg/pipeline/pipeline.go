// Package pipeline provides the core layout pipeline for Rivalmap.
//
// A layout request flows through four pure stages:
//
//	span  → bounded comparison subgraph between the endpoints
//	layer → degree (horizontal rank) per node, with bridge detection
//	order → per-layer arrangement minimizing edge crossings
//	place → final collision-free 2D coordinates
//
// No stage holds state across invocations and no stage mutates its
// input; each full computation is pure given the universe and options,
// which makes results cacheable byte-for-byte.
//
// Recomputation is keyed only on the parameters in Options: endpoints,
// hop bound, edge predicate, and spacing. Narrowing which nodes are
// displayed is a visibility toggle over an already computed layout
// (see [Visible]) and never re-runs the pipeline.
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/graph"
	"github.com/mkarlsen/rivalmap/pkg/place"
)

// DefaultMaxHops is the hop bound applied when a request leaves it
// unset. Enumeration cost is exponential in the bound, so the default
// stays small.
const DefaultMaxHops = 3

// DefaultCacheTTL is how long computed layouts stay cached.
const DefaultCacheTTL = 24 * time.Hour

// Options contains all configuration for a layout request.
// This struct supports JSON serialization for API requests.
type Options struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	MaxHops     int      `json:"max_hops,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	MinWeight   float64  `json:"min_weight,omitempty"`

	// Spacing overrides the default layout constants when non-nil.
	Spacing *place.Spacing `json:"spacing,omitempty"`

	// Refresh bypasses the cache read (the result is still written).
	Refresh bool `json:"refresh,omitempty"`

	// DatasetHash identifies the universe content for cache keying.
	// When empty the runner hashes the universe itself.
	DatasetHash string `json:"dataset_hash,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
//
// MaxHops of zero is taken literally (the direct-comparison special
// case), never defaulted away. Apply DefaultMaxHops yourself when
// building requests from sparse user input.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateProgramID(o.Source); err != nil {
		return err
	}
	if err := errors.ValidateProgramID(o.Destination); err != nil {
		return err
	}
	if o.Source == o.Destination {
		return errors.New(errors.ErrCodeInvalidRequest, "source and destination must differ")
	}
	if err := errors.ValidateMaxHops(o.MaxHops); err != nil {
		return err
	}
	if o.Spacing != nil {
		s, err := normalizedSpacing(*o.Spacing)
		if err != nil {
			return err
		}
		o.Spacing = &s
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// normalizedSpacing fills zero spacing fields from the defaults and
// rejects negative ones. Zero means "use the default", so a partial
// override composes with the constants it does not touch.
func normalizedSpacing(s place.Spacing) (place.Spacing, error) {
	def := place.DefaultSpacing()
	fields := []struct {
		name string
		v    *float64
		def  float64
	}{
		{"margin_x", &s.MarginX, def.MarginX},
		{"horizontal", &s.Horizontal, def.Horizontal},
		{"vertical", &s.Vertical, def.Vertical},
		{"center_y", &s.CenterY, def.CenterY},
		{"min_separation", &s.MinSeparation, def.MinSeparation},
		{"proximity_window", &s.ProximityWindow, def.ProximityWindow},
	}
	for _, f := range fields {
		if *f.v < 0 {
			return place.Spacing{}, errors.New(errors.ErrCodeInvalidRequest, "spacing field %s must not be negative", f.name)
		}
		if *f.v == 0 {
			*f.v = f.def
		}
	}
	if s.DensityThreshold < 0 {
		return place.Spacing{}, errors.New(errors.ErrCodeInvalidRequest, "spacing field density_threshold must not be negative")
	}
	if s.DensityThreshold == 0 {
		s.DensityThreshold = def.DensityThreshold
	}
	return s, nil
}

// EffectiveSpacing returns the request spacing or the defaults.
func (o *Options) EffectiveSpacing() place.Spacing {
	if o.Spacing != nil {
		return *o.Spacing
	}
	return place.DefaultSpacing()
}

// Predicate builds the edge predicate of the request.
func (o *Options) Predicate() graph.Predicate {
	return graph.Predicate{Categories: o.Categories, MinWeight: o.MinWeight}
}

// Layout is the serializable outcome of a layout computation: the
// retained subgraph, the degree per node, and the final coordinates.
// It is the unit stored in the cache and returned by the HTTP API.
type Layout struct {
	Source      string `json:"source" bson:"source"`
	Destination string `json:"destination" bson:"destination"`
	MaxHops     int    `json:"max_hops" bson:"max_hops"`

	// Empty marks the no-connection sentinel: no path within the hop
	// bound exists. Callers render it as an explicit state.
	Empty bool `json:"empty" bson:"empty"`

	Nodes     []graph.Node           `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Edges     []graph.Edge           `json:"edges,omitempty" bson:"edges,omitempty"`
	Degrees   map[string]float64     `json:"degrees,omitempty" bson:"degrees,omitempty"`
	Positions map[string]place.Point `json:"positions,omitempty" bson:"positions,omitempty"`

	// CanonicalPath anchors rendering (edge emphasis, centering).
	CanonicalPath []string `json:"canonical_path,omitempty" bson:"canonical_path,omitempty"`
}

// MarshalLayout serializes a Layout to JSON bytes. Maps marshal with
// sorted keys, so identical layouts marshal to identical bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	return l, nil
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount int           `json:"node_count"`
	EdgeCount int           `json:"edge_count"`
	Crossings int           `json:"crossings"`
	SpanTime  time.Duration `json:"span_time"`
	LayerTime time.Duration `json:"layer_time"`
	OrderTime time.Duration `json:"order_time"`
	PlaceTime time.Duration `json:"place_time"`
}

// CacheInfo tracks whether the layout came from the cache.
type CacheInfo struct {
	Hit bool   `json:"hit"`
	Key string `json:"key"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Layout    Layout
	Stats     Stats
	CacheInfo CacheInfo
}
