// Package store loads and persists the node/edge universes layout
// requests are computed over. Two backends exist: a directory of JSON
// dataset files for offline CLI use, and a MongoDB collection for the
// server.
//
// The store is a collaborator of the layout core, not part of it: the
// core consumes a fully built in-memory universe and performs no I/O.
package store

import (
	"context"
	"time"

	"github.com/mkarlsen/rivalmap/pkg/graph"
)

// Dataset describes one stored universe.
type Dataset struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Nodes       int       `json:"nodes" bson:"nodes"`
	Edges       int       `json:"edges" bson:"edges"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the dataset access interface shared by backends.
type Store interface {
	// List returns metadata for every stored dataset, sorted by name.
	List(ctx context.Context) ([]Dataset, error)

	// Universe loads a dataset's universe together with its content
	// hash (used for layout cache keying). A missing dataset yields
	// an error with code DATASET_NOT_FOUND.
	Universe(ctx context.Context, name string) (*graph.Universe, string, error)

	// Save stores a universe under the given name, replacing any
	// previous content.
	Save(ctx context.Context, name, description string, u *graph.Universe) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
