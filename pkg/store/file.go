package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/rivalmap/pkg/cache"
	"github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/graph"
	"github.com/mkarlsen/rivalmap/pkg/observability"
)

// FileStore keeps each dataset as <name>.json in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed dataset store, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create dataset dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// fileDataset is the on-disk document: metadata plus the universe.
type fileDataset struct {
	Dataset Dataset      `json:"dataset"`
	Nodes   []graph.Node `json:"nodes"`
	Edges   []graph.Edge `json:"edges"`
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]Dataset, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read dataset dir %s", s.dir)
	}

	var datasets []Dataset
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok || entry.IsDir() {
			continue
		}
		doc, err := s.read(name)
		if err != nil {
			// Skip unreadable files; a broken dataset must not hide
			// the rest of the catalog.
			continue
		}
		datasets = append(datasets, doc.Dataset)
	}
	slices.SortFunc(datasets, func(a, b Dataset) int {
		return strings.Compare(a.Name, b.Name)
	})
	return datasets, nil
}

// Universe implements Store.
func (s *FileStore) Universe(ctx context.Context, name string) (*graph.Universe, string, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return nil, "", err
	}
	started := time.Now()
	doc, err := s.read(name)
	observability.Store().OnQuery(ctx, name, time.Since(started), err)
	if err != nil {
		return nil, "", err
	}

	u := graph.NewUniverse(doc.Nodes, doc.Edges)
	data, err := graph.MarshalUniverse(u)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeStore, err, "hash dataset %s", name)
	}
	return u, cache.Hash(data), nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, name, description string, u *graph.Universe) error {
	if err := errors.ValidateDatasetName(name); err != nil {
		return err
	}
	doc := fileDataset{
		Dataset: Dataset{
			ID:          uuid.NewString(),
			Name:        name,
			Description: description,
			Nodes:       u.NodeCount(),
			Edges:       u.EdgeCount(),
			UpdatedAt:   time.Now().UTC(),
		},
		Nodes: u.Nodes,
		Edges: u.Edges,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode dataset %s", name)
	}
	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write dataset %s", name)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close(ctx context.Context) error { return nil }

func (s *FileStore) read(name string) (fileDataset, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return fileDataset{}, errors.New(errors.ErrCodeDatasetNotFound, "dataset %q not found", name)
	}
	if err != nil {
		return fileDataset{}, errors.Wrap(errors.ErrCodeStore, err, "read dataset %s", name)
	}
	var doc fileDataset
	if err := json.Unmarshal(data, &doc); err != nil {
		return fileDataset{}, errors.Wrap(errors.ErrCodeStore, err, "decode dataset %s", name)
	}
	return doc, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

var _ Store = (*FileStore)(nil)
