package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkarlsen/rivalmap/pkg/cache"
	"github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/graph"
	"github.com/mkarlsen/rivalmap/pkg/observability"
)

// mongoCollection is the collection holding one document per dataset.
const mongoCollection = "universes"

// MongoStore keeps datasets in a MongoDB collection, one document per
// dataset with embedded node and edge arrays. Contest graphs are small
// enough (thousands of edges) that a single document stays well under
// the 16 MB limit.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

// mongoDataset is the stored document shape.
type mongoDataset struct {
	Dataset Dataset      `bson:"dataset"`
	Nodes   []graph.Node `bson:"nodes"`
	Edges   []graph.Edge `bson:"edges"`
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]Dataset, error) {
	opts := options.Find().
		SetProjection(bson.M{"dataset": 1}).
		SetSort(bson.M{"dataset.name": 1})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list datasets")
	}
	defer cursor.Close(ctx)

	var datasets []Dataset
	for cursor.Next(ctx) {
		var doc mongoDataset
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "decode dataset")
		}
		datasets = append(datasets, doc.Dataset)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "iterate datasets")
	}
	return datasets, nil
}

// Universe implements Store.
func (s *MongoStore) Universe(ctx context.Context, name string) (*graph.Universe, string, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return nil, "", err
	}
	started := time.Now()
	var doc mongoDataset
	err := s.coll.FindOne(ctx, bson.M{"dataset.name": name}).Decode(&doc)
	observability.Store().OnQuery(ctx, name, time.Since(started), err)
	if err == mongo.ErrNoDocuments {
		return nil, "", errors.New(errors.ErrCodeDatasetNotFound, "dataset %q not found", name)
	}
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeStore, err, "load dataset %s", name)
	}

	u := graph.NewUniverse(doc.Nodes, doc.Edges)
	data, err := graph.MarshalUniverse(u)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeStore, err, "hash dataset %s", name)
	}
	return u, cache.Hash(data), nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, name, description string, u *graph.Universe) error {
	if err := errors.ValidateDatasetName(name); err != nil {
		return err
	}
	doc := mongoDataset{
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
	_, err := s.coll.ReplaceOne(ctx, bson.M{"dataset.name": name}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save dataset %s", name)
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
