package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/sitepublish/internal/config"
	"github.com/Rrens/sitepublish/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	seqField          = "_seq"
	countersCollName  = "_counters"
	defaultTimeoutSec = 10
)

// Store implements domain.DocumentStore with one MongoDB collection per document collection
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB
func NewStore(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultTimeoutSec * time.Second
	}

	clientOpts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Get retrieves a document by collection and id
func (s *Store) Get(ctx context.Context, collection, id string) (*domain.Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return toDocument(id, raw)
}

// Set upserts a document. The insertion sequence of an existing document is preserved.
func (s *Store) Set(ctx context.Context, collection, id string, payload []byte, merge bool) error {
	if err := domain.ValidatePayload(payload); err != nil {
		return err
	}

	var fields bson.M
	if err := bson.UnmarshalExtJSON(payload, false, &fields); err != nil {
		return fmt.Errorf("failed to convert payload: %w", err)
	}
	delete(fields, "_id")

	seq, err := s.sequenceFor(ctx, collection, id)
	if err != nil {
		return err
	}
	fields[seqField] = seq

	coll := s.db.Collection(collection)
	filter := bson.D{{Key: "_id", Value: id}}

	if merge {
		_, err = coll.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: fields}}, options.Update().SetUpsert(true))
	} else {
		_, err = coll.ReplaceOne(ctx, filter, fields, options.Replace().SetUpsert(true))
	}
	if err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}

	return nil
}

// Update sets the fields of patch on an existing document
func (s *Store) Update(ctx context.Context, collection, id string, patch []byte) (bool, error) {
	if err := domain.ValidatePayload(patch); err != nil {
		return false, err
	}

	var fields bson.M
	if err := bson.UnmarshalExtJSON(patch, false, &fields); err != nil {
		return false, fmt.Errorf("failed to convert payload: %w", err)
	}
	delete(fields, "_id")
	delete(fields, seqField)
	if len(fields) == 0 {
		n, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
		if err != nil {
			return false, fmt.Errorf("failed to check document: %w", err)
		}
		return n > 0, nil
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: fields}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update document: %w", err)
	}

	return res.MatchedCount > 0, nil
}

// Delete deletes a document
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// List retrieves the documents of a collection matching every equality filter, in insertion order
func (s *Store) List(ctx context.Context, collection string, filters ...domain.Filter) ([]domain.Document, error) {
	query := bson.D{}
	for _, f := range filters {
		query = append(query, bson.E{Key: f.Field, Value: f.Value})
	}

	cursor, err := s.db.Collection(collection).Find(ctx, query, options.Find().SetSort(bson.D{{Key: seqField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []domain.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		id, _ := raw["_id"].(string)
		doc, err := toDocument(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// Ping verifies connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// sequenceFor returns the stored insertion sequence of id, allocating a new one for new documents
func (s *Store) sequenceFor(ctx context.Context, collection, id string) (int64, error) {
	var existing struct {
		Seq int64 `bson:"_seq"`
	}
	err := s.db.Collection(collection).
		FindOne(ctx, bson.D{{Key: "_id", Value: id}}, options.FindOne().SetProjection(bson.D{{Key: seqField, Value: 1}})).
		Decode(&existing)
	if err == nil {
		return existing.Seq, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("failed to read document sequence: %w", err)
	}

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err = s.db.Collection(countersCollName).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: collection}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate document sequence: %w", err)
	}

	return counter.Seq, nil
}

func toDocument(id string, raw bson.M) (*domain.Document, error) {
	delete(raw, "_id")
	delete(raw, seqField)

	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	return &domain.Document{ID: id, Data: data}, nil
}
