package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/vikrantan5/FitSphere-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const stateCollectionName = "client_state"

// stateDocument is one persisted value of one browser session.
type stateDocument struct {
	SessionID string    `bson:"sid"`
	Key       string    `bson:"key"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoStateRepository implements the repository.StateStore interface using MongoDB.
type mongoStateRepository struct {
	collection *mongo.Collection
}

// NewMongoStateRepository creates a new instance of mongoStateRepository.
// It expects a connected *mongo.Database instance.
func NewMongoStateRepository(db *mongo.Database) repository.StateStore {
	return &mongoStateRepository{
		collection: db.Collection(stateCollectionName),
	}
}

// Get retrieves a single value by session id and key.
func (r *mongoStateRepository) Get(ctx context.Context, sid, key string) ([]byte, error) {
	var doc stateDocument
	filter := bson.M{"sid": sid, "key": key}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.Value, nil
}

// Set upserts the value and refreshes updatedAt, which also drives the TTL index.
func (r *mongoStateRepository) Set(ctx context.Context, sid, key string, value []byte) error {
	filter := bson.M{"sid": sid, "key": key}
	update := bson.M{
		"$set": bson.M{
			"value":     value,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

// Delete removes the listed keys of one session.
func (r *mongoStateRepository) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	filter := bson.M{"sid": sid, "key": bson.M{"$in": keys}}
	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return err
	}
	return nil
}

// EnsureStateIndexes creates necessary indexes for the client_state collection.
// Call this once during application startup.
func EnsureStateIndexes(ctx context.Context, collection *mongo.Collection, ttl time.Duration) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sid", Value: 1}, {Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if ttl > 0 {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "updatedAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		})
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

// StateCollection exposes the collection name for index setup in main.
func StateCollection(db *mongo.Database) *mongo.Collection {
	return db.Collection(stateCollectionName)
}
