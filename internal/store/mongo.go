package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

// ErrNotFound is returned when a document record does not exist or belongs
// to another user.
var ErrNotFound = errors.New("not found")

// MongoStore handles document record CRUD in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("documents")}
}

// EnsureIndexes creates the per-user listing index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo index: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, rec *models.DocumentRecord) (string, error) {
	rec.CreatedAt = time.Now().UTC()
	res, err := s.col.InsertOne(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("mongo insert: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	rec.ID = oid
	return oid.Hex(), nil
}

// ListByUser returns a user's records, newest first, without section bodies.
func (s *MongoStore) ListByUser(ctx context.Context, userID string) ([]models.DocumentRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"sections": 0, "background": 0})
	cur, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var recs []models.DocumentRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return recs, nil
}

// Get returns one of the user's records.
func (s *MongoStore) Get(ctx context.Context, userID, id string) (*models.DocumentRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var rec models.DocumentRecord
	err = s.col.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find one: %w", err)
	}
	return &rec, nil
}

func (s *MongoStore) Delete(ctx context.Context, userID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
