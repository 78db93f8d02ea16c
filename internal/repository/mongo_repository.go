package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/quickbites/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// MongoRepository keeps one document per session, keyed by the session key.
type MongoRepository struct {
	collection *mongo.Collection
	retention  time.Duration
}

func (m MongoRepository) FindSession(ctx context.Context, key string) (*domain.Session, error) {
	var session domain.Session

	filter := bson.M{"_id": key}
	err := m.collection.FindOne(ctx, filter).Decode(&session)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Normalize()
	return &session, nil
}

func (m MongoRepository) FindSessionByReference(ctx context.Context, reference string) (*domain.Session, error) {
	var session domain.Session

	filter := bson.M{"orders.payment_reference": reference}
	err := m.collection.FindOne(ctx, filter).Decode(&session)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session by reference: %w", err)
	}

	session.Normalize()
	return &session, nil
}

func (m MongoRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSessionExists
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// SaveSession replaces the whole session document. Concurrent writers race and the last one wins.
func (m MongoRepository) SaveSession(ctx context.Context, session *domain.Session) error {
	now := time.Now()

	// Set timestamps
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	filter := bson.M{"_id": session.Key}
	opts := options.Replace().SetUpsert(true)

	_, err := m.collection.ReplaceOne(ctx, filter, session, opts)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orders.payment_reference", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if m.retention > 0 {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(m.retention.Seconds())),
		})
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// NewMongoRepository stores sessions in the "sessions" collection. A positive
// retention adds a TTL index on updated_at; zero keeps sessions forever.
func NewMongoRepository(db *mongo.Database, retention time.Duration) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("sessions"),
		retention:  retention,
	}
}
