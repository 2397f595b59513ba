package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freebook/backend/internal/domain"
)

// OutboxRepo manages the transactional outbox collection.
type OutboxRepo struct{ C *mongo.Collection }

func NewOutboxRepo(db *mongo.Database) *OutboxRepo {
	return &OutboxRepo{C: db.Collection(outboxCollection)}
}

func (r *OutboxRepo) Insert(ctx context.Context, e *domain.Event) error {
	_, err := r.C.InsertOne(ctx, e)
	return err
}

func (r *OutboxRepo) Fetch(ctx context.Context, limit int) ([]domain.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := r.C.Find(ctx, bson.M{"publishedAt": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OutboxRepo) MarkPublished(ctx context.Context, id string) error {
	_, err := r.C.UpdateByID(ctx, id, bson.M{"$set": bson.M{"publishedAt": time.Now().UTC()}})
	return err
}
