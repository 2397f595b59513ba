package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freebook/backend/internal/domain"
)

type AccountRepo struct{ C *mongo.Collection }

func NewAccountRepo(db *mongo.Database) *AccountRepo {
	return &AccountRepo{C: db.Collection(accountsCollection)}
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.C.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrEmailConflict
	}
	return err
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var a domain.Account
	err := r.C.FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	return &a, nil
}
