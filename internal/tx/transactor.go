package tx

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Transactor runs fn inside a transaction. Store calls made with the context
// handed to fn take part in the transaction; a non-nil error aborts it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Manager runs transactions on a MongoDB replica set. The driver retries the
// callback on TransientTransactionError and the commit on
// UnknownTransactionCommitResult.
type Manager struct {
	Client *mongo.Client
}

func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := m.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	return err
}
