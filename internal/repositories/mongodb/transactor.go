package mongodb

import (
	"context"
	"fmt"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ repositories.Transactor = (*Transactor)(nil)

// Transactor runs multi-document transactions. It requires a replica set
// or sharded cluster.
type Transactor struct {
	client *mongo.Client
}

// NewTransactor creates a new Transactor
func NewTransactor(client *mongo.Client) *Transactor {
	return &Transactor{client: client}
}

// WithTransaction runs fn inside a single transaction. The driver reruns fn
// on TransientTransactionError and retries an UnknownTransactionCommitResult
// commit, so a caller that lost a write conflict sees the state left by the
// winner on the rerun. A conflict that outlives the driver's retry window
// is reported as repositories.ErrWriteConflict.
func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && repositories.IsWriteConflict(err) {
		return fmt.Errorf("%w: %v", repositories.ErrWriteConflict, err)
	}
	return err
}
