// Package uow implements an optimistic unit of work: business logic stages
// inserts and updates in a Batch, the engine flushes them in one database
// transaction, and a version conflict re-runs the logic from scratch.
package uow

import (
	"context"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
)

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Repository persists one entity type.
//
// Update is a compare-and-swap: it writes only if the stored version still
// equals the entity's version, bumps the stored version by one and returns a
// *domain.ConflictError when no row matched. Insert-only entity types return
// domain.ErrUnsupportedOperation from Update.
//
// Reads are not part of any write transaction.
type Repository[T domain.Entity] interface {
	Save(ctx context.Context, tx Transaction, entity T) (T, error)
	Update(ctx context.Context, tx Transaction, entity T) error
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
	FindAll(ctx context.Context) ([]T, error)
}
