package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	uow.Repository[*domain.Account]
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	uow.Repository[*domain.Transfer]

	// FindPage returns the transfers selected by filter and the number of
	// transfers matching it across all pages.
	FindPage(ctx context.Context, filter domain.TransferFilter) ([]*domain.Transfer, int64, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	uow.Repository[*domain.OutboxEvent]
	FindUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	Totals(ctx context.Context) (domain.LedgerTotals, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() uuid.UUID
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so it can be retried.
	Release(ctx context.Context, key string) error
}
