package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeTransferCreated = "transfer.created"
	EventTypeAccountCreated  = "account.created"
)

// Aggregate types
const (
	AggregateTypeTransfer = "transfer"
	AggregateTypeAccount  = "account"
)

// OutboxEvent is a notification recorded in the same transaction as the
// state change it describes and published after commit.
type OutboxEvent struct {
	ID            uuid.UUID
	AggregateID   uuid.UUID
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

func (e *OutboxEvent) EntityID() uuid.UUID { return e.ID }
func (e *OutboxEvent) Kind() EntityKind { return KindOutboxEvent }

// Published reports whether the event has left the outbox.
func (e *OutboxEvent) Published() bool { return e.PublishedAt != nil }

// NewTransferCreatedEvent builds the outbox record for a new transfer.
func NewTransferCreatedEvent(id uuid.UUID, t *Transfer, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   t.ID,
		AggregateType: AggregateTypeTransfer,
		EventType:     EventTypeTransferCreated,
		Payload: map[string]any{
			"transfer_id":     t.ID.String(),
			"from_account_id": t.FromAccountID.String(),
			"to_account_id":   t.ToAccountID.String(),
			"amount":          t.Amount,
			"currency":        t.Currency,
		},
		CreatedAt: now,
	}
}

// NewAccountCreatedEvent builds the outbox record for a new account.
func NewAccountCreatedEvent(id uuid.UUID, a *Account, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeAccountCreated,
		Payload: map[string]any{
			"account_id": a.ID.String(),
			"balance":    a.Balance,
			"currency":   a.Currency,
		},
		CreatedAt: now,
	}
}
