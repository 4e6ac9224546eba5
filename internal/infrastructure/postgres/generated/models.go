package generated

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID             uuid.UUID          `json:"id"`
	Currency       string             `json:"currency"`
	Balance        int64              `json:"balance"`
	OpeningBalance int64              `json:"opening_balance"`
	Version        int64              `json:"version"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	UpdatedAt      pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            uuid.UUID          `json:"id"`
	AggregateID   uuid.UUID          `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
}

type Transfer struct {
	ID            uuid.UUID          `json:"id"`
	FromAccountID uuid.UUID          `json:"from_account_id"`
	ToAccountID   uuid.UUID          `json:"to_account_id"`
	Amount        int64              `json:"amount"`
	Currency      string             `json:"currency"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}
