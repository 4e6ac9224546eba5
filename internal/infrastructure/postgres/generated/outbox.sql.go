package generated

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOutboxEvent = `-- name: CreateOutboxEvent :exec
INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

type CreateOutboxEventParams struct {
	ID            uuid.UUID          `json:"id"`
	AggregateID   uuid.UUID          `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateOutboxEvent(ctx context.Context, arg CreateOutboxEventParams) error {
	_, err := q.db.Exec(ctx, createOutboxEvent,
		arg.ID,
		arg.AggregateID,
		arg.AggregateType,
		arg.EventType,
		arg.Payload,
		arg.CreatedAt,
	)
	return err
}

const getOutboxEventByID = `-- name: GetOutboxEventByID :one
SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at FROM outbox_events WHERE id = $1
`

func (q *Queries) GetOutboxEventByID(ctx context.Context, id uuid.UUID) (OutboxEvent, error) {
	row := q.db.QueryRow(ctx, getOutboxEventByID, id)
	var i OutboxEvent
	err := row.Scan(
		&i.ID,
		&i.AggregateID,
		&i.AggregateType,
		&i.EventType,
		&i.Payload,
		&i.CreatedAt,
		&i.PublishedAt,
	)
	return i, err
}

const listOutboxEvents = `-- name: ListOutboxEvents :many
SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at FROM outbox_events ORDER BY created_at, id
`

func (q *Queries) ListOutboxEvents(ctx context.Context) ([]OutboxEvent, error) {
	rows, err := q.db.Query(ctx, listOutboxEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutboxEvents(rows)
}

const getUnpublishedEvents = `-- name: GetUnpublishedEvents :many
SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at FROM outbox_events
WHERE published_at IS NULL
ORDER BY created_at, id
LIMIT $1
`

func (q *Queries) GetUnpublishedEvents(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := q.db.Query(ctx, getUnpublishedEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutboxEvents(rows)
}

const markEventPublished = `-- name: MarkEventPublished :execrows
UPDATE outbox_events SET published_at = $2 WHERE id = $1
`

type MarkEventPublishedParams struct {
	ID          uuid.UUID          `json:"id"`
	PublishedAt pgtype.Timestamptz `json:"published_at"`
}

func (q *Queries) MarkEventPublished(ctx context.Context, arg MarkEventPublishedParams) (int64, error) {
	result, err := q.db.Exec(ctx, markEventPublished, arg.ID, arg.PublishedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func scanOutboxEvents(rows pgx.Rows) ([]OutboxEvent, error) {
	items := []OutboxEvent{}
	for rows.Next() {
		var i OutboxEvent
		if err := rows.Scan(
			&i.ID,
			&i.AggregateID,
			&i.AggregateType,
			&i.EventType,
			&i.Payload,
			&i.CreatedAt,
			&i.PublishedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
