package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
)

const (
	insertOutboxEvent = `INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

	selectOutboxEvent = `SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at FROM outbox_events`
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	db DBTX
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db DBTX) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Save records an event within the unit of work's transaction.
func (r *OutboxRepository) Save(ctx context.Context, tx uow.Transaction, event *domain.OutboxEvent) (*domain.OutboxEvent, error) {
	db, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, domain.NewStorageError("encode outbox payload", err)
	}

	_, err = db.ExecContext(ctx, insertOutboxEvent,
		event.ID.String(),
		event.AggregateID.String(),
		event.AggregateType,
		event.EventType,
		string(payload),
		toUnix(event.CreatedAt),
	)
	if err != nil {
		return nil, classifyInsert("insert outbox event", err)
	}

	return event, nil
}

// Update always fails: events are append-only.
func (r *OutboxRepository) Update(ctx context.Context, tx uow.Transaction, event *domain.OutboxEvent) error {
	return fmt.Errorf("%w: outbox events are append-only", domain.ErrUnsupportedOperation)
}

// FindByID retrieves an event by ID.
func (r *OutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.OutboxEvent, error) {
	row := r.db.QueryRowContext(ctx, selectOutboxEvent+` WHERE id = ?`, id.String())

	event, err := scanOutboxEvent(row)
	if err != nil {
		return nil, classify("get outbox event", domain.KindOutboxEvent, id, err)
	}

	return event, nil
}

// FindAll lists every event in creation order.
func (r *OutboxRepository) FindAll(ctx context.Context) ([]*domain.OutboxEvent, error) {
	return r.query(ctx, "list outbox events", selectOutboxEvent+` ORDER BY created_at, id`)
}

// FindUnpublished retrieves the oldest unpublished events.
func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	return r.query(ctx, "list unpublished events",
		selectOutboxEvent+` WHERE published_at IS NULL ORDER BY created_at, id LIMIT ?`, limit)
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE outbox_events SET published_at = ? WHERE id = ?`, toUnix(publishedAt), id.String())
	if err != nil {
		return domain.NewStorageError("mark event published", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("mark event published", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Kind: domain.KindOutboxEvent, ID: id}
	}

	return nil
}

func (r *OutboxRepository) query(ctx context.Context, op, query string, args ...any) ([]*domain.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		event, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, domain.NewStorageError(op, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}

	return events, nil
}

func scanOutboxEvent(s scanner) (*domain.OutboxEvent, error) {
	var (
		e           domain.OutboxEvent
		payload     string
		createdAt   int64
		publishedAt sql.NullInt64
	)

	if err := s.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &payload, &createdAt, &publishedAt); err != nil {
		return nil, err
	}

	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of event %s: %w", e.ID, err)
		}
	}
	e.CreatedAt = fromUnix(createdAt)
	if publishedAt.Valid {
		t := fromUnix(publishedAt.Int64)
		e.PublishedAt = &t
	}

	return &e, nil
}
