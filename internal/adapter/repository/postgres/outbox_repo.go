package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/infrastructure/postgres/generated"
	"github.com/iho/optiledger/internal/uow"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{queries: generated.New(db)}
}

// Save records an event within the unit of work's transaction.
func (r *OutboxRepository) Save(ctx context.Context, tx uow.Transaction, event *domain.OutboxEvent) (*domain.OutboxEvent, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, domain.NewStorageError("encode outbox payload", err)
	}

	err = q.CreateOutboxEvent(ctx, generated.CreateOutboxEventParams{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
	})
	if err != nil {
		return nil, classifyInsert("insert outbox event", err)
	}

	return event, nil
}

// Update always fails: events are append-only. Publication is tracked with
// MarkPublished outside any unit of work.
func (r *OutboxRepository) Update(ctx context.Context, tx uow.Transaction, event *domain.OutboxEvent) error {
	return fmt.Errorf("%w: outbox events are append-only", domain.ErrUnsupportedOperation)
}

// FindByID retrieves an event by ID.
func (r *OutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.OutboxEvent, error) {
	row, err := r.queries.GetOutboxEventByID(ctx, id)
	if err != nil {
		return nil, classify("get outbox event", domain.KindOutboxEvent, id, err)
	}

	return rowToOutboxEvent(row)
}

// FindAll lists every event in creation order.
func (r *OutboxRepository) FindAll(ctx context.Context) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.ListOutboxEvents(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list outbox events", err)
	}

	return rowsToOutboxEvents(rows)
}

// FindUnpublished retrieves the oldest unpublished events.
func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetUnpublishedEvents(ctx, int32(limit))
	if err != nil {
		return nil, domain.NewStorageError("list unpublished events", err)
	}

	return rowsToOutboxEvents(rows)
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	n, err := r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: timeToPgTimestamptz(publishedAt),
	})
	if err != nil {
		return domain.NewStorageError("mark event published", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Kind: domain.KindOutboxEvent, ID: id}
	}

	return nil
}

func rowsToOutboxEvents(rows []generated.OutboxEvent) ([]*domain.OutboxEvent, error) {
	events := make([]*domain.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		event, err := rowToOutboxEvent(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// rowToOutboxEvent fails on an undecodable payload so the event is never
// handed to the publisher and stays unpublished.
func rowToOutboxEvent(row generated.OutboxEvent) (*domain.OutboxEvent, error) {
	var payload map[string]any
	if row.Payload != nil {
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			return nil, domain.NewStorageError("decode outbox payload", fmt.Errorf("event %s: %w", row.ID, err))
		}
	}

	var publishedAt *time.Time
	if row.PublishedAt.Valid {
		t := row.PublishedAt.Time
		publishedAt = &t
	}

	return &domain.OutboxEvent{
		ID:            row.ID,
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		Payload:       payload,
		CreatedAt:     row.CreatedAt.Time,
		PublishedAt:   publishedAt,
	}, nil
}
