package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/usecase"
)

// Outbox is the part of the outbox repository the worker drains.
type Outbox interface {
	FindUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error
}

var _ Outbox = usecase.OutboxRepository(nil)

// EventPublisher handles publishing events from the outbox.
type EventPublisher struct {
	outbox    Outbox
	publisher Publisher
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
	now       func() time.Time
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Config for EventPublisher.
type Config struct {
	Outbox    Outbox
	Publisher Publisher
	Logger    zerolog.Logger
	BatchSize int           // Number of events to fetch per batch
	Interval  time.Duration // Polling interval
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	return &EventPublisher{
		outbox:    cfg.Outbox,
		publisher: cfg.Publisher,
		logger:    cfg.Logger.With().Str("component", "outbox").Logger(),
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		now:       time.Now,
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	if _, err := ep.ProcessBatch(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events on start")
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := ep.ProcessBatch(ctx); err != nil {
				ep.logger.Error().Err(err).Msg("error processing events")
			}
		}
	}
}

// ProcessBatch publishes up to one batch of unpublished events and returns
// how many were published and marked.
func (ep *EventPublisher) ProcessBatch(ctx context.Context) (int, error) {
	events, err := ep.outbox.FindUnpublished(ctx, ep.batchSize)
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")

	published := 0
	for _, event := range events {
		if err := ep.publishEvent(ctx, event); err != nil {
			ep.logger.Error().Err(err).
				Stringer("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			// Left unpublished; picked up by the next batch.
			continue
		}

		if err := ep.outbox.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			ep.logger.Error().Err(err).
				Stringer("event_id", event.ID).
				Msg("failed to mark event as published")
			continue
		}
		published++
	}

	return published, nil
}

func (ep *EventPublisher) publishEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if err := ep.publisher.Publish(ctx, event); err != nil {
		return err
	}

	ep.logger.Debug().
		Stringer("event_id", event.ID).
		Str("event_type", event.EventType).
		Stringer("aggregate_id", event.AggregateID).
		Msg("event published")

	return nil
}

// LogPublisher is a simple publisher that logs events. Used when Redis is not configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Stringer("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Stringer("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
