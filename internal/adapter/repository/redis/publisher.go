package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iho/optiledger/internal/domain"
)

// DefaultChannelPrefix namespaces the pub/sub channels events go to.
const DefaultChannelPrefix = "ledger.events."

// EventMessage is the wire format of a published outbox event.
type EventMessage struct {
	ID            uuid.UUID      `json:"id"`
	AggregateID   uuid.UUID      `json:"aggregate_id"`
	AggregateType string         `json:"aggregate_type"`
	EventType     string         `json:"event_type"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Publisher publishes outbox events on Redis pub/sub, one channel per event type.
type Publisher struct {
	client *redis.Client
	prefix string
}

// NewPublisher creates a Publisher. An empty prefix selects DefaultChannelPrefix.
func NewPublisher(client *redis.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &Publisher{client: client, prefix: prefix}
}

// Channel returns the channel an event type is published on.
func (p *Publisher) Channel(eventType string) string {
	return p.prefix + eventType
}

// Publish sends event to its channel.
func (p *Publisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	msg, err := json.Marshal(EventMessage{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       event.Payload,
		CreatedAt:     event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	if err := p.client.Publish(ctx, p.Channel(event.EventType), msg).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}

	return nil
}
