package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/usecase/mocks"
)

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	store := mocks.NewStore()
	first := seedEvent(t, store)
	second := seedEvent(t, store)

	pub := &stubPublisher{}
	ep := newTestPublisher(store.Outbox(), pub)

	n, err := ep.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.published, 2)
	assert.Equal(t, first.ID, pub.published[0].ID)
	assert.Equal(t, second.ID, pub.published[1].ID)

	remaining, err := store.Outbox().FindUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// Nothing is published twice.
	n, err = ep.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, pub.published, 2)
}

func TestProcessBatchContinuesOnPublishError(t *testing.T) {
	store := mocks.NewStore()
	failing := seedEvent(t, store)
	ok := seedEvent(t, store)

	pub := &stubPublisher{failFor: map[uuid.UUID]error{failing.ID: errors.New("fail")}}
	ep := newTestPublisher(store.Outbox(), pub)

	n, err := ep.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, pub.published, 1)
	assert.Equal(t, ok.ID, pub.published[0].ID)

	remaining, err := store.Outbox().FindUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, failing.ID, remaining[0].ID)
}

func TestProcessBatchRespectsBatchSize(t *testing.T) {
	store := mocks.NewStore()
	for i := 0; i < 5; i++ {
		seedEvent(t, store)
	}

	pub := &stubPublisher{}
	ep := newTestPublisher(store.Outbox(), pub)
	ep.batchSize = 2

	n, err := ep.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	store := mocks.NewStore()
	seedEvent(t, store)
	pub := &stubPublisher{}
	ep := newTestPublisher(store.Outbox(), pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}

	assert.Len(t, pub.published, 1)
}

func TestLogPublisherWritesPayload(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	event := &domain.OutboxEvent{
		ID:        uuid.New(),
		EventType: domain.EventTypeAccountCreated,
		Payload:   map[string]any{"balance": 100},
	}
	require.NoError(t, p.Publish(context.Background(), event))

	assert.Contains(t, buf.String(), `"payload":{"balance":100}`)
	assert.Contains(t, buf.String(), event.ID.String())
}

func newTestPublisher(outbox Outbox, pub *stubPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		Outbox:    outbox,
		Publisher: pub,
		Logger:    zerolog.Nop(),
		BatchSize: 10,
		Interval:  5 * time.Millisecond,
	})
}

func seedEvent(t *testing.T, store *mocks.Store) *domain.OutboxEvent {
	t.Helper()
	ctx := context.Background()

	// The store lists events by creation time.
	time.Sleep(time.Millisecond)
	account := domain.NewAccount(uuid.New(), 100, "USD", time.Now())
	event := domain.NewAccountCreatedEvent(uuid.New(), account, time.Now())

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	_, err = store.Outbox().Save(ctx, tx, event)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	return event
}

type stubPublisher struct {
	published []*domain.OutboxEvent
	failFor   map[uuid.UUID]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.failFor[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
