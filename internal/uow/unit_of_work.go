package uow

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/optiledger/internal/domain"
)

const (
	// DefaultMaxAttempts bounds how many times logic runs before giving up.
	DefaultMaxAttempts = 10

	defaultInitialInterval = 2 * time.Millisecond
	defaultMaxInterval     = 50 * time.Millisecond
)

// UnitOfWork runs logic against a fresh Batch and commits the batch in one
// transaction, re-running the logic when a version conflict is detected.
// It holds no lock between attempts; coordination happens in the database.
type UnitOfWork struct {
	txManager       TransactionManager
	registry        *Registry
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	recorder        Recorder
	logger          zerolog.Logger
}

// Option configures a UnitOfWork.
type Option func(*UnitOfWork)

// WithMaxAttempts overrides the attempt bound.
func WithMaxAttempts(n int) Option {
	return func(u *UnitOfWork) {
		if n > 0 {
			u.maxAttempts = n
		}
	}
}

// WithBackoff sets the jittered pause between attempts. Zero disables pausing.
func WithBackoff(initial, maxInterval time.Duration) Option {
	return func(u *UnitOfWork) {
		u.initialInterval = initial
		u.maxInterval = maxInterval
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(u *UnitOfWork) {
		if r != nil {
			u.recorder = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(u *UnitOfWork) {
		u.logger = l
	}
}

// New creates a UnitOfWork over an immutable registry.
func New(txManager TransactionManager, registry *Registry, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		txManager:       txManager,
		registry:        registry,
		maxAttempts:     DefaultMaxAttempts,
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
		recorder:        NopRecorder{},
		logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// MaxAttempts returns the configured attempt bound.
func (u *UnitOfWork) MaxAttempts() int {
	return u.maxAttempts
}

// Registry returns the registry writes are dispatched through.
func (u *UnitOfWork) Registry() *Registry {
	return u.registry
}

// Execute runs logic until its batch commits, a non-conflict error occurs,
// or the attempt bound is reached. In the last case the error is a
// *domain.RetriesExhaustedError wrapping the final conflict.
//
// logic reads current state, stages writes in the batch and returns a
// result. It is re-run from scratch after a conflict, so it must not have
// side effects outside the batch.
func Execute[R any](ctx context.Context, u *UnitOfWork, logic func(ctx context.Context, batch *Batch) (R, error)) (R, error) {
	var (
		result   R
		attempts int
		started  = time.Now()
	)

	operation := func() error {
		attempts++
		u.recorder.AttemptStarted()

		res, err := runAttempt(ctx, u, logic)
		if err == nil {
			result = res
			return nil
		}

		if !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}

		u.recorder.Conflict()

		if attempts >= u.maxAttempts {
			u.recorder.Exhausted()
			u.logger.Warn().
				Err(err).
				Int("attempts", attempts).
				Msg("unit of work gave up after repeated conflicts")

			return backoff.Permanent(&domain.RetriesExhaustedError{Attempts: attempts, Last: err})
		}

		u.logger.Debug().
			Err(err).
			Int("attempt", attempts).
			Msg("optimistic lock conflict, retrying unit of work")

		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(u.newBackOff(), ctx)); err != nil {
		var zero R
		return zero, err
	}

	u.recorder.Committed(attempts, time.Since(started))

	return result, nil
}

func (u *UnitOfWork) newBackOff() backoff.BackOff {
	if u.initialInterval <= 0 {
		return &backoff.ZeroBackOff{}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.initialInterval
	b.MaxInterval = max(u.maxInterval, u.initialInterval)
	b.MaxElapsedTime = 0

	return b
}

// runAttempt executes one attempt against a fresh Batch. Nothing from a
// previous attempt survives into this one.
func runAttempt[R any](ctx context.Context, u *UnitOfWork, logic func(context.Context, *Batch) (R, error)) (R, error) {
	var zero R

	batch := newBatch()

	result, err := logic(ctx, batch)
	if err != nil {
		return zero, err
	}

	if err := u.commit(ctx, batch); err != nil {
		return zero, err
	}

	return result, nil
}

// commit flushes inserts, then updates, inside a single transaction.
func (u *UnitOfWork) commit(ctx context.Context, batch *Batch) error {
	if batch.Empty() {
		return nil
	}

	tx, err := u.txManager.Begin(ctx)
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(ctx); err != nil {
			u.logger.Debug().Err(err).Msg("rollback failed")
		}
	}()

	if err := batch.flushInserts(ctx, tx, u.registry); err != nil {
		return err
	}

	if err := batch.flushUpdates(ctx, tx, u.registry); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.NewStorageError("commit transaction", err)
	}
	committed = true

	return nil
}
