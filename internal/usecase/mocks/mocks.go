package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
)

// Store is an in-memory backing store with read-committed semantics.
// Transactions are serialised and their writes become visible on Commit.
type Store struct {
	mu        sync.RWMutex
	txLock    sync.Mutex
	accounts  map[uuid.UUID]domain.Account
	transfers map[uuid.UUID]domain.Transfer
	events    map[uuid.UUID]domain.OutboxEvent

	writes  atomic.Int64
	commits atomic.Int64

	// BeforeAccountUpdate, if set, runs inside Update before the version
	// check. Tests use it to simulate a concurrent writer.
	BeforeAccountUpdate func(account *domain.Account)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[uuid.UUID]domain.Account),
		transfers: make(map[uuid.UUID]domain.Transfer),
		events:    make(map[uuid.UUID]domain.OutboxEvent),
	}
}

// Writes returns the number of successful staged writes.
func (s *Store) Writes() int64 { return s.writes.Load() }

// Commits returns the number of committed transactions.
func (s *Store) Commits() int64 { return s.commits.Load() }

// PutAccount stores an account directly, bypassing transactions.
func (s *Store) PutAccount(a *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = *a
}

// Begin starts a transaction. Only one transaction is open at a time.
func (s *Store) Begin(ctx context.Context) (uow.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txLock.Lock()
	return &Tx{store: s, staged: make(map[uuid.UUID]bool)}, nil
}

// Tx buffers writes until Commit.
type Tx struct {
	store   *Store
	pending []func()
	staged  map[uuid.UUID]bool
	done    bool
}

var errTxClosed = errors.New("tx is closed")

// Commit applies staged writes atomically.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxClosed
	}
	t.done = true

	t.store.mu.Lock()
	for _, apply := range t.pending {
		apply()
	}
	t.store.mu.Unlock()

	t.store.commits.Add(1)
	t.store.txLock.Unlock()
	return nil
}

// Rollback discards staged writes.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return errTxClosed
	}
	t.done = true
	t.pending = nil
	t.store.txLock.Unlock()
	return nil
}

func asTx(tx uow.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.done {
		return nil, &domain.StorageError{Op: "write", Err: errTxClosed}
	}
	return t, nil
}

// AccountRepository is an in-memory uow.Repository for accounts.
type AccountRepository struct {
	store *Store
}

// Accounts returns the account repository.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{store: s} }

func (r *AccountRepository) Save(ctx context.Context, tx uow.Transaction, account *domain.Account) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	_, exists := r.store.accounts[account.ID]
	r.store.mu.RUnlock()

	if exists || t.staged[account.ID] {
		return nil, &domain.StorageError{Op: "insert account", Err: fmt.Errorf("duplicate id %s", account.ID)}
	}

	row := *account
	t.staged[account.ID] = true
	t.pending = append(t.pending, func() { r.store.accounts[row.ID] = row })
	r.store.writes.Add(1)

	return account, nil
}

func (r *AccountRepository) Update(ctx context.Context, tx uow.Transaction, account *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if hook := r.store.BeforeAccountUpdate; hook != nil {
		hook(account)
	}

	r.store.mu.RLock()
	current, ok := r.store.accounts[account.ID]
	r.store.mu.RUnlock()

	if !ok || current.Version != account.Version {
		return domain.NewConflictError(account)
	}

	row := *account
	row.Version = account.Version + 1
	row.UpdatedAt = time.Now().UTC()
	t.pending = append(t.pending, func() { r.store.accounts[row.ID] = row })
	r.store.writes.Add(1)

	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindAccount, ID: id}
	}
	return &a, nil
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		accounts = append(accounts, &a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return domain.CompareIDs(accounts[i].ID, accounts[j].ID) < 0
	})
	return accounts, nil
}

// TransferRepository is an in-memory uow.Repository for transfers.
type TransferRepository struct {
	store *Store
}

// Transfers returns the transfer repository.
func (s *Store) Transfers() *TransferRepository { return &TransferRepository{store: s} }

func (r *TransferRepository) Save(ctx context.Context, tx uow.Transaction, transfer *domain.Transfer) (*domain.Transfer, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	_, exists := r.store.transfers[transfer.ID]
	r.store.mu.RUnlock()

	if exists || t.staged[transfer.ID] {
		return nil, &domain.StorageError{Op: "insert transfer", Err: fmt.Errorf("duplicate id %s", transfer.ID)}
	}

	row := *transfer
	t.staged[transfer.ID] = true
	t.pending = append(t.pending, func() { r.store.transfers[row.ID] = row })
	r.store.writes.Add(1)

	return transfer, nil
}

func (r *TransferRepository) Update(ctx context.Context, tx uow.Transaction, transfer *domain.Transfer) error {
	return fmt.Errorf("%w: transfer entity does not support versioned updates", domain.ErrUnsupportedOperation)
}

func (r *TransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.transfers[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindTransfer, ID: id}
	}
	return &t, nil
}

func (r *TransferRepository) FindAll(ctx context.Context) ([]*domain.Transfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	transfers := make([]*domain.Transfer, 0, len(r.store.transfers))
	for _, t := range r.store.transfers {
		transfers = append(transfers, &t)
	}
	sort.Slice(transfers, func(i, j int) bool {
		return domain.CompareIDs(transfers[i].ID, transfers[j].ID) < 0
	})
	return transfers, nil
}

// FindPage filters and orders in memory the way the SQL backends do.
func (r *TransferRepository) FindPage(ctx context.Context, filter domain.TransferFilter) ([]*domain.Transfer, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]*domain.Transfer, 0, len(r.store.transfers))
	for _, t := range r.store.transfers {
		if filter.Matches(&t) {
			matched = append(matched, &t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return domain.CompareIDs(matched[i].ID, matched[j].ID) < 0
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []*domain.Transfer{}, total, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end], total, nil
}

// OutboxRepository is an in-memory outbox.
type OutboxRepository struct {
	store *Store
}

// Outbox returns the outbox repository.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{store: s} }

func (r *OutboxRepository) Save(ctx context.Context, tx uow.Transaction, event *domain.OutboxEvent) (*domain.OutboxEvent, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	row := *event
	t.pending = append(t.pending, func() { r.store.events[row.ID] = row })
	r.store.writes.Add(1)

	return event, nil
}

func (r *OutboxRepository) Update(ctx context.Context, tx uow.Transaction, event *domain.OutboxEvent) error {
	return fmt.Errorf("%w: outbox events are append-only", domain.ErrUnsupportedOperation)
}

func (r *OutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.events[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindOutboxEvent, ID: id}
	}
	return &e, nil
}

func (r *OutboxRepository) FindAll(ctx context.Context) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	events := make([]*domain.OutboxEvent, 0, len(r.store.events))
	for _, e := range r.store.events {
		events = append(events, &e)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events, nil
}

func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	all, _ := r.FindAll(ctx)

	var events []*domain.OutboxEvent
	for _, e := range all {
		if e.Published() {
			continue
		}
		events = append(events, e)
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.events[id]
	if !ok {
		return &domain.NotFoundError{Kind: domain.KindOutboxEvent, ID: id}
	}
	e.PublishedAt = &publishedAt
	r.store.events[id] = e
	return nil
}

// LedgerRepository computes totals over the store.
type LedgerRepository struct {
	store *Store
}

// Ledger returns the ledger repository.
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{store: s} }

func (r *LedgerRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var (
		totals domain.LedgerTotals
		ok     = true
	)
	for _, a := range r.store.accounts {
		totals.Accounts++
		totals.TotalBalance, ok = addChecked(totals.TotalBalance, a.Balance, ok)
		totals.TotalOpeningBalance, ok = addChecked(totals.TotalOpeningBalance, a.OpeningBalance, ok)
	}
	for _, t := range r.store.transfers {
		totals.Transfers++
		totals.TransferVolume, ok = addChecked(totals.TransferVolume, t.Amount, ok)
	}
	if !ok {
		// Matches the SQL backends, which fail the SUM instead of wrapping.
		return domain.LedgerTotals{}, domain.NewStorageError("ledger totals", errors.New("integer overflow"))
	}
	return totals, nil
}

func addChecked(sum, v int64, ok bool) (int64, bool) {
	next := sum + v
	if (v > 0 && next < sum) || (v < 0 && next > sum) {
		return sum, false
	}
	return next, ok
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() uuid.UUID
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() uuid.UUID {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return uuid.New()
}
