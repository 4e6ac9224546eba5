package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
	"github.com/iho/optiledger/internal/usecase/mocks"
)

func newUnitOfWork(t *testing.T, store *mocks.Store, opts ...uow.Option) *uow.UnitOfWork {
	t.Helper()

	reg, err := uow.NewRegistry(
		uow.Bind[*domain.Account](domain.KindAccount, store.Accounts()),
		uow.Bind[*domain.Transfer](domain.KindTransfer, store.Transfers()),
		uow.Bind[*domain.OutboxEvent](domain.KindOutboxEvent, store.Outbox()),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	return uow.New(store, reg, append([]uow.Option{uow.WithBackoff(0, 0)}, opts...)...)
}

func seed(store *mocks.Store, balance int64, currency string) *domain.Account {
	a := domain.NewAccount(uuid.New(), balance, currency, time.Now().UTC())
	store.PutAccount(a)
	return a
}

func mustFind(t *testing.T, store *mocks.Store, id uuid.UUID) *domain.Account {
	t.Helper()
	a, err := store.Accounts().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByID(%s) error = %v", id, err)
	}
	return a
}
