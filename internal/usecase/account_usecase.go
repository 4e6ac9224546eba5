package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
)

// ErrNegativeOpeningBalance is returned when an account would start below zero.
var ErrNegativeOpeningBalance = errors.New("opening balance cannot be negative")

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	unitOfWork  *uow.UnitOfWork
	accountRepo AccountRepository
	idGen       IDGenerator
	emitEvents  bool
	now         func() time.Time
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(unitOfWork *uow.UnitOfWork, accountRepo AccountRepository, idGen IDGenerator, emitEvents bool) *AccountUseCase {
	return &AccountUseCase{
		unitOfWork:  unitOfWork,
		accountRepo: accountRepo,
		idGen:       idGen,
		emitEvents:  emitEvents,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Balance  int64
	Currency string
}

// CreateAccount opens an account with its opening balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	currency, err := domain.NormalizeCurrency(input.Currency)
	if err != nil {
		return nil, err
	}

	if input.Balance < 0 {
		return nil, ErrNegativeOpeningBalance
	}
	if input.Balance > domain.MaxBalance {
		return nil, fmt.Errorf("%w: opening balance exceeds %d", domain.ErrBalanceOverflow, domain.MaxBalance)
	}

	accountID := uc.idGen.Generate()

	var eventID uuid.UUID
	if uc.emitEvents {
		eventID = uc.idGen.Generate()
	}

	return uow.Execute(ctx, uc.unitOfWork, func(ctx context.Context, batch *uow.Batch) (*domain.Account, error) {
		now := uc.now()
		account := domain.NewAccount(accountID, input.Balance, currency, now)

		batch.Insert(account)
		if uc.emitEvents {
			batch.Insert(domain.NewAccountCreatedEvent(eventID, account, now))
		}

		return account, nil
	})
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return uc.accountRepo.FindByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts ordered by ID with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	accounts, err := uc.accountRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(accounts, func(a, b *domain.Account) int {
		return domain.CompareIDs(a.ID, b.ID)
	})

	return page(accounts, input.Limit, input.Offset), nil
}
