package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
)

// TransferUseCase handles transfer business logic.
type TransferUseCase struct {
	unitOfWork   *uow.UnitOfWork
	accountRepo  AccountRepository
	transferRepo TransferRepository
	idGen        IDGenerator
	emitEvents   bool
	now          func() time.Time
}

// NewTransferUseCase creates a new TransferUseCase. When emitEvents is set
// every transfer also stages a transfer.created outbox event, which requires
// the outbox kind to be registered with the unit of work.
func NewTransferUseCase(
	unitOfWork *uow.UnitOfWork,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	idGen IDGenerator,
	emitEvents bool,
) *TransferUseCase {
	return &TransferUseCase{
		unitOfWork:   unitOfWork,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		idGen:        idGen,
		emitEvents:   emitEvents,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        int64
}

// CreateTransfer moves Amount from one account to another. Both balances
// are re-read on every attempt, so a concurrent transfer touching either
// account causes the whole computation to run again.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	// IDs are fixed outside the logic so that every attempt writes the same rows.
	transferID := uc.idGen.Generate()

	var eventID uuid.UUID
	if uc.emitEvents {
		eventID = uc.idGen.Generate()
	}

	return uow.Execute(ctx, uc.unitOfWork, func(ctx context.Context, batch *uow.Batch) (*domain.Transfer, error) {
		from, err := uc.accountRepo.FindByID(ctx, input.FromAccountID)
		if err != nil {
			return nil, err
		}

		to, err := uc.accountRepo.FindByID(ctx, input.ToAccountID)
		if err != nil {
			return nil, err
		}

		if from.Currency != to.Currency {
			return nil, domain.ErrCurrencyMismatch
		}

		now := uc.now()
		transfer := &domain.Transfer{
			ID:            transferID,
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        input.Amount,
			Currency:      from.Currency,
			CreatedAt:     now,
		}

		if err := transfer.Validate(); err != nil {
			return nil, err
		}

		debited, err := from.Debit(input.Amount)
		if err != nil {
			return nil, err
		}
		debited.UpdatedAt = now

		credited, err := to.Credit(input.Amount)
		if err != nil {
			return nil, err
		}
		credited.UpdatedAt = now

		batch.Update(debited)
		batch.Update(credited)
		batch.Insert(transfer)

		if uc.emitEvents {
			batch.Insert(domain.NewTransferCreatedEvent(eventID, transfer, now))
		}

		return transfer, nil
	})
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	return uc.transferRepo.FindByID(ctx, id)
}

// ListTransfersInput represents input for listing transfers.
type ListTransfersInput struct {
	AccountID *uuid.UUID
	Limit     int
	Offset    int
}

// TransferPage is one page of transfers plus the number of transfers
// matching the request across all pages.
type TransferPage struct {
	Transfers []*domain.Transfer
	Total     int64
}

// ListTransfers lists transfers ordered by creation time, optionally
// restricted to those touching one account.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, input ListTransfersInput) (*TransferPage, error) {
	limit, offset := normalizePage(input.Limit, input.Offset)

	transfers, total, err := uc.transferRepo.FindPage(ctx, domain.TransferFilter{
		AccountID: input.AccountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}

	return &TransferPage{Transfers: transfers, Total: total}, nil
}
