package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/infrastructure/postgres/generated"
	"github.com/iho/optiledger/internal/uow"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	queries *generated.Queries
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db generated.DBTX) *TransferRepository {
	return &TransferRepository{queries: generated.New(db)}
}

// Save inserts a transfer.
func (r *TransferRepository) Save(ctx context.Context, tx uow.Transaction, transfer *domain.Transfer) (*domain.Transfer, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := q.CreateTransfer(ctx, generated.CreateTransferParams{
		ID:            transfer.ID,
		FromAccountID: transfer.FromAccountID,
		ToAccountID:   transfer.ToAccountID,
		Amount:        transfer.Amount,
		Currency:      transfer.Currency,
		CreatedAt:     timeToPgTimestamptz(transfer.CreatedAt),
	})
	if err != nil {
		return nil, classifyInsert("insert transfer", err)
	}

	return rowToTransfer(row), nil
}

// Update always fails: transfers are immutable once recorded.
func (r *TransferRepository) Update(ctx context.Context, tx uow.Transaction, transfer *domain.Transfer) error {
	return fmt.Errorf("%w: transfer entity does not support versioned updates", domain.ErrUnsupportedOperation)
}

// FindByID retrieves a transfer by ID.
func (r *TransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	row, err := r.queries.GetTransferByID(ctx, id)
	if err != nil {
		return nil, classify("get transfer", domain.KindTransfer, id, err)
	}

	return rowToTransfer(row), nil
}

// FindAll lists transfers ordered by creation time.
func (r *TransferRepository) FindAll(ctx context.Context) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfers(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list transfers", err)
	}

	transfers := make([]*domain.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, rowToTransfer(row))
	}

	return transfers, nil
}

// FindPage lists one page of transfers and counts every transfer matching
// the filter. The page and the count are read outside a transaction.
func (r *TransferRepository) FindPage(ctx context.Context, filter domain.TransferFilter) ([]*domain.Transfer, int64, error) {
	var (
		rows  []generated.Transfer
		total int64
		err   error
	)

	if filter.AccountID != nil {
		rows, err = r.queries.ListTransfersByAccount(ctx, generated.ListTransfersByAccountParams{
			FromAccountID: *filter.AccountID,
			Limit:         int32(filter.Limit),
			Offset:        int32(filter.Offset),
		})
		if err == nil {
			total, err = r.queries.CountTransfersByAccount(ctx, *filter.AccountID)
		}
	} else {
		rows, err = r.queries.ListTransfersPage(ctx, generated.ListTransfersPageParams{
			Limit:  int32(filter.Limit),
			Offset: int32(filter.Offset),
		})
		if err == nil {
			total, err = r.queries.CountTransfers(ctx)
		}
	}
	if err != nil {
		return nil, 0, domain.NewStorageError("list transfers", err)
	}

	transfers := make([]*domain.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, rowToTransfer(row))
	}

	return transfers, total, nil
}

func rowToTransfer(row generated.Transfer) *domain.Transfer {
	return &domain.Transfer{
		ID:            row.ID,
		FromAccountID: row.FromAccountID,
		ToAccountID:   row.ToAccountID,
		Amount:        row.Amount,
		Currency:      row.Currency,
		CreatedAt:     row.CreatedAt.Time,
	}
}
