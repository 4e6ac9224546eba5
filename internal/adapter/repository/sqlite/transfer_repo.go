package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
)

const (
	insertTransfer = `INSERT INTO transfers (id, from_account_id, to_account_id, amount, currency, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

	selectTransfer = `SELECT id, from_account_id, to_account_id, amount, currency, created_at FROM transfers`
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	db DBTX
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db DBTX) *TransferRepository {
	return &TransferRepository{db: db}
}

// Save inserts a transfer.
func (r *TransferRepository) Save(ctx context.Context, tx uow.Transaction, transfer *domain.Transfer) (*domain.Transfer, error) {
	db, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx, insertTransfer,
		transfer.ID.String(),
		transfer.FromAccountID.String(),
		transfer.ToAccountID.String(),
		transfer.Amount,
		transfer.Currency,
		toUnix(transfer.CreatedAt),
	)
	if err != nil {
		return nil, classifyInsert("insert transfer", err)
	}

	return transfer, nil
}

// Update always fails: transfers are immutable once recorded.
func (r *TransferRepository) Update(ctx context.Context, tx uow.Transaction, transfer *domain.Transfer) error {
	return fmt.Errorf("%w: transfer entity does not support versioned updates", domain.ErrUnsupportedOperation)
}

// FindByID retrieves a transfer by ID.
func (r *TransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	row := r.db.QueryRowContext(ctx, selectTransfer+` WHERE id = ?`, id.String())

	transfer, err := scanTransfer(row)
	if err != nil {
		return nil, classify("get transfer", domain.KindTransfer, id, err)
	}

	return transfer, nil
}

// FindAll lists transfers ordered by creation time.
func (r *TransferRepository) FindAll(ctx context.Context) ([]*domain.Transfer, error) {
	rows, err := r.db.QueryContext(ctx, selectTransfer+` ORDER BY created_at, id`)
	if err != nil {
		return nil, domain.NewStorageError("list transfers", err)
	}
	defer rows.Close()

	var transfers []*domain.Transfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, domain.NewStorageError("list transfers", err)
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list transfers", err)
	}

	return transfers, nil
}

// FindPage lists one page of transfers and counts every transfer matching
// the filter.
func (r *TransferRepository) FindPage(ctx context.Context, filter domain.TransferFilter) ([]*domain.Transfer, int64, error) {
	where, args := "", []any{}
	if filter.AccountID != nil {
		id := filter.AccountID.String()
		where, args = ` WHERE from_account_id = ? OR to_account_id = ?`, []any{id, id}
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transfers`+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.NewStorageError("count transfers", err)
	}

	rows, err := r.db.QueryContext(ctx, selectTransfer+where+` ORDER BY created_at, id LIMIT ? OFFSET ?`,
		append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, domain.NewStorageError("list transfers", err)
	}
	defer rows.Close()

	transfers := []*domain.Transfer{}
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, domain.NewStorageError("list transfers", err)
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.NewStorageError("list transfers", err)
	}

	return transfers, total, nil
}

func scanTransfer(s scanner) (*domain.Transfer, error) {
	var (
		t         domain.Transfer
		createdAt int64
	)

	if err := s.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &t.Amount, &t.Currency, &createdAt); err != nil {
		return nil, err
	}
	t.CreatedAt = fromUnix(createdAt)

	return &t, nil
}
