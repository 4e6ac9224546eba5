package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
)

const (
	insertAccount = `INSERT INTO accounts (id, currency, balance, opening_balance, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	updateAccountIfVersion = `UPDATE accounts
SET balance = ?, version = version + 1, updated_at = ?
WHERE id = ? AND version = ?`

	selectAccount = `SELECT id, currency, balance, opening_balance, version, created_at, updated_at FROM accounts`
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db  DBTX
	now func() time.Time
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Save inserts a new account.
func (r *AccountRepository) Save(ctx context.Context, tx uow.Transaction, account *domain.Account) (*domain.Account, error) {
	db, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx, insertAccount,
		account.ID.String(),
		account.Currency,
		account.Balance,
		account.OpeningBalance,
		account.Version,
		toUnix(account.CreatedAt),
		toUnix(account.UpdatedAt),
	)
	if err != nil {
		return nil, classifyInsert("insert account", err)
	}

	return account, nil
}

// Update writes the new balance only if the stored version still matches.
func (r *AccountRepository) Update(ctx context.Context, tx uow.Transaction, account *domain.Account) error {
	db, err := sqlTx(tx)
	if err != nil {
		return err
	}

	updatedAt := account.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	res, err := db.ExecContext(ctx, updateAccountIfVersion,
		account.Balance,
		toUnix(updatedAt),
		account.ID.String(),
		account.Version,
	)
	if err != nil {
		if isBusy(err) {
			return domain.NewConflictError(account)
		}
		return domain.NewStorageError("update account", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("update account", err)
	}
	if n == 0 {
		return domain.NewConflictError(account)
	}

	return nil
}

// FindByID retrieves an account by ID.
func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, selectAccount+` WHERE id = ?`, id.String())

	account, err := scanAccount(row)
	if err != nil {
		return nil, classify("get account", domain.KindAccount, id, err)
	}

	return account, nil
}

// FindAll lists every account ordered by ID.
func (r *AccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, selectAccount+` ORDER BY id`)
	if err != nil {
		return nil, domain.NewStorageError("list accounts", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, domain.NewStorageError("list accounts", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list accounts", err)
	}

	return accounts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*domain.Account, error) {
	var (
		a                    domain.Account
		createdAt, updatedAt int64
	)

	if err := s.Scan(&a.ID, &a.Currency, &a.Balance, &a.OpeningBalance, &a.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	a.CreatedAt = fromUnix(createdAt)
	a.UpdatedAt = fromUnix(updatedAt)

	return &a, nil
}

var _ DBTX = (*sql.DB)(nil)
