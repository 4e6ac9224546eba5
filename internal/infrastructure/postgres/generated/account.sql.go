package generated

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (id, currency, balance, opening_balance, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, currency, balance, opening_balance, version, created_at, updated_at
`

type CreateAccountParams struct {
	ID             uuid.UUID          `json:"id"`
	Currency       string             `json:"currency"`
	Balance        int64              `json:"balance"`
	OpeningBalance int64              `json:"opening_balance"`
	Version        int64              `json:"version"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	UpdatedAt      pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, createAccount,
		arg.ID,
		arg.Currency,
		arg.Balance,
		arg.OpeningBalance,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Currency,
		&i.Balance,
		&i.OpeningBalance,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, currency, balance, opening_balance, version, created_at, updated_at FROM accounts WHERE id = $1
`

func (q *Queries) GetAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByID, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Currency,
		&i.Balance,
		&i.OpeningBalance,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAccounts = `-- name: ListAccounts :many
SELECT id, currency, balance, opening_balance, version, created_at, updated_at FROM accounts ORDER BY id
`

func (q *Queries) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Currency,
			&i.Balance,
			&i.OpeningBalance,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateAccountBalanceIfVersion = `-- name: UpdateAccountBalanceIfVersion :execrows
UPDATE accounts
SET balance = $2, version = version + 1, updated_at = $4
WHERE id = $1 AND version = $3
`

type UpdateAccountBalanceIfVersionParams struct {
	ID        uuid.UUID          `json:"id"`
	Balance   int64              `json:"balance"`
	Version   int64              `json:"version"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateAccountBalanceIfVersion(ctx context.Context, arg UpdateAccountBalanceIfVersionParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateAccountBalanceIfVersion,
		arg.ID,
		arg.Balance,
		arg.Version,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
