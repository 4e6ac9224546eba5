package generated

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createTransfer = `-- name: CreateTransfer :one
INSERT INTO transfers (id, from_account_id, to_account_id, amount, currency, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, from_account_id, to_account_id, amount, currency, created_at
`

type CreateTransferParams struct {
	ID            uuid.UUID          `json:"id"`
	FromAccountID uuid.UUID          `json:"from_account_id"`
	ToAccountID   uuid.UUID          `json:"to_account_id"`
	Amount        int64              `json:"amount"`
	Currency      string             `json:"currency"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateTransfer(ctx context.Context, arg CreateTransferParams) (Transfer, error) {
	row := q.db.QueryRow(ctx, createTransfer,
		arg.ID,
		arg.FromAccountID,
		arg.ToAccountID,
		arg.Amount,
		arg.Currency,
		arg.CreatedAt,
	)
	var i Transfer
	err := row.Scan(
		&i.ID,
		&i.FromAccountID,
		&i.ToAccountID,
		&i.Amount,
		&i.Currency,
		&i.CreatedAt,
	)
	return i, err
}

const getTransferByID = `-- name: GetTransferByID :one
SELECT id, from_account_id, to_account_id, amount, currency, created_at FROM transfers WHERE id = $1
`

func (q *Queries) GetTransferByID(ctx context.Context, id uuid.UUID) (Transfer, error) {
	row := q.db.QueryRow(ctx, getTransferByID, id)
	var i Transfer
	err := row.Scan(
		&i.ID,
		&i.FromAccountID,
		&i.ToAccountID,
		&i.Amount,
		&i.Currency,
		&i.CreatedAt,
	)
	return i, err
}

const listTransfers = `-- name: ListTransfers :many
SELECT id, from_account_id, to_account_id, amount, currency, created_at FROM transfers ORDER BY created_at, id
`

func (q *Queries) ListTransfers(ctx context.Context) ([]Transfer, error) {
	rows, err := q.db.Query(ctx, listTransfers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transfer{}
	for rows.Next() {
		var i Transfer
		if err := rows.Scan(
			&i.ID,
			&i.FromAccountID,
			&i.ToAccountID,
			&i.Amount,
			&i.Currency,
			&i.CreatedAt,
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

const listTransfersPage = `-- name: ListTransfersPage :many
SELECT id, from_account_id, to_account_id, amount, currency, created_at FROM transfers
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`

type ListTransfersPageParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListTransfersPage(ctx context.Context, arg ListTransfersPageParams) ([]Transfer, error) {
	rows, err := q.db.Query(ctx, listTransfersPage, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transfer{}
	for rows.Next() {
		var i Transfer
		if err := rows.Scan(
			&i.ID,
			&i.FromAccountID,
			&i.ToAccountID,
			&i.Amount,
			&i.Currency,
			&i.CreatedAt,
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

const listTransfersByAccount = `-- name: ListTransfersByAccount :many
SELECT id, from_account_id, to_account_id, amount, currency, created_at FROM transfers
WHERE from_account_id = $1 OR to_account_id = $1
ORDER BY created_at, id
LIMIT $2 OFFSET $3
`

type ListTransfersByAccountParams struct {
	FromAccountID uuid.UUID `json:"from_account_id"`
	Limit         int32     `json:"limit"`
	Offset        int32     `json:"offset"`
}

func (q *Queries) ListTransfersByAccount(ctx context.Context, arg ListTransfersByAccountParams) ([]Transfer, error) {
	rows, err := q.db.Query(ctx, listTransfersByAccount, arg.FromAccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transfer{}
	for rows.Next() {
		var i Transfer
		if err := rows.Scan(
			&i.ID,
			&i.FromAccountID,
			&i.ToAccountID,
			&i.Amount,
			&i.Currency,
			&i.CreatedAt,
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

const countTransfers = `-- name: CountTransfers :one
SELECT COUNT(*) FROM transfers
`

func (q *Queries) CountTransfers(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countTransfers)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countTransfersByAccount = `-- name: CountTransfersByAccount :one
SELECT COUNT(*) FROM transfers
WHERE from_account_id = $1 OR to_account_id = $1
`

func (q *Queries) CountTransfersByAccount(ctx context.Context, fromAccountID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countTransfersByAccount, fromAccountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
