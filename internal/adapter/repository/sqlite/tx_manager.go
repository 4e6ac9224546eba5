// Package sqlite implements the ledger repositories on top of SQLite.
//
// Writes run inside BEGIN IMMEDIATE transactions opened by the unit of
// work; reads use the shared handle and never join a write transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TxManager implements uow.TransactionManager.
type TxManager struct {
	db beginner
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (uow.Transaction, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a database/sql transaction.
type Tx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}

func sqlTx(tx uow.Transaction) (DBTX, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("%w: sqlite repository cannot write through %T", domain.ErrConfiguration, tx)
	}
	return t.tx, nil
}
