package sqlite

import (
	"context"

	"github.com/iho/optiledger/internal/domain"
)

const ledgerTotals = `SELECT
    (SELECT COUNT(*) FROM accounts),
    (SELECT COUNT(*) FROM transfers),
    (SELECT COALESCE(SUM(balance), 0) FROM accounts),
    (SELECT COALESCE(SUM(opening_balance), 0) FROM accounts),
    (SELECT COALESCE(SUM(amount), 0) FROM transfers)`

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db DBTX
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Totals aggregates balances and transfers in one statement.
func (r *LedgerRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	var t domain.LedgerTotals

	err := r.db.QueryRowContext(ctx, ledgerTotals).Scan(
		&t.Accounts,
		&t.Transfers,
		&t.TotalBalance,
		&t.TotalOpeningBalance,
		&t.TransferVolume,
	)
	if err != nil {
		return domain.LedgerTotals{}, domain.NewStorageError("ledger totals", err)
	}

	return t, nil
}
