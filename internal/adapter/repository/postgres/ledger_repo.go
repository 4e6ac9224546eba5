package postgres

import (
	"context"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Totals aggregates balances and transfers in a single statement so the
// figures come from one snapshot.
func (r *LedgerRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	row, err := r.queries.GetLedgerTotals(ctx)
	if err != nil {
		return domain.LedgerTotals{}, domain.NewStorageError("ledger totals", err)
	}

	return domain.LedgerTotals{
		Accounts:            row.Accounts,
		Transfers:           row.Transfers,
		TotalBalance:        row.TotalBalance,
		TotalOpeningBalance: row.TotalOpeningBalance,
		TransferVolume:      row.TransferVolume,
	}, nil
}
