package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/optiledger/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when money was created or destroyed.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match opening balances")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency verifies that transfers only moved money: the sum of all
// balances must equal the sum of all opening balances. The totals are
// returned in both cases.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (domain.LedgerTotals, error) {
	totals, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return domain.LedgerTotals{}, err
	}

	if !totals.Consistent() {
		return totals, fmt.Errorf("%w: total balance %d, opening balance %d",
			ErrInconsistentLedger, totals.TotalBalance, totals.TotalOpeningBalance)
	}

	return totals, nil
}
