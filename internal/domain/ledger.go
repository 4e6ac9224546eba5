package domain

// LedgerTotals summarises the stored ledger. Transfers only move money, so
// the sum of balances must always equal the sum of opening balances.
type LedgerTotals struct {
	Accounts            int64
	Transfers           int64
	TotalBalance        int64
	TotalOpeningBalance int64
	TransferVolume      int64
}

// Consistent reports whether no money was created or destroyed.
func (t LedgerTotals) Consistent() bool {
	return t.TotalBalance == t.TotalOpeningBalance
}
