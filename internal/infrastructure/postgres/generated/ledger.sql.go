package generated

import (
	"context"
)

const getLedgerTotals = `-- name: GetLedgerTotals :one
SELECT
    (SELECT COUNT(*) FROM accounts)::BIGINT AS accounts,
    (SELECT COUNT(*) FROM transfers)::BIGINT AS transfers,
    (SELECT COALESCE(SUM(balance), 0) FROM accounts)::BIGINT AS total_balance,
    (SELECT COALESCE(SUM(opening_balance), 0) FROM accounts)::BIGINT AS total_opening_balance,
    (SELECT COALESCE(SUM(amount), 0) FROM transfers)::BIGINT AS transfer_volume
`

type GetLedgerTotalsRow struct {
	Accounts            int64 `json:"accounts"`
	Transfers           int64 `json:"transfers"`
	TotalBalance        int64 `json:"total_balance"`
	TotalOpeningBalance int64 `json:"total_opening_balance"`
	TransferVolume      int64 `json:"transfer_volume"`
}

func (q *Queries) GetLedgerTotals(ctx context.Context) (GetLedgerTotalsRow, error) {
	row := q.db.QueryRow(ctx, getLedgerTotals)
	var i GetLedgerTotalsRow
	err := row.Scan(
		&i.Accounts,
		&i.Transfers,
		&i.TotalBalance,
		&i.TotalOpeningBalance,
		&i.TransferVolume,
	)
	return i, err
}
