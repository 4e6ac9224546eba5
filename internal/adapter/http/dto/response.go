package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             uuid.UUID `json:"id"`
	Currency       string    `json:"currency"`
	Balance        int64     `json:"balance"`
	OpeningBalance int64     `json:"opening_balance"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Currency:       a.Currency,
		Balance:        a.Balance,
		OpeningBalance: a.OpeningBalance,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse is a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID            uuid.UUID `json:"id"`
	FromAccountID uuid.UUID `json:"from_account_id"`
	ToAccountID   uuid.UUID `json:"to_account_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Currency:      t.Currency,
		CreatedAt:     t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// ListTransfersResponse is a page of transfers.
type ListTransfersResponse struct {
	Transfers []*TransferResponse `json:"transfers"`
	Total     int64               `json:"total"`
}

// ConsistencyResponse reports the outcome of a ledger consistency check.
type ConsistencyResponse struct {
	Status              string `json:"status"`
	Consistent          bool   `json:"consistent"`
	Accounts            int64  `json:"accounts"`
	Transfers           int64  `json:"transfers"`
	TotalBalance        int64  `json:"total_balance"`
	TotalOpeningBalance int64  `json:"total_opening_balance"`
	TransferVolume      int64  `json:"transfer_volume"`
	Message             string `json:"message,omitempty"`
}

// ConsistencyFromDomain converts ledger totals to a response.
func ConsistencyFromDomain(t domain.LedgerTotals) *ConsistencyResponse {
	status := "consistent"
	if !t.Consistent() {
		status = "inconsistent"
	}
	return &ConsistencyResponse{
		Status:              status,
		Consistent:          t.Consistent(),
		Accounts:            t.Accounts,
		Transfers:           t.Transfers,
		TotalBalance:        t.TotalBalance,
		TotalOpeningBalance: t.TotalOpeningBalance,
		TransferVolume:      t.TransferVolume,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
