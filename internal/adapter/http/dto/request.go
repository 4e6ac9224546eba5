package dto

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Currency string `json:"currency"`
	Balance  int64  `json:"balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Balance:  r.Balance,
		Currency: r.Currency,
	}
}

// CreateTransferRequest represents a request to create a transfer.
// Amount is expressed in minor units.
type CreateTransferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        int64  `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() (usecase.CreateTransferInput, error) {
	from, err := uuid.Parse(r.FromAccountID)
	if err != nil {
		return usecase.CreateTransferInput{}, fmt.Errorf("invalid from_account_id: %w", err)
	}

	to, err := uuid.Parse(r.ToAccountID)
	if err != nil {
		return usecase.CreateTransferInput{}, fmt.Errorf("invalid to_account_id: %w", err)
	}

	return usecase.CreateTransferInput{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        r.Amount,
	}, nil
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
