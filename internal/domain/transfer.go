package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transfer represents a money movement between two accounts. Transfers are
// append-only and carry no version.
type Transfer struct {
	ID            uuid.UUID
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        int64
	Currency      string
	CreatedAt     time.Time
}

func (t *Transfer) EntityID() uuid.UUID { return t.ID }
func (t *Transfer) Kind() EntityKind { return KindTransfer }

// Validate validates transfer request.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	if t.Amount <= 0 {
		return ErrInvalidAmount
	}

	return nil
}

// Involves reports whether the transfer moves money out of or into the account.
func (t *Transfer) Involves(accountID uuid.UUID) bool {
	return t.FromAccountID == accountID || t.ToAccountID == accountID
}

// TransferFilter selects one page of transfers ordered by creation time then ID.
// A nil AccountID matches every transfer.
type TransferFilter struct {
	AccountID *uuid.UUID
	Limit     int
	Offset    int
}

// Matches reports whether the transfer passes the account filter.
func (f TransferFilter) Matches(t *Transfer) bool {
	return f.AccountID == nil || t.Involves(*f.AccountID)
}
