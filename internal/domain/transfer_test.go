package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestTransfer_Validate(t *testing.T) {
	acc1 := uuid.New()
	acc2 := uuid.New()

	tests := []struct {
		name        string
		fromID      uuid.UUID
		toID        uuid.UUID
		amount      int64
		expectError error
	}{
		{
			name:        "valid transfer",
			fromID:      acc1,
			toID:        acc2,
			amount:      100,
			expectError: nil,
		},
		{
			name:        "same account",
			fromID:      acc1,
			toID:        acc1,
			amount:      100,
			expectError: ErrSameAccount,
		},
		{
			name:        "zero amount",
			fromID:      acc1,
			toID:        acc2,
			amount:      0,
			expectError: ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			fromID:      acc1,
			toID:        acc2,
			amount:      -100,
			expectError: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transfer := &Transfer{
				FromAccountID: tt.fromID,
				ToAccountID:   tt.toID,
				Amount:        tt.amount,
			}

			err := transfer.Validate()

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && err != tt.expectError {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestTransferFilter_Matches(t *testing.T) {
	from, to, other := uuid.New(), uuid.New(), uuid.New()
	transfer := &Transfer{FromAccountID: from, ToAccountID: to}

	tests := []struct {
		name    string
		account *uuid.UUID
		want    bool
	}{
		{name: "no account", account: nil, want: true},
		{name: "source", account: &from, want: true},
		{name: "destination", account: &to, want: true},
		{name: "unrelated", account: &other, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (TransferFilter{AccountID: tt.account}).Matches(transfer); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
