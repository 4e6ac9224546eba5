package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Account represents a ledger account that can hold a balance.
type Account struct {
	ID             uuid.UUID
	Currency       string
	Balance        int64
	OpeningBalance int64
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount creates an account at version 0.
func NewAccount(id uuid.UUID, balance int64, currency string, now time.Time) *Account {
	return &Account{
		ID:             id,
		Currency:       currency,
		Balance:        balance,
		OpeningBalance: balance,
		Version:        0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (a *Account) EntityID() uuid.UUID { return a.ID }
func (a *Account) Kind() EntityKind { return KindAccount }
func (a *Account) EntityVersion() int64 { return a.Version }

// WithBalance returns a copy carrying the new balance and the version it was read at.
func (a *Account) WithBalance(balance int64) *Account {
	c := *a
	c.Balance = balance
	return &c
}

// MaxBalance bounds the magnitude of any balance in minor units. Keeping
// every balance within it leaves room to sum many accounts in an int64.
const MaxBalance int64 = 1_000_000_000_000_000

// Debit returns a copy with amount subtracted. No floor is enforced below
// zero; the result only has to stay within MaxBalance.
func (a *Account) Debit(amount int64) (*Account, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	return a.shift(-amount)
}

// Credit returns a copy with amount added.
func (a *Account) Credit(amount int64) (*Account, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	return a.shift(amount)
}

func (a *Account) shift(delta int64) (*Account, error) {
	if delta > MaxBalance || delta < -MaxBalance {
		return nil, fmt.Errorf("%w: amount %d exceeds %d", ErrBalanceOverflow, delta, MaxBalance)
	}
	// |delta| <= MaxBalance, so a sum that wraps lands far outside the range
	// and is rejected below as well.
	next := a.Balance + delta
	if next > MaxBalance || next < -MaxBalance {
		return nil, fmt.Errorf("%w: account %s would reach %d", ErrBalanceOverflow, a.ID, next)
	}
	return a.WithBalance(next), nil
}
