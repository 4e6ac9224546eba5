package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrAmountTooLarge  = errors.New("amount exceeds maximum allowed")
)

// MaxTransferAmount bounds a single transfer in minor units.
const MaxTransferAmount int64 = 1_000_000_000_000

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

// NormalizeCurrency upper-cases and validates a currency code.
func NormalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return "", fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return currency, nil
}

// ValidateAmount validates a transfer amount.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if amount > MaxTransferAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxTransferAmount)
	}

	return nil
}
