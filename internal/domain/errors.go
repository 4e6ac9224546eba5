package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// Unit of work errors
	ErrConflict             = errors.New("optimistic lock conflict")
	ErrNotFound             = errors.New("entity not found")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrConfiguration        = errors.New("configuration error")
	ErrRetriesExhausted     = errors.New("retries exhausted")
	ErrStorage              = errors.New("storage failure")

	// Transfer errors
	ErrSameAccount      = errors.New("cannot transfer to same account")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrCurrencyMismatch = errors.New("cannot transfer between different currencies")
	ErrBalanceOverflow  = errors.New("balance out of range")
)

// ConflictError reports a version mismatch detected by a conditional write.
type ConflictError struct {
	Kind    EntityKind
	ID      uuid.UUID
	Version int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("entity with id %s has been modified since version %d was read", e.ID, e.Version)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NewConflictError builds a ConflictError for a versioned entity.
func NewConflictError(e Versioned) *ConflictError {
	return &ConflictError{Kind: e.Kind(), ID: e.EntityID(), Version: e.EntityVersion()}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Kind EntityKind
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// RetriesExhaustedError is returned once a unit of work gave up after
// repeated conflicts. Last is the final conflict observed.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("failed to complete operation after %d attempts due to concurrent modifications: %v", e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Is(target error) bool { return target == ErrRetriesExhausted }

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err unless it already carries a domain classification.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsClassified reports whether err already belongs to the unit of work taxonomy.
func IsClassified(err error) bool {
	for _, target := range []error{
		ErrConflict, ErrNotFound, ErrUnsupportedOperation,
		ErrConfiguration, ErrRetriesExhausted, ErrStorage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether err is a transient version conflict.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) && !errors.Is(err, ErrRetriesExhausted)
}
