package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/optiledger/internal/domain"
)

// PostgreSQL error codes.
const (
	pgErrUniqueViolation      = "23505"
	pgErrForeignKeyViolation  = "23503"
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// classify maps driver errors onto the unit of work taxonomy. A missing row
// is reported as not found, everything else becomes a storage error.
func classify(op string, kind domain.EntityKind, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}

	return domain.NewStorageError(op, err)
}

// isConcurrencyFailure reports errors the server raises when two
// transactions raced; they are retried like a version conflict.
func isConcurrencyFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgErrDeadlock || pgErr.Code == pgErrSerializationFailure
}

// classifyInsert explains constraint violations raised by an insert.
func classifyInsert(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return domain.NewStorageError(op, fmt.Errorf("duplicate key %s: %w", pgErr.ConstraintName, err))
		case pgErrForeignKeyViolation:
			return domain.NewStorageError(op, fmt.Errorf("referenced row missing (%s): %w", pgErr.ConstraintName, err))
		}
	}

	return domain.NewStorageError(op, err)
}
