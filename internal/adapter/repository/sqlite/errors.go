package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iho/optiledger/internal/domain"
)

func sqliteCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}

// isBusy reports lock contention that outlasted the busy timeout.
func isBusy(err error) bool {
	code := sqliteCode(err)
	return code&0xff == sqlite3.SQLITE_BUSY || code&0xff == sqlite3.SQLITE_LOCKED
}

func classify(op string, kind domain.EntityKind, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}

	return domain.NewStorageError(op, err)
}

func classifyInsert(op string, err error) error {
	if err == nil {
		return nil
	}

	switch code := sqliteCode(err); {
	case code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, code == sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return domain.NewStorageError(op, fmt.Errorf("duplicate key: %w", err))
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return domain.NewStorageError(op, fmt.Errorf("referenced row missing: %w", err))
	case code&0xff == sqlite3.SQLITE_CONSTRAINT:
		return domain.NewStorageError(op, fmt.Errorf("constraint violation: %w", err))
	}

	return domain.NewStorageError(op, err)
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
