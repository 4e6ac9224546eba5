// Package sqlite opens the embedded SQLite store used for single-node
// deployments and database-backed tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is how long a writer waits for the database lock.
const DefaultBusyTimeout = 5 * time.Second

// DSN builds a connection string with WAL journaling, foreign keys and
// BEGIN IMMEDIATE transactions so writers queue on the lock up front.
func DSN(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}

	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")

	return "file:" + path + "?" + q.Encode()
}

// Open opens the database at path and verifies the connection.
func Open(ctx context.Context, path string, busyTimeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return db, nil
}
