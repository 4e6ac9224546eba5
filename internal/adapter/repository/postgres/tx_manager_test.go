package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
)

func TestTxManagerLifecycle(t *testing.T) {
	tests := []struct {
		name   string
		expect func(mock pgxmock.PgxPoolIface)
		finish func(ctx context.Context, tx uow.Transaction) error
		err    error
	}{
		{
			name: "commit",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			finish: func(ctx context.Context, tx uow.Transaction) error { return tx.Commit(ctx) },
		},
		{
			name: "rollback",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			finish: func(ctx context.Context, tx uow.Transaction) error { return tx.Rollback(ctx) },
		},
		{
			name: "rollback after finished transaction",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(pgx.ErrTxClosed)
			},
			finish: func(ctx context.Context, tx uow.Transaction) error { return tx.Rollback(ctx) },
		},
		{
			name: "commit failure surfaces",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errCommit)
			},
			finish: func(ctx context.Context, tx uow.Transaction) error { return tx.Commit(ctx) },
			err:    errCommit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mock := newMockPool(t)
			tt.expect(mock)

			tx, err := newTxManagerWithPool(mock).Begin(ctx)
			require.NoError(t, err)
			require.NotNil(t, tx)

			err = tt.finish(ctx, tx)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assertExpectations(t, mock)
		})
	}
}

var errCommit = errors.New("connection reset during commit")

func TestTxManagerBeginFailure(t *testing.T) {
	mock := newMockPool(t)
	boom := errors.New("too many connections")
	mock.ExpectBegin().WillReturnError(boom)

	tx, err := newTxManagerWithPool(mock).Begin(context.Background())
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "pgx begin")
}

type sqliteStyleTx struct{}

func (sqliteStyleTx) Commit(context.Context) error   { return nil }
func (sqliteStyleTx) Rollback(context.Context) error { return nil }

func TestQueriesForRequiresPgxTransaction(t *testing.T) {
	_, err := queriesFor(sqliteStyleTx{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	mock := newMockPool(t)
	mock.ExpectBegin()
	tx, err := newTxManagerWithPool(mock).Begin(context.Background())
	require.NoError(t, err)

	q, err := queriesFor(tx)
	require.NoError(t, err)
	assert.NotNil(t, q)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	assert.NoError(t, pool.ExpectationsWereMet())
}
