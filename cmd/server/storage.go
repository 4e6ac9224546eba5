package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/optiledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/optiledger/internal/adapter/repository/postgres"
	sqliteRepo "github.com/iho/optiledger/internal/adapter/repository/sqlite"
	"github.com/iho/optiledger/internal/infrastructure/config"
	"github.com/iho/optiledger/internal/infrastructure/postgres"
	"github.com/iho/optiledger/internal/infrastructure/sqlite"
	"github.com/iho/optiledger/internal/uow"
	"github.com/iho/optiledger/internal/usecase"
)

// storage bundles the repositories of one backend.
type storage struct {
	txManager uow.TransactionManager
	accounts  usecase.AccountRepository
	transfers usecase.TransferRepository
	outbox    usecase.OutboxRepository
	ledger    usecase.LedgerRepository
	ping      handler.Checker
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return nil, err
	}
	logger.Info().Msg("connected to postgres")

	return &storage{
		txManager: postgresRepo.NewTxManager(pool),
		accounts:  postgresRepo.NewAccountRepository(pool),
		transfers: postgresRepo.NewTransferRepository(pool),
		outbox:    postgresRepo.NewOutboxRepository(pool),
		ledger:    postgresRepo.NewLedgerRepository(pool),
		ping:      pool.Ping,
		close:     pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	if err := sqlite.RunMigrations(ctx, cfg.SQLitePath, logger); err != nil {
		return nil, err
	}

	db, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.SQLiteBusy)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite database")

	return &storage{
		txManager: sqliteRepo.NewTxManager(db),
		accounts:  sqliteRepo.NewAccountRepository(db),
		transfers: sqliteRepo.NewTransferRepository(db),
		outbox:    sqliteRepo.NewOutboxRepository(db),
		ledger:    sqliteRepo.NewLedgerRepository(db),
		ping:      db.PingContext,
		close:     func() { db.Close() },
	}, nil
}
