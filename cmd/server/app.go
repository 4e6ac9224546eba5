package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/optiledger/internal/adapter/http"
	"github.com/iho/optiledger/internal/adapter/http/handler"
	"github.com/iho/optiledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/optiledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/optiledger/internal/adapter/repository/redis"
	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/infrastructure/config"
	"github.com/iho/optiledger/internal/infrastructure/eventpublisher"
	applog "github.com/iho/optiledger/internal/infrastructure/logger"
	"github.com/iho/optiledger/internal/infrastructure/metrics"
	"github.com/iho/optiledger/internal/infrastructure/redis"
	"github.com/iho/optiledger/internal/uow"
	"github.com/iho/optiledger/internal/usecase"
)

// app is the fully wired service.
type app struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	registry, err := uow.NewRegistry(
		uow.Bind[*domain.Account](domain.KindAccount, store.accounts),
		uow.Bind[*domain.Transfer](domain.KindTransfer, store.transfers),
		uow.Bind[*domain.OutboxEvent](domain.KindOutboxEvent, store.outbox),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build repository registry: %w", err)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promRegistry)

	unitOfWork := uow.New(store.txManager, registry,
		uow.WithMaxAttempts(cfg.UoWMaxAttempts),
		uow.WithBackoff(cfg.UoWBackoffInitial, cfg.UoWBackoffMax),
		uow.WithRecorder(m),
		uow.WithLogger(applog.Component(logger, "uow")),
	)

	idGen := postgresRepo.NewULIDGenerator()
	accountUC := usecase.NewAccountUseCase(unitOfWork, store.accounts, idGen, cfg.OutboxEnabled)
	transferUC := usecase.NewTransferUseCase(unitOfWork, store.accounts, store.transfers, idGen, cfg.OutboxEnabled)
	ledgerUC := usecase.NewLedgerUseCase(store.ledger)

	checks := map[string]handler.Checker{"database": store.ping}

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(handler.InstrumentAccounts(accountUC, m)),
		TransferHandler: handler.NewTransferHandler(handler.InstrumentTransfers(transferUC, m)),
		LedgerHandler:   handler.NewLedgerHandler(ledgerUC),
		Logger:          logger,
		Metrics:         m,
		Gatherer:        promRegistry,
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		routerCfg.RateLimiter = a.rateLimiter
	}

	var eventSink eventpublisher.Publisher = eventpublisher.NewLogPublisher(logger)

	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL,
			redis.WithPingTimeout(cfg.RedisPingTimeout),
			redis.WithPoolSize(cfg.RedisPoolSize),
		)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { redisClient.Close() })
		logger.Info().Msg("connected to redis")

		routerCfg.Idempotency = middleware.NewIdempotencyMiddleware(
			redisRepo.NewIdempotencyStore(redisClient), cfg.IdempotencyTTL, logger)
		eventSink = redisRepo.NewPublisher(redisClient, cfg.EventsChannelPrefix)
		checks["redis"] = redis.Pinger(redisClient, redis.WithPingTimeout(cfg.RedisPingTimeout))
	}

	routerCfg.HealthHandler = handler.NewHealthHandler(checks)
	a.handler = httpAdapter.NewRouter(routerCfg)

	if cfg.OutboxEnabled {
		a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			Outbox:    store.outbox,
			Publisher: countingSink{Publisher: eventSink, m: m},
			Logger:    logger,
			BatchSize: cfg.OutboxBatchSize,
			Interval:  cfg.OutboxInterval,
		})
	}

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type countingSink struct {
	eventpublisher.Publisher
	m *metrics.Metrics
}

func (s countingSink) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.Publisher.Publish(ctx, event); err != nil {
		return err
	}
	s.m.EventsPublished.Inc()
	return nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           h,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
}

