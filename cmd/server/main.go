package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/iho/optiledger/internal/infrastructure/config"
	"github.com/iho/optiledger/internal/infrastructure/logger"
)

const serviceName = "optiledger"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: serviceName})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg, log.Logger)
	if err != nil {
		return err
	}
	defer a.Close()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	if a.publisher != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			a.publisher.Start(workerCtx)
		}()
	}
	if a.rateLimiter != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			a.rateLimiter.RunSweeper(workerCtx, cfg.RateLimitIdle, cfg.RateLimitIdle)
		}()
	}
	stopWorkers := func() {
		cancelWorkers()
		workers.Wait()
	}

	server := newHTTPServer(cfg, a.handler)
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("driver", cfg.DatabaseDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		stopWorkers()
		return err
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)

	stopWorkers()

	if err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
