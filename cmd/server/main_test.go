package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/optiledger/internal/infrastructure/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("DATABASE_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("REDIS_URL", "")
	t.Setenv("OUTBOX_INTERVAL", "10ms")
	t.Setenv("UOW_BACKOFF_INITIAL", "0s")
	t.Setenv("UOW_BACKOFF_MAX", "0s")

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func post(t *testing.T, h http.Handler, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNewAppWithSQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	ctx := context.Background()

	a, err := newApp(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NotNil(t, a.publisher)

	assert.Equal(t, http.StatusOK, get(a.handler, "/ready").Code)

	var ids []string
	for _, balance := range []string{"1000", "0"} {
		rec := post(t, a.handler, "/api/v1/accounts/", `{"currency":"EUR","balance":`+balance+`}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var account struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
		ids = append(ids, account.ID)
	}

	rec := post(t, a.handler, "/api/v1/transfers/",
		`{"from_account_id":"`+ids[0]+`","to_account_id":"`+ids[1]+`","amount":300}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = get(a.handler, "/api/v1/accounts/"+ids[0])
	require.Equal(t, http.StatusOK, rec.Code)
	var from struct {
		Balance int64 `json:"balance"`
		Version int64 `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &from))
	assert.Equal(t, int64(700), from.Balance)
	assert.Equal(t, int64(1), from.Version)

	assert.Equal(t, http.StatusOK, get(a.handler, "/api/v1/ledger/consistency").Code)

	// Two account.created events and one transfer.created event.
	published, err := a.publisher.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, published)

	metricsBody := get(a.handler, "/metrics").Body.String()
	assert.Contains(t, metricsBody, "optiledger_outbox_events_published_total 3")
}

func TestNewAppWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := sqliteConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := newApp(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	first := post(t, a.handler, "/api/v1/accounts/", `{"currency":"USD","balance":5}`, "Idempotency-Key", "acct-1")
	require.Equal(t, http.StatusCreated, first.Code)

	replay := post(t, a.handler, "/api/v1/accounts/", `{"currency":"USD","balance":5}`, "Idempotency-Key", "acct-1")
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replay"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	rec := get(a.handler, "/api/v1/accounts/")
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	var ready map[string]string
	require.NoError(t, json.Unmarshal(get(a.handler, "/ready").Body.Bytes(), &ready))
	assert.Equal(t, "ok", ready["redis"])
}

func TestNewAppRedisUnavailable(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.RedisURL = "redis://127.0.0.1:1"

	_, err := newApp(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.HTTPPort = "0"
	cfg.RateLimitRPS = 50
	cfg.RateLimitIdle = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
