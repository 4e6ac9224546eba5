package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisrepo "github.com/iho/optiledger/internal/adapter/repository/redis"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	released      []string
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

func TestIdempotencyMiddleware_StoreErrorRejectsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, 0, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-err")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	assert.False(t, called, "handler should not be called when store errors")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestIdempotencyMiddleware_ReleasesKeyOnFailure(t *testing.T) {
	var updated bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-fail")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})).ServeHTTP(rr, req)

	assert.False(t, updated, "error responses must not be cached")
	assert.Equal(t, []string{"key-fail"}, store.released)
}

func TestIdempotencyMiddleware_ReleasesKeyWhenHandlerPanics(t *testing.T) {
	var updated bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-panic")
	rr := httptest.NewRecorder()

	handler := Recovery(zerolog.Nop())(mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		panic("handler crashed")
	})))
	handler.ServeHTTP(rr, req)

	assert.False(t, updated, "a crashed request must not be cached")
	assert.Equal(t, []string{"key-panic"}, store.released)
}

func TestIdempotencyMiddleware_InFlightKeyConflicts(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(processingMarker), nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	req.Header.Set(IdempotencyKeyHeader, "busy")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run while the key is in flight")
	})).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestIdempotencyMiddleware_SkipsReadsAndMissingKeys(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store must not be consulted")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	get := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	get.Header.Set(IdempotencyKeyHeader, "k")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, get)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/accounts", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestIdempotencyMiddleware_ReplaysWithRedis(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	mw := NewIdempotencyMiddleware(redisrepo.NewIdempotencyStore(client), time.Minute, zerolog.Nop())

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"call":%d}`, calls)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewBufferString(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "transfer-1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code)

	second := send()
	assert.Equal(t, 1, calls)
	assert.Equal(t, "true", second.Header().Get(IdempotencyReplayHeader))
	assert.JSONEq(t, `{"call":1}`, second.Body.String())
}
