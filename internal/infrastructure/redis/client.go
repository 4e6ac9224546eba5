package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 5 * time.Second

type options struct {
	pingTimeout time.Duration
	poolSize    int
}

// Option tunes the client built by NewClient.
type Option func(*options)

// WithPingTimeout bounds the startup ping and every readiness ping.
func WithPingTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pingTimeout = d
		}
	}
}

// WithPoolSize overrides the pool size parsed from the URL. Zero keeps it.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// NewClient parses redisURL, applies opts and fails unless the server
// answers a ping within the ping timeout.
func NewClient(ctx context.Context, redisURL string, opts ...Option) (*redis.Client, error) {
	o := options{pingTimeout: defaultPingTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	ro, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if o.poolSize > 0 {
		ro.PoolSize = o.poolSize
	}

	client := redis.NewClient(ro)
	if err := ping(ctx, client, o.pingTimeout); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", ro.Addr, err)
	}

	return client, nil
}

// Pinger adapts a client to the readiness check signature.
func Pinger(client *redis.Client, opts ...Option) func(context.Context) error {
	o := options{pingTimeout: defaultPingTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	return func(ctx context.Context) error {
		return ping(ctx, client, o.pingTimeout)
	}
}

func ping(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return client.Ping(ctx).Err()
}
