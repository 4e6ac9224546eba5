package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoolConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         PoolConfig
		maxConns    int32
		minConns    int32
		lifetime    time.Duration
		expectError bool
	}{
		{
			name:     "overrides applied",
			cfg:      PoolConfig{DatabaseURL: "postgres://ledger@localhost:5432/ledger", MaxConns: 7, MinConns: 2, MaxConnLifetime: time.Minute},
			maxConns: 7,
			minConns: 2,
			lifetime: time.Minute,
		},
		{
			name:     "url settings kept when overrides are zero",
			cfg:      PoolConfig{DatabaseURL: "postgres://ledger@localhost:5432/ledger?pool_max_conns=3&pool_max_conn_lifetime=30s"},
			maxConns: 3,
			lifetime: 30 * time.Second,
		},
		{
			name:        "invalid url",
			cfg:         PoolConfig{DatabaseURL: "postgres://ledger@localhost:bad-port/ledger"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := parsePoolConfig(tt.cfg)
			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.maxConns, config.MaxConns)
			assert.Equal(t, tt.minConns, config.MinConns)
			assert.Equal(t, tt.lifetime, config.MaxConnLifetime)
		})
	}
}

func TestNewPoolPingFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewPool(ctx, "postgres://ledger@127.0.0.1:1/ledger?connect_timeout=1", 1, 0)
	assert.ErrorContains(t, err, "failed to ping database")
}
