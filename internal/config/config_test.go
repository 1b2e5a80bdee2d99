package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.BalanceCacheTTL)
	assert.Equal(t, 50, cfg.HistoryDefaultLimit)
	assert.Equal(t, "0 3 * * *", cfg.ReconcileSchedule)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:ledger.db")
	t.Setenv("BALANCE_CACHE_TTL", "2m")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:ledger.db", cfg.DatabaseDSN)
	assert.Equal(t, 2*time.Minute, cfg.BalanceCacheTTL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "DB_DRIVER", "oracle"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"idle above open", "DB_MAX_IDLE_CONNS", "100"},
		{"zero history limit", "HISTORY_DEFAULT_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_PlaceholderSecret(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		dsn     string
		wantErr bool
	}{
		{"mysql", "mysql", "root:root@tcp(localhost:3306)/taskledger", true},
		{"postgres", "postgres", "host=localhost dbname=taskledger", true},
		{"sqlite", "sqlite", "file:ledger.db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DRIVER", tt.driver)
			t.Setenv("DATABASE_DSN", tt.dsn)

			cfg, err := Load()
			if tt.wantErr {
				assert.ErrorContains(t, err, "JWT_SECRET must be set")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, placeholderJWTSecret, cfg.JWTSecret)
		})
	}
}
