package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("CALLBACK_SECRET", "test-secret")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, 5*time.Second, cfg.Database.LedgerTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Callback.MaxAge)
	assert.Equal(t, time.Minute, cfg.Callback.MaxFutureSkew)
	assert.Equal(t, 6*time.Second, cfg.Callback.LatencyBudget)
	assert.Equal(t, "TEST", cfg.Callback.AcceptPrefix)
	assert.Equal(t, "env", cfg.Secrets.Backend)
	assert.Empty(t, cfg.Redis.Addr, "interception disabled by default")
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.Logger.Development)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("CALLBACK_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("CALLBACK_MAX_AGE_SECS", "120")
	t.Setenv("CALLBACK_LATENCY_BUDGET_MS", "2500")
	t.Setenv("AUTHORIZE_ACCEPT_PREFIX", "ORD-")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Callback.MaxAge)
	assert.Equal(t, 2500*time.Millisecond, cfg.Callback.LatencyBudget)
	assert.Equal(t, "ORD-", cfg.Callback.AcceptPrefix)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.Development)
}

func TestLoadFromEnv_SecretBackendValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "env backend requires secret",
			env:     map[string]string{"SECRET_BACKEND": "env"},
			wantErr: "CALLBACK_SECRET is required",
		},
		{
			name:    "local backend requires file",
			env:     map[string]string{"SECRET_BACKEND": "local"},
			wantErr: "CALLBACK_SECRET_FILE is required",
		},
		{
			name:    "aws backend requires secret name",
			env:     map[string]string{"SECRET_BACKEND": "aws"},
			wantErr: "AWS_SECRET_NAME is required",
		},
		{
			name:    "vault backend requires address and token",
			env:     map[string]string{"SECRET_BACKEND": "vault"},
			wantErr: "VAULT_ADDR and VAULT_TOKEN are required",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"SECRET_BACKEND": "consul"},
			wantErr: "unknown SECRET_BACKEND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"CALLBACK_SECRET", "CALLBACK_SECRET_FILE", "AWS_SECRET_NAME", "VAULT_ADDR", "VAULT_TOKEN"} {
				t.Setenv(key, "")
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "callbacks",
		Password: "pw",
		Database: "ledger",
		SSLMode:  "require",
	}

	assert.Equal(t, "postgres://callbacks:pw@db.internal:5433/ledger?sslmode=require", cfg.ConnectionString())
}
