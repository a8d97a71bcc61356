package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "banking-core", cfg.JWTIssuer)
	assert.Equal(t, "banking-api", cfg.JWTAudience)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.LedgerMaxAmount.Equal(decimal.NewFromInt(1_000_000)))
	assert.Equal(t, 24*time.Hour, cfg.ReconciliationInterval)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 10, cfg.PublicRateLimitRPS)
	assert.Equal(t, 100, cfg.AuthRateLimitRPS)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LEDGER_MAX_AMOUNT", "500.25")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("RECONCILIATION_INTERVAL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.True(t, cfg.LedgerMaxAmount.Equal(decimal.RequireFromString("500.25")))
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, time.Hour, cfg.ReconciliationInterval)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing_jwt_secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "short_jwt_secret", env: map[string]string{"JWT_SECRET": "too-short"}},
		{name: "bad_ledger_max", env: map[string]string{"JWT_SECRET": testSecret, "LEDGER_MAX_AMOUNT": "lots"}},
		{name: "negative_ledger_max", env: map[string]string{"JWT_SECRET": testSecret, "LEDGER_MAX_AMOUNT": "-5"}},
		{name: "bad_expiry", env: map[string]string{"JWT_SECRET": testSecret, "JWT_EXPIRY": "soon"}},
		{name: "bad_interval", env: map[string]string{"JWT_SECRET": testSecret, "RECONCILIATION_INTERVAL": "yearly"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
