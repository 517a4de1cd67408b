package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pfm/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.App.Port)
	assert.Equal(t, slog.LevelInfo, cfg.App.LogLevel)
	assert.Equal(t, 10, cfg.Quota.MonthlyLimit)
	assert.False(t, cfg.Quota.CountPremium)
	assert.Equal(t, int64(35282), cfg.Payment.PremiumPrice)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)

	pool := cfg.Pool()
	assert.Equal(t, 25, pool.MaxOpenConns)
	assert.Equal(t, 5, pool.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, pool.ConnMaxLifetime)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "RAZORPAY_KEY_SECRET")
}

func TestLoadClient_DoesNotNeedPaymentSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("RAZORPAY_KEY_SECRET", "")

	cfg, err := config.LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "jwt", cfg.Auth.JWTSecret)

	_, err = config.Load()
	assert.ErrorContains(t, err, "RAZORPAY_KEY_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("QUOTA_MONTHLY_LIMIT", "25")
	t.Setenv("QUOTA_COUNT_PREMIUM", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.App.LogLevel)
	assert.Equal(t, 25, cfg.Quota.MonthlyLimit)
	assert.True(t, cfg.Quota.CountPremium)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	type testCase struct {
		name string
		key  string
		val  string
	}

	tests := []testCase{
		{name: "zero quota", key: "QUOTA_MONTHLY_LIMIT", val: "0"},
		{name: "zero price", key: "PREMIUM_PRICE_MINOR", val: "0"},
		{name: "bad log level", key: "LOG_LEVEL", val: "loud"},
		{name: "bad port", key: "PORT", val: "http"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.val)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestConnectionString(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_USER", "pfm")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "ledger")
	t.Setenv("DB_SSLMODE", "require")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://pfm:pw@db:6543/ledger?sslmode=require", cfg.ConnectionString())
}
