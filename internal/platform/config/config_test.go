package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PRECHECK_ADDR", "PRECHECK_SIGNING_KEY", "REDIS_URL", "PRECHECK_ENVIRONMENT", "PRECHECK_SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, devSigningKey, cfg.SigningKey)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 0.9, cfg.Payment.SuccessRate)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PRECHECK_ADDR", ":9090")
	t.Setenv("PRECHECK_SESSION_TTL", "30m")
	t.Setenv("PRECHECK_PAYMENT_SUCCESS_RATE", "1")
	t.Setenv("PRECHECK_PAYMENT_SEED", "42")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_POOL_SIZE", "25")
	t.Setenv("PRECHECK_RATELIMIT_DISABLED", "true")
	t.Setenv("PRECHECK_RATELIMIT_CHECKOUT_PER_MINUTE", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 1.0, cfg.Payment.SuccessRate)
	assert.Equal(t, int64(42), cfg.Payment.Seed)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
	assert.True(t, cfg.RateLimit.Disabled)
	assert.Equal(t, 3, cfg.RateLimit.CheckoutPerMinute)
	assert.Equal(t, 120, cfg.RateLimit.WritePerMinute)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Run("duration", func(t *testing.T) {
		t.Setenv("PRECHECK_SESSION_TTL", "forever")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "PRECHECK_SESSION_TTL")
	})
	t.Run("success rate", func(t *testing.T) {
		t.Setenv("PRECHECK_PAYMENT_SUCCESS_RATE", "1.5")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "between 0 and 1")
	})
	t.Run("production without signing key", func(t *testing.T) {
		t.Setenv("PRECHECK_ENVIRONMENT", "production")
		t.Setenv("PRECHECK_SIGNING_KEY", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "PRECHECK_SIGNING_KEY")
	})
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PRECHECK_DEFAULT_LOCALE=zh\n"), 0o600))
	t.Setenv("PRECHECK_DEFAULT_LOCALE", "")
	require.NoError(t, os.Unsetenv("PRECHECK_DEFAULT_LOCALE"))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "zh", cfg.DefaultLocale)
}
