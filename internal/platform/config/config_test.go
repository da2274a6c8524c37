package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Consent.Store)
	assert.Equal(t, 24*time.Hour, cfg.Consent.SweepInterval)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.IdleTTL)
	assert.False(t, cfg.Mail.Configured())
	assert.False(t, cfg.Production())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ADDRESS_HASH_KEY", "secret")
	t.Setenv("EMAIL_HOST", "smtp.example.com")
	t.Setenv("EMAIL_PORT", "465")
	t.Setenv("EMAIL_USER", "mailer@example.com")
	t.Setenv("EMAIL_PASS", "pw")
	t.Setenv("CONSENT_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SWEEP_INTERVAL", "1h")
	t.Setenv("RATE_LIMIT_IDLE_TTL", "90s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.True(t, cfg.Mail.Configured())
	assert.Equal(t, "mailer@example.com", cfg.Mail.From, "from falls back to the SMTP user")
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.Equal(t, StoreRedis, cfg.Consent.Store)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.Consent.SweepInterval)
	assert.Equal(t, 90*time.Second, cfg.RateLimit.IdleTTL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\nmail:\n  contact_to: me@example.com\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "me@example.com", cfg.Mail.ContactTo)
}

func TestValidate(t *testing.T) {
	t.Run("redis store without url", func(t *testing.T) {
		t.Setenv("CONSENT_STORE", "redis")
		_, err := Load("")
		assert.ErrorContains(t, err, "REDIS_URL")
	})

	t.Run("postgres store without url", func(t *testing.T) {
		t.Setenv("CONSENT_STORE", "postgres")
		_, err := Load("")
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("CONSENT_STORE", "sqlite")
		_, err := Load("")
		assert.ErrorContains(t, err, "unknown consent store")
	})

	t.Run("production requires an address key", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := Load("")
		assert.ErrorContains(t, err, "ADDRESS_HASH_KEY")
	})

	t.Run("zero idle ttl from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ratelimit:\n  idle_ttl: 0s\n"), 0o600))
		_, err := Load(path)
		assert.ErrorContains(t, err, "idle ttl must be positive")
	})

	t.Run("zero idle ttl is rejected even when limiting is off", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_DISABLED", "true")
		t.Setenv("RATE_LIMIT_IDLE_TTL", "0s")
		_, err := Load("")
		assert.ErrorContains(t, err, "idle ttl must be positive")
	})
}
