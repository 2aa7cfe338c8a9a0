package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/stride")
	t.Setenv("ENCRYPTION_KEY", "passphrase")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 15*time.Minute, cfg.ImportLockTTL)
	assert.Equal(t, 30*time.Second, cfg.Provider.HTTPTimeout)
	assert.Zero(t, cfg.Provider.RequestsPerMinute)
	assert.Nil(t, cfg.Provider.Scopes)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PROVIDER_SCOPES", "read, activity:read_all,,")
	t.Setenv("PROVIDER_HTTP_TIMEOUT", "45")
	t.Setenv("PROVIDER_REQUESTS_PER_MINUTE", "90")
	t.Setenv("IMPORT_LOCK_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, []string{"read", "activity:read_all"}, cfg.Provider.Scopes)
	assert.Equal(t, 45*time.Second, cfg.Provider.HTTPTimeout)
	assert.Equal(t, 90, cfg.Provider.RequestsPerMinute)
	assert.Equal(t, 2*time.Minute, cfg.ImportLockTTL)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENCRYPTION_KEY", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), "ENCRYPTION_KEY is required")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestLoad_NegativePacing(t *testing.T) {
	setRequired(t)
	t.Setenv("PROVIDER_REQUESTS_PER_MINUTE", "-1")

	_, err := Load()
	assert.ErrorContains(t, err, "PROVIDER_REQUESTS_PER_MINUTE")
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Second, getEnvDuration("SOME_TIMEOUT", time.Second))
}
