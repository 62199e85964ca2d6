package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite:jobhunt.sqlite3", cfg.Database.URL)
	assert.Equal(t, "localhost:8000", cfg.Server.Addr())
	assert.False(t, cfg.Auth.Required)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JOBHUNT_SERVER_PORT", "9090")
	t.Setenv("JOBHUNT_AUTH_REQUIRED", "true")
	t.Setenv("JOBHUNT_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Auth.Required)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDatabaseURLWins(t *testing.T) {
	t.Setenv("JOBHUNT_DATABASE_URL", "sqlite:from-config.sqlite3")
	t.Setenv("DATABASE_URL", "postgres://db.internal/jobhunt")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://db.internal/jobhunt", cfg.Database.URL)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("JOBHUNT_SERVER_PORT", "70000")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid server port")
}

func TestLoadInvalidRateLimit(t *testing.T) {
	t.Setenv("JOBHUNT_RATE_LIMIT_ENABLED", "true")
	t.Setenv("JOBHUNT_RATE_LIMIT_REQUESTS", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "rate limit")
}
