package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_ADMIN_EMAIL", "")
	t.Setenv("BOOKING_STRICT_TRANSITIONS", "")
	t.Setenv("APP_HOST", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "")
	t.Setenv("AUTH_ADMIN_MAX_LOGIN_ATTEMPTS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.False(t, cfg.Booking.StrictTransitions)
	assert.False(t, cfg.Admin.Configured())
	assert.Equal(t, 5, cfg.Admin.MaxLoginAttempts)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("BOOKING_STRICT_TRANSITIONS", "true")
	t.Setenv("AUTH_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("AUTH_ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("AUTH_ADMIN_SESSION_TTL_MINUTES", "30")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.Booking.StrictTransitions)
	assert.True(t, cfg.Admin.Configured())
	assert.Equal(t, 30*time.Minute, cfg.Admin.SessionTTL())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	_, err := Load()
	assert.Error(t, err)
}

func TestRequestTimeoutDisabled(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
}
