package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "HTTP_ADDR", "JWT_ISSUER", "TELEGRAM_TOKEN",
		"REDIS_ADDR", "REDIS_PASSWORD", "REMINDER_INTERVAL", "SCHOOL_NAME", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("DB_DSN", "postgres://ledger@localhost/ledger")
	t.Setenv("JWT_SECRET", "secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.ReminderInterval)
	assert.Equal(t, "Oralise", cfg.SchoolName)
	assert.False(t, cfg.TelegramEnabled())
	assert.False(t, cfg.RedisEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REMINDER_INTERVAL", "15m")
	t.Setenv("SCHOOL_NAME", "Lingua")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.ReminderInterval)
	assert.Equal(t, "Lingua", cfg.SchoolName)
	assert.True(t, cfg.TelegramEnabled())
	assert.True(t, cfg.RedisEnabled())
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "missing dsn", key: "DB_DSN", val: ""},
		{name: "missing jwt secret", key: "JWT_SECRET", val: ""},
		{name: "bad interval", key: "REMINDER_INTERVAL", val: "often"},
		{name: "negative interval", key: "REMINDER_INTERVAL", val: "-5m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
