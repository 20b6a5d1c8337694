package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var optionalVars = []string{
	"SERVER_HOST", "SERVER_PORT", "ADMIN_TOKEN", "TRUSTED_PROXIES",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_SSLMODE", "POSTGRES_MAX_CONNS",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"QUEUE_TIMEZONE", "TAKE_COOLDOWN", "WAIT_PER_TICKET", "STATUS_CACHE_TTL",
	"HOURLY_FROM", "HOURLY_TO", "LOG_LEVEL", "LOG_FORMAT", "AUTO_MIGRATE",
}

func setRequired(t *testing.T) {
	t.Helper()

	for _, k := range optionalVars {
		t.Setenv(k, "")
	}

	t.Setenv("POSTGRES_USER", "antrian")
	t.Setenv("POSTGRES_PASSWORD", "antrian")
	t.Setenv("POSTGRES_DB", "antrian")
}

func TestNew_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Server.AdminToken)
	assert.Nil(t, cfg.Server.TrustedProxies)

	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Zero(t, cfg.Postgres.MaxConns)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Zero(t, cfg.Redis.DB)

	assert.Equal(t, "Asia/Jakarta", cfg.Queue.Location.String())
	assert.Equal(t, 5*time.Minute, cfg.Queue.TakeCooldown)
	assert.Equal(t, 5*time.Minute, cfg.Queue.WaitPerTicket)
	assert.Equal(t, 2*time.Second, cfg.Queue.StatusCacheTTL)
	assert.Equal(t, 8, cfg.Queue.HourlyFrom)
	assert.Equal(t, 17, cfg.Queue.HourlyTo)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.AutoMigrate)
}

func TestNew_Overrides(t *testing.T) {
	setRequired(t)

	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ADMIN_TOKEN", "s3cret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, ,10.0.0.0/8")
	t.Setenv("POSTGRES_MAX_CONNS", "20")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("QUEUE_TIMEZONE", "Asia/Makassar")
	t.Setenv("TAKE_COOLDOWN", "90s")
	t.Setenv("STATUS_CACHE_TTL", "0s")
	t.Setenv("HOURLY_FROM", "7")
	t.Setenv("HOURLY_TO", "20")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("AUTO_MIGRATE", "true")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Server.AdminToken)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, cfg.Server.TrustedProxies)
	assert.Equal(t, int32(20), cfg.Postgres.MaxConns)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "Asia/Makassar", cfg.Queue.Location.String())
	assert.Equal(t, 90*time.Second, cfg.Queue.TakeCooldown)
	assert.Zero(t, cfg.Queue.StatusCacheTTL)
	assert.Equal(t, 7, cfg.Queue.HourlyFrom)
	assert.Equal(t, 20, cfg.Queue.HourlyTo)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.AutoMigrate)
}

func TestNew_MissingRequired(t *testing.T) {
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := New()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "missing "+key)
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"SERVER_PORT", "http", "invalid SERVER_PORT"},
		{"REDIS_DB", "one", "invalid REDIS_DB"},
		{"TAKE_COOLDOWN", "5 minutes", "invalid TAKE_COOLDOWN"},
		{"WAIT_PER_TICKET", "-1m", "negative duration"},
		{"QUEUE_TIMEZONE", "Mars/Olympus", "invalid QUEUE_TIMEZONE"},
		{"HOURLY_TO", "24", "invalid hourly range"},
		{"HOURLY_FROM", "18", "invalid hourly range"},
		{"AUTO_MIGRATE", "sometimes", "invalid AUTO_MIGRATE"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := New()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
