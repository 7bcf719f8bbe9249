package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "DATA_DIR", "AUTO_SAVE", "SQL_DSN", "LOG_FILE", "NOTIFY_PROVIDER"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, "data", cfg.DataDir)
	assert.True(t, cfg.AutoSave)
	assert.Equal(t, "data/booking.db", cfg.SQLDSN)
	assert.Equal(t, "booking_system.log", cfg.LogFile)
	assert.Equal(t, "none", cfg.NotifyProvider)
	assert.Equal(t, 30*time.Second, cfg.BreakerCooldown)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("AUTO_SAVE", "false")
	t.Setenv("DATA_DIR", "/var/lib/booking")
	t.Setenv("NOTIFY_BREAKER_MAX_FAILURES", "not-a-number")
	t.Setenv("NOTIFY_BREAKER_COOLDOWN", "bogus")

	cfg := LoadConfig()

	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.False(t, cfg.AutoSave)
	assert.Equal(t, "/var/lib/booking/booking.db", cfg.SQLDSN)
	assert.Equal(t, 3, cfg.BreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerCooldown)
}
