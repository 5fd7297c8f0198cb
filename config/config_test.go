package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_LOCK_MAX_ATTEMPTS", "3")
	t.Setenv("WORKER_CACHE_TTL", "90s")
	t.Setenv("ENV", "production")

	LoadConfig()

	assert.Equal(t, "9090", AppConfig.AppPort)
	assert.Equal(t, 3, AppConfig.AppLockMaxAttempts)
	assert.Equal(t, 90*time.Second, AppConfig.WorkerCacheTTL)
	assert.Equal(t, "sewa", AppConfig.DatabaseName)
	assert.Equal(t, 15*time.Minute, AppConfig.AppLockCooldown)
	assert.Equal(t, 2, AppConfig.RedisQueueDB)
	assert.True(t, IsProduction())
}
