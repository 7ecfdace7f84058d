package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "127.0.0.1", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, 10000, cfg.KeyDerivationIterations)
	assert.Equal(t, 30*24*time.Hour, cfg.KeyRotationInterval)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 3, cfg.RateLimitMaxAttempts)
	assert.Equal(t, time.Minute, cfg.SessionDuration)
	assert.Equal(t, 3*time.Second, cfg.OperationCooldown)
	assert.Equal(t, "trustkit", cfg.MetricsNamespace)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_DURATION_MS", "120000")
	t.Setenv("RATE_LIMIT_MAX_ATTEMPTS", "5")
	t.Setenv("STORAGE_BACKEND", "postgres")

	cfg := Load()

	assert.Equal(t, 2*time.Minute, cfg.SessionDuration)
	assert.Equal(t, 5, cfg.RateLimitMaxAttempts)
	assert.Equal(t, "postgres", cfg.StorageBackend)
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, cfg.GetGinMode())
		})
	}
}
