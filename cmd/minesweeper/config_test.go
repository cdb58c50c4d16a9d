package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ftotnem/minesweeper/service"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MINESWEEPER_API_URL",
		"MINESWEEPER_REDIS_ADDR",
		"MINESWEEPER_SESSION_TTL",
		"MINESWEEPER_METRICS_TEXTFILE",
		"LOG_LEVEL",
		"LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, service.DefaultBaseAddress, cfg.BaseAddress)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MINESWEEPER_API_URL", "http://localhost:8080")
	t.Setenv("MINESWEEPER_REDIS_ADDR", "localhost:6379")
	t.Setenv("MINESWEEPER_SESSION_TTL", "90m")
	t.Setenv("MINESWEEPER_METRICS_TEXTFILE", "/tmp/minesweeper.prom")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, &Config{
		BaseAddress:     "http://localhost:8080",
		RedisAddr:       "localhost:6379",
		SessionTTL:      90 * time.Minute,
		MetricsTextfile: "/tmp/minesweeper.prom",
		LogLevel:        "debug",
		LogJSON:         true,
	}, cfg)
}

func TestLoadConfig_InvalidTTL(t *testing.T) {
	for _, val := range []string{"tomorrow", "-1h"} {
		t.Run(val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MINESWEEPER_SESSION_TTL", val)

			_, err := LoadConfig()
			assert.ErrorContains(t, err, "MINESWEEPER_SESSION_TTL")
		})
	}
}
