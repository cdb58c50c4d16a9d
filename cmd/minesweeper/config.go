// cmd/minesweeper/config.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Ftotnem/minesweeper/service"
)

// Config holds the configuration for the minesweeper CLI.
type Config struct {
	BaseAddress     string        // Minesweeper API address (e.g. "http://minesweeper-api.appspot.com")
	RedisAddr       string        // Redis address for the current-game pointer; empty disables it
	SessionTTL      time.Duration // Lifetime of the current-game pointer (0 keeps it forever)
	MetricsTextfile string        // Where to write request metrics on exit; empty disables it
	LogLevel        string        // debug, info, warn or error
	LogJSON         bool          // JSON log lines instead of text
}

// LoadConfig loads configuration from environment variables, applying defaults if not set.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		BaseAddress:     os.Getenv("MINESWEEPER_API_URL"),
		RedisAddr:       os.Getenv("MINESWEEPER_REDIS_ADDR"),
		MetricsTextfile: os.Getenv("MINESWEEPER_METRICS_TEXTFILE"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogJSON:         os.Getenv("LOG_FORMAT") == "json",
	}

	getDuration := func(envKey string, defaultVal time.Duration) (time.Duration, error) {
		valStr := os.Getenv(envKey)
		if valStr == "" {
			return defaultVal, nil
		}
		d, err := time.ParseDuration(valStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration format for %s: %w", envKey, err)
		}
		if d < 0 {
			return 0, fmt.Errorf("%s must not be negative (got %s)", envKey, d)
		}
		return d, nil
	}

	var err error
	cfg.SessionTTL, err = getDuration("MINESWEEPER_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	if cfg.BaseAddress == "" {
		cfg.BaseAddress = service.DefaultBaseAddress
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}
