// cmd/minesweeper/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ftotnem/minesweeper/api"
	"github.com/Ftotnem/minesweeper/internal/logger"
	"github.com/Ftotnem/minesweeper/internal/session"
	"github.com/Ftotnem/minesweeper/metrics"
	"github.com/Ftotnem/minesweeper/service"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Get().Error("failed to load configuration", "error", err)
		return 2
	}

	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.With("api", cfg.BaseAddress)

	reg := prometheus.NewRegistry()
	transportMetrics := metrics.NewTransportMetrics(reg)

	gameClient := service.NewGameClient(service.Config{
		BaseAddress: cfg.BaseAddress,
		HTTPClient:  transportMetrics.HTTPClient(nil),
	})

	var sessions session.Store
	if cfg.RedisAddr != "" {
		store, err := session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			log.Error("failed to open session store", "error", err)
			return 1
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("error closing session store", "error", err)
			}
		}()
		sessions = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		games:    gameClient,
		sessions: sessions,
		out:      os.Stdout,
		log:      log,
	}
	err = a.run(ctx, args)

	if cfg.MetricsTextfile != "" {
		if werr := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); werr != nil {
			log.Warn("failed to write metrics", "path", cfg.MetricsTextfile, "error", werr)
		}
	}

	return exitCode(log, err)
}

func exitCode(log *slog.Logger, err error) int {
	if err == nil {
		return 0
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "minesweeper: %v\n\n%s", err, usage)
		return 2
	}

	var transportErr *api.TransportError
	var decodeErr *api.DecodeError
	switch {
	case errors.As(err, &transportErr):
		log.Error("request failed", "method", transportErr.Method, "url", transportErr.URL, "error", transportErr.Err)
	case errors.As(err, &decodeErr):
		log.Error("response is not JSON", "method", decodeErr.Method, "url", decodeErr.URL, "status", decodeErr.StatusCode, "error", decodeErr.Err)
	default:
		log.Error("command failed", "error", err)
	}
	return 1
}
