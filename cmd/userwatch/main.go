package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovsyanik/course-marketplace/internal/config"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	userservice "github.com/ovsyanik/course-marketplace/internal/services/user"
	"github.com/ovsyanik/course-marketplace/internal/storage"
)

// sweepInterval — период проверки учётных записей на неактивность.
const sweepInterval = 24 * time.Hour

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting userwatch", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	users := userservice.New(db, logger)

	sweep := func() {
		count, err := users.DeactivateStale(ctx, time.Now())
		if err != nil {
			logger.Error("failed to deactivate stale users", sl.Err(err))
			return
		}
		logger.Info("stale users sweep finished", slog.Int("deactivated", count))
	}

	sweep()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			logger.Info("userwatch shutting down gracefully")
			return
		}
	}
}
