package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reveille-app/reveille/internal/app"
	"github.com/reveille-app/reveille/internal/config"
	"github.com/reveille-app/reveille/internal/daemon"
	"github.com/reveille-app/reveille/internal/logger"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	a, err := app.New(cfg, logger.Log)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := a.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One-time import from the legacy flat store. A failure is retried on
	// the next start; it never blocks the daemon.
	if res, err := a.Migration.Migrate(ctx); err != nil {
		slog.Error("legacy migration failed, continuing", "error", err)
	} else if !res.AlreadyMigrated {
		slog.Info("legacy migration ran", "recordings", res.MigratedRecordings, "alarms", res.MigratedAlarms)
	}

	// Re-arm triggers for enabled alarms so schedules survive restarts.
	if _, err := a.Engine.Restore(ctx); err != nil {
		slog.Error("failed to restore alarm triggers", "error", err)
	}

	srv := daemon.NewServer(cfg.SocketPath, a.Engine, a.Bridge, a.Prefs, logger.Log)
	slog.Info("daemon starting", "socket", cfg.SocketPath, "env", cfg.AppEnv)

	err = srv.Serve(ctx)
	if err != nil {
		slog.Error("daemon failed", "error", err)
		panic(err)
	}

	a.Runner.Shutdown(5 * time.Second)
	slog.Info("daemon stopped")
}
