package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"controlly/internal/cli"
	"controlly/internal/log"
	"controlly/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	logger.Info("Starting controlly-worker")

	app, err := cli.Bootstrap(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	alerts := worker.NewAlertWorker(app.Cards, app.Goals, logger, nil)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return alerts.Run(gctx, cfg.SweepInterval)
	})
	if app.Backend.Events != nil {
		g.Go(func() error {
			return app.Backend.Events.ConsumeWithRetry(gctx, alerts.HandleEvent)
		})
	} else {
		logger.Info("Skipping AMQP event consumption - no AMQP_URL or broker unreachable; relying on periodic sweeps")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		_ = app.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	if err := app.Close(); err != nil {
		logger.Error("Failed to release backend", log.FieldError, err)
	}
	stats := alerts.Stats()
	logger.Info("Worker shutdown complete",
		"events", stats.EventsHandled,
		"near_limit_alerts", stats.NearLimitAlerts,
		"goals_completed", stats.GoalsCompleted)
}
