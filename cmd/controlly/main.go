package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"controlly/internal/cli"
	apphttp "controlly/internal/http"
	"controlly/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	hub := apphttp.NewHub(logger)
	app, err := cli.Bootstrap(context.Background(), cfg, logger, hub)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	app.Caches.StartCleanup(cfg.CacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Transactions: app.Transactions,
		Cards:        app.Cards,
		Goals:        app.Goals,
		Reports:      app.Reports,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Hub:                hub,
		Ready:              app.Ready,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting controlly server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", app.Backend.Events != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		_ = app.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	if err := app.Close(); err != nil {
		logger.Error("Failed to release backend", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
