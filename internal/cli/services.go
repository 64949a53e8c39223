package cli

import (
	"context"
	"fmt"

	"controlly/internal/backend"
	"controlly/internal/cache"
	"controlly/internal/config"
	"controlly/internal/core"
	"controlly/internal/log"
	"controlly/internal/services"
	"controlly/internal/storage"
	"controlly/internal/store"
)

// App is the storage backend plus the services built on it. Every binary
// assembles it the same way.
type App struct {
	Backend      *backend.Result
	Transactions *services.TransactionService
	Cards        *services.CardService
	Goals        *services.GoalService
	Reports      *services.ReportService
	Caches       *cache.Manager
}

// Bootstrap opens the configured backend and wires the services. Events go
// to the AMQP client when one is available and to every extra publisher.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger, extra ...services.Publisher) (*App, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	var fanout services.Fanout
	if result.Events != nil {
		fanout = append(fanout, result.Events)
	}
	fanout = append(fanout, extra...)
	opts := services.Options{}
	if len(fanout) > 0 {
		opts.Events = fanout
	}

	txList := store.NewCollection[core.Transaction](result.Slot, store.TransactionsKey, logger)
	cardList := store.NewCollection[core.Card](result.Slot, store.CardsKey, logger)
	goalList := store.NewCollection[core.Goal](result.Slot, store.GoalsKey, logger)

	app := &App{
		Backend:      result,
		Transactions: services.NewTransactionService(txList, cardList, logger, opts),
		Cards:        services.NewCardService(cardList, txList, cfg.CardAlertPercent, logger, opts),
		Goals:        services.NewGoalService(goalList, logger, opts),
		Caches:       cache.NewManager(logger),
	}

	dashboards := cache.NewLRUCache[services.Dashboard](cfg.CacheSize, cfg.CacheTTL)
	reports := cache.NewLRUCache[services.Report](cfg.CacheSize, cfg.CacheTTL)
	app.Caches.Register(dashboards)
	app.Caches.Register(reports)
	app.Reports = services.NewReportService(app.Transactions, app.Cards, app.Goals, dashboards, reports, logger, nil)

	return app, nil
}

// Ready reports whether the storage backend answers reads.
func (a *App) Ready(ctx context.Context) error {
	return storage.Ping(ctx, a.Backend.Slot, store.CardsKey)
}

// Close stops the cache sweeper and releases the backend.
func (a *App) Close() error {
	a.Caches.Stop()
	return a.Backend.Cleanup()
}
