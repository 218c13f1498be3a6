package components

import (
	"log/slog"

	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/config"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/metrics"
	"github.com/vendor-ops-ledger/internal/store"
)

// CreateFacade wires the managers over st into a facade
func CreateFacade(
	st store.Store,
	notifier service.Notifier,
	notifications notification.Repository,
	recorder metrics.Recorder,
	logger *slog.Logger,
	cfg *config.Config,
) *service.Facade {
	return service.NewFacade(service.FacadeDeps{
		Store:         st,
		Ledger:        NewLedgerManager(logger.With("component", "ledger")),
		Promos:        NewPromoManager(logger.With("component", "promo")),
		Payouts:       NewPayoutManager(logger.With("component", "payout")),
		Lifecycle:     NewLifecycleManager(logger.With("component", "lifecycle")),
		Notifier:      notifier,
		Notifications: notifications,
		Authorizer:    access.NewPolicy(),
		Metrics:       recorder,
		Logger:        logger.With("component", "facade"),
		Vendor:        cfg.Vendor,
		IntentTimeout: cfg.Engine.IntentTimeout,
	})
}

// CreateIntentProcessor routes queued intents into the facade through the worker pool
func CreateIntentProcessor(
	facade service.IntentFacade,
	recorder metrics.Recorder,
	logger *slog.Logger,
	cfg *config.Config,
) service.IntentProcessor {
	router := service.NewIntentRouter(facade, logger.With("component", "intent_router"))

	workerPool, err := service.NewWorkerPoolIntentProcessor(
		router,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		recorder,
		logger,
	)
	if err != nil {
		logger.Error("Failed to create worker pool, falling back to the router", "error", err)
		return router
	}

	logger.Info("Created intent worker pool", "pool_size", cfg.WorkerPool.Size)
	return workerPool
}
