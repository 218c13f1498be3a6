package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vendor-ops-ledger/internal/api_gateway"
	"github.com/vendor-ops-ledger/internal/api_gateway/service"
	"github.com/vendor-ops-ledger/internal/config"
	"github.com/vendor-ops-ledger/internal/engine/components"
	"github.com/vendor-ops-ledger/internal/logger"
	"github.com/vendor-ops-ledger/internal/metrics"
	"github.com/vendor-ops-ledger/internal/platform/messaging/producers"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Ledger API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"store_driver", cfg.Store.Driver,
	)

	collector := metrics.NewCollector(cfg.Metrics.Namespace)

	// Queued intents are executed by the intent processor, which only sees
	// this API's data when both run on postgres
	var queue service.IntentQueue
	var intentProducer *producers.TopicProducer
	if cfg.UsesPostgres() {
		intentProducer, err = producers.NewIntentProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize intent producer", "error", err)
			os.Exit(1)
		}
		queue = service.NewIntentQueue(log.With("component", "intent_queue"), intentProducer)
	} else {
		log.Info("Queued intent routes disabled on the memory store")
	}

	// Without an outbox, the API delivers notification events itself
	var notificationPublisher producers.MessagePublisher
	var notificationProducer *producers.TopicProducer
	if !cfg.UsesPostgres() {
		notificationProducer, err = producers.NewNotificationProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Warn("Notification topic unavailable, events stay in-app only", "error", err)
		} else {
			notificationPublisher = notificationProducer
		}
	}

	runtime, err := components.OpenRuntime(appCtx, cfg, notificationPublisher, collector, log)
	if err != nil {
		log.Error("Failed to open store", "error", err)
		os.Exit(1)
	}

	facade := components.CreateFacade(runtime.Store, runtime.Notifier, runtime.Notifications, collector, log, cfg)

	server := api_gateway.NewServer(log, cfg, facade, api_gateway.Options{
		Queue:   queue,
		Ready:   runtime.Store.Ready,
		Metrics: collector.Handler(),
	})
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop taking requests before the stores go away
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if intentProducer != nil {
		if err = intentProducer.Close(); err != nil {
			log.Error("Error closing intent producer", "error", err)
		}
	}

	if notificationProducer != nil {
		if err = notificationProducer.Close(); err != nil {
			log.Error("Error closing notification producer", "error", err)
		}
	}

	if err = runtime.Close(shutdownCtx); err != nil {
		log.Error("Error closing store connections", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
