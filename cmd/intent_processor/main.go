package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/vendor-ops-ledger/internal/config"
	"github.com/vendor-ops-ledger/internal/engine/components"
	"github.com/vendor-ops-ledger/internal/engine/consumer"
	"github.com/vendor-ops-ledger/internal/engine/outbox_poller"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/logger"
	"github.com/vendor-ops-ledger/internal/metrics"
	"github.com/vendor-ops-ledger/internal/platform/messaging/consumers"
	"github.com/vendor-ops-ledger/internal/platform/messaging/producers"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("intent_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Intent Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"store_driver", cfg.Store.Driver,
	)

	// The processor has no HTTP API, so metrics get their own listener
	var recorder metrics.Recorder = metrics.NewNoOpCollector()
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector(cfg.Metrics.Namespace)
		recorder = collector
		metricsServer = collector.Server(cfg.Server.Port, cfg.Metrics.Path)
	}

	var notificationPublisher producers.MessagePublisher
	notificationProducer, err := producers.NewNotificationProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Warn("Notification topic unavailable, events stay in-app only", "error", err)
		notificationProducer = nil
	} else {
		notificationPublisher = notificationProducer
	}

	runtime, err := components.OpenRuntime(appCtx, cfg, notificationPublisher, recorder, log)
	if err != nil {
		log.Error("Failed to open store", "error", err)
		os.Exit(1)
	}

	facade := components.CreateFacade(runtime.Store, runtime.Notifier, runtime.Notifications, recorder, log, cfg)
	processor := components.CreateIntentProcessor(facade, recorder, log, cfg)

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// A nil *DLQProducer must not become a non-nil interface
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	intentHandler := consumer.NewIntentEventHandler(log.With("component", "intent_handler"), processor, deadLetters)
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka, cfg.Kafka.IntentTopic)

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.IntentTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, intentHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
			return
		}
		<-kafkaConsumer.Done()
	}()

	if metricsServer != nil {
		go func() {
			log.Info("Starting metrics listener", "addr", metricsServer.Addr, "path", cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics listener error: %w", err)
			}
		}()
	}

	// The outbox exists only on the postgres driver
	if runtime.Outbox != nil {
		publisher := outbox_poller.NewNotificationPublisher(
			runtime.Outbox,
			runtime.Notifications,
			notificationPublisher,
			recorder,
			log.With("component", "notification_publisher"),
		)
		poller := outbox_poller.NewPoller(&cfg.Outbox, runtime.Outbox, publisher, log.With("component", "outbox_poller"))

		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Start(appCtx)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	if pool, ok := processor.(*service.WorkerPoolIntentProcessor); ok {
		log.Info("Shutting down worker pool", "running_workers", pool.Running())
		pool.Shutdown()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if metricsServer != nil {
		if err = metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error stopping metrics listener", "error", err)
		}
	}

	if dlqProducer != nil {
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if notificationProducer != nil {
		if err = notificationProducer.Close(); err != nil {
			log.Error("Error closing notification producer", "error", err)
		}
	}

	if err = runtime.Close(shutdownCtx); err != nil {
		log.Error("Error closing store connections", "error", err)
	}

	if serviceErr != nil {
		log.Error("Intent Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Intent Processor shutdown completed with errors")
	} else {
		log.Info("Intent Processor shutdown completed successfully")
	}
}
