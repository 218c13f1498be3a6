package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/metrics"
)

// WorkerPoolIntentProcessor bounds how many intents execute at once
type WorkerPoolIntentProcessor struct {
	base    IntentProcessor
	pool    *ants.Pool
	metrics metrics.Recorder
	logger  *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolIntentProcessor(
	base IntentProcessor,
	config WorkerPoolConfig,
	recorder metrics.Recorder,
	logger *slog.Logger,
) (*WorkerPoolIntentProcessor, error) {
	logger = logger.With("component", "intent_worker_pool")
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = metrics.NewNoOpCollector()
	}

	return &WorkerPoolIntentProcessor{
		base:    base,
		pool:    pool,
		metrics: recorder,
		logger:  logger,
	}, nil
}

// Process submits the intent to the pool and waits for its result
func (s *WorkerPoolIntentProcessor) Process(ctx context.Context, request *shared.IntentRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	resultChan := make(chan error, 1)
	requestCopy := *request

	err := s.pool.Submit(func() {
		defer func() {
			if p := recover(); p != nil {
				resultChan <- fmt.Errorf("intent %s panicked: %v", requestCopy.IntentID, p)
			}
		}()
		resultChan <- s.base.Process(ctx, &requestCopy)
	})
	if err != nil {
		logger.Error("Failed to submit intent to worker pool",
			"intent_id", request.IntentID.String(),
			"error", err,
		)
		return err
	}
	s.metrics.RecordWorkerPool(s.pool.Running(), s.pool.Cap())

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *WorkerPoolIntentProcessor) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolIntentProcessor) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolIntentProcessor) Capacity() int {
	return s.pool.Cap()
}
