package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/platform/messaging/producers"
)

const (
	defaultMaxAttempts  = 5
	defaultRetryBackoff = 200 * time.Millisecond
)

// IntentEventHandler handles queued intent messages from Kafka
type IntentEventHandler struct {
	processor    service.IntentProcessor
	producer     producers.DeadLetterPublisher
	logger       *slog.Logger
	maxAttempts  int
	retryBackoff time.Duration
}

func NewIntentEventHandler(
	logger *slog.Logger,
	processor service.IntentProcessor,
	producer producers.DeadLetterPublisher,
) *IntentEventHandler {
	return &IntentEventHandler{
		processor:    processor,
		producer:     producer,
		logger:       logger,
		maxAttempts:  defaultMaxAttempts,
		retryBackoff: defaultRetryBackoff,
	}
}

// retryable reports whether a failed intent may succeed on a later delivery
func retryable(err error) bool {
	switch shared.KindOf(err) {
	case shared.KindConflict, shared.KindUnavailable, "":
		return true
	default:
		return false
	}
}

// HandleMessage processes one Kafka message. A nil return commits the offset.
func (h *IntentEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.IntentRequest
	if err := json.Unmarshal(value, &request); err != nil {
		h.logger.Error("Failed to unmarshal intent request from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		if h.deadLetter(ctx, key, value, fmt.Sprintf("unmarshal intent request: %s", err)) {
			return nil
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}
	logger = logger.With("intent_id", request.IntentID.String(), "type", request.Type)
	logger.Info("Received intent for processing")

	err := h.process(ctx, logger, &request)
	switch {
	case err == nil:
		logger.Info("Successfully processed intent")
		return nil

	case shared.KindOf(err) == shared.KindDuplicate:
		logger.Info("Intent already applied, skipping", "error", err)
		return nil

	case retryable(err):
		if ctx.Err() != nil {
			logger.Warn("Stopped before intent could be applied", "error", err)
			return fmt.Errorf("processing intent %s interrupted: %w", request.IntentID.String(), err)
		}
		logger.Error("Intent still failing after retries", "attempts", h.maxAttempts, "error", err)
		reason := fmt.Sprintf("retries exhausted after %d attempts: %s: %s", h.maxAttempts, shared.KindOf(err), err)
		if h.deadLetter(ctx, key, value, reason) {
			return nil
		}
		return fmt.Errorf("processing intent %s failed: %w", request.IntentID.String(), err)

	default:
		logger.Warn("Intent rejected", "kind", shared.KindOf(err), "error", err)
		if h.deadLetter(ctx, key, value, fmt.Sprintf("%s: %s", shared.KindOf(err), err)) {
			return nil
		}
		return fmt.Errorf("processing intent %s failed: %w", request.IntentID.String(), err)
	}
}

// process runs the intent, retrying retryable failures with doubling backoff
// up to maxAttempts. Each attempt is a fresh store transaction.
func (h *IntentEventHandler) process(ctx context.Context, logger *slog.Logger, request *shared.IntentRequest) error {
	backoff := h.retryBackoff
	for attempt := 1; ; attempt++ {
		err := h.processor.Process(ctx, request)
		if err == nil || !retryable(err) || attempt >= h.maxAttempts {
			return err
		}
		logger.Warn("Retrying intent", "attempt", attempt, "backoff", backoff.String(), "error", err)

		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// deadLetter reports whether the message was parked
func (h *IntentEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string) bool {
	if h.producer == nil {
		return false
	}
	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"message_key", string(key),
		)
		return false
	}
	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
	return true
}
