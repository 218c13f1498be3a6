package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vendor-ops-ledger/internal/config"
	"github.com/vendor-ops-ledger/internal/domain/outbox"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Poller drains pending notification messages from the outbox
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        NotificationPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher NotificationPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting notification outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Notification outbox poller stopping")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Outbox batch failed", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		p.logger.Debug("No pending outbox messages")
		return nil
	}

	p.logger.Info("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		logger := p.logger.With("outbox_id", msg.ID, "event_type", msg.EventType, "aggregate_id", msg.AggregateID)

		if err := p.publisher.Deliver(ctx, msg); err != nil {
			// An undeliverable payload is already marked failed; retrying cannot fix it.
			if shared.KindOf(err) == shared.KindValidation {
				continue
			}
			logger.Warn("Notification delivery failed", "current_attempts", msg.Attempts, "error", err)

			if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
				logger.Error("Failed to increment outbox attempts", "error", errInc)
				continue
			}

			if msg.Attempts+1 >= p.maxRetryAttempts {
				logger.Warn("Max retry attempts reached, marking FAILED_TO_PUBLISH", "attempts_made", msg.Attempts+1)
				if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
					logger.Error("Failed to mark outbox message FAILED_TO_PUBLISH", "error", errUpdate)
				}
			}
		}
	}
	return nil
}
