package components

import (
	"context"
	"log/slog"

	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/outbox"
	"github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/metrics"
	"github.com/vendor-ops-ledger/internal/platform/messaging/producers"
)

// OutboxNotifier queues events in the notification outbox; the outbox poller
// delivers them to the in-app store and the notification topic.
type OutboxNotifier struct {
	outboxRepo outbox.Repository
	metrics    metrics.Recorder
	logger     *slog.Logger
}

func NewOutboxNotifier(outboxRepo outbox.Repository, recorder metrics.Recorder, logger *slog.Logger) service.Notifier {
	return &OutboxNotifier{
		outboxRepo: outboxRepo,
		metrics:    recorder,
		logger:     logger,
	}
}

func (n *OutboxNotifier) Notify(ctx context.Context, event notification.Event) {
	logger := n.logger.With("event_type", event.Type, "linked_id", event.LinkedID)

	if err := event.Validate(); err != nil {
		logger.Warn("Dropping invalid notification event", "error", err)
		n.metrics.RecordNotification(false)
		return
	}

	msg, err := outbox.NewMessage(event)
	if err != nil {
		logger.Error("Failed to encode notification event", "error", err)
		n.metrics.RecordNotification(false)
		return
	}

	// The intent has already committed; its context may be about to expire.
	if err := n.outboxRepo.Create(context.WithoutCancel(ctx), msg); err != nil {
		logger.Error("Failed to queue notification in outbox", "error", err)
		n.metrics.RecordNotification(false)
		return
	}

	logger.Debug("Notification queued", "outbox_id", msg.ID)
	n.metrics.RecordNotification(true)
}

// DirectNotifier writes the in-app notification immediately and, when a
// publisher is configured, forwards the event to the notification topic.
// It backs the memory driver, where there is no outbox table.
type DirectNotifier struct {
	notifications notification.Repository
	publisher     producers.MessagePublisher
	metrics       metrics.Recorder
	logger        *slog.Logger
}

func NewDirectNotifier(notifications notification.Repository, publisher producers.MessagePublisher, recorder metrics.Recorder, logger *slog.Logger) service.Notifier {
	return &DirectNotifier{
		notifications: notifications,
		publisher:     publisher,
		metrics:       recorder,
		logger:        logger,
	}
}

func (n *DirectNotifier) Notify(ctx context.Context, event notification.Event) {
	ctx = context.WithoutCancel(ctx)
	logger := n.logger.With("event_type", event.Type, "linked_id", event.LinkedID)

	if err := event.Validate(); err != nil {
		logger.Warn("Dropping invalid notification event", "error", err)
		n.metrics.RecordNotification(false)
		return
	}

	record := event.ToNotification()
	if err := n.notifications.Create(ctx, record); err != nil {
		logger.Error("Failed to store notification", "error", err)
		n.metrics.RecordNotification(false)
		return
	}

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, record.Recipient, event); err != nil {
			logger.Warn("Failed to publish notification event", "notification_id", record.ID.String(), "error", err)
		}
	}

	n.metrics.RecordNotification(true)
}
