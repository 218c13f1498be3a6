package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/outbox"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/metrics"
	"github.com/vendor-ops-ledger/internal/platform/messaging/producers"
)

// notificationNamespace seeds the notification id derived from an outbox id,
// so a redelivered message lands on the notification it already created.
var notificationNamespace = uuid.MustParse("6f1c2a64-3b0e-4d8a-9a57-1f4b2c9e7d10")

// NotificationPublisher delivers one queued notification event
type NotificationPublisher interface {
	Deliver(ctx context.Context, message *outbox.Message) error
}

// NotificationPublisherImpl stores the in-app notification and forwards the
// event to the notification topic
type NotificationPublisherImpl struct {
	outboxRepo    outbox.Repository
	notifications notification.Repository
	publisher     producers.MessagePublisher
	metrics       metrics.Recorder
	logger        *slog.Logger
}

// NewNotificationPublisher builds the publisher; publisher may be nil when
// no notification topic is configured
func NewNotificationPublisher(
	outboxRepo outbox.Repository,
	notifications notification.Repository,
	publisher producers.MessagePublisher,
	recorder metrics.Recorder,
	logger *slog.Logger,
) NotificationPublisher {
	if recorder == nil {
		recorder = metrics.NewNoOpCollector()
	}
	return &NotificationPublisherImpl{
		outboxRepo:    outboxRepo,
		notifications: notifications,
		publisher:     publisher,
		metrics:       recorder,
		logger:        logger,
	}
}

// NotificationID is the id the notification for an outbox message is stored under
func NotificationID(outboxID int64) uuid.UUID {
	return uuid.NewSHA1(notificationNamespace, []byte("outbox-"+strconv.FormatInt(outboxID, 10)))
}

func (p *NotificationPublisherImpl) Deliver(ctx context.Context, message *outbox.Message) (err error) {
	defer func() { p.metrics.RecordOutboxPublish(err) }()

	logger := p.logger.With("outbox_id", message.ID, "event_type", message.EventType)

	event, err := message.Event()
	if err == nil {
		err = event.Validate()
	}
	if err != nil {
		logger.Error("Undeliverable notification payload", "error", err)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			logger.Error("Also failed to mark outbox message FAILED_TO_PUBLISH", "update_error", updateErr)
		}
		return shared.Validation("outbox %d carries an undeliverable payload: %v", message.ID, err)
	}

	record := event.ToNotification()
	record.ID = NotificationID(message.ID)

	if err = p.notifications.Create(ctx, record); err != nil {
		if !errors.Is(err, shared.ErrDuplicate) {
			logger.Error("Failed to store notification", "notification_id", record.ID.String(), "error", err)
			return fmt.Errorf("failed to store notification for outbox %d: %w", message.ID, err)
		}
		logger.Info("Notification already stored by an earlier attempt", "notification_id", record.ID.String())
		err = nil
	}

	if p.publisher != nil {
		if err = p.publisher.Publish(ctx, record.Recipient, event); err != nil {
			logger.Error("Failed to publish notification event", "notification_id", record.ID.String(), "error", err)
			return fmt.Errorf("failed to publish notification for outbox %d: %w", message.ID, err)
		}
	}

	if err = p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to mark outbox message PROCESSED", "error", err)
		return fmt.Errorf("notification for outbox %d delivered, but marking PROCESSED failed: %w", message.ID, err)
	}

	logger.Info("Notification delivered", "notification_id", record.ID.String(), "recipient", record.Recipient)
	return nil
}
