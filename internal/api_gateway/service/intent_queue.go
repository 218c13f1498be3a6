package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	engine "github.com/vendor-ops-ledger/internal/engine/service"
	"github.com/vendor-ops-ledger/internal/platform/messaging/producers"
)

// IntentQueueImpl publishes intents to the intent topic
type IntentQueueImpl struct {
	producer producers.MessagePublisher
	logger   *slog.Logger
}

func NewIntentQueue(logger *slog.Logger, producer producers.MessagePublisher) IntentQueue {
	return &IntentQueueImpl{
		producer: producer,
		logger:   logger,
	}
}

// Enqueue wraps payload in an IntentRequest keyed by a fresh intent id. The
// processor uses that id as the idempotency key when the payload carries none,
// so a redelivered message cannot run twice.
func (q *IntentQueueImpl) Enqueue(ctx context.Context, actor engine.Actor, intentType shared.IntentType, payload any) (uuid.UUID, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, shared.Validation("intent payload cannot be encoded: %v", err)
	}

	request := &shared.IntentRequest{
		IntentID:      uuid.New(),
		Type:          intentType,
		ActorRole:     string(actor.Role),
		ActorID:       actor.ID,
		Payload:       body,
		CorrelationID: actor.CorrelationID,
		Timestamp:     time.Now().UTC(),
	}

	logger := q.logger.With("intent_id", request.IntentID.String(), "intent_type", string(intentType))
	if actor.CorrelationID != "" {
		logger = logger.With("correlation_id", actor.CorrelationID)
	}

	if err := q.producer.Publish(ctx, request.IntentID.String(), request); err != nil {
		logger.Error("Failed to publish intent request", "error", err)
		return uuid.Nil, shared.Unavailable(fmt.Sprintf("intent queue rejected %s: %v", intentType, err))
	}

	logger.Info("Intent request published")
	return request.IntentID, nil
}
