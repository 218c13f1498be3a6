package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// IntentRouter decodes queued intents and runs them through the facade
type IntentRouter struct {
	facade IntentFacade
	logger *slog.Logger
}

func NewIntentRouter(facade IntentFacade, logger *slog.Logger) *IntentRouter {
	return &IntentRouter{facade: facade, logger: logger}
}

// Process runs one queued intent. A payload without an idempotency key is keyed by
// the intent id, so a redelivered message fails with Duplicate instead of posting twice.
func (r *IntentRouter) Process(ctx context.Context, request *shared.IntentRequest) error {
	logger := r.logger
	if request.CorrelationID != "" {
		logger = r.logger.With("correlation_id", request.CorrelationID)
	}
	logger.Info("Processing intent", "intent_id", request.IntentID.String(), "type", request.Type)

	actor := Actor{
		Role:          access.Role(request.ActorRole),
		ID:            request.ActorID,
		CorrelationID: request.CorrelationID,
	}
	fallbackKey := request.IntentID.String()

	switch request.Type {
	case shared.IntentSubmitPublicBooking:
		var req SubmitPublicBookingRequest
		if err := decodePayload(request, &req); err != nil {
			return err
		}
		if req.IdempotencyKey == "" {
			req.IdempotencyKey = fallbackKey
		}
		_, err := r.facade.SubmitPublicBooking(ctx, actor, req)
		return err

	case shared.IntentRecordClientPayment:
		var req RecordClientPaymentRequest
		if err := decodePayload(request, &req); err != nil {
			return err
		}
		if req.IdempotencyKey == "" {
			req.IdempotencyKey = fallbackKey
		}
		_, err := r.facade.RecordClientPayment(ctx, actor, req)
		return err

	case shared.IntentPayFreelancerBatch:
		var req PayFreelancerBatchRequest
		if err := decodePayload(request, &req); err != nil {
			return err
		}
		if req.IdempotencyKey == "" {
			req.IdempotencyKey = fallbackKey
		}
		_, err := r.facade.PayFreelancerBatch(ctx, actor, req)
		return err

	default:
		return shared.Validation("unknown intent type %q", request.Type)
	}
}

func decodePayload(request *shared.IntentRequest, dst any) error {
	if len(request.Payload) == 0 {
		return shared.Validation("intent %s has no payload", request.IntentID)
	}
	if err := json.Unmarshal(request.Payload, dst); err != nil {
		return shared.Validation("malformed %s payload: %v", request.Type, err)
	}
	return nil
}
