package shared

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IntentType names a facade intent that can be queued on Kafka
type IntentType string

const (
	IntentSubmitPublicBooking IntentType = "SUBMIT_PUBLIC_BOOKING"
	IntentRecordClientPayment IntentType = "RECORD_CLIENT_PAYMENT"
	IntentPayFreelancerBatch  IntentType = "PAY_FREELANCER_BATCH"
)

// IntentRequest defines a Kafka message carrying a queued facade intent
type IntentRequest struct {
	IntentID      uuid.UUID       `json:"intent_id"`
	Type          IntentType      `json:"type"`
	ActorRole     string          `json:"actor_role"`
	ActorID       string          `json:"actor_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	CorrelationID string          `json:"correlation_id"`
	Timestamp     time.Time       `json:"timestamp"`
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
