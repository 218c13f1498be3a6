package outbox

import (
	"encoding/json"
	"time"

	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Message holds a notification event until the poller has delivered it
type Message struct {
	ID            int64                  `json:"id"`
	EventType     notification.EventType `json:"event_type"`
	AggregateID   string                 `json:"aggregate_id"`
	Payload       json.RawMessage        `json:"payload"`
	Status        shared.OutboxStatus    `json:"status"`
	Attempts      int                    `json:"attempts"`
	CreatedAt     time.Time              `json:"created_at"`
	LastAttemptAt *time.Time             `json:"last_attempt_at,omitempty"`
}

func NewMessage(event notification.Event) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventType:   event.Type,
		AggregateID: event.LinkedID,
		Payload:     payload,
		Status:      shared.OutboxStatusPending,
		CreatedAt:   time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Event decodes the notification event carried in the payload
func (m *Message) Event() (notification.Event, error) {
	var event notification.Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return notification.Event{}, err
	}
	return event, nil
}
