package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// EventType names the user-relevant change a notification reports
type EventType string

const (
	EventBookingSubmitted      EventType = "BOOKING_SUBMITTED"
	EventClientPaymentRecorded EventType = "CLIENT_PAYMENT_RECORDED"
	EventFreelancerPaid        EventType = "FREELANCER_PAID"
	EventTransactionApplied    EventType = "TRANSACTION_APPLIED"
	EventTransactionSigned     EventType = "TRANSACTION_SIGNED"
	EventPocketTransfer        EventType = "POCKET_TRANSFER"
	EventRewardGranted         EventType = "REWARD_GRANTED"
	EventTeamPaymentAssigned   EventType = "TEAM_PAYMENT_ASSIGNED"
	EventPaymentRecordSigned   EventType = "PAYMENT_RECORD_SIGNED"
	EventPromoRedeemed         EventType = "PROMO_REDEEMED"
	EventProjectStatusChanged  EventType = "PROJECT_STATUS_CHANGED"
	EventSubStatusConfirmed    EventType = "SUB_STATUS_CONFIRMED"
	EventStageConfirmed        EventType = "STAGE_CONFIRMED"
	EventRevisionAdded         EventType = "REVISION_ADDED"
	EventRevisionCompleted     EventType = "REVISION_COMPLETED"
	EventContractCreated       EventType = "CONTRACT_CREATED"
	EventContractSigned        EventType = "CONTRACT_SIGNED"
	EventInvoiceSigned         EventType = "INVOICE_SIGNED"
	EventCardCreated           EventType = "CARD_CREATED"
	EventPocketCreated         EventType = "POCKET_CREATED"
	EventPromoCodeCreated      EventType = "PROMO_CODE_CREATED"
	EventPromoCodeToggled      EventType = "PROMO_CODE_TOGGLED"
	EventSubStatusActivated    EventType = "SUB_STATUS_ACTIVATED"
)

// Views a notification can deep-link into
const (
	ViewProjects = "projects"
	ViewFinance  = "finance"
	ViewTeam     = "team"
	ViewPromo    = "promo_codes"
	ViewClients  = "clients"
)

// Event is what the engine hands to a Notifier after a successful intent
type Event struct {
	Type       EventType `json:"type"`
	Recipient  string    `json:"recipient"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	LinkedView string    `json:"linked_view,omitempty"`
	LinkedID   string    `json:"linked_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notification is the in-app record of an event. IsRead only moves from false to true.
type Notification struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	EventType  EventType `json:"event_type" bson:"event_type"`
	Recipient  string    `json:"recipient" bson:"recipient"`
	Title      string    `json:"title" bson:"title"`
	Message    string    `json:"message" bson:"message"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	IsRead     bool      `json:"is_read" bson:"is_read"`
	LinkedView string    `json:"linked_view,omitempty" bson:"linked_view,omitempty"`
	LinkedID   string    `json:"linked_id,omitempty" bson:"linked_id,omitempty"`
}

func NewEvent(eventType EventType, title, message, linkedView, linkedID string) Event {
	return Event{
		Type:       eventType,
		Title:      title,
		Message:    message,
		LinkedView: linkedView,
		LinkedID:   linkedID,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks the fields every delivered notification needs
func (e Event) Validate() error {
	if strings.TrimSpace(e.Recipient) == "" {
		return shared.Validation("notification recipient is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return shared.Validation("notification title is required")
	}
	return nil
}

// ToNotification materializes an unread notification for the event
func (e Event) ToNotification() *Notification {
	ts := e.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &Notification{
		ID:         uuid.New(),
		EventType:  e.Type,
		Recipient:  strings.ToLower(strings.TrimSpace(e.Recipient)),
		Title:      e.Title,
		Message:    e.Message,
		Timestamp:  ts,
		LinkedView: e.LinkedView,
		LinkedID:   e.LinkedID,
	}
}

// MarkRead flips the notification to read; it reports whether anything changed
func (n *Notification) MarkRead() bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	return true
}
