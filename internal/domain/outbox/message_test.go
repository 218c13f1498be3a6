package outbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

func TestNewMessage(t *testing.T) {
	event := notification.NewEvent(notification.EventFreelancerPaid, "Freelancer paid", "Record PAY-1 settled", notification.ViewTeam, "rec-1")
	event.Recipient = "vendor@example.com"

	before := time.Now()
	msg, err := NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, notification.EventFreelancerPaid, msg.EventType)
	assert.Equal(t, "rec-1", msg.AggregateID)
	assert.Equal(t, shared.OutboxStatusPending, msg.Status)
	assert.Zero(t, msg.Attempts)
	assert.Nil(t, msg.LastAttemptAt)
	assert.False(t, msg.CreatedAt.Before(before))

	decoded, err := msg.Event()
	require.NoError(t, err)
	assert.Equal(t, event.Recipient, decoded.Recipient)
	assert.Equal(t, event.Title, decoded.Title)
	assert.True(t, event.OccurredAt.Equal(decoded.OccurredAt))
}

func TestMessage_StateChanges(t *testing.T) {
	tests := []struct {
		name       string
		apply      func(m *Message)
		wantStatus shared.OutboxStatus
		wantTries  int
	}{
		{name: "increment attempts", apply: (*Message).IncrementAttempts, wantStatus: shared.OutboxStatusPending, wantTries: 2},
		{name: "processed", apply: (*Message).MarkAsProcessed, wantStatus: shared.OutboxStatusProcessed, wantTries: 1},
		{name: "failed", apply: (*Message).MarkAsFailed, wantStatus: shared.OutboxStatusFailedToPublish, wantTries: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			earlier := time.Now().Add(-time.Hour)
			msg := &Message{Status: shared.OutboxStatusPending, Attempts: 1, LastAttemptAt: &earlier}

			tt.apply(msg)

			assert.Equal(t, tt.wantStatus, msg.Status)
			assert.Equal(t, tt.wantTries, msg.Attempts)
			require.NotNil(t, msg.LastAttemptAt)
			assert.True(t, msg.LastAttemptAt.After(earlier))
		})
	}
}

func TestMessage_EventInvalidPayload(t *testing.T) {
	msg := &Message{Payload: []byte("{not json")}
	_, err := msg.Event()
	assert.Error(t, err)
}
