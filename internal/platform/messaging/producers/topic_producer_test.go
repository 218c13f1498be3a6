package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/config"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// MockKafkaWriter mocks the KafkaWriter interface; shared by the package tests
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ KafkaWriter = (*MockKafkaWriter)(nil)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestTopicProducer_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessfulPublish", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &TopicProducer{logger: newTestLogger(), writer: mockWriter, topic: "vendor.intents"}

		request := &shared.IntentRequest{
			IntentID:  uuid.New(),
			Type:      shared.IntentSubmitPublicBooking,
			ActorRole: "PUBLIC",
			Payload:   json.RawMessage(`{"client_email":"ana@example.com"}`),
		}
		expected, _ := json.Marshal(request)
		key := request.IntentID.String()

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 && string(msgs[0].Key) == key && string(msgs[0].Value) == string(expected)
		})).Return(nil).Once()

		require.NoError(t, producer.Publish(ctx, key, request))
		mockWriter.AssertExpectations(t)
	})

	t.Run("WriterErrorIsWrapped", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &TopicProducer{logger: newTestLogger(), writer: mockWriter, topic: "vendor.notifications"}
		writerErr := errors.New("leader not available")

		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerErr).Once()

		err := producer.Publish(ctx, "k", map[string]string{"a": "b"})
		require.Error(t, err)
		assert.ErrorIs(t, err, writerErr)
		assert.Contains(t, err.Error(), "vendor.notifications")
		mockWriter.AssertExpectations(t)
	})

	t.Run("UnmarshalableValue", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &TopicProducer{logger: newTestLogger(), writer: mockWriter, topic: "t"}

		err := producer.Publish(ctx, "k", make(chan int))
		require.Error(t, err)
		mockWriter.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})
}

func TestTopicProducer_Close(t *testing.T) {
	tests := []struct {
		name     string
		closeErr error
		wantErr  bool
	}{
		{name: "clean close"},
		{name: "writer close error", closeErr: errors.New("flush failed"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockWriter := new(MockKafkaWriter)
			producer := &TopicProducer{logger: newTestLogger(), writer: mockWriter, topic: "t"}
			mockWriter.On("Close").Return(tt.closeErr).Once()

			err := producer.Close()
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.closeErr)
			} else {
				assert.NoError(t, err)
			}
			mockWriter.AssertExpectations(t)
		})
	}
}

func TestNewTopicProducer_RequiresTopic(t *testing.T) {
	_, err := NewIntentProducer(context.Background(), newTestLogger(), &config.KafkaConfig{Brokers: "localhost:9092"})
	assert.EqualError(t, err, "kafka topic is not configured")
}
