package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/vendor-ops-ledger/internal/config"
)

// TopicProducer publishes JSON-encoded values to a single Kafka topic
type TopicProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

var _ MessagePublisher = (*TopicProducer)(nil)

// NewIntentProducer publishes queued facade intents. Writes are async; the
// gateway has already answered 202 by the time the batch is flushed.
func NewIntentProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*TopicProducer, error) {
	return newTopicProducer(logger, cfg, cfg.IntentTopic, true)
}

// NewNotificationProducer publishes notification events for the email sink.
// Writes are synchronous so the outbox only marks what the broker acknowledged.
func NewNotificationProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*TopicProducer, error) {
	return newTopicProducer(logger, cfg, cfg.NotificationTopic, false)
}

func newTopicProducer(logger *slog.Logger, cfg *config.KafkaConfig, topic string, async bool) (*TopicProducer, error) {
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is not configured")
	}
	logger = logger.With("topic", topic)

	if err := dialAndEnsure(cfg.Brokers, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists: %w", topic, err)
	}

	requiredAcks := kafka.RequireAll
	if async {
		requiredAcks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // same key, same partition: per-entity ordering
		RequiredAcks: requiredAcks,
		Async:        async,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages", "error", err, "count", len(messages))
				return
			}
			logger.Debug("Wrote messages", "count", len(messages))
		},
	}

	return &TopicProducer{
		logger: logger,
		writer: writer,
		topic:  topic,
	}, nil
}

func (p *TopicProducer) Publish(ctx context.Context, key string, value any) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message for topic %s: %w", p.topic, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message", "key", key, "error", err)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published message", "key", key)
	return nil
}

func (p *TopicProducer) Topic() string {
	return p.topic
}

func (p *TopicProducer) Close() error {
	p.logger.Info("Closing Kafka producer")
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
