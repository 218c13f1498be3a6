package consumers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/vendor-ops-ledger/internal/config"
)

const (
	fetchRetryDelay   = time.Second
	handlerRetryDelay = time.Second
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// KafkaReader wraps kafka.Reader methods for testing
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads one topic as a member of a consumer group
type KafkaConsumer struct {
	reader     KafkaReader
	logger     *slog.Logger
	topic      string
	groupID    string
	retryDelay time.Duration
	done       chan struct{}
}

var _ Consumer = (*KafkaConsumer)(nil)

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig, topic string) *KafkaConsumer {
	startOffset := cfg.StartOffset
	if startOffset == 0 {
		startOffset = kafka.FirstOffset
	}

	return &KafkaConsumer{
		logger:     logger.With("topic", topic, "group_id", cfg.ConsumerGroup),
		topic:      topic,
		groupID:    cfg.ConsumerGroup,
		retryDelay: handlerRetryDelay,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
	}
}

// Subscribe starts the fetch loop in the background. A message the handler
// rejects is handed to it again until accepted; the loop never fetches past it,
// so a later commit cannot skip an unhandled offset.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	if handler == nil {
		return errors.New("message handler is required")
	}
	c.done = make(chan struct{})
	c.logger.Info("Subscribed to Kafka topic")

	go func() {
		defer close(c.done)
		c.run(ctx, handler)
	}()
	return nil
}

// Done is closed once the fetch loop has stopped
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) run(ctx context.Context, handler MessageHandler) {
	for {
		if ctx.Err() != nil {
			c.logger.Info("Context canceled, stopping consumer")
			return
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.Info("Consumer stopped", "reason", err)
				return
			}
			c.logger.Error("Failed to fetch message from Kafka", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		log := c.logger.With("partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
		log.Debug("Received message from Kafka")

		if !c.deliver(ctx, log, handler, msg) {
			log.Info("Context canceled with message unhandled, offset not committed")
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error("Failed to commit message after successful processing", "error", err)
			continue
		}
		log.Debug("Message committed")
	}
}

// deliver runs handler until it accepts msg. It returns false if ctx ends first.
func (c *KafkaConsumer) deliver(ctx context.Context, log *slog.Logger, handler MessageHandler, msg kafka.Message) bool {
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		log.Error("Failed to process message, retrying", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.retryDelay):
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
