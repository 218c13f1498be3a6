package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	topicReadAttempts = 5
	topicReadBackoff  = 2 * time.Second
)

// ensureTopic creates topic unless the broker already reports partitions for it
func ensureTopic(conn *kafka.Conn, topic string, numPartitions, replicationFactor int, log *slog.Logger) error {
	var (
		partitions []kafka.Partition
		err        error
	)

	log.Info("Checking if Kafka topic exists", "topic", topic)
	for attempt := 1; attempt <= topicReadAttempts; attempt++ {
		partitions, err = conn.ReadPartitions(topic)
		if err == nil {
			break
		}
		log.Warn("Failed to read partitions, retrying", "topic", topic, "attempt", attempt, "error", err)
		time.Sleep(topicReadBackoff)
	}

	if len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", topic, "partitions", len(partitions))
		return nil
	}

	cfg := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}
	log.Info("Creating Kafka topic", "topic", topic, "partitions", cfg.NumPartitions, "replication_factor", cfg.ReplicationFactor)
	if err := conn.CreateTopics(cfg); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	return nil
}

// dialAndEnsure opens a short-lived broker connection just to ensure topic exists
func dialAndEnsure(brokers, topic string, numPartitions, replicationFactor int, log *slog.Logger) error {
	conn, err := kafka.Dial("tcp", brokers)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	return ensureTopic(conn, topic, numPartitions, replicationFactor, log)
}
