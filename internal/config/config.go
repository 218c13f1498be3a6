// Package config provides configuration structures and validation for the ledger
// engine binaries: the HTTP gateway and the intent processor.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration, validated once at startup
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Store       StoreConfig
	Engine      EngineConfig
	Vendor      VendorConfig
	Metrics     MetricsConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	IntentTopic       string // Queued facade intents
	NotificationTopic string // Delivered notification events, consumed by the email sink
	DLQTopic          string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig contains notification outbox configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of intents executed concurrently
}

// StoreConfig selects the store driver
type StoreConfig struct {
	Driver string // "postgres" or "memory"
}

// EngineConfig bounds how long a single intent may hold locks
type EngineConfig struct {
	IntentTimeout time.Duration
	LockTimeout   time.Duration
}

// VendorConfig identifies the vendor whose profile receives notifications
type VendorConfig struct {
	Name              string
	NotificationEmail string
}

// MetricsConfig contains Prometheus configuration
type MetricsConfig struct {
	Enabled   bool
	Namespace string
	Path      string
}

// UsesPostgres reports whether the durable stores are required
func (c *Config) UsesPostgres() bool {
	return c.Store.Driver == "postgres"
}

// validate collects every configuration problem into a single error
func (c *Config) validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT and SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.IntentTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_INTENT_TOPIC is required")
	}
	if c.Kafka.NotificationTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_NOTIFICATION_TOPIC is required")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 || c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES and KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	switch c.Store.Driver {
	case "postgres":
		if c.Postgres.URL == "" {
			validationErrors = append(validationErrors, "POSTGRES_URL is required")
		}
		if c.Postgres.MaxConns <= 0 || c.Postgres.MinConns <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS and POSTGRES_MIN_CONNS must be greater than 0")
		}
		if c.Postgres.ConnMaxLifetime <= 0 || c.Postgres.ConnMaxIdleTime <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME and POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
		}
		if c.MongoDB.URI == "" {
			validationErrors = append(validationErrors, "MONGO_URI is required")
		}
		if c.MongoDB.Database == "" {
			validationErrors = append(validationErrors, "MONGO_DATABASE is required")
		}
		if c.MongoDB.Timeout <= 0 {
			validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
		}
		if c.MongoDB.MaxPoolSize <= 0 || c.MongoDB.MinPoolSize <= 0 {
			validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE and MONGO_MIN_POOL_SIZE must be greater than 0")
		}
	case "memory":
	default:
		validationErrors = append(validationErrors, "STORE_DRIVER must be one of postgres, memory")
	}

	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if c.Engine.IntentTimeout <= 0 {
		validationErrors = append(validationErrors, "ENGINE_INTENT_TIMEOUT must be greater than 0")
	}
	if c.Engine.LockTimeout <= 0 || c.Engine.LockTimeout > c.Engine.IntentTimeout {
		validationErrors = append(validationErrors, "ENGINE_LOCK_TIMEOUT must be greater than 0 and not exceed ENGINE_INTENT_TIMEOUT")
	}

	if !strings.Contains(c.Vendor.NotificationEmail, "@") {
		validationErrors = append(validationErrors, "VENDOR_NOTIFICATION_EMAIL must be an email address")
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		validationErrors = append(validationErrors, "METRICS_NAMESPACE is required when metrics are enabled")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
