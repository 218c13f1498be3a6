package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vendor-ops-ledger/internal/domain/outbox"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
)

const (
	insertOutboxQuery = `
		INSERT INTO notification_outbox (event_type, aggregate_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	pendingOutboxQuery = `
		SELECT id, event_type, aggregate_id, payload, status, attempts, created_at, last_attempt_at
		FROM notification_outbox
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`
	updateOutboxStatusQuery = `
		UPDATE notification_outbox
		SET status = $1, last_attempt_at = $2
		WHERE id = $3
	`
	incrementOutboxAttemptsQuery = `
		UPDATE notification_outbox
		SET attempts = attempts + 1, last_attempt_at = $1
		WHERE id = $2
	`
	deleteOutboxQuery = `
		DELETE FROM notification_outbox
		WHERE id = $1
	`
)

// OutboxRepository implements outbox.Repository for PostgreSQL.
// Rows are written after an intent commits and drained by the outbox poller.
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOutboxRepository(logger *slog.Logger, querier persistence.Querier) *OutboxRepository {
	return &OutboxRepository{querier: querier, logger: logger}
}

func (r *OutboxRepository) WithTx(tx pgx.Tx) *OutboxRepository {
	return &OutboxRepository{querier: tx, logger: r.logger}
}

// Create stores a pending message and fills in its generated id
func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	err := r.querier.QueryRow(ctx, insertOutboxQuery,
		message.EventType,
		message.AggregateID,
		message.Payload,
		message.Status,
		message.Attempts,
		message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		return dbError(r.logger, err, "create outbox message", "notification_outbox", message.AggregateID)
	}
	return nil
}

// GetPending returns pending messages oldest first
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	rows, err := r.querier.Query(ctx, pendingOutboxQuery, shared.OutboxStatusPending, limit)
	if err != nil {
		return nil, dbError(r.logger, err, "get pending outbox messages", "notification_outbox", "")
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		var message outbox.Message
		err := rows.Scan(
			&message.ID,
			&message.EventType,
			&message.AggregateID,
			&message.Payload,
			&message.Status,
			&message.Attempts,
			&message.CreatedAt,
			&message.LastAttemptAt,
		)
		if err != nil {
			return nil, dbError(r.logger, err, "scan outbox message", "notification_outbox", "")
		}
		messages = append(messages, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate outbox messages", "notification_outbox", "")
	}
	return messages, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	result, err := r.querier.Exec(ctx, updateOutboxStatusQuery, status, time.Now(), id)
	if err != nil {
		return dbError(r.logger, err, "update outbox message status", "notification_outbox", "")
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	result, err := r.querier.Exec(ctx, incrementOutboxAttemptsQuery, time.Now(), id)
	if err != nil {
		return dbError(r.logger, err, "increment outbox message attempts", "notification_outbox", "")
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

func (r *OutboxRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.querier.Exec(ctx, deleteOutboxQuery, id)
	if err != nil {
		return dbError(r.logger, err, "delete outbox message", "notification_outbox", "")
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}
