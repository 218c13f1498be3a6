package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/outbox"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

func TestOutboxRepository_WithTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(newTestLogger(), mock)

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	txRepo := repo.WithTx(tx)
	assert.Equal(t, tx, txRepo.querier)
	assert.Equal(t, repo.logger, txRepo.logger)
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(newTestLogger(), mock)
	event := notification.NewEvent(notification.EventBookingSubmitted, "New booking", "Ana booked a wedding", notification.ViewProjects, "p-1")
	message, err := outbox.NewMessage(event)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(insertOutboxQuery)).
			WithArgs(message.EventType, message.AggregateID, message.Payload, message.Status, message.Attempts, message.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		require.NoError(t, repo.Create(ctx, message))
		assert.Equal(t, int64(42), message.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("insert failed")
		mock.ExpectQuery(regexp.QuoteMeta(insertOutboxQuery)).
			WithArgs(message.EventType, message.AggregateID, message.Payload, message.Status, message.Attempts, message.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, message)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to create outbox message")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(newTestLogger(), mock)
	now := time.Now()
	payload := json.RawMessage(`{"type":"FREELANCER_PAID"}`)

	rows := pgxmock.NewRows([]string{"id", "event_type", "aggregate_id", "payload", "status", "attempts", "created_at", "last_attempt_at"}).
		AddRow(int64(1), notification.EventFreelancerPaid, "rec-1", payload, shared.OutboxStatusPending, 0, now, (*time.Time)(nil)).
		AddRow(int64(2), notification.EventInvoiceSigned, "p-9", payload, shared.OutboxStatusPending, 2, now, &now)
	mock.ExpectQuery(regexp.QuoteMeta(pendingOutboxQuery)).
		WithArgs(shared.OutboxStatusPending, 10).
		WillReturnRows(rows)

	messages, err := repo.GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, notification.EventFreelancerPaid, messages[0].EventType)
	assert.Nil(t, messages[0].LastAttemptAt)
	assert.Equal(t, 2, messages[1].Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(newTestLogger(), mock)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(updateOutboxStatusQuery)).
			WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateStatus(ctx, 7, shared.OutboxStatusProcessed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing message", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(updateOutboxStatusQuery)).
			WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(8)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, 8, shared.OutboxStatusProcessed)
		assert.ErrorAs(t, err, &outbox.ErrMessageNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_IncrementAttemptsAndDelete(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(newTestLogger(), mock)

	mock.ExpectExec(regexp.QuoteMeta(incrementOutboxAttemptsQuery)).
		WithArgs(pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteOutboxQuery)).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.IncrementAttempts(ctx, 3))
	err = repo.Delete(ctx, 3)
	assert.Equal(t, outbox.ErrMessageNotFound{ID: 3}, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
