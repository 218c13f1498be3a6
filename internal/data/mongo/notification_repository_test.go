package mongo

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const notificationNamespace = "test." + NotificationCollectionName

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newNotification() *notification.Notification {
	return &notification.Notification{
		ID:         uuid.New(),
		EventType:  notification.EventClientPaymentRecorded,
		Recipient:  "vendor@example.com",
		Title:      "Payment received",
		Message:    "Ana paid 2.000.000",
		Timestamp:  time.Now().UTC().Truncate(time.Millisecond),
		LinkedView: notification.ViewFinance,
		LinkedID:   "p-1",
	}
}

// toDoc round-trips n through bson so mock server replies match what the driver stores
func toDoc(t *testing.T, n *notification.Notification) bson.D {
	t.Helper()
	raw, err := bson.Marshal(n)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestNewNotificationRepository(t *testing.T) {
	db := &mongo.Database{}
	repo := NewNotificationRepository(slog.Default(), db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestNotificationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		repo := NewNotificationRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(t, repo.Create(ctx, newNotification()))
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewNotificationRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Create(ctx, newNotification())
		assert.ErrorIs(t, err, shared.ErrDuplicate)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewNotificationRepository(newTestLogger(), mt.DB)
		n := newNotification()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, notificationNamespace, mtest.FirstBatch, toDoc(t, n)))

		got, err := repo.GetByID(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, n.ID, got.ID)
		assert.Equal(t, n.Title, got.Title)
		assert.True(t, n.Timestamp.Equal(got.Timestamp))
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewNotificationRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, notificationNamespace, mtest.FirstBatch))

		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewNotificationRepository(newTestLogger(), mt.DB)
		first, second := newNotification(), newNotification()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, notificationNamespace, mtest.FirstBatch,
			toDoc(t, first), toDoc(t, second)))

		list, err := repo.List(ctx, "vendor@example.com", 0, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
	})

	mt.Run("count unread", func(mt *mtest.T) {
		repo := NewNotificationRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, notificationNamespace, mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}}))

		count, err := repo.CountUnread(ctx, "vendor@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	mt.Run("mark as read", func(mt *mtest.T) {
		repo := NewNotificationRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 0}})

		assert.NoError(t, repo.MarkAsRead(ctx, uuid.New()))
	})

	mt.Run("mark as read missing", func(mt *mtest.T) {
		repo := NewNotificationRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.MarkAsRead(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	mt.Run("mark all as read", func(mt *mtest.T) {
		repo := NewNotificationRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 4}, {Key: "nModified", Value: 4}})

		modified, err := repo.MarkAllAsRead(ctx, "vendor@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(4), modified)
	})
}
