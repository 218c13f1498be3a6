// Package mongo stores in-app notifications in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// NotificationCollectionName is the collection holding in-app notifications
	NotificationCollectionName = "notifications"

	defaultListLimit = 50
)

// NotificationRepository implements notification.Repository for MongoDB
type NotificationRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewNotificationRepository(logger *slog.Logger, db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *NotificationRepository) collection() *mongo.Collection {
	return r.db.Collection(NotificationCollectionName)
}

// EnsureIndexes creates the indexes the inbox queries rely on
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "is_read", Value: 1}}},
	}
	if _, err := r.collection().Indexes().CreateMany(ctx, models); err != nil {
		r.logger.Error("Failed to create notification indexes", "error", err)
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if _, err := r.collection().InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.Duplicate("notification", n.ID.String())
		}
		r.logger.Error("Failed to create notification",
			"notification_id", n.ID.String(),
			"event_type", string(n.EventType),
			"error", err)
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.NotFound("notification", id.String())
		}
		r.logger.Error("Failed to get notification", "notification_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

// List returns a page of the recipient's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, recipient string, limit, offset int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, bson.M{"recipient": recipient}, opts)
	if err != nil {
		r.logger.Error("Failed to list notifications", "recipient", recipient, "error", err)
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []*notification.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		r.logger.Error("Failed to decode notifications", "recipient", recipient, "error", err)
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient string) (int64, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"recipient": recipient, "is_read": false})
	if err != nil {
		r.logger.Error("Failed to count unread notifications", "recipient", recipient, "error", err)
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead matches by id only, so marking an already read notification succeeds
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		r.logger.Error("Failed to mark notification as read", "notification_id", id.String(), "error", err)
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.MatchedCount == 0 {
		return shared.NotFound("notification", id.String())
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, recipient string) (int64, error) {
	result, err := r.collection().UpdateMany(ctx,
		bson.M{"recipient": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		r.logger.Error("Failed to mark notifications as read", "recipient", recipient, "error", err)
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return result.ModifiedCount, nil
}
