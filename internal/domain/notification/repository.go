package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines in-app notification persistence
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// List returns the recipient's notifications, newest first
	List(ctx context.Context, recipient string, limit, offset int) ([]*Notification, error)
	CountUnread(ctx context.Context, recipient string) (int64, error)

	// MarkAsRead is idempotent; a missing id is NotFound
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipient string) (int64, error)
}
