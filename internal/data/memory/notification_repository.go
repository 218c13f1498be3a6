package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// NotificationRepository keeps in-app notifications in memory
type NotificationRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*notification.Notification
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[uuid.UUID]*notification.Notification)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[n.ID]; ok {
		return shared.Duplicate("notification", n.ID.String())
	}
	r.items[n.ID] = shallow(n)
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok {
		return nil, shared.NotFound("notification", id.String())
	}
	return shallow(n), nil
}

func (r *NotificationRepository) List(ctx context.Context, recipient string, limit, offset int) ([]*notification.Notification, error) {
	recipient = normalizeRecipient(recipient)

	r.mu.RLock()
	var rows []*notification.Notification
	for _, n := range r.items {
		if n.Recipient == recipient {
			rows = append(rows, shallow(n))
		}
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.After(rows[j].Timestamp)
		}
		return lessID(rows[i].ID, rows[j].ID)
	})

	if offset > 0 {
		if offset >= len(rows) {
			return []*notification.Notification{}, nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient string) (int64, error) {
	recipient = normalizeRecipient(recipient)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, n := range r.items {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok {
		return shared.NotFound("notification", id.String())
	}
	n.MarkRead()
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, recipient string) (int64, error) {
	recipient = normalizeRecipient(recipient)

	r.mu.Lock()
	defer r.mu.Unlock()

	var changed int64
	for _, n := range r.items {
		if n.Recipient == recipient && n.MarkRead() {
			changed++
		}
	}
	return changed, nil
}

func normalizeRecipient(recipient string) string {
	return strings.ToLower(strings.TrimSpace(recipient))
}
