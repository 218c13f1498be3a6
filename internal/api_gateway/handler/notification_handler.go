package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/vendor-ops-ledger/internal/api_gateway/service"
)

// NotificationHandler serves the vendor's in-app notifications
type NotificationHandler struct {
	notifications service.NotificationService
	logger        *slog.Logger
}

func NewNotificationHandler(logger *slog.Logger, notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// List returns notifications newest first
func (h *NotificationHandler) List(c *gin.Context) {
	var page PageParams
	if err := c.ShouldBindQuery(&page); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}
	items, err := h.notifications.ListNotifications(c.Request.Context(), actorFrom(c), page.Limit, page.Offset)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondWithList(c, items, page.Limit, page.Offset, len(items))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), actorFrom(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, CountResponse{Count: count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkNotificationRead(c.Request.Context(), actorFrom(c), id); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondNoContent(c)
}

// MarkAllRead reports how many notifications changed
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	count, err := h.notifications.MarkAllRead(c.Request.Context(), actorFrom(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, CountResponse{Count: count})
}
