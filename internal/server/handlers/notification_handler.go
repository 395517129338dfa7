package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/internal/server/middleware"
)

// NotificationHandler exposes the caller's in-app notifications.
type NotificationHandler struct {
	notifications mongodb.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationHandler constructs the HTTP handler adapter.
func NewNotificationHandler(notifications mongodb.NotificationRepository, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	callerID := c.GetString(middleware.ContextUserID)
	items, err := h.notifications.ListNotifications(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, h.logger, err, "failed to list notifications")
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	c.JSON(http.StatusOK, items)
}

// MarkRead flags one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	callerID := c.GetString(middleware.ContextUserID)
	if err := h.notifications.MarkRead(c.Request.Context(), id, callerID); err != nil {
		respondError(c, h.logger, err, "failed to mark notification read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}
