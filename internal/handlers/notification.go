package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/codesolution/pmt/internal/errors"
	"github.com/codesolution/pmt/internal/middleware"
	"github.com/codesolution/pmt/internal/services"
)

// NotificationHandler serves the authenticated user's notifications.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns the authenticated user's notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	notifications, err := h.notificationService.ListForUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch notifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead marks one of the user's notifications as read.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.notificationService.MarkRead(id, userID); err != nil {
		apierrors.InternalError(c, "Failed to update notification")
		return
	}

	c.Status(http.StatusNoContent)
}
