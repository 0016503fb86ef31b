package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck-be/internal/appsvc"
	"github.com/jobdeck/jobdeck-be/internal/gateway/dto"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	logger *slog.Logger
	caller rpc.Caller
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{
		logger: deps.Logger,
		caller: deps.Caller,
	}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var req dto.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "invalid query parameters")
		return
	}

	data, err := call(c.Request.Context(), h.caller, c, "notification.list", appsvc.ListNotificationsArgs{
		UnreadOnly: req.UnreadOnly,
		Limit:      req.Limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// MarkRead handles POST /api/v1/notifications/:notification_id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "notification.markRead", appsvc.MarkReadArgs{
		NotificationID: c.Param("notification_id"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "notification.markAllRead", json.RawMessage(`{}`))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}
