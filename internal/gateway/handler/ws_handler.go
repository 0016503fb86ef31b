package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jobdeck/jobdeck-be/internal/gateway/auth"
	"github.com/jobdeck/jobdeck-be/internal/notify"
)

// WSHandler upgrades authenticated clients to a websocket and registers
// them on the notification hub.
type WSHandler struct {
	logger   *slog.Logger
	hub      *notify.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler instance
func NewWSHandler(deps *Dependencies) *WSHandler {
	return &WSHandler{
		logger: deps.Logger,
		hub:    deps.Hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced by the CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws/notifications. The connection is push-only:
// committed notifications flow out, client frames are drained and ignored.
func (h *WSHandler) Serve(c *gin.Context) {
	identity := auth.FromContext(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed",
			slog.String("user_id", identity.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	h.hub.Register(identity.ID, conn)
	defer func() {
		h.hub.Unregister(identity.ID, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
