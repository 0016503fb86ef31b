package notify

import (
	"log/slog"
	"sync"
)

// Conn is the minimal connection surface the hub needs. Satisfied by
// *websocket.Conn via wsConn; tests register fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub tracks live connections per user and fans committed notifications out
// to them. A user may hold several connections (multiple tabs/devices).
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[Conn]struct{}
	logger *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[Conn]struct{}),
		logger: logger,
	}
}

// Register adds a connection for a user
func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}

	h.logger.Debug("Websocket connection registered",
		slog.String("user_id", userID),
	)
}

// Unregister removes a connection for a user
func (h *Hub) Unregister(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Send delivers a payload to every live connection of one user. A write
// failure drops that connection; the recipient still has the stored row.
func (h *Hub) Send(userID string, payload interface{}) int {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.conns[userID]))
	for conn := range h.conns[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.logger.Debug("Dropping dead websocket connection",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			h.Unregister(userID, conn)
			conn.Close()
			continue
		}
		delivered++
	}

	return delivered
}

// Connected reports how many connections a user currently holds
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
