package realtime

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"route-optimizer-service/internal/ports"
	"route-optimizer-service/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundFrame struct {
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	RouteID   string `json:"route_id,omitempty"`
}

type pushFrame struct {
	Type  string            `json:"type"`
	Event string            `json:"event"`
	Room  string            `json:"room"`
	Data  ports.RoomMessage `json:"data"`
}

// Hub is the websocket gateway. It authenticates each connection, binds
// it to the caller's user room, and serves subscribe/unsubscribe frames
// for request and route rooms. It is also the RoomNotifier the fanout
// pushes through.
type Hub struct {
	logger   *slog.Logger
	verifier ports.TokenVerifier
	registry *registry
}

func NewHub(logger *slog.Logger, verifier ports.TokenVerifier) *Hub {
	return &Hub{
		logger:   logger,
		verifier: verifier,
		registry: newRegistry(),
	}
}

// Push broadcasts a room message to every connection subscribed to the
// room. Implements ports.RoomNotifier.
func (h *Hub) Push(room, event string, message ports.RoomMessage) {
	h.registry.broadcast(room, pushFrame{
		Type:  "event",
		Event: event,
		Room:  room,
		Data:  message,
	})
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	identity, err := h.verifier.Verify(h.extractToken(conn, r))
	if err != nil {
		conn.WriteJSON(map[string]string{"type": "error", "error": "unauthorized"})
		return
	}

	c := newClient()
	defer c.close()

	h.registry.join("user:"+identity.UserID, c)
	defer h.registry.drop(c)

	// Pong handling is wired before any goroutine touches the
	// connection; gorilla does not synchronize handler fields.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writer(conn)
	go c.keepalive(conn)

	c.send(map[string]string{"type": "connected", "user_id": identity.UserID})
	h.logger.Info("websocket connected", "user_id", identity.UserID)

	h.readLoop(conn, c)
}

// extractToken resolves the access token: the access_token cookie wins,
// then an auth frame sent within 5 seconds of connecting, then the
// Authorization header from the upgrade request.
func (h *Hub) extractToken(conn *websocket.Conn, r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame inboundFrame
	if err := conn.ReadJSON(&frame); err == nil && frame.Type == "auth" && frame.Token != "" {
		return frame.Token
	}

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}

func (h *Hub) readLoop(conn *websocket.Conn, c *client) {
	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case "subscribe":
			room, ok := frameRoom(frame)
			if !ok {
				c.send(map[string]string{"type": "error", "error": "subscribe needs request_id or route_id"})
				continue
			}
			h.registry.join(room, c)
			c.send(map[string]string{"type": "subscribed", "room": room})
		case "unsubscribe":
			room, ok := frameRoom(frame)
			if !ok {
				c.send(map[string]string{"type": "error", "error": "unsubscribe needs request_id or route_id"})
				continue
			}
			h.registry.leave(room, c)
			c.send(map[string]string{"type": "unsubscribed", "room": room})
		default:
			c.send(map[string]string{"type": "error", "error": "unknown frame type: " + frame.Type})
		}
	}
}

func frameRoom(frame inboundFrame) (string, bool) {
	switch {
	case frame.RequestID != "":
		return services.RequestRoom(frame.RequestID), true
	case frame.RouteID != "":
		return services.RouteRoom(frame.RouteID), true
	default:
		return "", false
	}
}
