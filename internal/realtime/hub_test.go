package realtime

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/ports"
)

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (ports.Identity, error) {
	if token != "good-token" {
		return ports.Identity{}, apperr.Unauthorized("invalid token", nil)
	}
	return ports.Identity{UserID: "user-1", Email: "u@example.com"}, nil
}

type wsFixture struct {
	hub *Hub
	url string
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), stubVerifier{})
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	return &wsFixture{
		hub: hub,
		url: "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
}

func dialWithCookie(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Set("Cookie", "access_token=good-token")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame map[string]any
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestHubConnectWithCookie(t *testing.T) {
	fx := newWSFixture(t)
	conn := dialWithCookie(t, fx.url)

	frame := readFrame(t, conn)
	if frame["type"] != "connected" {
		t.Fatalf("frame type = %v", frame["type"])
	}
	if frame["user_id"] != "user-1" {
		t.Fatalf("user_id = %v", frame["user_id"])
	}
}

func TestHubConnectWithAuthFrame(t *testing.T) {
	fx := newWSFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(fx.url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := conn.WriteJSON(map[string]string{"type": "auth", "token": "good-token"}); err != nil {
		t.Fatalf("write auth frame: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "connected" {
		t.Fatalf("frame type = %v", frame["type"])
	}
}

func TestHubConnectWithBearerHeader(t *testing.T) {
	fx := newWSFixture(t)

	header := http.Header{}
	header.Set("Authorization", "Bearer good-token")
	conn, _, err := websocket.DefaultDialer.Dial(fx.url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// A non-auth first frame makes the gateway fall through to the
	// Authorization header without waiting out the handshake deadline.
	if err := conn.WriteJSON(map[string]string{"type": "hello"}); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "connected" {
		t.Fatalf("frame type = %v", frame["type"])
	}
}

func TestHubRejectsBadToken(t *testing.T) {
	fx := newWSFixture(t)

	header := http.Header{}
	header.Set("Cookie", "access_token=forged")
	conn, _, err := websocket.DefaultDialer.Dial(fx.url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	frame := readFrame(t, conn)
	if frame["type"] != "error" {
		t.Fatalf("frame type = %v", frame["type"])
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection to be closed after auth failure")
	}

	if n := fx.hub.registry.totalMembers(); n != 0 {
		t.Fatalf("registry members = %d, want 0 after rejection", n)
	}
}

func TestHubRejectsMissingToken(t *testing.T) {
	fx := newWSFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(fx.url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// No cookie, no header; a non-auth first frame skips the auth-frame
	// wait so the gateway resolves an empty token.
	if err := conn.WriteJSON(map[string]string{"type": "hello"}); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "error" {
		t.Fatalf("frame type = %v", frame["type"])
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection to be closed after auth failure")
	}

	if n := fx.hub.registry.totalMembers(); n != 0 {
		t.Fatalf("registry members = %d, want 0 after rejection", n)
	}
}

func TestHubSubscribeReceivesPush(t *testing.T) {
	fx := newWSFixture(t)
	conn := dialWithCookie(t, fx.url)
	readFrame(t, conn) // connected

	if err := conn.WriteJSON(map[string]string{"type": "subscribe", "request_id": "req-9"}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	ack := readFrame(t, conn)
	if ack["type"] != "subscribed" || ack["room"] != "request:req-9" {
		t.Fatalf("ack = %v", ack)
	}

	fx.hub.Push("request:req-9", "optimization:completed", ports.RoomMessage{
		Status:    "COMPLETED",
		Timestamp: time.Now(),
		Payload:   map[string]any{"request_id": "req-9"},
	})

	push := readFrame(t, conn)
	if push["type"] != "event" {
		t.Fatalf("push type = %v", push["type"])
	}
	if push["event"] != "optimization:completed" {
		t.Fatalf("push event = %v", push["event"])
	}
	if push["room"] != "request:req-9" {
		t.Fatalf("push room = %v", push["room"])
	}
	data, ok := push["data"].(map[string]any)
	if !ok || data["status"] != "COMPLETED" {
		t.Fatalf("push data = %v", push["data"])
	}
}

func TestHubUnsubscribeStopsPush(t *testing.T) {
	fx := newWSFixture(t)
	conn := dialWithCookie(t, fx.url)
	readFrame(t, conn) // connected

	conn.WriteJSON(map[string]string{"type": "subscribe", "route_id": "route-3"})
	readFrame(t, conn) // subscribed

	conn.WriteJSON(map[string]string{"type": "unsubscribe", "route_id": "route-3"})
	ack := readFrame(t, conn)
	if ack["type"] != "unsubscribed" || ack["room"] != "route:route-3" {
		t.Fatalf("ack = %v", ack)
	}

	fx.hub.Push("route:route-3", "route:update-requested", ports.RoomMessage{Status: "TRAFFIC"})

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var frame map[string]any
	if err := conn.ReadJSON(&frame); err == nil {
		t.Fatalf("unexpected frame after unsubscribe: %v", frame)
	}
}

func TestHubUserRoomPush(t *testing.T) {
	fx := newWSFixture(t)
	conn := dialWithCookie(t, fx.url)
	readFrame(t, conn) // connected

	fx.hub.Push("user:user-1", "optimization:requested", ports.RoomMessage{Status: "PROCESSING"})

	push := readFrame(t, conn)
	if push["type"] != "event" || push["event"] != "optimization:requested" {
		t.Fatalf("push = %v", push)
	}
}

func TestHubPongBeforeFirstFrame(t *testing.T) {
	fx := newWSFixture(t)
	conn := dialWithCookie(t, fx.url)
	readFrame(t, conn) // connected

	// The pong handler is installed before the read loop starts, so an
	// immediate pong must be absorbed and the session must keep working.
	if err := conn.WriteControl(websocket.PongMessage, nil, time.Now().Add(time.Second)); err != nil {
		t.Fatalf("write pong: %v", err)
	}

	if err := conn.WriteJSON(map[string]string{"type": "subscribe", "request_id": "req-2"}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
	ack := readFrame(t, conn)
	if ack["type"] != "subscribed" || ack["room"] != "request:req-2" {
		t.Fatalf("ack = %v", ack)
	}
}

func TestHubSubscribeWithoutTargetIsError(t *testing.T) {
	fx := newWSFixture(t)
	conn := dialWithCookie(t, fx.url)
	readFrame(t, conn) // connected

	conn.WriteJSON(map[string]string{"type": "subscribe"})

	frame := readFrame(t, conn)
	if frame["type"] != "error" {
		t.Fatalf("frame type = %v", frame["type"])
	}
}
