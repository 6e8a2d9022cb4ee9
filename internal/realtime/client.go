package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingPeriod   = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 5 * time.Second
	sendCapacity = 16
)

// client owns the write side of one websocket connection. All outbound
// frames funnel through sendCh; a full buffer drops the frame instead
// of blocking the broadcaster on a slow consumer.
type client struct {
	once   sync.Once
	done   chan struct{}
	sendCh chan any
}

func newClient() *client {
	return &client{
		done:   make(chan struct{}),
		sendCh: make(chan any, sendCapacity),
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *client) send(frame any) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.sendCh <- frame:
	default:
	}
}

// writer drains sendCh onto the connection until the client closes or a
// write fails.
func (c *client) writer(conn *websocket.Conn) {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.sendCh:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

// keepalive pings on a ticker. The pong handler and read deadline are
// installed before this goroutine starts; touching them here would race
// with the read loop.
func (c *client) keepalive(conn *websocket.Conn) {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				conn.Close()
				return
			}
		}
	}
}
