package ports

import "time"

// Message pushed to every connection currently subscribed to a room.
type RoomMessage struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Port: delivery of a named message to all sockets in a room. Delivery
// is attempted only for currently-subscribed connections; there is no
// durability or replay.
type RoomNotifier interface {
	Push(room, event string, message RoomMessage)
}
