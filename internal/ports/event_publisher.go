package ports

import (
	"context"
	"time"
)

// A structured, versioned record of a lifecycle transition published to
// the message bus for downstream consumers.
type Event struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Data      any       `json:"data"`
}

// Port: at-most-once event publication to a named topic. Callers treat
// failures as best-effort; no retry happens behind this boundary on
// behalf of the core.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}
