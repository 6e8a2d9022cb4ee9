package domain

import "time"

// Lifecycle status of an optimization request.
//
// StatusPending exists as the schema default for interop but the
// lifecycle creates requests directly in StatusProcessing; no code path
// here ever emits it. A request moves monotonically from PROCESSING to
// exactly one of COMPLETED or FAILED.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// A submitted multi-stop optimization request. Owned exclusively by the
// lifecycle service: created once, mutated only through status
// transitions, never deleted.
type OptimizationRequest struct {
	ID          string
	VehicleID   string
	UserID      string
	Stops       []Stop
	Preferences Preferences
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
