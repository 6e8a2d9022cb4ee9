package domain

import "time"

// A stop annotated with its computed visit order and estimated arrival.
// Waypoint order in an OptimizedRoute is the actual visit order, not
// the input order.
type Waypoint struct {
	Latitude         float64
	Longitude        float64
	Address          string
	EstimatedArrival time.Time
}

// Savings of an optimized route relative to the unoptimized baseline.
// Every field is clamped to non-negative: a worse-than-baseline result
// reports zero savings, never negative values.
type OptimizationMetrics struct {
	TimeSavedSeconds       float64
	DistanceSavedKm        float64
	FuelSavedLiters        float64
	CO2SavedKg             float64
	CostSaved              float64
	TimeImprovementPct     int
	DistanceImprovementPct int
	FuelEfficiencyPct      int
}

// The persisted result of exactly one successful OptimizationRequest.
// Created once; never mutated afterwards except by appended RouteUpdate
// records.
type OptimizedRoute struct {
	ID                   string
	RequestID            string
	VehicleID            string
	TotalDistanceMeters  float64
	TotalDurationSeconds int
	Waypoints            []Waypoint
	Metrics              OptimizationMetrics
	EncodedPath          string
	CreatedAt            time.Time
}

// Why a post-completion route amendment was recorded.
type UpdateReason string

const (
	ReasonTrafficChange UpdateReason = "TRAFFIC_CHANGE"
	ReasonDriverRequest UpdateReason = "DRIVER_REQUEST"
	ReasonEmergency     UpdateReason = "EMERGENCY"
)

func (r UpdateReason) Valid() bool {
	switch r {
	case ReasonTrafficChange, ReasonDriverRequest, ReasonEmergency:
		return true
	}
	return false
}

// Append-only record of a post-completion route amendment. The service
// logs and rebroadcasts these; it does not re-optimize.
type RouteUpdate struct {
	ID           string
	RouteID      string
	VehicleID    string
	Reason       UpdateReason
	NewWaypoints []Waypoint
	CreatedAt    time.Time
}
