package domain

import "time"

type TrafficLevel string

const (
	TrafficClear   TrafficLevel = "CLEAR"
	TrafficSlow    TrafficLevel = "SLOW"
	TrafficHeavy   TrafficLevel = "HEAVY"
	TrafficBlocked TrafficLevel = "BLOCKED"
)

func (l TrafficLevel) Valid() bool {
	switch l {
	case TrafficClear, TrafficSlow, TrafficHeavy, TrafficBlocked:
		return true
	}
	return false
}

type TrafficSeverity string

const (
	SeverityLow      TrafficSeverity = "LOW"
	SeverityMedium   TrafficSeverity = "MEDIUM"
	SeverityHigh     TrafficSeverity = "HIGH"
	SeverityCritical TrafficSeverity = "CRITICAL"
)

func (s TrafficSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Reported traffic at a point. Persisted alongside the routing data for
// downstream consumers; the optimization pipeline itself never reads it.
type TrafficCondition struct {
	ID          string
	Latitude    float64
	Longitude   float64
	Condition   TrafficLevel
	Severity    TrafficSeverity
	Description string
	Source      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
