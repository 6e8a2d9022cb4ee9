package dto

import "time"

type StopRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type PreferencesRequest struct {
	AvoidTolls    bool   `json:"avoid_tolls"`
	AvoidHighways bool   `json:"avoid_highways"`
	OptimizeFor   string `json:"optimize_for"`
}

type OptimizeRequest struct {
	VehicleID   string             `json:"vehicle_id"`
	UserID      string             `json:"user_id"`
	Stops       []StopRequest      `json:"stops"`
	Preferences PreferencesRequest `json:"preferences"`
}

type WaypointResponse struct {
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Address          string    `json:"address"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
}

type MetricsResponse struct {
	TimeSavedSeconds       float64 `json:"time_saved_seconds"`
	DistanceSavedKm        float64 `json:"distance_saved_km"`
	FuelSavedLiters        float64 `json:"fuel_saved_liters"`
	CO2SavedKg             float64 `json:"co2_saved_kg"`
	CostSaved              float64 `json:"cost_saved"`
	TimeImprovementPct     int     `json:"time_improvement_pct"`
	DistanceImprovementPct int     `json:"distance_improvement_pct"`
	FuelEfficiencyPct      int     `json:"fuel_efficiency_pct"`
}

type RouteResponse struct {
	RouteID              string             `json:"route_id"`
	RequestID            string             `json:"request_id"`
	VehicleID            string             `json:"vehicle_id"`
	TotalDistanceMeters  float64            `json:"total_distance_meters"`
	TotalDurationSeconds int                `json:"total_duration_seconds"`
	Waypoints            []WaypointResponse `json:"waypoints"`
	Metrics              MetricsResponse    `json:"metrics"`
	EncodedPath          string             `json:"encoded_path,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
}

type OptimizeResponse struct {
	RequestID string         `json:"request_id"`
	Status    string         `json:"status"`
	Route     *RouteResponse `json:"route,omitempty"`
}

type RouteUpdateResponse struct {
	UpdateID  string    `json:"update_id"`
	RouteID   string    `json:"route_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type StatusResponse struct {
	RequestID   string                `json:"request_id"`
	VehicleID   string                `json:"vehicle_id"`
	UserID      string                `json:"user_id"`
	Status      string                `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	Route       *RouteResponse        `json:"route,omitempty"`
	Updates     []RouteUpdateResponse `json:"updates,omitempty"`
}

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type RecordUpdateRequest struct {
	VehicleID       string          `json:"vehicle_id"`
	Reason          string          `json:"reason"`
	CurrentLocation LocationRequest `json:"current_location"`
}

type TrackingResponse struct {
	VehicleID string          `json:"vehicle_id"`
	Routes    []RouteResponse `json:"routes"`
}

type RequestSummaryResponse struct {
	RequestID   string     `json:"request_id"`
	VehicleID   string     `json:"vehicle_id"`
	Status      string     `json:"status"`
	StopCount   int        `json:"stop_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type HistoryResponse struct {
	UserID   string                   `json:"user_id"`
	Requests []RequestSummaryResponse `json:"requests"`
}
