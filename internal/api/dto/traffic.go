package dto

import "time"

type TrafficReportRequest struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Condition   string  `json:"condition"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	Source      string  `json:"source"`
}

type TrafficConditionResponse struct {
	ID          string    `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Condition   string    `json:"condition"`
	Severity    string    `json:"severity"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListTrafficResponse struct {
	Conditions []TrafficConditionResponse `json:"conditions"`
}
