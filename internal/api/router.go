package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"route-optimizer-service/internal/api/handlers"
	"route-optimizer-service/internal/ports"
)

// RouterDeps collects everything the HTTP surface needs. Handlers stay
// unaware of concrete adapters.
type RouterDeps struct {
	Logger  *slog.Logger
	Service handlers.OptimizationService
	Traffic ports.TrafficRepository
	PingDB  func(ctx context.Context) error
	WS      http.HandlerFunc
	Origins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	r.Use(loggingMiddleware(deps.Logger))

	optimize := &handlers.OptimizeHandler{Logger: deps.Logger, Service: deps.Service}
	traffic := &handlers.TrafficHandler{Logger: deps.Logger, Repo: deps.Traffic}
	health := &handlers.HealthHandler{Logger: deps.Logger, PingDB: deps.PingDB}

	r.Get("/health", health.Health)

	r.Post("/api/optimize", optimize.Submit)
	r.Get("/api/optimize/{requestID}", optimize.Status)
	r.Post("/api/routes/{routeID}/updates", optimize.RecordUpdate)
	r.Get("/api/tracking/{vehicleID}", optimize.Tracking)
	r.Get("/api/history/{userID}", optimize.History)

	r.Post("/api/traffic", traffic.Report)
	r.Get("/api/traffic", traffic.List)

	if deps.WS != nil {
		r.Get("/ws", deps.WS)
	}

	return r
}
