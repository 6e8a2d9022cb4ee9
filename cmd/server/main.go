package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"route-optimizer-service/internal/adapters/bus"
	"route-optimizer-service/internal/adapters/cache"
	"route-optimizer-service/internal/adapters/repositories"
	"route-optimizer-service/internal/adapters/routing"
	"route-optimizer-service/internal/api"
	"route-optimizer-service/internal/auth"
	"route-optimizer-service/internal/config"
	"route-optimizer-service/internal/platform/db"
	"route-optimizer-service/internal/platform/logging"
	"route-optimizer-service/internal/ports"
	"route-optimizer-service/internal/realtime"
	"route-optimizer-service/internal/services"
)

const routeCacheTTL = 6 * time.Hour

// main is the application composition root. It wires concrete adapters
// (Postgres, RabbitMQ, ORS, Redis) behind ports and starts the HTTP
// server.
func main() {
	logger := logging.New("route-optimizer")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repositories.InitSchema(ctx, pool); err != nil {
		logger.Error("schema init failed", "error", err)
		os.Exit(1)
	}

	publisher, err := bus.NewRabbitPublisher(cfg.RabbitURL, logger)
	if err != nil {
		logger.Error("rabbit connect failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	keyPEM, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		logger.Error("jwt public key read failed", "error", err)
		os.Exit(1)
	}
	verifier, err := auth.NewRS256Verifier(keyPEM, cfg.JWTIssuer)
	if err != nil {
		logger.Error("jwt verifier init failed", "error", err)
		os.Exit(1)
	}

	sequencer, err := buildSequencer(cfg, logger)
	if err != nil {
		logger.Error("sequencer init failed", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub(logger, verifier)
	fanout := services.NewFanout(logger, publisher, hub, cfg.EventExchange, "route-optimizer")
	lifecycle := services.NewLifecycle(
		logger,
		sequencer,
		repositories.NewPostgresRequestRepository(pool),
		repositories.NewPostgresRouteRepository(pool),
		fanout,
	)

	router := api.NewRouter(api.RouterDeps{
		Logger:  logger,
		Service: lifecycle,
		Traffic: repositories.NewPostgresTrafficRepository(pool),
		PingDB:  pool.Ping,
		WS:      hub.HandleWS,
		Origins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// buildSequencer picks the routing strategy: the ORS-backed sequencer
// when an API key is configured, the local heuristic otherwise. The
// Redis route cache is optional either way.
func buildSequencer(cfg config.Config, logger *slog.Logger) (services.RouteSequencer, error) {
	if cfg.ORSAPIKey == "" {
		logger.Info("no ORS api key configured; using heuristic sequencer")
		return services.NewHeuristicSequencer(), nil
	}

	var routeCache ports.RouteCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		routeCache = cache.NewRedisRouteCache(client, routeCacheTTL)
		logger.Info("route cache enabled", "addr", cfg.RedisAddr)
	}

	provider, err := routing.NewORSRouteProvider(logger, cfg.ORSAPIKey, routeCache)
	if err != nil {
		return nil, err
	}
	return services.NewProviderSequencer(provider), nil
}
