package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, read once at startup.
type Config struct {
	Port        string
	DatabaseURL string

	RabbitURL     string
	EventExchange string

	// Empty ORSAPIKey selects the local heuristic sequencer.
	ORSAPIKey string

	// Empty RedisAddr disables the provider route cache.
	RedisAddr string

	JWTPublicKeyPath string
	JWTIssuer        string

	AllowedOrigins []string
}

// Load reads .env (when present) and the environment. Only the
// database, broker and JWT settings are hard requirements.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RabbitURL:        os.Getenv("RABBIT_URL"),
		EventExchange:    getEnv("EVENT_EXCHANGE", "route_topic"),
		ORSAPIKey:        strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		JWTPublicKeyPath: os.Getenv("JWT_PUBLIC_KEY_PATH"),
		JWTIssuer:        getEnv("JWT_ISSUER", "route-optimizer-idp"),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.RabbitURL == "" {
		return Config{}, fmt.Errorf("config: RABBIT_URL is required")
	}
	if cfg.JWTPublicKeyPath == "" {
		return Config{}, fmt.Errorf("config: JWT_PUBLIC_KEY_PATH is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
