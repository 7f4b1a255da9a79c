package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port           int
	JWTSecret      string
	DatabaseURL    string
	RedisURL       string // optional; empty disables the entitlement cache
	GatewayURL     string // empty switches to the mock gateway (local dev)
	GatewayAPIKey  string
	GatewayTimeout time.Duration
	SweepInterval  time.Duration
	CORSOrigins    []string
	AdminEmail     string
	AdminPassword  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, _ := strconv.Atoi(getEnv("PORT", "4001"))

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	gatewayTimeout, err := time.ParseDuration(getEnv("GATEWAY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GATEWAY_TIMEOUT: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,https://campusmarket.app"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		Port:           port,
		JWTSecret:      jwtSecret,
		DatabaseURL:    dbURL,
		RedisURL:       getEnv("REDIS_URL", ""),
		GatewayURL:     getEnv("GATEWAY_URL", ""),
		GatewayAPIKey:  getEnv("GATEWAY_API_KEY", ""),
		GatewayTimeout: gatewayTimeout,
		SweepInterval:  sweepInterval,
		CORSOrigins:    origins,
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@campusmarket.app"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
