package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config is the process configuration, sourced from the environment.
type Config struct {
	ServiceName string
	Environment string

	HTTPAddr string

	// DatabaseDSN points at the read-only record store.
	DatabaseDSN string

	// ForecastDays is the default revenue forecast horizon.
	ForecastDays int
	// PairingLimit is the default top-K for course pairings.
	PairingLimit int
	// ReportCacheTTL bounds how long a computed batch report is reused.
	ReportCacheTTL time.Duration

	// RateLimit and RateWindow throttle report requests per client.
	RateLimit  int
	RateWindow time.Duration
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load reads configuration from the environment. A local .env file is
// honored when present; missing keys fall back to defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServiceName:    getEnv("SERVICE_NAME", "catermetrics"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "file:catermetrics.db?mode=ro"),
		ForecastDays:   getEnvInt("FORECAST_DAYS", 7),
		PairingLimit:   getEnvInt("PAIRING_LIMIT", 10),
		ReportCacheTTL: getEnvDuration("REPORT_CACHE_TTL", time.Minute),
		RateLimit:      getEnvInt("RATE_LIMIT", 30),
		RateWindow:     getEnvDuration("RATE_WINDOW", time.Minute),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
