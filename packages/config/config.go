// Package config
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Run surface; CLI flags override these.
	Concurrency int
	OutDir      string

	// Fetch behavior. The zero values reproduce the historical scraper:
	// no request timeout, unlimited immediate retries.
	FetchTimeout       time.Duration
	RetryMaxAttempts   int
	RetryDelay         time.Duration
	RetryAfterFallback time.Duration

	// Optional response cache for detail pages.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Optional Postgres mirror of the finalized datasets.
	PostgresDSN string

	// Observability.
	MetricsAddr string
	LogFile     string
	LogLevel    string
}

func Load() (Config, error) {
	cfg := Config{}

	cfg.Concurrency = getEnvInt("CONCURRENCY", 4)
	cfg.OutDir = getEnv("OUT_DIR", "out")

	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 0)
	cfg.RetryMaxAttempts = getEnvInt("RETRY_MAX_ATTEMPTS", 0)
	cfg.RetryDelay = getEnvDuration("RETRY_DELAY", 0)
	cfg.RetryAfterFallback = getEnvDuration("RETRY_AFTER_FALLBACK", 5*time.Second)

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", 24*time.Hour)

	cfg.PostgresDSN = getEnv("PG_DSN", "")

	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")
	cfg.LogFile = getEnv("LOG_FILE", "")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Invalid integer in environment", "key", key, "value", raw, "error", err)
		return defaultVal
	}
	return v
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("Invalid duration in environment", "key", key, "value", raw, "error", err)
		return defaultVal
	}
	return v
}
