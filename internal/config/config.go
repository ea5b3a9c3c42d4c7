// Package config provides environment-driven configuration for the social graph service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL       Secret
	DBMaxConns        int
	Port              string
	MetricsPort       string
	ListenHost        string
	CORSOrigins       []string
	LogLevel          string
	RedisURL          Secret
	CacheSize         int
	CacheTTL          time.Duration
	TraversalMaxDepth int
	TraversalTimeout  time.Duration
	FetchConcurrency  int
	StrengthDecayRate float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: Secret(envOrDefault("DATABASE_URL", "")),
		Port:        envOrDefault("PORT", "3040"),
		MetricsPort: envOrDefault("METRICS_PORT", "9092"),
		ListenHost:  envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		RedisURL:    Secret(envOrDefault("REDIS_URL", "")),
	}

	var err error

	if cfg.DBMaxConns, err = envInt("DB_MAX_CONNS", 20, 2, 200); err != nil {
		return nil, err
	}

	if cfg.CacheSize, err = envInt("CACHE_SIZE", 10000, 1, 10_000_000); err != nil {
		return nil, err
	}

	if cfg.TraversalMaxDepth, err = envInt("TRAVERSAL_MAX_DEPTH", 4, 1, 10); err != nil {
		return nil, err
	}

	if cfg.FetchConcurrency, err = envInt("FETCH_CONCURRENCY", 8, 1, 64); err != nil {
		return nil, err
	}

	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	if cfg.TraversalTimeout, err = envDuration("TRAVERSAL_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	decay, err := strconv.ParseFloat(envOrDefault("STRENGTH_DECAY_RATE", "0.1"), 64)
	if err != nil {
		return nil, fmt.Errorf("STRENGTH_DECAY_RATE must be a number: %w", err)
	}
	cfg.StrengthDecayRate = decay

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback, lo, hi int) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, strconv.Itoa(fallback)))
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}

	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback.String()))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 30s", key)
	}

	return d, nil
}
