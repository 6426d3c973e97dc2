package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// CreditCosts are the metered prices per operation.
type CreditCosts struct {
	RevealEmail int
	RevealPhone int
	Search      int
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	DBMaxConns      int
	JWTSecret       string
	Port            string
	Production      bool
	ApolloAPIKey    string
	ApolloBaseURL   string
	WebhookURL      string
	WebhookToken    string
	DefaultSchema   string
	Costs           CreditCosts
	RateLimitReveal RateLimitConfig
	TokenTTL        time.Duration
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret"),
		Port:          getEnv("PORT", "8080"),
		Production:    strings.EqualFold(getEnv("APP_ENV", "development"), "production"),
		ApolloAPIKey:  os.Getenv("APOLLO_API_KEY"),
		ApolloBaseURL: getEnv("APOLLO_BASE_URL", "https://api.apollo.io/v1"),
		WebhookURL:    os.Getenv("APOLLO_WEBHOOK_URL"),
		WebhookToken:  os.Getenv("APOLLO_WEBHOOK_TOKEN"),
		DefaultSchema: getEnv("DEFAULT_SCHEMA", "public"),
		TokenTTL:      parseDuration(getEnv("JWT_TTL", "24h")),
	}

	var err error
	if cfg.DBMaxConns, err = parsePositiveInt(getEnv("DB_MAX_CONNS", "10")); err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS value: %w", err)
	}
	if cfg.Costs.RevealEmail, err = parsePositiveInt(getEnv("CREDIT_COST_REVEAL_EMAIL", "1")); err != nil {
		return nil, fmt.Errorf("invalid CREDIT_COST_REVEAL_EMAIL value: %w", err)
	}
	if cfg.Costs.RevealPhone, err = parsePositiveInt(getEnv("CREDIT_COST_REVEAL_PHONE", "8")); err != nil {
		return nil, fmt.Errorf("invalid CREDIT_COST_REVEAL_PHONE value: %w", err)
	}
	if cfg.Costs.Search, err = parsePositiveInt(getEnv("CREDIT_COST_SEARCH", "1")); err != nil {
		return nil, fmt.Errorf("invalid CREDIT_COST_SEARCH value: %w", err)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_REVEAL", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REVEAL value: %w", err)
	}
	cfg.RateLimitReveal = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parsePositiveInt(input string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("value must be positive, got %d", value)
	}
	return value, nil
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
