// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the alert engine.
type Config struct {
	ServerAddress      string
	PostgresConn       string
	RedisURL           string
	FeedURL            string
	BillingURL         string
	DeliveryWebhookURL string
	FeedPollMinutes    int // how often the ingest poll fires
	DeliveryAttempts   int // bounded retry ceiling for the delivery channel
	LogJSON            bool
	LogDebug           bool
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	postgresConn := os.Getenv("POSTGRES_CONN")
	if postgresConn == "" {
		return nil, fmt.Errorf("POSTGRES_CONN is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	feedURL := os.Getenv("FEED_URL")
	if feedURL == "" {
		return nil, fmt.Errorf("FEED_URL is required")
	}

	deliveryURL := os.Getenv("DELIVERY_WEBHOOK_URL")
	if deliveryURL == "" {
		return nil, fmt.Errorf("DELIVERY_WEBHOOK_URL is required")
	}

	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = ":8080"
	}

	pollMinutes := 30
	if s := os.Getenv("FEED_POLL_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("FEED_POLL_MINUTES must be a positive integer, got %q", s)
		}
		pollMinutes = v
	}

	attempts := 4
	if s := os.Getenv("DELIVERY_MAX_ATTEMPTS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("DELIVERY_MAX_ATTEMPTS must be a positive integer, got %q", s)
		}
		attempts = v
	}

	return &Config{
		ServerAddress:      address,
		PostgresConn:       postgresConn,
		RedisURL:           redisURL,
		FeedURL:            feedURL,
		BillingURL:         os.Getenv("BILLING_URL"),
		DeliveryWebhookURL: deliveryURL,
		FeedPollMinutes:    pollMinutes,
		DeliveryAttempts:   attempts,
		LogJSON:            os.Getenv("LOG_JSON") == "true",
		LogDebug:           os.Getenv("LOG_DEBUG") == "true",
	}, nil
}
