package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Server configuration
	Environment string

	// Redis configuration
	RedisURL string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUUID         string
	PaymentChannel     string

	// Event transport: "redis" uses Redis streams, "memory" keeps events in process
	EventTransport string

	// Booking configuration
	MaxSeatsPerBooking int
	DefaultBasePrice   decimal.Decimal

	// Timeout configuration
	SeatLockTimeout time.Duration
	PaymentTimeout  time.Duration

	// Cleanup configuration
	PendingSweepInterval time.Duration

	// Security
	ThrottleLimit  int
	ThrottleWindow time.Duration

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	// .env is optional; real deployments pass plain environment variables.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUUID:         getEnv("PUBNUB_UUID", "cinema-ticket-server"),
		PaymentChannel:     getEnv("PAYMENT_NOTIFY_CHANNEL", "payment-notifications"),

		EventTransport: getEnv("EVENT_TRANSPORT", "redis"),

		// Booking
		MaxSeatsPerBooking: getEnvAsInt("MAX_SEATS_PER_BOOKING", 10),
		DefaultBasePrice:   getEnvAsDecimal("DEFAULT_BASE_PRICE", "12.00"),

		// Timeouts
		SeatLockTimeout: getEnvAsDuration("SEAT_LOCK_TIMEOUT", "5m"),
		PaymentTimeout:  getEnvAsDuration("PAYMENT_TIMEOUT", "10m"),

		// Cleanup
		PendingSweepInterval: getEnvAsDuration("PENDING_SWEEP_INTERVAL", "1m"),

		// Security
		ThrottleLimit:  getEnvAsInt("THROTTLE_LIMIT", 120),
		ThrottleWindow: getEnvAsDuration("THROTTLE_WINDOW", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := getEnv(key, defaultValue)
	if value, err := decimal.NewFromString(valueStr); err == nil {
		return value
	}
	return decimal.RequireFromString(defaultValue)
}
