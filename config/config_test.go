package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 10, cfg.MaxSeatsPerBooking)
	assert.Equal(t, 5*time.Minute, cfg.SeatLockTimeout)
	assert.Equal(t, 10*time.Minute, cfg.PaymentTimeout)
	assert.Equal(t, "payment-notifications", cfg.PaymentChannel)
	assert.True(t, decimal.RequireFromString("12").Equal(cfg.DefaultBasePrice))
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MAX_SEATS_PER_BOOKING", "4")
	t.Setenv("SEAT_LOCK_TIMEOUT", "90s")
	t.Setenv("DEFAULT_BASE_PRICE", "9.50")
	t.Setenv("ENABLE_METRICS", "false")

	cfg := LoadConfig()

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 4, cfg.MaxSeatsPerBooking)
	assert.Equal(t, 90*time.Second, cfg.SeatLockTimeout)
	assert.Equal(t, "9.5", cfg.DefaultBasePrice.String())
	assert.False(t, cfg.EnableMetrics)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_SEATS_PER_BOOKING", "many")
	t.Setenv("PAYMENT_TIMEOUT", "soon")
	t.Setenv("DEFAULT_BASE_PRICE", "free")

	cfg := LoadConfig()

	assert.Equal(t, 10, cfg.MaxSeatsPerBooking)
	assert.Equal(t, 10*time.Minute, cfg.PaymentTimeout)
	assert.Equal(t, "12", cfg.DefaultBasePrice.String())
}
