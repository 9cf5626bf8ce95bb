package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

type Payment struct {
	ID          string          `json:"payment_id"`
	BookingID   string          `json:"booking_id"`
	UserID      string          `json:"user_id"`
	ShowtimeID  string          `json:"showtime_id"`
	Seats       []string        `json:"seats"`
	Amount      decimal.Decimal `json:"amount"`
	Status      PaymentStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
