package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type BookingChannel string

const (
	ChannelOnline  BookingChannel = "online"
	ChannelCounter BookingChannel = "counter"
)

// BookedSeat is the priced seat as it was at booking time.
type BookedSeat struct {
	ID    string          `json:"id"`
	Tier  string          `json:"tier"`
	Price decimal.Decimal `json:"price"`
}

type Booking struct {
	ID         string          `json:"id"`
	Reference  string          `json:"reference"`
	CustomerID string          `json:"customer_id,omitempty"`
	SalesmanID string          `json:"salesman_id,omitempty"`
	HolderID   string          `json:"-"`
	Channel    BookingChannel  `json:"channel"`
	ShowtimeID string          `json:"showtime_id"`
	MovieID    string          `json:"movie_id"`
	MovieTitle string          `json:"movie_title"`
	Seats      []BookedSeat    `json:"seats"`
	CouponCode string          `json:"coupon_code,omitempty"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	Status     BookingStatus   `json:"status"`
	PaymentID  string          `json:"payment_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

func (b *Booking) SeatIDs() []string {
	ids := make([]string, len(b.Seats))
	for i, s := range b.Seats {
		ids[i] = s.ID
	}
	return ids
}

// OwnedBy reports whether userID is the customer or the salesman on the booking.
func (b *Booking) OwnedBy(userID string) bool {
	return userID != "" && (b.CustomerID == userID || b.SalesmanID == userID)
}
