// Package events carries domain events between services over watermill.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Header struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewHeader() Header {
	return Header{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

type BookingConfirmed struct {
	Header     Header          `json:"header"`
	BookingID  string          `json:"booking_id"`
	Reference  string          `json:"reference"`
	CustomerID string          `json:"customer_id"`
	SalesmanID string          `json:"salesman_id,omitempty"`
	Channel    string          `json:"channel"`
	ShowtimeID string          `json:"showtime_id"`
	MovieTitle string          `json:"movie_title"`
	Seats      []string        `json:"seats"`
	Total      decimal.Decimal `json:"total"`
}

type BookingCancelled struct {
	Header     Header   `json:"header"`
	BookingID  string   `json:"booking_id"`
	Reference  string   `json:"reference"`
	CustomerID string   `json:"customer_id"`
	ShowtimeID string   `json:"showtime_id"`
	Seats      []string `json:"seats"`
	Reason     string   `json:"reason"`
}

type MessageSent struct {
	Header         Header    `json:"header"`
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	Preview        string    `json:"preview"`
	SentAt         time.Time `json:"sent_at"`
}

type PromotionPublished struct {
	Header      Header    `json:"header"`
	PromotionID string    `json:"promotion_id"`
	Title       string    `json:"title"`
	CouponCode  string    `json:"coupon_code,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

type SupportTicketUpdated struct {
	Header     Header `json:"header"`
	TicketID   string `json:"ticket_id"`
	CustomerID string `json:"customer_id"`
	Subject    string `json:"subject"`
	Status     string `json:"status"`
}
