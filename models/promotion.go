package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type PromotionStatus string

const (
	PromotionDraft     PromotionStatus = "draft"
	PromotionScheduled PromotionStatus = "scheduled"
	PromotionActive    PromotionStatus = "active"
	PromotionExpired   PromotionStatus = "expired"
)

type Promotion struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CouponCode  string    `json:"coupon_code,omitempty"`
	BannerURL   string    `json:"banner_url,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Published   bool      `json:"published"`
}

// StatusAt derives the promotion status from its publication flag and window.
func (p Promotion) StatusAt(now time.Time) PromotionStatus {
	switch {
	case !p.Published:
		return PromotionDraft
	case now.Before(p.StartsAt):
		return PromotionScheduled
	case !p.EndsAt.IsZero() && now.After(p.EndsAt):
		return PromotionExpired
	default:
		return PromotionActive
	}
}

func (p Promotion) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(3, 120)),
		validation.Field(&p.BannerURL, is.URL),
		validation.Field(&p.StartsAt, validation.Required),
		validation.Field(&p.EndsAt, validation.Required, validation.Min(p.StartsAt).Exclusive().Error("must be after starts_at")),
	)
}
