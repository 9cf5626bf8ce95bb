package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

var couponCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

type Coupon struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	Description string           `json:"description"`
	Type        CouponType       `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	MinPurchase *decimal.Decimal `json:"min_purchase,omitempty"`
	MaxDiscount *decimal.Decimal `json:"max_discount,omitempty"`
	ValidFrom   time.Time        `json:"valid_from"`
	ValidUntil  time.Time        `json:"valid_until"`
	UsageLimit  int              `json:"usage_limit"` // 0 means unlimited
	UsedCount   int              `json:"used_count"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NormalizeCouponCode upper-cases and trims a user supplied code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c Coupon) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Code, validation.Required, validation.Match(couponCodePattern).Error("must be 3-32 upper-case letters, digits, '-' or '_'")),
		validation.Field(&c.Type, validation.Required, validation.In(CouponPercentage, CouponFixed)),
		validation.Field(&c.Value, validation.By(c.validateValue)),
		validation.Field(&c.MinPurchase, validation.By(nonNegativeDecimal)),
		validation.Field(&c.MaxDiscount, validation.By(positiveDecimal)),
		validation.Field(&c.ValidUntil, validation.When(!c.ValidFrom.IsZero(), validation.Min(c.ValidFrom).Exclusive().Error("must be after valid_from"))),
		validation.Field(&c.UsageLimit, validation.Min(0)),
	)
}

func (c Coupon) validateValue(value any) error {
	v, _ := value.(decimal.Decimal)
	if !v.IsPositive() {
		return errors.New("must be greater than zero")
	}
	if c.Type == CouponPercentage && v.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("must be at most 100 for percentage coupons")
	}
	return nil
}

func positiveDecimal(value any) error {
	v, ok := value.(*decimal.Decimal)
	if !ok || v == nil {
		return nil
	}
	if !v.IsPositive() {
		return errors.New("must be greater than zero")
	}
	return nil
}

func nonNegativeDecimal(value any) error {
	v, ok := value.(*decimal.Decimal)
	if !ok || v == nil {
		return nil
	}
	if v.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}
