// Package discount computes and validates coupon discounts.
package discount

import (
	"errors"
	"fmt"
	"time"

	"cinema-ticket/models"

	"github.com/shopspring/decimal"
)

var (
	ErrInactive    = errors.New("coupon: coupon is inactive")
	ErrNotStarted  = errors.New("coupon: coupon is not valid yet")
	ErrExpired     = errors.New("coupon: coupon has expired")
	ErrExhausted   = errors.New("coupon: usage limit reached")
	ErrMinPurchase = errors.New("coupon: minimum purchase not met")
)

var hundred = decimal.NewFromInt(100)

type Result struct {
	Code     string          `json:"code,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Calculate returns the discount a coupon grants on subtotal, rounded to cents.
// Nothing is granted below the coupon's minimum purchase.
func Calculate(c models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if c.MinPurchase != nil && subtotal.LessThan(*c.MinPurchase) {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch c.Type {
	case models.CouponPercentage:
		amount = subtotal.Mul(c.Value).Div(hundred)
		if c.MaxDiscount != nil && amount.GreaterThan(*c.MaxDiscount) {
			amount = *c.MaxDiscount
		}
	case models.CouponFixed:
		amount = c.Value
	default:
		return decimal.Zero
	}
	return amount.Round(2)
}

// Validate checks whether the coupon can be used for subtotal at now.
func Validate(c models.Coupon, subtotal decimal.Decimal, now time.Time) error {
	switch {
	case !c.Active:
		return ErrInactive
	case !c.ValidFrom.IsZero() && now.Before(c.ValidFrom):
		return ErrNotStarted
	case !c.ValidUntil.IsZero() && now.After(c.ValidUntil):
		return ErrExpired
	case c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit:
		return ErrExhausted
	case c.MinPurchase != nil && subtotal.LessThan(*c.MinPurchase):
		return fmt.Errorf("%w: minimum purchase is %s", ErrMinPurchase, c.MinPurchase.StringFixed(2))
	}
	return nil
}

// Apply validates the coupon and prices the subtotal with it.
// The total never drops below zero, even for a fixed coupon larger than the subtotal.
func Apply(c models.Coupon, subtotal decimal.Decimal, now time.Time) (Result, error) {
	if err := Validate(c, subtotal, now); err != nil {
		return Result{}, err
	}
	d := Calculate(c, subtotal)
	return Result{
		Code:     c.Code,
		Subtotal: subtotal,
		Discount: d,
		Total:    decimal.Max(subtotal.Sub(d), decimal.Zero),
	}, nil
}

// None prices a subtotal without a coupon.
func None(subtotal decimal.Decimal) Result {
	return Result{Subtotal: subtotal, Discount: decimal.Zero, Total: subtotal}
}
