package discount

import (
	"testing"
	"time"

	"cinema-ticket/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func percent(v string) models.Coupon {
	return models.Coupon{Code: "PCT", Type: models.CouponPercentage, Value: dec(v), Active: true}
}

func fixed(v string) models.Coupon {
	return models.Coupon{Code: "FIX", Type: models.CouponFixed, Value: dec(v), Active: true}
}

func TestCalculate_Percentage(t *testing.T) {
	assert.Equal(t, "7.5", Calculate(percent("25"), dec("30")).String())
	assert.Equal(t, "3.33", Calculate(percent("10"), dec("33.33")).String())
	assert.Equal(t, "0.01", Calculate(percent("10"), dec("0.05")).String())
}

func TestCalculate_PercentageCappedAtMax(t *testing.T) {
	c := percent("50")
	c.MaxDiscount = decPtr("20")

	// min(subtotal * V / 100, C)
	assert.Equal(t, "20", Calculate(c, dec("100")).String())
	assert.Equal(t, "15", Calculate(c, dec("30")).String())
	assert.Equal(t, "20", Calculate(c, dec("40")).String())
}

func TestCalculate_Fixed(t *testing.T) {
	c := fixed("5")
	assert.Equal(t, "5", Calculate(c, dec("30")).String())

	// A cap only limits percentage coupons.
	c.MaxDiscount = decPtr("2")
	assert.Equal(t, "5", Calculate(c, dec("30")).String())
}

func TestCalculate_BelowMinimumPurchase(t *testing.T) {
	f := fixed("5")
	f.MinPurchase = decPtr("50")
	assert.True(t, Calculate(f, dec("49.99")).IsZero())
	assert.Equal(t, "5", Calculate(f, dec("50")).String())

	p := percent("10")
	p.MinPurchase = decPtr("50")
	assert.True(t, Calculate(p, dec("20")).IsZero())
	assert.Equal(t, "6", Calculate(p, dec("60")).String())
}

func TestCalculate_UnknownType(t *testing.T) {
	c := models.Coupon{Type: "bogo", Value: dec("10")}
	assert.True(t, Calculate(c, dec("100")).IsZero())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *models.Coupon)
		want   error
	}{
		{"valid", func(c *models.Coupon) {}, nil},
		{"inactive", func(c *models.Coupon) { c.Active = false }, ErrInactive},
		{"not started", func(c *models.Coupon) { c.ValidFrom = now.Add(time.Hour) }, ErrNotStarted},
		{"expired", func(c *models.Coupon) { c.ValidUntil = now.Add(-time.Second) }, ErrExpired},
		{"last valid instant", func(c *models.Coupon) { c.ValidUntil = now }, nil},
		{"exhausted", func(c *models.Coupon) { c.UsageLimit = 3; c.UsedCount = 3 }, ErrExhausted},
		{"remaining uses", func(c *models.Coupon) { c.UsageLimit = 3; c.UsedCount = 2 }, nil},
		{"unlimited", func(c *models.Coupon) { c.UsedCount = 1000 }, nil},
		{"min purchase", func(c *models.Coupon) { c.MinPurchase = decPtr("100") }, ErrMinPurchase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := percent("10")
			tt.mutate(&c)
			err := Validate(c, dec("40"), now)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_MinPurchaseMessage(t *testing.T) {
	c := fixed("5")
	c.MinPurchase = decPtr("45")

	err := Validate(c, dec("40"), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "45.00")
}

func TestApply(t *testing.T) {
	r, err := Apply(percent("20"), dec("45"), now)
	require.NoError(t, err)
	assert.Equal(t, "PCT", r.Code)
	assert.Equal(t, "9", r.Discount.String())
	assert.Equal(t, "36", r.Total.String())
	assert.Equal(t, "45", r.Subtotal.String())
}

func TestApply_FixedLargerThanSubtotal(t *testing.T) {
	r, err := Apply(fixed("50"), dec("30"), now)
	require.NoError(t, err)
	assert.Equal(t, "50", r.Discount.String())
	assert.True(t, r.Total.IsZero())
}

func TestApply_InvalidCoupon(t *testing.T) {
	c := percent("20")
	c.Active = false

	r, err := Apply(c, dec("45"), now)
	assert.ErrorIs(t, err, ErrInactive)
	assert.Equal(t, Result{}, r)
}

func TestNone(t *testing.T) {
	r := None(dec("27"))
	assert.True(t, r.Discount.IsZero())
	assert.Equal(t, "27", r.Total.String())
}
