package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cinema-ticket/internal/discount"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"
	"cinema-ticket/monitoring"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CouponService manages coupons. Redemptions are counted in Redis so that
// concurrent bookings cannot exceed a coupon's usage limit.
type CouponService struct {
	Store CouponStore
	Redis redis.Cmdable

	now func() time.Time
}

func NewCouponService(store CouponStore, redisClient redis.Cmdable) *CouponService {
	return &CouponService{Store: store, Redis: redisClient, now: time.Now}
}

func couponUsedKey(code string) string {
	return fmt.Sprintf("coupon:used:%s", code)
}

func (s *CouponService) List(ctx context.Context, f CouponFilter) ([]models.Coupon, error) {
	return s.Store.ListCoupons(ctx, f)
}

func (s *CouponService) Get(ctx context.Context, id string) (*models.Coupon, error) {
	c, err := s.Store.GetCoupon(ctx, id)
	if errors.Is(err, status.ErrNotFound) {
		return nil, status.ErrCouponNotFound
	}
	return c, err
}

func (s *CouponService) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	c, err := s.Store.GetCouponByCode(ctx, models.NormalizeCouponCode(code))
	if errors.Is(err, status.ErrNotFound) {
		return nil, status.ErrCouponNotFound
	}
	return c, err
}

func (s *CouponService) Create(ctx context.Context, c *models.Coupon) error {
	c.Code = models.NormalizeCouponCode(c.Code)
	c.UsedCount = 0
	if err := c.Validate(); err != nil {
		return err
	}

	if _, err := s.Store.GetCouponByCode(ctx, c.Code); err == nil {
		return status.ErrCouponCodeTaken
	} else if !errors.Is(err, status.ErrNotFound) {
		return err
	}

	c.CreatedAt = s.now().UTC()
	return s.Store.CreateCoupon(ctx, c)
}

// Update replaces the editable fields of coupon id with those of in.
// The code and usage count are kept.
func (s *CouponService) Update(ctx context.Context, id string, in models.Coupon) (*models.Coupon, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Description = in.Description
	c.Type = in.Type
	c.Value = in.Value
	c.MinPurchase = in.MinPurchase
	c.MaxDiscount = in.MaxDiscount
	c.ValidFrom = in.ValidFrom
	c.ValidUntil = in.ValidUntil
	c.UsageLimit = in.UsageLimit
	c.Active = in.Active

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.Store.UpdateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) Deactivate(ctx context.Context, id string) (*models.Coupon, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Active = false
	if err := s.Store.UpdateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteCoupon(ctx, c.ID); err != nil {
		return err
	}
	if err := s.Redis.Del(ctx, couponUsedKey(c.Code)).Err(); err != nil {
		slog.Warn("Failed to clear coupon counter", "error", err, "code", c.Code)
	}
	return nil
}

// Check previews the discount code grants on subtotal without redeeming it.
func (s *CouponService) Check(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Coupon, discount.Result, error) {
	c, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, discount.Result{}, err
	}
	res, err := discount.Apply(*c, subtotal, s.now())
	if err != nil {
		return c, discount.Result{}, err
	}
	return c, res, nil
}

// Redeem counts one use of the coupon. It fails with discount.ErrExhausted once the limit is reached.
func (s *CouponService) Redeem(ctx context.Context, c *models.Coupon) error {
	key := couponUsedKey(c.Code)

	// Seed the counter from the stored count the first time the code is used.
	if err := s.Redis.SetNX(ctx, key, c.UsedCount, 0).Err(); err != nil {
		return err
	}

	n, err := s.Redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	if c.UsageLimit > 0 && n > int64(c.UsageLimit) {
		if err := s.Redis.Decr(ctx, key).Err(); err != nil {
			slog.Error("Failed to roll back coupon redemption", "error", err, "code", c.Code)
		}
		monitoring.TrackCouponRedemption("exhausted")
		return discount.ErrExhausted
	}

	monitoring.TrackCouponRedemption("redeemed")
	s.syncUsedCount(ctx, c, n)
	return nil
}

// Release gives back one use of the coupon code.
func (s *CouponService) Release(ctx context.Context, code string) error {
	key := couponUsedKey(code)

	n, err := s.Redis.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n < 0 {
		n = 0
		if err := s.Redis.Set(ctx, key, 0, 0).Err(); err != nil {
			return err
		}
	}

	monitoring.TrackCouponRedemption("released")
	c, err := s.GetByCode(ctx, code)
	if err != nil {
		slog.Warn("Released coupon not found", "error", err, "code", code)
		return nil
	}
	s.syncUsedCount(ctx, c, n)
	return nil
}

func (s *CouponService) syncUsedCount(ctx context.Context, c *models.Coupon, n int64) {
	c.UsedCount = int(n)
	if err := s.Store.UpdateCoupon(ctx, c); err != nil {
		slog.Error("Failed to store coupon usage", "error", err, "code", c.Code, "used", n)
	}
}
