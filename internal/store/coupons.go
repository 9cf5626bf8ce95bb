package store

import (
	"context"

	"cinema-ticket/internal/services"
	"cinema-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func (s *Store) ListCoupons(ctx context.Context, f services.CouponFilter) ([]models.Coupon, error) {
	var where []dbx.Expression
	if f.Active != nil {
		where = append(where, dbx.HashExp{"active": *f.Active})
	}
	if f.Search != "" {
		where = append(where, dbx.Or(dbx.Like("code", f.Search), dbx.Like("description", f.Search)))
	}

	records, err := s.all(ctx, Coupons, "created DESC", where...)
	if err != nil {
		return nil, err
	}
	coupons := make([]models.Coupon, len(records))
	for i, r := range records {
		coupons[i] = couponFromRecord(r)
	}
	return coupons, nil
}

func (s *Store) GetCoupon(ctx context.Context, id string) (*models.Coupon, error) {
	r, err := s.find(ctx, Coupons, id)
	if err != nil {
		return nil, err
	}
	c := couponFromRecord(r)
	return &c, nil
}

func (s *Store) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	r, err := s.findBy(ctx, Coupons, dbx.HashExp{"code": code})
	if err != nil {
		return nil, err
	}
	c := couponFromRecord(r)
	return &c, nil
}

func (s *Store) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	r, err := s.newRecord(Coupons)
	if err != nil {
		return err
	}
	setCoupon(r, c)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	c.ID = r.Id
	c.CreatedAt = getTime(r, "created")
	return nil
}

func (s *Store) UpdateCoupon(ctx context.Context, c *models.Coupon) error {
	r, err := s.find(ctx, Coupons, c.ID)
	if err != nil {
		return err
	}
	setCoupon(r, c)
	return s.save(ctx, r)
}

func (s *Store) DeleteCoupon(ctx context.Context, id string) error {
	return s.delete(ctx, Coupons, id)
}

func setCoupon(r *core.Record, c *models.Coupon) {
	r.Set("code", c.Code)
	r.Set("description", c.Description)
	r.Set("type", string(c.Type))
	setDecimal(r, "value", c.Value)
	setOptionalDecimal(r, "min_purchase", c.MinPurchase)
	setOptionalDecimal(r, "max_discount", c.MaxDiscount)
	setTime(r, "valid_from", c.ValidFrom)
	setTime(r, "valid_until", c.ValidUntil)
	r.Set("usage_limit", c.UsageLimit)
	r.Set("used_count", c.UsedCount)
	r.Set("active", c.Active)
}

func couponFromRecord(r *core.Record) models.Coupon {
	return models.Coupon{
		ID:          r.Id,
		Code:        r.GetString("code"),
		Description: r.GetString("description"),
		Type:        models.CouponType(r.GetString("type")),
		Value:       getDecimal(r, "value"),
		MinPurchase: getOptionalDecimal(r, "min_purchase"),
		MaxDiscount: getOptionalDecimal(r, "max_discount"),
		ValidFrom:   getTime(r, "valid_from"),
		ValidUntil:  getTime(r, "valid_until"),
		UsageLimit:  r.GetInt("usage_limit"),
		UsedCount:   r.GetInt("used_count"),
		Active:      r.GetBool("active"),
		CreatedAt:   getTime(r, "created"),
	}
}
