package store

import (
	"context"

	"cinema-ticket/models"

	"github.com/pocketbase/pocketbase/core"
)

func (s *Store) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	records, err := s.all(ctx, Promotions, "starts_at ASC")
	if err != nil {
		return nil, err
	}
	promotions := make([]models.Promotion, len(records))
	for i, r := range records {
		promotions[i] = promotionFromRecord(r)
	}
	return promotions, nil
}

func (s *Store) GetPromotion(ctx context.Context, id string) (*models.Promotion, error) {
	r, err := s.find(ctx, Promotions, id)
	if err != nil {
		return nil, err
	}
	p := promotionFromRecord(r)
	return &p, nil
}

func (s *Store) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	r, err := s.newRecord(Promotions)
	if err != nil {
		return err
	}
	setPromotion(r, p)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	p.ID = r.Id
	return nil
}

func (s *Store) UpdatePromotion(ctx context.Context, p *models.Promotion) error {
	r, err := s.find(ctx, Promotions, p.ID)
	if err != nil {
		return err
	}
	setPromotion(r, p)
	return s.save(ctx, r)
}

func (s *Store) DeletePromotion(ctx context.Context, id string) error {
	return s.delete(ctx, Promotions, id)
}

func setPromotion(r *core.Record, p *models.Promotion) {
	r.Set("title", p.Title)
	r.Set("description", p.Description)
	r.Set("coupon_code", p.CouponCode)
	r.Set("banner_url", p.BannerURL)
	setTime(r, "starts_at", p.StartsAt)
	setTime(r, "ends_at", p.EndsAt)
	r.Set("published", p.Published)
}

func promotionFromRecord(r *core.Record) models.Promotion {
	return models.Promotion{
		ID:          r.Id,
		Title:       r.GetString("title"),
		Description: r.GetString("description"),
		CouponCode:  r.GetString("coupon_code"),
		BannerURL:   r.GetString("banner_url"),
		StartsAt:    getTime(r, "starts_at"),
		EndsAt:      getTime(r, "ends_at"),
		Published:   r.GetBool("published"),
	}
}
