package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"cinema-ticket/internal/events"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	"github.com/samber/lo"
)

type PromotionService struct {
	Store   PromotionStore
	Coupons CouponStore
	Events  EventPublisher

	now func() time.Time
}

func NewPromotionService(store PromotionStore, coupons CouponStore, publisher EventPublisher) *PromotionService {
	return &PromotionService{Store: store, Coupons: coupons, Events: publisher, now: time.Now}
}

// PromotionView is a promotion with its status at the time it was read.
type PromotionView struct {
	models.Promotion
	Status models.PromotionStatus `json:"status"`
}

func (s *PromotionService) view(p models.Promotion) PromotionView {
	return PromotionView{Promotion: p, Status: p.StatusAt(s.now())}
}

// List returns all promotions ordered by start, optionally narrowed to one status.
func (s *PromotionService) List(ctx context.Context, st models.PromotionStatus) ([]PromotionView, error) {
	list, err := s.Store.ListPromotions(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(list, func(a, b models.Promotion) int {
		if c := a.StartsAt.Compare(b.StartsAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	views := lo.Map(list, func(p models.Promotion, _ int) PromotionView { return s.view(p) })
	if st != "" {
		views = lo.Filter(views, func(v PromotionView, _ int) bool { return v.Status == st })
	}
	return views, nil
}

// Active lists the promotions customers can see right now.
func (s *PromotionService) Active(ctx context.Context) ([]PromotionView, error) {
	return s.List(ctx, models.PromotionActive)
}

func (s *PromotionService) Get(ctx context.Context, id string) (*PromotionView, error) {
	p, err := s.Store.GetPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*p)
	return &v, nil
}

// Create stores a new promotion as a draft.
func (s *PromotionService) Create(ctx context.Context, p *models.Promotion) (*PromotionView, error) {
	p.Published = false
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Store.CreatePromotion(ctx, p); err != nil {
		return nil, err
	}
	v := s.view(*p)
	return &v, nil
}

func (s *PromotionService) Update(ctx context.Context, id string, in models.Promotion) (*PromotionView, error) {
	p, err := s.Store.GetPromotion(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Title = in.Title
	p.Description = in.Description
	p.CouponCode = in.CouponCode
	p.BannerURL = in.BannerURL
	p.StartsAt = in.StartsAt
	p.EndsAt = in.EndsAt

	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Store.UpdatePromotion(ctx, p); err != nil {
		return nil, err
	}
	v := s.view(*p)
	return &v, nil
}

func (s *PromotionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Store.GetPromotion(ctx, id); err != nil {
		return err
	}
	return s.Store.DeletePromotion(ctx, id)
}

// Publish makes the promotion visible and announces it.
func (s *PromotionService) Publish(ctx context.Context, id string) (*PromotionView, error) {
	p, err := s.Store.GetPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.EndsAt.IsZero() && s.now().After(p.EndsAt) {
		return nil, fmt.Errorf("%w: promotion has ended", status.ErrInvalidTransition)
	}
	if p.Published {
		v := s.view(*p)
		return &v, nil
	}

	p.Published = true
	if err := s.Store.UpdatePromotion(ctx, p); err != nil {
		return nil, err
	}

	if s.Events != nil {
		err := s.Events.Publish(ctx, &events.PromotionPublished{
			Header:      events.NewHeader(),
			PromotionID: p.ID,
			Title:       p.Title,
			CouponCode:  p.CouponCode,
			StartsAt:    p.StartsAt,
			EndsAt:      p.EndsAt,
		})
		if err != nil {
			slog.Error("Failed to publish event", "error", err, "promotion_id", p.ID)
		}
	}

	v := s.view(*p)
	return &v, nil
}

func (s *PromotionService) Unpublish(ctx context.Context, id string) (*PromotionView, error) {
	p, err := s.Store.GetPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Published = false
	if err := s.Store.UpdatePromotion(ctx, p); err != nil {
		return nil, err
	}
	v := s.view(*p)
	return &v, nil
}

func (s *PromotionService) validate(ctx context.Context, p *models.Promotion) error {
	p.CouponCode = models.NormalizeCouponCode(p.CouponCode)
	if err := p.Validate(); err != nil {
		return err
	}
	if p.CouponCode == "" {
		return nil
	}
	_, err := s.Coupons.GetCouponByCode(ctx, p.CouponCode)
	if errors.Is(err, status.ErrNotFound) {
		return status.ErrCouponNotFound
	}
	return err
}
