package services

import (
	"context"
	"testing"
	"time"

	"cinema-ticket/internal/events"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPromotionFixture() (*PromotionService, *memStore, *mockPublisher) {
	store := newMemStore()
	store.coupons["c1"] = models.Coupon{ID: "c1", Code: "SPRING10", Type: models.CouponPercentage, Value: decimal.NewFromInt(10), Active: true}
	pub := &mockPublisher{}
	svc := NewPromotionService(store, store, pub)
	svc.now = fixedClock
	return svc, store, pub
}

func promotion(title string, starts, ends time.Time) *models.Promotion {
	return &models.Promotion{Title: title, Description: "Weekend deal", StartsAt: starts, EndsAt: ends}
}

func TestPromotionCreate_IsDraft(t *testing.T) {
	svc, _, _ := newPromotionFixture()

	p := promotion("Spring sale", testNow.Add(-time.Hour), testNow.Add(48*time.Hour))
	p.Published = true
	p.CouponCode = " spring10 "

	v, err := svc.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, models.PromotionDraft, v.Status)
	assert.Equal(t, "SPRING10", v.CouponCode)
	assert.False(t, v.Published)
}

func TestPromotionCreate_Invalid(t *testing.T) {
	svc, _, _ := newPromotionFixture()
	ctx := context.Background()

	p := promotion("Spring sale", testNow, testNow.Add(time.Hour))
	p.CouponCode = "NOPE"
	_, err := svc.Create(ctx, p)
	assert.ErrorIs(t, err, status.ErrCouponNotFound)

	_, err = svc.Create(ctx, promotion("Backwards", testNow, testNow.Add(-time.Hour)))
	assert.Error(t, err)
}

func TestPromotionPublish(t *testing.T) {
	svc, _, pub := newPromotionFixture()
	ctx := context.Background()

	v, err := svc.Create(ctx, promotion("Spring sale", testNow.Add(-time.Hour), testNow.Add(48*time.Hour)))
	require.NoError(t, err)

	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e *events.PromotionPublished) bool {
		return e.PromotionID == v.ID && e.Title == "Spring sale"
	})).Return(nil).Once()

	got, err := svc.Publish(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PromotionActive, got.Status)

	// publishing again is a no-op
	_, err = svc.Publish(ctx, v.ID)
	require.NoError(t, err)
	pub.AssertExpectations(t)

	got, err = svc.Unpublish(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PromotionDraft, got.Status)
}

func TestPromotionPublish_Expired(t *testing.T) {
	svc, store, _ := newPromotionFixture()
	store.promotions["old2"] = models.Promotion{ID: "old2", Title: "Summer", StartsAt: testNow.AddDate(0, -4, 0), EndsAt: testNow.AddDate(0, -3, 0)}

	_, err := svc.Publish(context.Background(), "old2")
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestPromotionList_ByStatus(t *testing.T) {
	svc, store, _ := newPromotionFixture()
	day := 24 * time.Hour
	store.promotions["draft"] = models.Promotion{ID: "draft", StartsAt: testNow, EndsAt: testNow.Add(day)}
	store.promotions["soon"] = models.Promotion{ID: "soon", Published: true, StartsAt: testNow.Add(day), EndsAt: testNow.Add(2 * day)}
	store.promotions["now"] = models.Promotion{ID: "now", Published: true, StartsAt: testNow.Add(-day), EndsAt: testNow.Add(day)}
	store.promotions["gone"] = models.Promotion{ID: "gone", Published: true, StartsAt: testNow.Add(-3 * day), EndsAt: testNow.Add(-2 * day)}
	ctx := context.Background()

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "gone", all[0].ID)
	assert.Equal(t, models.PromotionExpired, all[0].Status)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "now", active[0].ID)

	scheduled, err := svc.List(ctx, models.PromotionScheduled)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "soon", scheduled[0].ID)
}

func TestPromotionDelete(t *testing.T) {
	svc, store, _ := newPromotionFixture()
	store.promotions["p1"] = models.Promotion{ID: "p1"}
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "p1"))
	assert.ErrorIs(t, svc.Delete(ctx, "p1"), status.ErrNotFound)
}
