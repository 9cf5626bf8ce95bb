package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cinema-ticket/internal/discount"
	"cinema-ticket/internal/events"
	"cinema-ticket/internal/pricing"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const paymentTTL = 10 * time.Minute

type bookingFixture struct {
	svc   *BookingService
	store *memStore
	redis redismock.ClientMock
	pub   *mockPublisher
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	db, rmock := redismock.NewClientMock()
	store := newMemStore()
	store.showtimes["st1"] = models.Showtime{
		ID:        "st1",
		MovieID:   "mv1",
		Movie:     "Dune: Part Three",
		Screen:    "1",
		StartsAt:  testNow.Add(48 * time.Hour),
		BasePrice: decimal.RequireFromString("12.00"),
	}

	payments := NewPaymentService(db, paymentTTL)
	payments.now = fixedClock
	payments.newID = func() string { return "pay-1" }

	coupons := NewCouponService(store, db)
	coupons.now = fixedClock

	pub := &mockPublisher{}
	svc := NewBookingService(store, store, NewSeatService(db, lockTTL), coupons, payments, pub, 4)
	svc.now = fixedClock

	return &bookingFixture{svc: svc, store: store, redis: rmock, pub: pub}
}

func paymentJSON(t *testing.T, p models.Payment) []byte {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return data
}

func customer(id string) Actor { return Actor{ID: id, Role: models.RoleCustomer} }

func TestQuote_TieredPricing(t *testing.T) {
	f := newBookingFixture(t)

	q, err := f.svc.Quote(context.Background(), QuoteRequest{ShowtimeID: "st1", SeatIDs: []string{"a1", "D3", "H5", "A1"}})
	require.NoError(t, err)

	assert.Len(t, q.Seats, 3)
	assert.Equal(t, "45", q.Summary.Total.String())
	assert.Equal(t, "45", q.Pricing.Total.String())
	assert.True(t, q.Pricing.Discount.IsZero())
}

func TestQuote_WithCoupon(t *testing.T) {
	f := newBookingFixture(t)
	maxDiscount := decimal.RequireFromString("5")
	f.store.coupons["c1"] = models.Coupon{ID: "c1", Code: "SAVE20", Type: models.CouponPercentage, Value: decimal.NewFromInt(20), MaxDiscount: &maxDiscount, Active: true}

	q, err := f.svc.Quote(context.Background(), QuoteRequest{ShowtimeID: "st1", SeatIDs: []string{"H5", "H6"}, CouponCode: " save20 "})
	require.NoError(t, err)

	assert.Equal(t, "36", q.Pricing.Subtotal.String())
	assert.Equal(t, "5", q.Pricing.Discount.String())
	assert.Equal(t, "31", q.Pricing.Total.String())
	assert.Equal(t, "SAVE20", q.Pricing.Code)
}

func TestQuote_Errors(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.svc.Quote(ctx, QuoteRequest{ShowtimeID: "st1"})
	assert.ErrorIs(t, err, status.ErrNoSeats)

	_, err = f.svc.Quote(ctx, QuoteRequest{ShowtimeID: "st1", SeatIDs: []string{"A1", "A2", "A3", "A4", "A5"}})
	assert.ErrorIs(t, err, status.ErrTooManySeats)

	_, err = f.svc.Quote(ctx, QuoteRequest{ShowtimeID: "st1", SeatIDs: []string{"K1"}})
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	_, err = f.svc.Quote(ctx, QuoteRequest{ShowtimeID: "nope", SeatIDs: []string{"A1"}})
	assert.ErrorIs(t, err, status.ErrShowtimeNotFound)

	_, err = f.svc.Quote(ctx, QuoteRequest{ShowtimeID: "st1", SeatIDs: []string{"A1"}, CouponCode: "MISSING"})
	assert.ErrorIs(t, err, status.ErrCouponNotFound)
}

func TestConfirmAndCompletePayment(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	ttl := paymentTTL.Milliseconds()

	f.redis.ExpectEvalSha(extendScript.Hash(), []string{"seat:st1:A1"}, "lock:u1", ttl).SetVal(int64(1))
	f.redis.ExpectEvalSha(extendScript.Hash(), []string{"seat:st1:H5"}, "lock:u1", ttl).SetVal(int64(1))

	pending := models.Payment{
		ID:         "pay-1",
		BookingID:  "b1",
		UserID:     "u1",
		ShowtimeID: "st1",
		Seats:      []string{"A1", "H5"},
		Amount:     decimal.NewFromInt(30),
		Status:     models.PaymentPending,
		CreatedAt:  testNow,
		ExpiresAt:  testNow.Add(paymentTTL),
	}
	f.redis.ExpectSet("payment:pay-1", paymentJSON(t, pending), paymentTTL).SetVal("OK")

	b, p, err := f.svc.Confirm(ctx, customer("u1"), ConfirmRequest{QuoteRequest: QuoteRequest{ShowtimeID: "st1", SeatIDs: []string{"A1", "H5"}}})
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, models.ChannelOnline, b.Channel)
	assert.Equal(t, "u1", b.CustomerID)
	assert.Equal(t, "pay-1", b.PaymentID)
	assert.Regexp(t, `^BK-[A-Z0-9]{8}$`, b.Reference)
	assert.Equal(t, "pay-1", p.ID)
	assert.Equal(t, "30", b.Total.String())

	f.redis.ExpectGet("payment:pay-1").SetVal(string(paymentJSON(t, pending)))
	completed := pending
	completed.Status = models.PaymentCompleted
	completedAt := testNow
	completed.CompletedAt = &completedAt
	f.redis.ExpectEvalSha(settleScript.Hash(), []string{"payment:pay-1"}, "pending", paymentJSON(t, completed)).SetVal(int64(1))
	f.redis.ExpectEvalSha(sellScript.Hash(), []string{"seat:st1:A1", "seat:st1:H5"}, "lock:u1", "sold:u1").SetVal(int64(0))
	f.pub.On("Publish", mock.Anything, mock.AnythingOfType("*events.BookingConfirmed")).Return(nil).Once()

	b, err = f.svc.CompletePayment(ctx, "pay-1", true)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, b.Status)
	require.NotNil(t, b.PaidAt)
	assert.Equal(t, testNow, *b.PaidAt)

	stored, _ := f.store.GetBooking(ctx, b.ID)
	assert.Equal(t, models.BookingConfirmed, stored.Status)
	assert.NoError(t, f.redis.ExpectationsWereMet())
	f.pub.AssertExpectations(t)
}

func TestConfirm_CounterSale(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	f.svc.Payments.newID = func() string { return "pay-2" }

	f.redis.ExpectEvalSha(extendScript.Hash(), []string{"seat:st1:B2"}, "lock:s1", paymentTTL.Milliseconds()).SetVal(int64(1))
	f.redis.ExpectSet("payment:pay-2", paymentJSON(t, models.Payment{
		ID:         "pay-2",
		BookingID:  "b1",
		UserID:     "s1",
		ShowtimeID: "st1",
		Seats:      []string{"B2"},
		Amount:     decimal.NewFromInt(12),
		Status:     models.PaymentPending,
		CreatedAt:  testNow,
		ExpiresAt:  testNow.Add(paymentTTL),
	}), paymentTTL).SetVal("OK")

	salesman := Actor{ID: "s1", Role: models.RoleSalesman}
	b, _, err := f.svc.Confirm(ctx, salesman, ConfirmRequest{
		QuoteRequest: QuoteRequest{ShowtimeID: "st1", SeatIDs: []string{"B2"}},
		CustomerID:   "u7",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChannelCounter, b.Channel)
	assert.Equal(t, "s1", b.SalesmanID)
	assert.Equal(t, "u7", b.CustomerID)
	assert.Equal(t, "s1", b.HolderID)
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func TestConfirm_SeatsNotLocked(t *testing.T) {
	f := newBookingFixture(t)

	f.redis.ExpectEvalSha(extendScript.Hash(), []string{"seat:st1:A1"}, "lock:u1", paymentTTL.Milliseconds()).SetVal(int64(0))

	_, _, err := f.svc.Confirm(context.Background(), customer("u1"), ConfirmRequest{QuoteRequest: QuoteRequest{ShowtimeID: "st1", SeatIDs: []string{"A1"}}})
	assert.ErrorIs(t, err, status.ErrSeatNotLocked)
	assert.Empty(t, f.store.bookings)
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func TestConfirm_CouponExhausted(t *testing.T) {
	f := newBookingFixture(t)
	f.store.coupons["c1"] = models.Coupon{ID: "c1", Code: "ONCE", Type: models.CouponFixed, Value: decimal.NewFromInt(3), UsageLimit: 1, Active: true}

	f.redis.ExpectEvalSha(extendScript.Hash(), []string{"seat:st1:A1"}, "lock:u1", lockTTL.Milliseconds()).SetVal(int64(1))
	f.redis.ExpectSetNX("coupon:used:ONCE", 0, 0).SetVal(false)
	f.redis.ExpectIncr("coupon:used:ONCE").SetVal(2)
	f.redis.ExpectDecr("coupon:used:ONCE").SetVal(1)

	_, _, err := f.svc.Confirm(context.Background(), customer("u1"), ConfirmRequest{QuoteRequest: QuoteRequest{ShowtimeID: "st1", SeatIDs: []string{"A1"}, CouponCode: "ONCE"}})
	assert.ErrorIs(t, err, discount.ErrExhausted)
	assert.Empty(t, f.store.bookings)
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func pendingBooking(f *bookingFixture, created time.Time) *models.Booking {
	b := &models.Booking{
		Reference:  "BK-TEST0001",
		HolderID:   "u1",
		CustomerID: "u1",
		Channel:    models.ChannelOnline,
		ShowtimeID: "st1",
		Seats:      []models.BookedSeat{{ID: "A1", Tier: "standard", Price: decimal.NewFromInt(12)}},
		CouponCode: "SAVE",
		Subtotal:   decimal.NewFromInt(12),
		Discount:   decimal.NewFromInt(2),
		Total:      decimal.NewFromInt(10),
		Status:     models.BookingPending,
		PaymentID:  "pay-9",
		CreatedAt:  created,
	}
	_ = f.store.CreateBooking(context.Background(), b)
	f.store.coupons["c1"] = models.Coupon{ID: "c1", Code: "SAVE", Type: models.CouponFixed, Value: decimal.NewFromInt(2), UsedCount: 1, Active: true}
	return b
}

func TestCancel_ReleasesSeatsAndCoupon(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := pendingBooking(f, testNow)

	f.redis.ExpectGet("payment:pay-9").RedisNil()
	f.redis.ExpectEvalSha(releaseScript.Hash(), []string{"seat:st1:A1"}, "lock:u1").SetVal(int64(1))
	f.redis.ExpectDecr("coupon:used:SAVE").SetVal(0)
	f.pub.On("Publish", mock.Anything, mock.MatchedBy(func(e *events.BookingCancelled) bool {
		return e.BookingID == b.ID && e.Reason == "cancelled_by_user"
	})).Return(nil).Once()

	got, err := f.svc.Cancel(ctx, customer("u1"), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)
	assert.Equal(t, 0, f.store.coupons["c1"].UsedCount)
	assert.NoError(t, f.redis.ExpectationsWereMet())
	f.pub.AssertExpectations(t)
}

func TestCancel_Rules(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := pendingBooking(f, testNow)

	_, err := f.svc.Cancel(ctx, customer("someone-else"), b.ID)
	assert.ErrorIs(t, err, status.ErrForbidden)

	b.Status = models.BookingConfirmed
	_ = f.store.UpdateBooking(ctx, b)
	_, err = f.svc.Cancel(ctx, customer("u1"), b.ID)
	assert.ErrorIs(t, err, status.ErrBookingNotPending)
}

func TestCompletePayment_Failed(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := pendingBooking(f, testNow)

	p := models.Payment{ID: "pay-9", BookingID: b.ID, UserID: "u1", ShowtimeID: "st1", Seats: []string{"A1"}, Amount: decimal.NewFromInt(10), Status: models.PaymentPending, CreatedAt: testNow, ExpiresAt: testNow.Add(paymentTTL)}
	f.redis.ExpectGet("payment:pay-9").SetVal(string(paymentJSON(t, p)))
	failed := p
	failed.Status = models.PaymentFailed
	f.redis.ExpectEvalSha(settleScript.Hash(), []string{"payment:pay-9"}, "pending", paymentJSON(t, failed)).SetVal(int64(1))
	f.redis.ExpectEvalSha(releaseScript.Hash(), []string{"seat:st1:A1"}, "lock:u1").SetVal(int64(1))
	f.redis.ExpectDecr("coupon:used:SAVE").SetVal(0)
	f.pub.On("Publish", mock.Anything, mock.AnythingOfType("*events.BookingCancelled")).Return(nil).Once()

	got, err := f.svc.CompletePayment(ctx, "pay-9", false)
	assert.ErrorIs(t, err, status.ErrFailedPayment)
	assert.Equal(t, models.BookingCancelled, got.Status)
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func TestCompletePayment_AlreadySettled(t *testing.T) {
	f := newBookingFixture(t)
	p := models.Payment{ID: "pay-1", Status: models.PaymentCompleted}
	f.redis.ExpectGet("payment:pay-1").SetVal(string(paymentJSON(t, p)))

	_, err := f.svc.CompletePayment(context.Background(), "pay-1", true)
	assert.ErrorIs(t, err, status.ErrPaymentCompleted)
}

func TestCompletePayment_SettledConcurrently(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := pendingBooking(f, testNow)

	p := models.Payment{ID: "pay-9", BookingID: b.ID, UserID: "u1", ShowtimeID: "st1", Seats: []string{"A1"}, Amount: decimal.NewFromInt(10), Status: models.PaymentPending, CreatedAt: testNow, ExpiresAt: testNow.Add(paymentTTL)}
	completed := p
	completed.Status = models.PaymentCompleted
	completedAt := testNow
	completed.CompletedAt = &completedAt
	f.redis.ExpectGet("payment:pay-9").SetVal(string(paymentJSON(t, p)))
	f.redis.ExpectEvalSha(settleScript.Hash(), []string{"payment:pay-9"}, "pending", paymentJSON(t, completed)).SetVal(int64(0))

	_, err := f.svc.CompletePayment(ctx, "pay-9", true)
	assert.ErrorIs(t, err, status.ErrPaymentCompleted)

	stored, _ := f.store.GetBooking(ctx, b.ID)
	assert.Equal(t, models.BookingPending, stored.Status)
	assert.NoError(t, f.redis.ExpectationsWereMet())
	f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCompletePayment_SeatsLost(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := pendingBooking(f, testNow)

	p := models.Payment{ID: "pay-9", BookingID: b.ID, UserID: "u1", ShowtimeID: "st1", Seats: []string{"A1"}, Amount: decimal.NewFromInt(10), Status: models.PaymentPending, CreatedAt: testNow, ExpiresAt: testNow.Add(paymentTTL)}
	completed := p
	completed.Status = models.PaymentCompleted
	completedAt := testNow
	completed.CompletedAt = &completedAt
	f.redis.ExpectGet("payment:pay-9").SetVal(string(paymentJSON(t, p)))
	f.redis.ExpectEvalSha(settleScript.Hash(), []string{"payment:pay-9"}, "pending", paymentJSON(t, completed)).SetVal(int64(1))
	// the lock lapsed and another customer now holds A1
	f.redis.ExpectEvalSha(sellScript.Hash(), []string{"seat:st1:A1"}, "lock:u1", "sold:u1").SetVal(int64(1))
	f.redis.ExpectEvalSha(releaseScript.Hash(), []string{"seat:st1:A1"}, "lock:u1").SetVal(int64(0))
	f.redis.ExpectDecr("coupon:used:SAVE").SetVal(0)
	f.pub.On("Publish", mock.Anything, mock.AnythingOfType("*events.BookingCancelled")).Return(nil).Once()

	_, err := f.svc.CompletePayment(ctx, "pay-9", true)
	assert.ErrorIs(t, err, status.ErrSeatNotLocked)

	stored, _ := f.store.GetBooking(ctx, b.ID)
	assert.Equal(t, models.BookingCancelled, stored.Status)
	assert.NoError(t, f.redis.ExpectationsWereMet())
	f.pub.AssertExpectations(t)
}

func TestCancel_PaymentAlreadySettled(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := pendingBooking(f, testNow)

	p := models.Payment{ID: "pay-9", BookingID: b.ID, UserID: "u1", ShowtimeID: "st1", Seats: []string{"A1"}, Amount: decimal.NewFromInt(10), Status: models.PaymentPending, CreatedAt: testNow, ExpiresAt: testNow.Add(paymentTTL)}
	cancelled := p
	cancelled.Status = models.PaymentCancelled
	f.redis.ExpectGet("payment:pay-9").SetVal(string(paymentJSON(t, p)))
	f.redis.ExpectEvalSha(settleScript.Hash(), []string{"payment:pay-9"}, "pending", paymentJSON(t, cancelled)).SetVal(int64(0))

	_, err := f.svc.Cancel(ctx, customer("u1"), b.ID)
	assert.ErrorIs(t, err, status.ErrPaymentCompleted)

	stored, _ := f.store.GetBooking(ctx, b.ID)
	assert.Equal(t, models.BookingPending, stored.Status)
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func TestCompletePayment_Unknown(t *testing.T) {
	f := newBookingFixture(t)
	f.redis.ExpectGet("payment:nope").RedisNil()

	_, err := f.svc.CompletePayment(context.Background(), "nope", true)
	assert.ErrorIs(t, err, status.ErrPaymentNotFound)
}

func TestExpirePending(t *testing.T) {
	f := newBookingFixture(t)
	stale := pendingBooking(f, testNow.Add(-20*time.Minute))
	fresh := pendingBooking(f, testNow.Add(-time.Minute))

	f.redis.ExpectEvalSha(releaseScript.Hash(), []string{"seat:st1:A1"}, "lock:u1").SetVal(int64(1))
	f.redis.ExpectDecr("coupon:used:SAVE").SetVal(0)
	f.pub.On("Publish", mock.Anything, mock.MatchedBy(func(e *events.BookingCancelled) bool {
		return e.Reason == "payment_expired"
	})).Return(nil).Once()

	n, err := f.svc.ExpirePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.BookingCancelled, f.store.bookings[stale.ID].Status)
	assert.Equal(t, models.BookingPending, f.store.bookings[fresh.ID].Status)
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func TestToggleSeat(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	ids := pricing.Generate(pricing.DefaultLayout(), decimal.Zero, pricing.Options{}).IDs()
	keys := make([]string, len(ids))
	values := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = "seat:st1:" + id
		switch id {
		case "A2":
			values[i] = "lock:u1"
		case "A3":
			values[i] = "sold:u2"
		}
	}

	f.redis.ExpectMGet(keys...).SetVal(values)
	f.redis.ExpectSetNX("seat:st1:A1", "lock:u1", lockTTL).SetVal(true)

	state, err := f.svc.ToggleSeat(ctx, customer("u1"), "st1", "a1")
	require.NoError(t, err)
	assert.True(t, state.Selected)
	assert.Equal(t, "A1", state.SeatID)
	assert.Len(t, state.Seats, 2)
	assert.Equal(t, "24", state.Summary.Total.String())

	f.redis.ExpectMGet(keys...).SetVal(values)
	_, err = f.svc.ToggleSeat(ctx, customer("u1"), "st1", "A3")
	assert.ErrorIs(t, err, status.ErrSeatUnavailable)

	f.redis.ExpectMGet(keys...).SetVal(values)
	f.redis.ExpectEvalSha(releaseScript.Hash(), []string{"seat:st1:A2"}, "lock:u1").SetVal(int64(1))
	state, err = f.svc.ToggleSeat(ctx, customer("u1"), "st1", "A2")
	require.NoError(t, err)
	assert.False(t, state.Selected)
	assert.Empty(t, state.Seats)
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func TestHandlePaymentNotification(t *testing.T) {
	n, err := parsePaymentNotification(map[string]any{"payment_id": "pay-1", "status": "success"})
	require.NoError(t, err)
	assert.True(t, n.Succeeded())

	n, err = parsePaymentNotification(`{"payment_id":"pay-2","status":"failed"}`)
	require.NoError(t, err)
	assert.False(t, n.Succeeded())

	_, err = parsePaymentNotification(map[string]any{"payment_id": "pay-3", "status": "pending"})
	assert.ErrorIs(t, err, status.ErrInvalidInput)
}
