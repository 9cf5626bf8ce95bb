package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cinema-ticket/internal/discount"
	"cinema-ticket/internal/events"
	"cinema-ticket/internal/pricing"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"
	"cinema-ticket/monitoring"

	"github.com/lithammer/shortuuid/v3"
	"github.com/samber/lo"
)

type BookingService struct {
	Movies   MovieStore
	Bookings BookingStore
	Seats    *SeatService
	Coupons  *CouponService
	Payments *PaymentService
	Events   EventPublisher

	Layout   pricing.Layout
	MaxSeats int

	now func() time.Time
}

func NewBookingService(
	movies MovieStore,
	bookings BookingStore,
	seats *SeatService,
	coupons *CouponService,
	payments *PaymentService,
	publisher EventPublisher,
	maxSeats int,
) *BookingService {
	return &BookingService{
		Movies:   movies,
		Bookings: bookings,
		Seats:    seats,
		Coupons:  coupons,
		Payments: payments,
		Events:   publisher,
		Layout:   pricing.DefaultLayout(),
		MaxSeats: maxSeats,
		now:      time.Now,
	}
}

func (s *BookingService) showtime(ctx context.Context, id string) (*models.Showtime, error) {
	st, err := s.Movies.GetShowtime(ctx, id)
	if errors.Is(err, status.ErrNotFound) {
		return nil, status.ErrShowtimeNotFound
	}
	return st, err
}

// SeatMap returns the priced grid of a showtime with live availability.
func (s *BookingService) SeatMap(ctx context.Context, showtimeID string) (*models.Showtime, *pricing.SeatMap, error) {
	st, err := s.showtime(ctx, showtimeID)
	if err != nil {
		return nil, nil, err
	}

	m := pricing.Generate(s.Layout, st.BasePrice, pricing.Options{})
	statuses, err := s.Seats.Availability(ctx, st.ID, m.IDs())
	if err != nil {
		return nil, nil, err
	}
	m.Apply(statuses)
	return st, m, nil
}

// LockSeats holds seats for the actor while they check out.
func (s *BookingService) LockSeats(ctx context.Context, actor Actor, showtimeID string, seatIDs []string) error {
	seatIDs, err := s.normalizeSeats(seatIDs)
	if err != nil {
		return err
	}
	if _, err := s.showtime(ctx, showtimeID); err != nil {
		return err
	}
	if err := s.checkSeatIDs(seatIDs); err != nil {
		return err
	}
	return s.Seats.LockSeats(ctx, showtimeID, seatIDs, actor.ID)
}

func (s *BookingService) UnlockSeats(ctx context.Context, actor Actor, showtimeID string, seatIDs []string) (int, error) {
	seatIDs, err := s.normalizeSeats(seatIDs)
	if err != nil {
		return 0, err
	}
	return s.Seats.UnlockSeats(ctx, showtimeID, seatIDs, actor.ID)
}

// SelectionState is the set of seats the actor currently holds for a showtime.
type SelectionState struct {
	ShowtimeID string          `json:"showtime_id"`
	SeatID     string          `json:"seat_id"`
	Selected   bool            `json:"selected"`
	Seats      []pricing.Seat  `json:"seats"`
	Summary    pricing.Summary `json:"summary"`
}

// ToggleSeat selects the seat for the actor when it is free, or releases it when the
// actor already holds it. Selection is backed by seat locks.
func (s *BookingService) ToggleSeat(ctx context.Context, actor Actor, showtimeID, seatID string) (*SelectionState, error) {
	seatID = strings.ToUpper(strings.TrimSpace(seatID))

	st, err := s.showtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	m := pricing.Generate(s.Layout, st.BasePrice, pricing.Options{})
	statuses, held, err := s.Seats.Snapshot(ctx, st.ID, m.IDs(), actor.ID)
	if err != nil {
		return nil, err
	}
	m.Apply(statuses)

	seat, ok := m.Seat(seatID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown seat %s", status.ErrInvalidInput, seatID)
	}

	sel := pricing.NewSelection(s.MaxSeats, held...)
	selected, err := sel.Toggle(seat)
	switch {
	case errors.Is(err, pricing.ErrSeatUnavailable):
		return nil, fmt.Errorf("%w: %s", status.ErrSeatUnavailable, seatID)
	case errors.Is(err, pricing.ErrSelectionFull):
		return nil, fmt.Errorf("%w: at most %d", status.ErrTooManySeats, s.MaxSeats)
	case err != nil:
		return nil, err
	}

	if selected {
		err = s.Seats.LockSeats(ctx, st.ID, []string{seatID}, actor.ID)
	} else {
		_, err = s.Seats.UnlockSeats(ctx, st.ID, []string{seatID}, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	seats, err := m.Pick(sel.IDs())
	if err != nil {
		return nil, err
	}
	return &SelectionState{
		ShowtimeID: st.ID,
		SeatID:     seatID,
		Selected:   selected,
		Seats:      seats,
		Summary:    pricing.Summarize(seats),
	}, nil
}

type QuoteRequest struct {
	ShowtimeID string   `json:"showtime_id"`
	SeatIDs    []string `json:"seats"`
	CouponCode string   `json:"coupon_code"`
}

type Quote struct {
	Showtime *models.Showtime `json:"showtime"`
	Seats    []pricing.Seat   `json:"seats"`
	Summary  pricing.Summary  `json:"summary"`
	Pricing  discount.Result  `json:"pricing"`

	coupon *models.Coupon
}

// Quote prices seats for a showtime, applying the coupon when one is given.
func (s *BookingService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	seatIDs, err := s.normalizeSeats(req.SeatIDs)
	if err != nil {
		return nil, err
	}

	st, err := s.showtime(ctx, req.ShowtimeID)
	if err != nil {
		return nil, err
	}

	m := pricing.Generate(s.Layout, st.BasePrice, pricing.Options{})
	seats, err := m.Pick(seatIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrInvalidInput, err)
	}

	summary := pricing.Summarize(seats)
	q := &Quote{
		Showtime: st,
		Seats:    seats,
		Summary:  summary,
		Pricing:  discount.None(summary.Total),
	}

	if code := strings.TrimSpace(req.CouponCode); code != "" {
		c, res, err := s.Coupons.Check(ctx, code, summary.Total)
		if err != nil {
			return nil, err
		}
		q.Pricing = res
		q.coupon = c
	}
	return q, nil
}

type ConfirmRequest struct {
	QuoteRequest
	// CustomerID is the customer a salesman books for at the counter. Optional for walk-ins.
	CustomerID string `json:"customer_id"`
}

// Confirm turns the actor's locked seats into a pending booking and opens a payment session.
// Salesmen and admins book at the counter; everybody else books online.
func (s *BookingService) Confirm(ctx context.Context, actor Actor, req ConfirmRequest) (*models.Booking, *models.Payment, error) {
	q, err := s.Quote(ctx, req.QuoteRequest)
	if err != nil {
		return nil, nil, err
	}

	b := &models.Booking{
		Reference:  newReference(),
		HolderID:   actor.ID,
		Channel:    models.ChannelOnline,
		CustomerID: actor.ID,
		ShowtimeID: q.Showtime.ID,
		MovieID:    q.Showtime.MovieID,
		MovieTitle: q.Showtime.Movie,
		Seats: lo.Map(q.Seats, func(seat pricing.Seat, _ int) models.BookedSeat {
			return models.BookedSeat{ID: seat.ID, Tier: string(seat.Tier), Price: seat.Price}
		}),
		CouponCode: q.Pricing.Code,
		Subtotal:   q.Pricing.Subtotal,
		Discount:   q.Pricing.Discount,
		Total:      q.Pricing.Total,
		Status:     models.BookingPending,
		CreatedAt:  s.now().UTC(),
	}
	if actor.Is(models.RoleSalesman, models.RoleAdmin) {
		b.Channel = models.ChannelCounter
		b.SalesmanID = actor.ID
		b.CustomerID = req.CustomerID
	}

	if q.coupon != nil {
		// the seats must still be held before the coupon is spent
		if err := s.Seats.ExtendLocks(ctx, b.ShowtimeID, b.SeatIDs(), b.HolderID, s.Seats.LockTTL); err != nil {
			return nil, nil, err
		}
		if err := s.Coupons.Redeem(ctx, q.coupon); err != nil {
			return nil, nil, err
		}
	}

	if err := s.Seats.ExtendLocks(ctx, b.ShowtimeID, b.SeatIDs(), b.HolderID, s.Payments.Timeout); err != nil {
		s.releaseCoupon(ctx, b)
		return nil, nil, err
	}

	if err := s.Bookings.CreateBooking(ctx, b); err != nil {
		s.releaseCoupon(ctx, b)
		return nil, nil, err
	}

	p, err := s.Payments.CreatePaymentSession(ctx, b)
	if err != nil {
		s.cancel(ctx, b, "payment_session_failed")
		return nil, nil, err
	}

	b.PaymentID = p.ID
	if err := s.Bookings.UpdateBooking(ctx, b); err != nil {
		return nil, nil, err
	}

	monitoring.TrackBooking(string(b.Channel), string(b.Status))
	slog.Info("Booking created", "booking_id", b.ID, "reference", b.Reference, "channel", b.Channel, "total", b.Total.String())
	return b, p, nil
}

// CompletePayment settles a payment session. On success the seats are sold and the
// booking confirmed; on failure the seats and coupon are released. A session settles once.
func (s *BookingService) CompletePayment(ctx context.Context, paymentID string, success bool) (*models.Booking, error) {
	p, err := s.Payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PaymentPending {
		return nil, status.ErrPaymentCompleted
	}

	b, err := s.Bookings.GetBooking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending {
		return nil, status.ErrBookingNotPending
	}

	if !success {
		if err := s.Payments.Settle(ctx, p, models.PaymentFailed); err != nil {
			return nil, err
		}
		if err := s.cancel(ctx, b, "payment_failed"); err != nil {
			return nil, err
		}
		return b, status.ErrFailedPayment
	}

	if err := s.Payments.Settle(ctx, p, models.PaymentCompleted); err != nil {
		return nil, err
	}

	if err := s.Seats.MarkSold(ctx, b.ShowtimeID, b.SeatIDs(), b.HolderID); err != nil {
		if errors.Is(err, status.ErrSeatNotLocked) {
			slog.Error("Paid booking lost its seats, refund required",
				"error", err, "booking_id", b.ID, "payment_id", p.ID, "amount", p.Amount.String())
			if cerr := s.cancel(ctx, b, "seats_lost"); cerr != nil {
				slog.Error("Failed to cancel booking", "error", cerr, "booking_id", b.ID)
			}
		}
		return nil, err
	}

	now := s.now().UTC()
	b.Status = models.BookingConfirmed
	b.PaidAt = &now
	if err := s.Bookings.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	monitoring.TrackBooking(string(b.Channel), string(b.Status))
	monitoring.TrackRevenue(string(b.Channel), b.Total.InexactFloat64())

	s.publish(ctx, &events.BookingConfirmed{
		Header:     events.NewHeader(),
		BookingID:  b.ID,
		Reference:  b.Reference,
		CustomerID: b.CustomerID,
		SalesmanID: b.SalesmanID,
		Channel:    string(b.Channel),
		ShowtimeID: b.ShowtimeID,
		MovieTitle: b.MovieTitle,
		Seats:      b.SeatIDs(),
		Total:      b.Total,
	})
	return b, nil
}

// HandlePaymentNotification settles a payment reported by the gateway.
func (s *BookingService) HandlePaymentNotification(ctx context.Context, n PaymentNotification) error {
	_, err := s.CompletePayment(ctx, n.PaymentID, n.Succeeded())
	if errors.Is(err, status.ErrFailedPayment) {
		return nil
	}
	return err
}

// Cancel cancels a pending booking owned by the actor. Admins may cancel any pending booking.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error) {
	b, err := s.Get(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending {
		return nil, status.ErrBookingNotPending
	}

	if b.PaymentID != "" {
		if p, err := s.Payments.GetPayment(ctx, b.PaymentID); err == nil {
			err := s.Payments.Settle(ctx, p, models.PaymentCancelled)
			switch {
			case errors.Is(err, status.ErrPaymentCompleted):
				return nil, err
			case err != nil:
				slog.Warn("Failed to cancel payment session", "error", err, "payment_id", p.ID)
			}
		}
	}

	if err := s.cancel(ctx, b, "cancelled_by_user"); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.OwnedBy(actor.ID) && !actor.Is(models.RoleAdmin) {
		return nil, status.ErrForbidden
	}
	return b, nil
}

// History lists bookings the actor made or sold, newest first.
func (s *BookingService) History(ctx context.Context, actor Actor) ([]models.Booking, error) {
	return s.Bookings.ListBookingsByUser(ctx, actor.ID)
}

// ExpirePending cancels pending bookings whose payment window has passed.
func (s *BookingService) ExpirePending(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.Payments.Timeout)
	pending, err := s.Bookings.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range pending {
		if err := s.cancel(ctx, &pending[i], "payment_expired"); err != nil {
			slog.Error("Failed to expire booking", "error", err, "booking_id", pending[i].ID)
			continue
		}
		expired++
	}
	if expired > 0 {
		slog.Info("Expired pending bookings", "count", expired)
	}
	return expired, nil
}

// RunExpirySweeper calls ExpirePending every interval until ctx is done.
func (s *BookingService) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ExpirePending(ctx); err != nil {
				slog.Error("Pending booking sweep failed", "error", err)
			}
		}
	}
}

func (s *BookingService) cancel(ctx context.Context, b *models.Booking, reason string) error {
	if _, err := s.Seats.UnlockSeats(ctx, b.ShowtimeID, b.SeatIDs(), b.HolderID); err != nil {
		slog.Error("Failed to release seats", "error", err, "booking_id", b.ID)
	}
	s.releaseCoupon(ctx, b)

	b.Status = models.BookingCancelled
	if err := s.Bookings.UpdateBooking(ctx, b); err != nil {
		return err
	}

	monitoring.TrackBooking(string(b.Channel), string(b.Status))
	s.publish(ctx, &events.BookingCancelled{
		Header:     events.NewHeader(),
		BookingID:  b.ID,
		Reference:  b.Reference,
		CustomerID: b.CustomerID,
		ShowtimeID: b.ShowtimeID,
		Seats:      b.SeatIDs(),
		Reason:     reason,
	})
	return nil
}

func (s *BookingService) releaseCoupon(ctx context.Context, b *models.Booking) {
	if b.CouponCode == "" {
		return
	}
	if err := s.Coupons.Release(ctx, b.CouponCode); err != nil {
		slog.Error("Failed to release coupon", "error", err, "code", b.CouponCode, "booking_id", b.ID)
	}
}

func (s *BookingService) publish(ctx context.Context, event any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		slog.Error("Failed to publish event", "error", err)
	}
}

// normalizeSeats upper-cases and de-duplicates seat ids and enforces the per-booking limit.
func (s *BookingService) normalizeSeats(seatIDs []string) ([]string, error) {
	ids := lo.Uniq(lo.Map(seatIDs, func(id string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(id))
	}))
	ids = lo.Compact(ids)

	switch {
	case len(ids) == 0:
		return nil, status.ErrNoSeats
	case s.MaxSeats > 0 && len(ids) > s.MaxSeats:
		return nil, fmt.Errorf("%w: at most %d", status.ErrTooManySeats, s.MaxSeats)
	}
	return ids, nil
}

func (s *BookingService) checkSeatIDs(seatIDs []string) error {
	for _, id := range seatIDs {
		row, column, err := pricing.ParseSeatID(id)
		if err != nil {
			return fmt.Errorf("%w: %v", status.ErrInvalidInput, err)
		}
		if !s.Layout.Contains(row, column) {
			return fmt.Errorf("%w: unknown seat %s", status.ErrInvalidInput, id)
		}
	}
	return nil
}

func newReference() string {
	return "BK-" + strings.ToUpper(shortuuid.New()[:8])
}
