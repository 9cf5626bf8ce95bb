package store

import (
	"context"
	"fmt"
	"time"

	"cinema-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	r, err := s.newRecord(Bookings)
	if err != nil {
		return err
	}
	setBooking(r, b)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	b.ID = r.Id
	return nil
}

func (s *Store) UpdateBooking(ctx context.Context, b *models.Booking) error {
	r, err := s.find(ctx, Bookings, b.ID)
	if err != nil {
		return err
	}
	setBooking(r, b)
	return s.save(ctx, r)
}

func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	r, err := s.find(ctx, Bookings, id)
	if err != nil {
		return nil, err
	}
	return bookingFromRecord(r)
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	records, err := s.all(ctx, Bookings, "created_at DESC",
		dbx.Or(dbx.HashExp{"customer_id": userID}, dbx.HashExp{"salesman_id": userID}))
	if err != nil {
		return nil, err
	}
	return bookingsFromRecords(records)
}

func (s *Store) ListConfirmed(ctx context.Context, from, to time.Time, salesmanID string) ([]models.Booking, error) {
	where := []dbx.Expression{
		dbx.HashExp{"status": string(models.BookingConfirmed)},
		dbx.NewExp("paid_at >= {:from} AND paid_at < {:to}", dbx.Params{"from": dbTime(from), "to": dbTime(to)}),
	}
	if salesmanID != "" {
		where = append(where, dbx.HashExp{"salesman_id": salesmanID})
	}

	records, err := s.all(ctx, Bookings, "paid_at ASC", where...)
	if err != nil {
		return nil, err
	}
	return bookingsFromRecords(records)
}

func (s *Store) ListPendingBefore(ctx context.Context, before time.Time) ([]models.Booking, error) {
	records, err := s.all(ctx, Bookings, "created_at ASC",
		dbx.HashExp{"status": string(models.BookingPending)},
		dbx.NewExp("created_at < {:before}", dbx.Params{"before": dbTime(before)}),
	)
	if err != nil {
		return nil, err
	}
	return bookingsFromRecords(records)
}

func setBooking(r *core.Record, b *models.Booking) {
	r.Set("reference", b.Reference)
	r.Set("customer_id", b.CustomerID)
	r.Set("salesman_id", b.SalesmanID)
	r.Set("holder_id", b.HolderID)
	r.Set("channel", string(b.Channel))
	r.Set("showtime_id", b.ShowtimeID)
	r.Set("movie_id", b.MovieID)
	r.Set("movie_title", b.MovieTitle)
	r.Set("seats", b.Seats)
	r.Set("coupon_code", b.CouponCode)
	setDecimal(r, "subtotal", b.Subtotal)
	setDecimal(r, "discount", b.Discount)
	setDecimal(r, "total", b.Total)
	r.Set("status", string(b.Status))
	r.Set("payment_id", b.PaymentID)
	setTime(r, "created_at", b.CreatedAt)
	setTimePtr(r, "paid_at", b.PaidAt)
}

func bookingFromRecord(r *core.Record) (*models.Booking, error) {
	b := &models.Booking{
		ID:         r.Id,
		Reference:  r.GetString("reference"),
		CustomerID: r.GetString("customer_id"),
		SalesmanID: r.GetString("salesman_id"),
		HolderID:   r.GetString("holder_id"),
		Channel:    models.BookingChannel(r.GetString("channel")),
		ShowtimeID: r.GetString("showtime_id"),
		MovieID:    r.GetString("movie_id"),
		MovieTitle: r.GetString("movie_title"),
		CouponCode: r.GetString("coupon_code"),
		Subtotal:   getDecimal(r, "subtotal"),
		Discount:   getDecimal(r, "discount"),
		Total:      getDecimal(r, "total"),
		Status:     models.BookingStatus(r.GetString("status")),
		PaymentID:  r.GetString("payment_id"),
		CreatedAt:  getTime(r, "created_at"),
		PaidAt:     getTimePtr(r, "paid_at"),
	}
	if err := unmarshalJSON(r, "seats", &b.Seats); err != nil {
		return nil, fmt.Errorf("booking %s seats: %w", r.Id, err)
	}
	return b, nil
}

func bookingsFromRecords(records []*core.Record) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0, len(records))
	for _, r := range records {
		b, err := bookingFromRecord(r)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, nil
}
