package handlers

import (
	"net/http"

	"cinema-ticket/internal/services"

	"github.com/pocketbase/pocketbase/core"
)

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Quote prices the requested seats and previews the coupon discount.
func (h *BookingHandler) Quote(e *core.RequestEvent) error {
	var req services.QuoteRequest
	if err := bindBody(e, &req); err != nil {
		return err
	}

	q, err := h.bookings.Quote(e.Request.Context(), req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, q)
}

// ConfirmBooking creates a pending booking from the seats the user holds and opens a payment session.
func (h *BookingHandler) ConfirmBooking(e *core.RequestEvent) error {
	var req services.ConfirmRequest
	if err := bindBody(e, &req); err != nil {
		return err
	}

	b, p, err := h.bookings.Confirm(e.Request.Context(), actorFrom(e), req)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"booking":    b,
		"payment":    p,
		"payment_id": p.ID,
		"expires_at": p.ExpiresAt,
	})
}

func (h *BookingHandler) GetBooking(e *core.RequestEvent) error {
	b, err := h.bookings.Get(e.Request.Context(), actorFrom(e), e.Request.PathValue("bookingId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CancelBooking(e *core.RequestEvent) error {
	b, err := h.bookings.Cancel(e.Request.Context(), actorFrom(e), e.Request.PathValue("bookingId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, b)
}

func (h *BookingHandler) GetBookingHistory(e *core.RequestEvent) error {
	bookings, err := h.bookings.History(e.Request.Context(), actorFrom(e))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"bookings": bookings,
		"total":    len(bookings),
	})
}
