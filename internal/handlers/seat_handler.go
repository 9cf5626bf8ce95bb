package handlers

import (
	"net/http"

	"cinema-ticket/internal/pricing"
	"cinema-ticket/internal/services"

	"github.com/pocketbase/pocketbase/core"
)

type SeatHandler struct {
	bookings *services.BookingService
}

func NewSeatHandler(bookings *services.BookingService) *SeatHandler {
	return &SeatHandler{bookings: bookings}
}

type seatsRequest struct {
	ShowtimeID string   `json:"showtime_id"`
	SeatIDs    []string `json:"seats"`
}

// GetSeats returns the priced seat grid of a showtime grouped by row.
func (h *SeatHandler) GetSeats(e *core.RequestEvent) error {
	st, m, err := h.bookings.SeatMap(e.Request.Context(), e.Request.PathValue("showtimeId"))
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"showtime":        st,
		"rows":            m.Rows(),
		"total_seats":     len(m.Seats),
		"available_seats": m.Count(pricing.StatusAvailable),
		"locked_seats":    m.Count(pricing.StatusLocked),
		"booked_seats":    m.Count(pricing.StatusBooked),
	})
}

func (h *SeatHandler) LockSeats(e *core.RequestEvent) error {
	var req seatsRequest
	if err := bindBody(e, &req); err != nil {
		return err
	}

	if err := h.bookings.LockSeats(e.Request.Context(), actorFrom(e), req.ShowtimeID, req.SeatIDs); err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"showtime_id": req.ShowtimeID,
		"seats":       req.SeatIDs,
		"expires_in":  int(h.bookings.Seats.LockTTL.Seconds()),
	})
}

func (h *SeatHandler) UnlockSeats(e *core.RequestEvent) error {
	var req seatsRequest
	if err := bindBody(e, &req); err != nil {
		return err
	}

	released, err := h.bookings.UnlockSeats(e.Request.Context(), actorFrom(e), req.ShowtimeID, req.SeatIDs)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"released": released})
}

// ToggleSeat selects or deselects one seat and returns the running selection with totals.
func (h *SeatHandler) ToggleSeat(e *core.RequestEvent) error {
	var req struct {
		ShowtimeID string `json:"showtime_id"`
		SeatID     string `json:"seat_id"`
	}
	if err := bindBody(e, &req); err != nil {
		return err
	}

	state, err := h.bookings.ToggleSeat(e.Request.Context(), actorFrom(e), req.ShowtimeID, req.SeatID)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, state)
}
