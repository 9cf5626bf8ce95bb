package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"cinema-ticket/internal/pricing"
	"cinema-ticket/internal/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AdminHandler struct {
	bookings *services.BookingService
	reports  *services.ReportService
}

func NewAdminHandler(bookings *services.BookingService, reports *services.ReportService) *AdminHandler {
	return &AdminHandler{
		bookings: bookings,
		reports:  reports,
	}
}

// GetDashboard returns today's sales totals and the seat occupancy of the showtimes starting in the next day.
func (h *AdminHandler) GetDashboard(e *core.RequestEvent) error {
	ctx := e.Request.Context()
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	report, err := h.reports.SalesReport(ctx, actorFrom(e), services.ReportFilter{
		From: today,
		To:   today.Add(24 * time.Hour),
	})
	if err != nil {
		return apiError(err)
	}

	showtimes, err := h.bookings.Movies.ListShowtimes(ctx, "", now)
	if err != nil {
		return apiError(err)
	}

	upcoming := []map[string]any{}
	for _, st := range showtimes {
		if st.StartsAt.After(now.Add(24 * time.Hour)) {
			continue
		}
		_, m, err := h.bookings.SeatMap(ctx, st.ID)
		if err != nil {
			slog.Error("Failed to load seat map", "error", err, "showtime_id", st.ID)
			continue
		}
		upcoming = append(upcoming, map[string]any{
			"showtime_id":     st.ID,
			"movie":           st.Movie,
			"starts_at":       st.StartsAt,
			"screen":          st.Screen,
			"total_seats":     len(m.Seats),
			"available_seats": m.Count(pricing.StatusAvailable),
			"locked_seats":    m.Count(pricing.StatusLocked),
			"booked_seats":    m.Count(pricing.StatusBooked),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"today":     report.Totals,
		"by_movie":  report.ByMovie,
		"showtimes": upcoming,
	})
}

// ReleaseSeat force-releases a seat lock left behind by an abandoned checkout.
func (h *AdminHandler) ReleaseSeat(e *core.RequestEvent) error {
	var req struct {
		ShowtimeID string `json:"showtime_id"`
		SeatID     string `json:"seat_id"`
		Reason     string `json:"reason"`
	}
	if err := bindBody(e, &req); err != nil {
		return err
	}
	ctx := e.Request.Context()
	seats := h.bookings.Seats

	holder, err := seats.LockedBy(ctx, req.ShowtimeID, req.SeatID)
	if err != nil {
		return apiError(err)
	}
	if holder == "" {
		return apis.NewNotFoundError("Seat is not locked.", nil)
	}

	slog.Info("Admin releasing seat lock",
		"admin_id", e.Auth.Id, "showtime_id", req.ShowtimeID, "seat_id", req.SeatID, "holder_id", holder, "reason", req.Reason)

	released, err := seats.UnlockSeats(ctx, req.ShowtimeID, []string{req.SeatID}, holder)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"released":  released,
		"holder_id": holder,
	})
}

// ExpirePending runs the pending booking sweep immediately.
func (h *AdminHandler) ExpirePending(e *core.RequestEvent) error {
	expired, err := h.bookings.ExpirePending(e.Request.Context())
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"expired": expired})
}
