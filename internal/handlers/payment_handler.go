package handlers

import (
	"errors"
	"net/http"

	"cinema-ticket/internal/services"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type PaymentHandler struct {
	bookings *services.BookingService
	payments *services.PaymentService
}

func NewPaymentHandler(bookings *services.BookingService, payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{bookings: bookings, payments: payments}
}

func (h *PaymentHandler) payment(e *core.RequestEvent) (*models.Payment, error) {
	p, err := h.payments.GetPayment(e.Request.Context(), e.Request.PathValue("paymentId"))
	if err != nil {
		return nil, apiError(err)
	}
	actor := actorFrom(e)
	if p.UserID != actor.ID && !actor.Is(models.RoleAdmin) {
		return nil, apis.NewForbiddenError("Access denied", nil)
	}
	return p, nil
}

func (h *PaymentHandler) GetPaymentDetails(e *core.RequestEvent) error {
	p, err := h.payment(e)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) CheckPaymentStatus(e *core.RequestEvent) error {
	p, err := h.payment(e)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, map[string]any{
		"payment_id": p.ID,
		"status":     p.Status,
		"expires_at": p.ExpiresAt,
	})
}

// CancelPayment abandons the payment session and releases the booking's seats and coupon.
func (h *PaymentHandler) CancelPayment(e *core.RequestEvent) error {
	p, err := h.payment(e)
	if err != nil {
		return err
	}
	if p.Status == models.PaymentCompleted {
		return apiError(status.ErrPaymentCompleted)
	}

	if _, err := h.bookings.Cancel(e.Request.Context(), actorFrom(e), p.BookingID); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Payment cancelled"})
}

// SimulatePayment settles a payment as the gateway would. Registered in development only.
func (h *PaymentHandler) SimulatePayment(e *core.RequestEvent) error {
	var req services.PaymentNotification
	if err := bindBody(e, &req); err != nil {
		return err
	}

	b, err := h.bookings.CompletePayment(e.Request.Context(), req.PaymentID, req.Succeeded())
	if err != nil && !errors.Is(err, status.ErrFailedPayment) {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"payment_id": req.PaymentID,
		"booking":    b,
	})
}
