package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cinema-ticket/internal/discount"
	"cinema-ticket/internal/services"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/hook"
)

// actorFrom builds the acting user from the authenticated record. Users without a role are customers.
func actorFrom(e *core.RequestEvent) services.Actor {
	if e.Auth == nil {
		return services.Actor{}
	}
	role := models.Role(e.Auth.GetString("role"))
	if role == "" {
		role = models.RoleCustomer
	}
	return services.Actor{ID: e.Auth.Id, Role: role}
}

// RequireRole allows the request through only for authenticated users with one of the roles.
func RequireRole(roles ...models.Role) *hook.Handler[*core.RequestEvent] {
	return &hook.Handler[*core.RequestEvent]{
		Func: func(e *core.RequestEvent) error {
			if e.Auth == nil {
				return apis.NewUnauthorizedError("The request requires valid authorization token.", nil)
			}
			if !actorFrom(e).Is(roles...) {
				return apis.NewForbiddenError("You are not allowed to perform this request.", nil)
			}
			return e.Next()
		},
	}
}

// apiError maps service errors to API errors.
func apiError(err error) error {
	var verrs validation.Errors
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verrs):
		return apis.NewBadRequestError("Invalid data.", verrs)

	case errors.Is(err, status.ErrNotFound),
		errors.Is(err, status.ErrShowtimeNotFound),
		errors.Is(err, status.ErrCouponNotFound),
		errors.Is(err, status.ErrPaymentNotFound):
		return apis.NewNotFoundError(err.Error(), nil)

	case errors.Is(err, status.ErrUnauthorized):
		return apis.NewUnauthorizedError(err.Error(), nil)

	case errors.Is(err, status.ErrForbidden),
		errors.Is(err, status.ErrNotParticipant):
		return apis.NewForbiddenError(err.Error(), nil)

	case errors.Is(err, status.ErrSeatUnavailable),
		errors.Is(err, status.ErrCouponCodeTaken),
		errors.Is(err, status.ErrBookingNotPending),
		errors.Is(err, status.ErrPaymentCompleted),
		errors.Is(err, status.ErrInvalidTransition),
		errors.Is(err, discount.ErrExhausted):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)

	case errors.Is(err, status.ErrInvalidInput),
		errors.Is(err, status.ErrTooManySeats),
		errors.Is(err, status.ErrNoSeats),
		errors.Is(err, status.ErrSeatNotLocked),
		errors.Is(err, status.ErrFailedPayment),
		errors.Is(err, discount.ErrInactive),
		errors.Is(err, discount.ErrNotStarted),
		errors.Is(err, discount.ErrExpired),
		errors.Is(err, discount.ErrMinPurchase):
		return apis.NewBadRequestError(err.Error(), nil)
	}

	slog.Error("Request failed", "error", err)
	return apis.NewInternalServerError("Something went wrong while processing your request.", nil)
}

// bindBody decodes the request body, reporting malformed input as a bad request.
func bindBody(e *core.RequestEvent, dst any) error {
	if err := e.BindBody(dst); err != nil {
		return apis.NewBadRequestError("Invalid request body.", err)
	}
	return nil
}

// queryTime parses an RFC 3339 timestamp or a plain date from the query string.
func queryTime(e *core.RequestEvent, key string) (time.Time, error) {
	raw := e.Request.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, apis.NewBadRequestError("Invalid "+key+", expected YYYY-MM-DD or RFC 3339.", nil)
	}
	return t, nil
}

func queryBool(e *core.RequestEvent, key string) (*bool, error) {
	raw := e.Request.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apis.NewBadRequestError("Invalid "+key+", expected true or false.", nil)
	}
	return &v, nil
}
