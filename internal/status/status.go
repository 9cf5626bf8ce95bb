package status

import "errors"

var (
	ErrNotFound     = errors.New("record: not found")
	ErrUnauthorized = errors.New("auth: authentication required")
	ErrForbidden    = errors.New("auth: access denied")
	ErrInvalidInput = errors.New("request: invalid input")

	ErrShowtimeNotFound = errors.New("showtime: showtime not found")
	ErrSeatUnavailable  = errors.New("seat: seat not available")
	ErrSeatNotLocked    = errors.New("seat: seat not locked by user")
	ErrTooManySeats     = errors.New("seat: too many seats requested")
	ErrNoSeats          = errors.New("seat: no seats requested")

	ErrCouponNotFound  = errors.New("coupon: coupon not found")
	ErrCouponCodeTaken = errors.New("coupon: code already exists")

	ErrBookingNotPending = errors.New("booking: booking is not pending")
	ErrFailedPayment     = errors.New("payment: payment failed")
	ErrPaymentNotFound   = errors.New("payment: payment not found")
	ErrPaymentCompleted  = errors.New("payment: payment already completed")

	ErrInvalidTransition = errors.New("workflow: invalid status transition")
	ErrNotParticipant    = errors.New("conversation: user is not a participant")
)
