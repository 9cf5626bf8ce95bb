package services

import (
	"context"
	"time"

	"cinema-ticket/models"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) Is(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// EventPublisher publishes domain events from internal/events.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Stores return status.ErrNotFound for missing records.

type MovieStore interface {
	ListMovies(ctx context.Context, status string) ([]models.Movie, error)
	GetMovie(ctx context.Context, id string) (*models.Movie, error)
	ListShowtimes(ctx context.Context, movieID string, from time.Time) ([]models.Showtime, error)
	GetShowtime(ctx context.Context, id string) (*models.Showtime, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// ListConfirmed returns confirmed bookings paid within [from, to). An empty salesmanID matches all.
	ListConfirmed(ctx context.Context, from, to time.Time, salesmanID string) ([]models.Booking, error)
	ListPendingBefore(ctx context.Context, before time.Time) ([]models.Booking, error)
}

type CouponFilter struct {
	Active *bool
	Search string
}

type CouponStore interface {
	ListCoupons(ctx context.Context, f CouponFilter) ([]models.Coupon, error)
	GetCoupon(ctx context.Context, id string) (*models.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	CreateCoupon(ctx context.Context, c *models.Coupon) error
	UpdateCoupon(ctx context.Context, c *models.Coupon) error
	DeleteCoupon(ctx context.Context, id string) error
}

type EmployeeFilter struct {
	Role   models.Role
	Status models.EmployeeStatus
	Search string
}

type EmployeeStore interface {
	ListEmployees(ctx context.Context, f EmployeeFilter) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	CreateEmployee(ctx context.Context, e *models.Employee) error
	UpdateEmployee(ctx context.Context, e *models.Employee) error
	AddSalaryHistory(ctx context.Context, h *models.SalaryHistory) error
	ListSalaryHistory(ctx context.Context, employeeID string) ([]models.SalaryHistory, error)
	AddReview(ctx context.Context, r *models.PerformanceReview) error
	ListReviews(ctx context.Context, employeeID string) ([]models.PerformanceReview, error)
}

type TicketFilter struct {
	Status     models.TicketStatus
	Priority   models.TicketPriority
	CustomerID string
	AssigneeID string
}

type SupportStore interface {
	ListTickets(ctx context.Context, f TicketFilter) ([]models.Ticket, error)
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	CreateTicket(ctx context.Context, t *models.Ticket) error
	UpdateTicket(ctx context.Context, t *models.Ticket) error
	ListReportedReviews(ctx context.Context, status models.ReviewStatus) ([]models.ReportedReview, error)
	GetReportedReview(ctx context.Context, id string) (*models.ReportedReview, error)
	CreateReportedReview(ctx context.Context, r *models.ReportedReview) error
	UpdateReportedReview(ctx context.Context, r *models.ReportedReview) error
}

type MessageStore interface {
	CreateConversation(ctx context.Context, c *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	UpdateConversation(ctx context.Context, c *models.Conversation) error
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
}

type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error)
	SavePreferences(ctx context.Context, p *models.NotificationPreferences) error
}

type PromotionStore interface {
	ListPromotions(ctx context.Context) ([]models.Promotion, error)
	GetPromotion(ctx context.Context, id string) (*models.Promotion, error)
	CreatePromotion(ctx context.Context, p *models.Promotion) error
	UpdatePromotion(ctx context.Context, p *models.Promotion) error
	DeletePromotion(ctx context.Context, id string) error
}
