package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type memStore struct {
	mu  sync.Mutex
	seq int

	movies        map[string]models.Movie
	showtimes     map[string]models.Showtime
	bookings      map[string]models.Booking
	coupons       map[string]models.Coupon
	employees     map[string]models.Employee
	salaries      []models.SalaryHistory
	reviews       []models.PerformanceReview
	tickets       map[string]models.Ticket
	reports       map[string]models.ReportedReview
	conversations map[string]models.Conversation
	messages      []models.Message
	preferences   map[string]models.NotificationPreferences
	promotions    map[string]models.Promotion
}

func newMemStore() *memStore {
	return &memStore{
		movies:        map[string]models.Movie{},
		showtimes:     map[string]models.Showtime{},
		bookings:      map[string]models.Booking{},
		coupons:       map[string]models.Coupon{},
		employees:     map[string]models.Employee{},
		tickets:       map[string]models.Ticket{},
		reports:       map[string]models.ReportedReview{},
		conversations: map[string]models.Conversation{},
		preferences:   map[string]models.NotificationPreferences{},
		promotions:    map[string]models.Promotion{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

func (m *memStore) ListMovies(_ context.Context, st string) ([]models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Movie
	for _, mv := range m.movies {
		if st == "" || mv.Status == st {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *memStore) GetMovie(_ context.Context, id string) (*models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.movies[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &mv, nil
}

func (m *memStore) ListShowtimes(_ context.Context, movieID string, from time.Time) ([]models.Showtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Showtime
	for _, st := range m.showtimes {
		if (movieID == "" || st.MovieID == movieID) && !st.StartsAt.Before(from) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *memStore) GetShowtime(_ context.Context, id string) (*models.Showtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.showtimes[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &st, nil
}

func (m *memStore) CreateBooking(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.nextID("b")
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) UpdateBooking(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; !ok {
		return status.ErrNotFound
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) ListBookingsByUser(_ context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.OwnedBy(userID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListConfirmed(_ context.Context, from, to time.Time, salesmanID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.Status != models.BookingConfirmed || b.PaidAt == nil {
			continue
		}
		if b.PaidAt.Before(from) || !b.PaidAt.Before(to) {
			continue
		}
		if salesmanID != "" && b.SalesmanID != salesmanID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) ListPendingBefore(_ context.Context, before time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.Status == models.BookingPending && b.CreatedAt.Before(before) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListCoupons(_ context.Context, f CouponFilter) ([]models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Coupon
	for _, c := range m.coupons {
		if f.Active != nil && c.Active != *f.Active {
			continue
		}
		if f.Search != "" && !strings.Contains(c.Code, strings.ToUpper(f.Search)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memStore) GetCoupon(_ context.Context, id string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) GetCouponByCode(_ context.Context, code string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, status.ErrNotFound
}

func (m *memStore) CreateCoupon(_ context.Context, c *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID("c")
	m.coupons[c.ID] = *c
	return nil
}

func (m *memStore) UpdateCoupon(_ context.Context, c *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[c.ID] = *c
	return nil
}

func (m *memStore) DeleteCoupon(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.coupons, id)
	return nil
}

func (m *memStore) ListEmployees(_ context.Context, f EmployeeFilter) ([]models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Employee
	for _, e := range m.employees {
		if (f.Role == "" || e.Role == f.Role) && (f.Status == "" || e.Status == f.Status) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) GetEmployee(_ context.Context, id string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &e, nil
}

func (m *memStore) CreateEmployee(_ context.Context, e *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextID("e")
	m.employees[e.ID] = *e
	return nil
}

func (m *memStore) UpdateEmployee(_ context.Context, e *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = *e
	return nil
}

func (m *memStore) AddSalaryHistory(_ context.Context, h *models.SalaryHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = m.nextID("sh")
	m.salaries = append(m.salaries, *h)
	return nil
}

func (m *memStore) ListSalaryHistory(_ context.Context, employeeID string) ([]models.SalaryHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SalaryHistory
	for _, h := range m.salaries {
		if h.EmployeeID == employeeID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memStore) AddReview(_ context.Context, r *models.PerformanceReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextID("pr")
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *memStore) ListReviews(_ context.Context, employeeID string) ([]models.PerformanceReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PerformanceReview
	for _, r := range m.reviews {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListTickets(_ context.Context, f TicketFilter) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ticket
	for _, t := range m.tickets {
		if (f.Status == "" || t.Status == f.Status) && (f.CustomerID == "" || t.CustomerID == f.CustomerID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetTicket(_ context.Context, id string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) CreateTicket(_ context.Context, t *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID("t")
	m.tickets[t.ID] = *t
	return nil
}

func (m *memStore) UpdateTicket(_ context.Context, t *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[t.ID] = *t
	return nil
}

func (m *memStore) ListReportedReviews(_ context.Context, st models.ReviewStatus) ([]models.ReportedReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReportedReview
	for _, r := range m.reports {
		if st == "" || r.Status == st {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) GetReportedReview(_ context.Context, id string) (*models.ReportedReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) CreateReportedReview(_ context.Context, r *models.ReportedReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextID("rr")
	m.reports[r.ID] = *r
	return nil
}

func (m *memStore) UpdateReportedReview(_ context.Context, r *models.ReportedReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = *r
	return nil
}

func (m *memStore) CreateConversation(_ context.Context, c *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID("cv")
	m.conversations[c.ID] = *c
	return nil
}

func (m *memStore) GetConversation(_ context.Context, id string) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) UpdateConversation(_ context.Context, c *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[c.ID] = *c
	return nil
}

func (m *memStore) ListConversations(_ context.Context, userID string) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Conversation
	for _, c := range m.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) CreateMessage(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = m.nextID("m")
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memStore) ListMessages(_ context.Context, conversationID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) GetPreferences(_ context.Context, userID string) (*models.NotificationPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.preferences[userID]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) SavePreferences(_ context.Context, p *models.NotificationPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = m.nextID("np")
	}
	m.preferences[p.UserID] = *p
	return nil
}

func (m *memStore) ListPromotions(_ context.Context) ([]models.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Promotion
	for _, p := range m.promotions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) GetPromotion(_ context.Context, id string) (*models.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promotions[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) CreatePromotion(_ context.Context, p *models.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID("p")
	m.promotions[p.ID] = *p
	return nil
}

func (m *memStore) UpdatePromotion(_ context.Context, p *models.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions[p.ID] = *p
	return nil
}

func (m *memStore) DeletePromotion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.promotions, id)
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event any) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) Push(ctx context.Context, channel string, payload map[string]any) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}
