package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cinema-ticket/internal/events"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"
)

// ticketTransitions lists the statuses a support ticket may move to from each status.
var ticketTransitions = map[models.TicketStatus][]models.TicketStatus{
	models.TicketOpen:       {models.TicketInProgress, models.TicketClosed},
	models.TicketInProgress: {models.TicketResolved, models.TicketClosed},
	models.TicketResolved:   {models.TicketClosed, models.TicketInProgress},
	models.TicketClosed:     {},
}

func CanTransition(from, to models.TicketStatus) bool {
	for _, next := range ticketTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ModerationService struct {
	Store  SupportStore
	Events EventPublisher

	now func() time.Time
}

func NewModerationService(store SupportStore, publisher EventPublisher) *ModerationService {
	return &ModerationService{Store: store, Events: publisher, now: time.Now}
}

func (s *ModerationService) ListTickets(ctx context.Context, f TicketFilter) ([]models.Ticket, error) {
	return s.Store.ListTickets(ctx, f)
}

// GetTicket returns a ticket to staff or to the customer who opened it.
func (s *ModerationService) GetTicket(ctx context.Context, actor Actor, id string) (*models.Ticket, error) {
	t, err := s.Store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && t.CustomerID != actor.ID {
		return nil, status.ErrForbidden
	}
	return t, nil
}

// OpenTicket files a support ticket on behalf of the acting customer.
func (s *ModerationService) OpenTicket(ctx context.Context, actor Actor, t *models.Ticket) error {
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if err := t.Validate(); err != nil {
		return err
	}

	now := s.now().UTC()
	t.CustomerID = actor.ID
	t.Status = models.TicketOpen
	t.AssigneeID = ""
	t.CreatedAt = now
	t.UpdatedAt = now
	return s.Store.CreateTicket(ctx, t)
}

type TicketUpdate struct {
	Status     models.TicketStatus   `json:"status"`
	Priority   models.TicketPriority `json:"priority"`
	AssigneeID *string               `json:"assignee_id"`
	Resolution string                `json:"resolution"`
}

// UpdateTicket changes priority, assignee or status. Assigning an open ticket starts work on it.
func (s *ModerationService) UpdateTicket(ctx context.Context, actor Actor, id string, u TicketUpdate) (*models.Ticket, error) {
	t, err := s.Store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := t.Status

	if u.Priority != "" {
		t.Priority = u.Priority
	}
	if u.AssigneeID != nil {
		t.AssigneeID = *u.AssigneeID
		if u.Status == "" && t.Status == models.TicketOpen && t.AssigneeID != "" {
			u.Status = models.TicketInProgress
		}
	}

	if u.Status != "" && u.Status != t.Status {
		if !CanTransition(t.Status, u.Status) {
			return nil, fmt.Errorf("%w: %s to %s", status.ErrInvalidTransition, t.Status, u.Status)
		}
		if u.Status == models.TicketResolved && strings.TrimSpace(u.Resolution) == "" {
			return nil, fmt.Errorf("%w: resolution is required", status.ErrInvalidInput)
		}
		if u.Status == models.TicketInProgress && t.AssigneeID == "" {
			t.AssigneeID = actor.ID
		}
		t.Status = u.Status
	}
	if u.Resolution != "" {
		t.Resolution = u.Resolution
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now().UTC()
	if err := s.Store.UpdateTicket(ctx, t); err != nil {
		return nil, err
	}

	if t.Status != prev {
		slog.Info("Support ticket status changed", "ticket_id", t.ID, "from", prev, "to", t.Status, "by", actor.ID)
		s.publish(ctx, &events.SupportTicketUpdated{
			Header:     events.NewHeader(),
			TicketID:   t.ID,
			CustomerID: t.CustomerID,
			Subject:    t.Subject,
			Status:     string(t.Status),
		})
	}
	return t, nil
}

func (s *ModerationService) ListReports(ctx context.Context, st models.ReviewStatus) ([]models.ReportedReview, error) {
	return s.Store.ListReportedReviews(ctx, st)
}

// ReportReview flags a review for moderation.
func (s *ModerationService) ReportReview(ctx context.Context, actor Actor, r *models.ReportedReview) error {
	if strings.TrimSpace(r.ReviewID) == "" || strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("%w: review_id and reason are required", status.ErrInvalidInput)
	}
	r.ReporterID = actor.ID
	r.Status = models.ReviewPending
	r.ModeratorID = ""
	r.ResolvedAt = nil
	r.ReportedAt = s.now().UTC()
	return s.Store.CreateReportedReview(ctx, r)
}

// ResolveReport approves or removes a pending reported review.
func (s *ModerationService) ResolveReport(ctx context.Context, actor Actor, id string, decision models.ReviewStatus, note string) (*models.ReportedReview, error) {
	if decision != models.ReviewApproved && decision != models.ReviewRemoved {
		return nil, fmt.Errorf("%w: decision must be approved or removed", status.ErrInvalidInput)
	}

	r, err := s.Store.GetReportedReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != models.ReviewPending {
		return nil, fmt.Errorf("%w: report already %s", status.ErrInvalidTransition, r.Status)
	}

	now := s.now().UTC()
	r.Status = decision
	r.ModeratorID = actor.ID
	r.Note = note
	r.ResolvedAt = &now
	if err := s.Store.UpdateReportedReview(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ModerationService) publish(ctx context.Context, event any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		slog.Error("Failed to publish event", "error", err)
	}
}
