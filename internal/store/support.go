package store

import (
	"context"

	"cinema-ticket/internal/services"
	"cinema-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func (s *Store) ListTickets(ctx context.Context, f services.TicketFilter) ([]models.Ticket, error) {
	where := dbx.HashExp{}
	if f.Status != "" {
		where["status"] = string(f.Status)
	}
	if f.Priority != "" {
		where["priority"] = string(f.Priority)
	}
	if f.CustomerID != "" {
		where["customer_id"] = f.CustomerID
	}
	if f.AssigneeID != "" {
		where["assignee_id"] = f.AssigneeID
	}

	var exprs []dbx.Expression
	if len(where) > 0 {
		exprs = append(exprs, where)
	}
	records, err := s.all(ctx, SupportTickets, "updated_at DESC", exprs...)
	if err != nil {
		return nil, err
	}
	tickets := make([]models.Ticket, len(records))
	for i, r := range records {
		tickets[i] = ticketFromRecord(r)
	}
	return tickets, nil
}

func (s *Store) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	r, err := s.find(ctx, SupportTickets, id)
	if err != nil {
		return nil, err
	}
	t := ticketFromRecord(r)
	return &t, nil
}

func (s *Store) CreateTicket(ctx context.Context, t *models.Ticket) error {
	r, err := s.newRecord(SupportTickets)
	if err != nil {
		return err
	}
	setTicket(r, t)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	t.ID = r.Id
	return nil
}

func (s *Store) UpdateTicket(ctx context.Context, t *models.Ticket) error {
	r, err := s.find(ctx, SupportTickets, t.ID)
	if err != nil {
		return err
	}
	setTicket(r, t)
	return s.save(ctx, r)
}

func (s *Store) ListReportedReviews(ctx context.Context, st models.ReviewStatus) ([]models.ReportedReview, error) {
	var where dbx.Expression
	if st != "" {
		where = dbx.HashExp{"status": string(st)}
	}
	records, err := s.all(ctx, ReportedReviews, "reported_at DESC", where)
	if err != nil {
		return nil, err
	}
	reports := make([]models.ReportedReview, len(records))
	for i, r := range records {
		reports[i] = reportFromRecord(r)
	}
	return reports, nil
}

func (s *Store) GetReportedReview(ctx context.Context, id string) (*models.ReportedReview, error) {
	r, err := s.find(ctx, ReportedReviews, id)
	if err != nil {
		return nil, err
	}
	rr := reportFromRecord(r)
	return &rr, nil
}

func (s *Store) CreateReportedReview(ctx context.Context, rr *models.ReportedReview) error {
	r, err := s.newRecord(ReportedReviews)
	if err != nil {
		return err
	}
	setReport(r, rr)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	rr.ID = r.Id
	return nil
}

func (s *Store) UpdateReportedReview(ctx context.Context, rr *models.ReportedReview) error {
	r, err := s.find(ctx, ReportedReviews, rr.ID)
	if err != nil {
		return err
	}
	setReport(r, rr)
	return s.save(ctx, r)
}

func setTicket(r *core.Record, t *models.Ticket) {
	r.Set("customer_id", t.CustomerID)
	r.Set("subject", t.Subject)
	r.Set("description", t.Description)
	r.Set("priority", string(t.Priority))
	r.Set("status", string(t.Status))
	r.Set("assignee_id", t.AssigneeID)
	r.Set("resolution", t.Resolution)
	setTime(r, "created_at", t.CreatedAt)
	setTime(r, "updated_at", t.UpdatedAt)
}

func ticketFromRecord(r *core.Record) models.Ticket {
	return models.Ticket{
		ID:          r.Id,
		CustomerID:  r.GetString("customer_id"),
		Subject:     r.GetString("subject"),
		Description: r.GetString("description"),
		Priority:    models.TicketPriority(r.GetString("priority")),
		Status:      models.TicketStatus(r.GetString("status")),
		AssigneeID:  r.GetString("assignee_id"),
		Resolution:  r.GetString("resolution"),
		CreatedAt:   getTime(r, "created_at"),
		UpdatedAt:   getTime(r, "updated_at"),
	}
}

func setReport(r *core.Record, rr *models.ReportedReview) {
	r.Set("review_id", rr.ReviewID)
	r.Set("movie_id", rr.MovieID)
	r.Set("author_id", rr.AuthorID)
	r.Set("reporter_id", rr.ReporterID)
	r.Set("content", rr.Content)
	r.Set("reason", rr.Reason)
	r.Set("status", string(rr.Status))
	r.Set("moderator_id", rr.ModeratorID)
	r.Set("note", rr.Note)
	setTime(r, "reported_at", rr.ReportedAt)
	setTimePtr(r, "resolved_at", rr.ResolvedAt)
}

func reportFromRecord(r *core.Record) models.ReportedReview {
	return models.ReportedReview{
		ID:          r.Id,
		ReviewID:    r.GetString("review_id"),
		MovieID:     r.GetString("movie_id"),
		AuthorID:    r.GetString("author_id"),
		ReporterID:  r.GetString("reporter_id"),
		Content:     r.GetString("content"),
		Reason:      r.GetString("reason"),
		Status:      models.ReviewStatus(r.GetString("status")),
		ModeratorID: r.GetString("moderator_id"),
		Note:        r.GetString("note"),
		ReportedAt:  getTime(r, "reported_at"),
		ResolvedAt:  getTimePtr(r, "resolved_at"),
	}
}
