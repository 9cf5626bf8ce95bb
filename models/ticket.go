package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// Ticket is a customer support ticket handled by moderators.
type Ticket struct {
	ID          string         `json:"id"`
	CustomerID  string         `json:"customer_id"`
	Subject     string         `json:"subject"`
	Description string         `json:"description"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	AssigneeID  string         `json:"assignee_id,omitempty"`
	Resolution  string         `json:"resolution,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (t Ticket) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Subject, validation.Required, validation.Length(3, 200)),
		validation.Field(&t.Description, validation.Required),
		validation.Field(&t.Priority, validation.In(PriorityLow, PriorityMedium, PriorityHigh)),
	)
}

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRemoved  ReviewStatus = "removed"
)

// ReportedReview is a movie review flagged by a user for moderation.
type ReportedReview struct {
	ID          string       `json:"id"`
	ReviewID    string       `json:"review_id"`
	MovieID     string       `json:"movie_id"`
	AuthorID    string       `json:"author_id"`
	ReporterID  string       `json:"reporter_id"`
	Content     string       `json:"content"`
	Reason      string       `json:"reason"`
	Status      ReviewStatus `json:"status"`
	ModeratorID string       `json:"moderator_id,omitempty"`
	Note        string       `json:"note,omitempty"`
	ReportedAt  time.Time    `json:"reported_at"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
}
