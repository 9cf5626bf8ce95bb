package handlers

import (
	"net/http"

	"cinema-ticket/internal/services"
	"cinema-ticket/models"

	"github.com/pocketbase/pocketbase/core"
)

type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// ListTickets lists support tickets. Customers only ever see their own.
func (h *ModerationHandler) ListTickets(e *core.RequestEvent) error {
	q := e.Request.URL.Query()
	f := services.TicketFilter{
		Status:     models.TicketStatus(q.Get("status")),
		Priority:   models.TicketPriority(q.Get("priority")),
		AssigneeID: q.Get("assignee_id"),
		CustomerID: q.Get("customer_id"),
	}
	if actor := actorFrom(e); !actor.Role.IsStaff() {
		f.CustomerID = actor.ID
	}

	tickets, err := h.moderation.ListTickets(e.Request.Context(), f)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, tickets)
}

func (h *ModerationHandler) GetTicket(e *core.RequestEvent) error {
	t, err := h.moderation.GetTicket(e.Request.Context(), actorFrom(e), e.Request.PathValue("ticketId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, t)
}

func (h *ModerationHandler) OpenTicket(e *core.RequestEvent) error {
	var t models.Ticket
	if err := bindBody(e, &t); err != nil {
		return err
	}
	if err := h.moderation.OpenTicket(e.Request.Context(), actorFrom(e), &t); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, t)
}

func (h *ModerationHandler) UpdateTicket(e *core.RequestEvent) error {
	var u services.TicketUpdate
	if err := bindBody(e, &u); err != nil {
		return err
	}
	t, err := h.moderation.UpdateTicket(e.Request.Context(), actorFrom(e), e.Request.PathValue("ticketId"), u)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, t)
}

func (h *ModerationHandler) ListReports(e *core.RequestEvent) error {
	reports, err := h.moderation.ListReports(e.Request.Context(), models.ReviewStatus(e.Request.URL.Query().Get("status")))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, reports)
}

func (h *ModerationHandler) ReportReview(e *core.RequestEvent) error {
	var r models.ReportedReview
	if err := bindBody(e, &r); err != nil {
		return err
	}
	if err := h.moderation.ReportReview(e.Request.Context(), actorFrom(e), &r); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, r)
}

func (h *ModerationHandler) ResolveReport(e *core.RequestEvent) error {
	var req struct {
		Decision models.ReviewStatus `json:"decision"`
		Note     string              `json:"note"`
	}
	if err := bindBody(e, &req); err != nil {
		return err
	}
	r, err := h.moderation.ResolveReport(e.Request.Context(), actorFrom(e), e.Request.PathValue("reportId"), req.Decision, req.Note)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, r)
}
