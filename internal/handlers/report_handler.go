package handlers

import (
	"net/http"

	"cinema-ticket/internal/services"

	"github.com/pocketbase/pocketbase/core"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Sales returns the sales report for ?from=&to=. Admins may narrow it with ?salesman_id=.
func (h *ReportHandler) Sales(e *core.RequestEvent) error {
	from, err := queryTime(e, "from")
	if err != nil {
		return err
	}
	to, err := queryTime(e, "to")
	if err != nil {
		return err
	}

	report, err := h.reports.SalesReport(e.Request.Context(), actorFrom(e), services.ReportFilter{
		From:       from,
		To:         to,
		SalesmanID: e.Request.URL.Query().Get("salesman_id"),
	})
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, report)
}
