package handlers

import (
	"net/http"

	"cinema-ticket/internal/services"
	"cinema-ticket/models"

	"github.com/pocketbase/pocketbase/core"
)

type EmployeeHandler struct {
	employees *services.EmployeeService
}

func NewEmployeeHandler(employees *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

func (h *EmployeeHandler) List(e *core.RequestEvent) error {
	q := e.Request.URL.Query()
	list, err := h.employees.List(e.Request.Context(), services.EmployeeFilter{
		Role:   models.Role(q.Get("role")),
		Status: models.EmployeeStatus(q.Get("status")),
		Search: q.Get("search"),
	})
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, list)
}

func (h *EmployeeHandler) Get(e *core.RequestEvent) error {
	emp, err := h.employees.Get(e.Request.Context(), e.Request.PathValue("employeeId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, emp)
}

func (h *EmployeeHandler) Create(e *core.RequestEvent) error {
	var emp models.Employee
	if err := bindBody(e, &emp); err != nil {
		return err
	}
	if err := h.employees.Create(e.Request.Context(), &emp); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, emp)
}

func (h *EmployeeHandler) Update(e *core.RequestEvent) error {
	var in models.Employee
	if err := bindBody(e, &in); err != nil {
		return err
	}
	emp, err := h.employees.Update(e.Request.Context(), e.Request.PathValue("employeeId"), in)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, emp)
}

func (h *EmployeeHandler) Terminate(e *core.RequestEvent) error {
	emp, err := h.employees.Terminate(e.Request.Context(), e.Request.PathValue("employeeId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, emp)
}

func (h *EmployeeHandler) ChangeSalary(e *core.RequestEvent) error {
	var change services.SalaryChange
	if err := bindBody(e, &change); err != nil {
		return err
	}
	entry, err := h.employees.ChangeSalary(e.Request.Context(), actorFrom(e), e.Request.PathValue("employeeId"), change)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, map[string]any{
		"entry":  entry,
		"change": entry.Change(),
	})
}

func (h *EmployeeHandler) SalaryHistory(e *core.RequestEvent) error {
	history, err := h.employees.SalaryHistory(e.Request.Context(), e.Request.PathValue("employeeId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, history)
}

func (h *EmployeeHandler) AddReview(e *core.RequestEvent) error {
	var review models.PerformanceReview
	if err := bindBody(e, &review); err != nil {
		return err
	}
	review.EmployeeID = e.Request.PathValue("employeeId")
	if err := h.employees.AddReview(e.Request.Context(), actorFrom(e), &review); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, review)
}

func (h *EmployeeHandler) Reviews(e *core.RequestEvent) error {
	summary, err := h.employees.Reviews(e.Request.Context(), e.Request.PathValue("employeeId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, summary)
}
