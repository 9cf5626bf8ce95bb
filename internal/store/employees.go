package store

import (
	"context"

	"cinema-ticket/internal/services"
	"cinema-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func (s *Store) ListEmployees(ctx context.Context, f services.EmployeeFilter) ([]models.Employee, error) {
	var where []dbx.Expression
	if f.Role != "" {
		where = append(where, dbx.HashExp{"role": string(f.Role)})
	}
	if f.Status != "" {
		where = append(where, dbx.HashExp{"status": string(f.Status)})
	}
	if f.Search != "" {
		where = append(where, dbx.Or(
			dbx.Like("name", f.Search),
			dbx.Like("email", f.Search),
			dbx.Like("department", f.Search),
		))
	}

	records, err := s.all(ctx, Employees, "name ASC", where...)
	if err != nil {
		return nil, err
	}
	employees := make([]models.Employee, len(records))
	for i, r := range records {
		employees[i] = employeeFromRecord(r)
	}
	return employees, nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	r, err := s.find(ctx, Employees, id)
	if err != nil {
		return nil, err
	}
	e := employeeFromRecord(r)
	return &e, nil
}

func (s *Store) CreateEmployee(ctx context.Context, e *models.Employee) error {
	r, err := s.newRecord(Employees)
	if err != nil {
		return err
	}
	setEmployee(r, e)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	e.ID = r.Id
	return nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	r, err := s.find(ctx, Employees, e.ID)
	if err != nil {
		return err
	}
	setEmployee(r, e)
	return s.save(ctx, r)
}

func (s *Store) AddSalaryHistory(ctx context.Context, h *models.SalaryHistory) error {
	r, err := s.newRecord(SalaryHistory)
	if err != nil {
		return err
	}
	r.Set("employee", h.EmployeeID)
	setDecimal(r, "previous", h.Previous)
	setDecimal(r, "amount", h.Amount)
	setTime(r, "effective_date", h.EffectiveDate)
	r.Set("reason", h.Reason)
	r.Set("changed_by", h.ChangedBy)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	h.ID = r.Id
	return nil
}

// ListSalaryHistory returns the salary changes of an employee, most recent first.
func (s *Store) ListSalaryHistory(ctx context.Context, employeeID string) ([]models.SalaryHistory, error) {
	records, err := s.all(ctx, SalaryHistory, "effective_date DESC", dbx.HashExp{"employee": employeeID})
	if err != nil {
		return nil, err
	}
	history := make([]models.SalaryHistory, len(records))
	for i, r := range records {
		history[i] = models.SalaryHistory{
			ID:            r.Id,
			EmployeeID:    r.GetString("employee"),
			Previous:      getDecimal(r, "previous"),
			Amount:        getDecimal(r, "amount"),
			EffectiveDate: getTime(r, "effective_date"),
			Reason:        r.GetString("reason"),
			ChangedBy:     r.GetString("changed_by"),
		}
	}
	return history, nil
}

func (s *Store) AddReview(ctx context.Context, pr *models.PerformanceReview) error {
	r, err := s.newRecord(PerformanceReviews)
	if err != nil {
		return err
	}
	r.Set("employee", pr.EmployeeID)
	r.Set("reviewer_id", pr.ReviewerID)
	r.Set("period", pr.Period)
	r.Set("rating", pr.Rating)
	r.Set("strengths", pr.Strengths)
	r.Set("comments", pr.Comments)
	setTime(r, "reviewed_at", pr.ReviewedAt)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	pr.ID = r.Id
	return nil
}

func (s *Store) ListReviews(ctx context.Context, employeeID string) ([]models.PerformanceReview, error) {
	records, err := s.all(ctx, PerformanceReviews, "reviewed_at DESC", dbx.HashExp{"employee": employeeID})
	if err != nil {
		return nil, err
	}
	reviews := make([]models.PerformanceReview, len(records))
	for i, r := range records {
		reviews[i] = models.PerformanceReview{
			ID:         r.Id,
			EmployeeID: r.GetString("employee"),
			ReviewerID: r.GetString("reviewer_id"),
			Period:     r.GetString("period"),
			Rating:     r.GetInt("rating"),
			Strengths:  r.GetString("strengths"),
			Comments:   r.GetString("comments"),
			ReviewedAt: getTime(r, "reviewed_at"),
		}
	}
	return reviews, nil
}

func setEmployee(r *core.Record, e *models.Employee) {
	r.Set("user_id", e.UserID)
	r.Set("name", e.Name)
	r.Set("email", e.Email)
	r.Set("phone", e.Phone)
	r.Set("role", string(e.Role))
	r.Set("department", e.Department)
	setDecimal(r, "salary", e.Salary)
	setTime(r, "hire_date", e.HireDate)
	r.Set("status", string(e.Status))
	setTimePtr(r, "terminated_at", e.TerminatedAt)
}

func employeeFromRecord(r *core.Record) models.Employee {
	return models.Employee{
		ID:           r.Id,
		UserID:       r.GetString("user_id"),
		Name:         r.GetString("name"),
		Email:        r.GetString("email"),
		Phone:        r.GetString("phone"),
		Role:         models.Role(r.GetString("role")),
		Department:   r.GetString("department"),
		Salary:       getDecimal(r, "salary"),
		HireDate:     getTime(r, "hire_date"),
		Status:       models.EmployeeStatus(r.GetString("status")),
		TerminatedAt: getTimePtr(r, "terminated_at"),
	}
}
