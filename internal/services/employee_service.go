package services

import (
	"context"
	"fmt"
	"time"

	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type EmployeeService struct {
	Store EmployeeStore

	now func() time.Time
}

func NewEmployeeService(store EmployeeStore) *EmployeeService {
	return &EmployeeService{Store: store, now: time.Now}
}

func (s *EmployeeService) List(ctx context.Context, f EmployeeFilter) ([]models.Employee, error) {
	return s.Store.ListEmployees(ctx, f)
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	return s.Store.GetEmployee(ctx, id)
}

func (s *EmployeeService) Create(ctx context.Context, e *models.Employee) error {
	if e.Status == "" {
		e.Status = models.EmployeeActive
	}
	if err := e.Validate(); err != nil {
		return err
	}
	return s.Store.CreateEmployee(ctx, e)
}

// Update replaces profile fields. Salary goes through ChangeSalary and termination through Terminate.
func (s *EmployeeService) Update(ctx context.Context, id string, in models.Employee) (*models.Employee, error) {
	e, err := s.Store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == models.EmployeeTerminated {
		return nil, fmt.Errorf("%w: employee is terminated", status.ErrInvalidTransition)
	}

	e.Name = in.Name
	e.Email = in.Email
	e.Phone = in.Phone
	e.Role = in.Role
	e.Department = in.Department
	if in.Status == models.EmployeeActive || in.Status == models.EmployeeOnLeave {
		e.Status = in.Status
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.Store.UpdateEmployee(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) Terminate(ctx context.Context, id string) (*models.Employee, error) {
	e, err := s.Store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == models.EmployeeTerminated {
		return e, nil
	}

	now := s.now().UTC()
	e.Status = models.EmployeeTerminated
	e.TerminatedAt = &now
	if err := s.Store.UpdateEmployee(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

type SalaryChange struct {
	Amount        decimal.Decimal `json:"amount"`
	EffectiveDate time.Time       `json:"effective_date"`
	Reason        string          `json:"reason"`
}

func (c SalaryChange) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Amount, validation.By(positiveSalary)),
		validation.Field(&c.Reason, validation.Required, validation.Length(3, 500)),
	)
}

func positiveSalary(value any) error {
	v, _ := value.(decimal.Decimal)
	if !v.IsPositive() {
		return validation.NewError("validation_salary_positive", "must be greater than zero")
	}
	return nil
}

// ChangeSalary records the change in the salary history and applies it to the employee.
func (s *EmployeeService) ChangeSalary(ctx context.Context, actor Actor, id string, change SalaryChange) (*models.SalaryHistory, error) {
	if err := change.Validate(); err != nil {
		return nil, err
	}

	e, err := s.Store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == models.EmployeeTerminated {
		return nil, fmt.Errorf("%w: employee is terminated", status.ErrInvalidTransition)
	}

	effective := change.EffectiveDate
	if effective.IsZero() {
		effective = s.now().UTC()
	}

	h := &models.SalaryHistory{
		EmployeeID:    e.ID,
		Previous:      e.Salary,
		Amount:        change.Amount,
		EffectiveDate: effective,
		Reason:        change.Reason,
		ChangedBy:     actor.ID,
	}
	if err := s.Store.AddSalaryHistory(ctx, h); err != nil {
		return nil, err
	}

	e.Salary = change.Amount
	if err := s.Store.UpdateEmployee(ctx, e); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *EmployeeService) SalaryHistory(ctx context.Context, id string) ([]models.SalaryHistory, error) {
	if _, err := s.Store.GetEmployee(ctx, id); err != nil {
		return nil, err
	}
	return s.Store.ListSalaryHistory(ctx, id)
}

func (s *EmployeeService) AddReview(ctx context.Context, actor Actor, r *models.PerformanceReview) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if _, err := s.Store.GetEmployee(ctx, r.EmployeeID); err != nil {
		return err
	}

	r.ReviewerID = actor.ID
	r.ReviewedAt = s.now().UTC()
	return s.Store.AddReview(ctx, r)
}

type ReviewSummary struct {
	EmployeeID string                     `json:"employee_id"`
	Count      int                        `json:"count"`
	Average    decimal.Decimal            `json:"average_rating"`
	Reviews    []models.PerformanceReview `json:"reviews"`
}

func (s *EmployeeService) Reviews(ctx context.Context, id string) (*ReviewSummary, error) {
	if _, err := s.Store.GetEmployee(ctx, id); err != nil {
		return nil, err
	}

	reviews, err := s.Store.ListReviews(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &ReviewSummary{EmployeeID: id, Count: len(reviews), Average: decimal.Zero, Reviews: reviews}
	if len(reviews) > 0 {
		total := lo.SumBy(reviews, func(r models.PerformanceReview) int { return r.Rating })
		summary.Average = decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(len(reviews)))).Round(2)
	}
	return summary, nil
}
