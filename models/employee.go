package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "active"
	EmployeeOnLeave    EmployeeStatus = "on_leave"
	EmployeeTerminated EmployeeStatus = "terminated"
)

type Employee struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id,omitempty"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Role         Role            `json:"role"`
	Department   string          `json:"department"`
	Salary       decimal.Decimal `json:"salary"`
	HireDate     time.Time       `json:"hire_date"`
	Status       EmployeeStatus  `json:"status"`
	TerminatedAt *time.Time      `json:"terminated_at,omitempty"`
}

func (e Employee) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required, validation.Length(2, 120)),
		validation.Field(&e.Email, validation.Required, is.EmailFormat),
		validation.Field(&e.Role, validation.Required, validation.In(RoleAdmin, RoleModerator, RoleSalesman)),
		validation.Field(&e.Salary, validation.By(positiveSalary)),
		validation.Field(&e.HireDate, validation.Required),
		validation.Field(&e.Status, validation.In(EmployeeActive, EmployeeOnLeave, EmployeeTerminated)),
	)
}

func positiveSalary(value any) error {
	v, _ := value.(decimal.Decimal)
	if !v.IsPositive() {
		return validation.NewError("validation_salary_positive", "must be greater than zero")
	}
	return nil
}

type SalaryHistory struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	Previous      decimal.Decimal `json:"previous"`
	Amount        decimal.Decimal `json:"amount"`
	EffectiveDate time.Time       `json:"effective_date"`
	Reason        string          `json:"reason"`
	ChangedBy     string          `json:"changed_by"`
}

// Change is the relative salary change, e.g. 0.05 for a 5% raise.
func (h SalaryHistory) Change() decimal.Decimal {
	if h.Previous.IsZero() {
		return decimal.Zero
	}
	return h.Amount.Sub(h.Previous).Div(h.Previous).Round(4)
}

type PerformanceReview struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	ReviewerID string    `json:"reviewer_id"`
	Period     string    `json:"period"` // e.g. 2026-Q3
	Rating     int       `json:"rating"`
	Strengths  string    `json:"strengths,omitempty"`
	Comments   string    `json:"comments,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

func (r PerformanceReview) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EmployeeID, validation.Required),
		validation.Field(&r.Period, validation.Required, validation.Length(1, 20)),
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
	)
}
