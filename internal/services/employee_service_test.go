package services

import (
	"context"
	"testing"
	"time"

	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmployeeFixture(t *testing.T) (*EmployeeService, *memStore, *models.Employee) {
	t.Helper()
	store := newMemStore()
	svc := NewEmployeeService(store)
	svc.now = fixedClock

	e := &models.Employee{
		Name:       "Noor Haddad",
		Email:      "noor@example.com",
		Role:       models.RoleSalesman,
		Department: "Box office",
		Salary:     decimal.NewFromInt(3000),
		HireDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, svc.Create(context.Background(), e))
	return svc, store, e
}

var admin = Actor{ID: "admin1", Role: models.RoleAdmin}

func TestEmployeeCreate_DefaultsToActive(t *testing.T) {
	_, _, e := newEmployeeFixture(t)
	assert.Equal(t, models.EmployeeActive, e.Status)
	assert.NotEmpty(t, e.ID)
}

func TestEmployeeCreate_Invalid(t *testing.T) {
	svc := NewEmployeeService(newMemStore())
	err := svc.Create(context.Background(), &models.Employee{Name: "X", Email: "nope", Role: models.RoleCustomer})
	assert.Error(t, err)
}

func TestChangeSalary(t *testing.T) {
	svc, store, e := newEmployeeFixture(t)
	ctx := context.Background()

	h, err := svc.ChangeSalary(ctx, admin, e.ID, SalaryChange{Amount: decimal.NewFromInt(3300), Reason: "Annual raise"})
	require.NoError(t, err)
	assert.Equal(t, "3000", h.Previous.String())
	assert.Equal(t, "3300", h.Amount.String())
	assert.Equal(t, "0.1", h.Change().String())
	assert.Equal(t, testNow, h.EffectiveDate)
	assert.Equal(t, "admin1", h.ChangedBy)
	assert.Equal(t, "3300", store.employees[e.ID].Salary.String())

	history, err := svc.SalaryHistory(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = svc.ChangeSalary(ctx, admin, e.ID, SalaryChange{Amount: decimal.Zero, Reason: "oops"})
	assert.Error(t, err)
}

func TestTerminate(t *testing.T) {
	svc, _, e := newEmployeeFixture(t)
	ctx := context.Background()

	got, err := svc.Terminate(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeTerminated, got.Status)
	require.NotNil(t, got.TerminatedAt)

	_, err = svc.ChangeSalary(ctx, admin, e.ID, SalaryChange{Amount: decimal.NewFromInt(1), Reason: "late raise"})
	assert.ErrorIs(t, err, status.ErrInvalidTransition)

	_, err = svc.Update(ctx, e.ID, *e)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestUpdate_KeepsSalary(t *testing.T) {
	svc, _, e := newEmployeeFixture(t)

	in := *e
	in.Department = "Concessions"
	in.Salary = decimal.NewFromInt(99999)
	in.Status = models.EmployeeOnLeave

	got, err := svc.Update(context.Background(), e.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Concessions", got.Department)
	assert.Equal(t, "3000", got.Salary.String())
	assert.Equal(t, models.EmployeeOnLeave, got.Status)
}

func TestReviews(t *testing.T) {
	svc, _, e := newEmployeeFixture(t)
	ctx := context.Background()

	for _, rating := range []int{4, 5, 4} {
		require.NoError(t, svc.AddReview(ctx, admin, &models.PerformanceReview{EmployeeID: e.ID, Period: "2026-Q3", Rating: rating}))
	}
	assert.Error(t, svc.AddReview(ctx, admin, &models.PerformanceReview{EmployeeID: e.ID, Period: "2026-Q3", Rating: 6}))
	assert.ErrorIs(t, svc.AddReview(ctx, admin, &models.PerformanceReview{EmployeeID: "missing", Period: "2026-Q3", Rating: 3}), status.ErrNotFound)

	summary, err := svc.Reviews(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, "4.33", summary.Average.String())
	assert.Equal(t, "admin1", summary.Reviews[0].ReviewerID)
}
