package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"cinema-ticket/internal/pricing"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type ReportService struct {
	Bookings BookingStore
}

func NewReportService(bookings BookingStore) *ReportService {
	return &ReportService{Bookings: bookings}
}

type ReportFilter struct {
	From       time.Time
	To         time.Time
	SalesmanID string
}

type SalesTotals struct {
	Bookings  int             `json:"bookings"`
	Tickets   int             `json:"tickets"`
	Gross     decimal.Decimal `json:"gross"`
	Discounts decimal.Decimal `json:"discounts"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SalesLine is one row of a breakdown. Tier lines carry seat prices before discounts.
type SalesLine struct {
	Key      string          `json:"key"`
	Label    string          `json:"label,omitempty"`
	Bookings int             `json:"bookings"`
	Tickets  int             `json:"tickets"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	From       time.Time   `json:"from"`
	To         time.Time   `json:"to"`
	Totals     SalesTotals `json:"totals"`
	ByMovie    []SalesLine `json:"by_movie"`
	ByDay      []SalesLine `json:"by_day"`
	ByTier     []SalesLine `json:"by_tier"`
	ByChannel  []SalesLine `json:"by_channel"`
	BySalesman []SalesLine `json:"by_salesman"`
}

// SalesReport aggregates confirmed bookings paid in [From, To).
// Salesmen only ever see their own sales.
func (s *ReportService) SalesReport(ctx context.Context, actor Actor, f ReportFilter) (*SalesReport, error) {
	if actor.Is(models.RoleSalesman) {
		f.SalesmanID = actor.ID
	} else if !actor.Is(models.RoleAdmin) {
		return nil, status.ErrForbidden
	}
	if f.To.IsZero() {
		f.To = time.Now().UTC()
	}
	if f.From.IsZero() {
		f.From = f.To.AddDate(0, 0, -30)
	}
	if !f.From.Before(f.To) {
		return nil, fmt.Errorf("%w: from must be before to", status.ErrInvalidInput)
	}

	bookings, err := s.Bookings.ListConfirmed(ctx, f.From, f.To, f.SalesmanID)
	if err != nil {
		return nil, err
	}

	return BuildSalesReport(f.From, f.To, bookings), nil
}

func BuildSalesReport(from, to time.Time, bookings []models.Booking) *SalesReport {
	r := &SalesReport{
		From: from,
		To:   to,
		Totals: SalesTotals{
			Bookings:  len(bookings),
			Tickets:   lo.SumBy(bookings, func(b models.Booking) int { return len(b.Seats) }),
			Gross:     sumBy(bookings, func(b models.Booking) decimal.Decimal { return b.Subtotal }),
			Discounts: sumBy(bookings, func(b models.Booking) decimal.Decimal { return b.Discount }),
			Revenue:   sumBy(bookings, func(b models.Booking) decimal.Decimal { return b.Total }),
		},
	}

	titles := lo.Associate(bookings, func(b models.Booking) (string, string) { return b.MovieID, b.MovieTitle })
	r.ByMovie = breakdown(bookings, func(b models.Booking) string { return b.MovieID })
	for i := range r.ByMovie {
		r.ByMovie[i].Label = titles[r.ByMovie[i].Key]
	}
	slices.SortFunc(r.ByMovie, byRevenue)

	r.ByDay = breakdown(bookings, func(b models.Booking) string {
		if b.PaidAt != nil {
			return b.PaidAt.UTC().Format(time.DateOnly)
		}
		return b.CreatedAt.UTC().Format(time.DateOnly)
	})
	slices.SortFunc(r.ByDay, func(a, b SalesLine) int { return cmp.Compare(a.Key, b.Key) })

	r.ByChannel = breakdown(bookings, func(b models.Booking) string { return string(b.Channel) })
	slices.SortFunc(r.ByChannel, func(a, b SalesLine) int { return cmp.Compare(a.Key, b.Key) })

	counter := lo.Filter(bookings, func(b models.Booking, _ int) bool { return b.SalesmanID != "" })
	r.BySalesman = breakdown(counter, func(b models.Booking) string { return b.SalesmanID })
	slices.SortFunc(r.BySalesman, byRevenue)

	r.ByTier = tierBreakdown(bookings)
	return r
}

// byRevenue orders lines by revenue, highest first, then by key.
func byRevenue(a, b SalesLine) int {
	if c := b.Revenue.Cmp(a.Revenue); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}

func breakdown(bookings []models.Booking, key func(models.Booking) string) []SalesLine {
	groups := lo.GroupBy(bookings, key)
	return lo.MapToSlice(groups, func(k string, group []models.Booking) SalesLine {
		return SalesLine{
			Key:      k,
			Bookings: len(group),
			Tickets:  lo.SumBy(group, func(b models.Booking) int { return len(b.Seats) }),
			Revenue:  sumBy(group, func(b models.Booking) decimal.Decimal { return b.Total }),
		}
	})
}

func tierBreakdown(bookings []models.Booking) []SalesLine {
	var lines []SalesLine
	for _, tier := range pricing.Tiers {
		line := SalesLine{Key: string(tier), Revenue: decimal.Zero}
		for _, b := range bookings {
			seats := lo.Filter(b.Seats, func(s models.BookedSeat, _ int) bool { return s.Tier == string(tier) })
			if len(seats) == 0 {
				continue
			}
			line.Bookings++
			line.Tickets += len(seats)
			line.Revenue = line.Revenue.Add(sumBy(seats, func(s models.BookedSeat) decimal.Decimal { return s.Price }))
		}
		if line.Tickets > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

func sumBy[T any](items []T, value func(T) decimal.Decimal) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, item T, _ int) decimal.Decimal {
		return acc.Add(value(item))
	}, decimal.Zero)
}
