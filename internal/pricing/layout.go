// Package pricing builds showtime seat maps and prices seat selections.
package pricing

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
	TierVIP      Tier = "vip"
)

// Tiers lists the tiers from cheapest to most expensive.
var Tiers = []Tier{TierStandard, TierPremium, TierVIP}

var ErrInvalidSeatID = errors.New("pricing: invalid seat id")

// Region assigns a tier to an inclusive block of rows and columns.
type Region struct {
	Tier       Tier
	FromRow    rune
	ToRow      rune
	FromColumn int
	ToColumn   int
}

func (r Region) contains(row rune, column int) bool {
	return row >= r.FromRow && row <= r.ToRow && column >= r.FromColumn && column <= r.ToColumn
}

// Layout describes the auditorium grid and its tier pricing.
type Layout struct {
	Rows    string
	Columns int
	// Regions are checked in order; the first match wins. Unmatched seats are standard.
	Regions []Region
	Deltas  map[Tier]decimal.Decimal
}

// DefaultLayout is the rows A-J by 16 columns auditorium.
func DefaultLayout() Layout {
	return Layout{
		Rows:    "ABCDEFGHIJ",
		Columns: 16,
		Regions: []Region{
			{Tier: TierVIP, FromRow: 'H', ToRow: 'J', FromColumn: 5, ToColumn: 12},
			{Tier: TierPremium, FromRow: 'D', ToRow: 'G', FromColumn: 3, ToColumn: 14},
		},
		Deltas: map[Tier]decimal.Decimal{
			TierStandard: decimal.Zero,
			TierPremium:  decimal.NewFromInt(3),
			TierVIP:      decimal.NewFromInt(6),
		},
	}
}

func (l Layout) TierOf(row rune, column int) Tier {
	for _, r := range l.Regions {
		if r.contains(row, column) {
			return r.Tier
		}
	}
	return TierStandard
}

// PriceOf returns the base price plus the tier delta.
func (l Layout) PriceOf(tier Tier, base decimal.Decimal) decimal.Decimal {
	return base.Add(l.Deltas[tier])
}

// Contains reports whether the seat position exists in the grid.
func (l Layout) Contains(row rune, column int) bool {
	if column < 1 || column > l.Columns {
		return false
	}
	for _, r := range l.Rows {
		if r == row {
			return true
		}
	}
	return false
}

// SeatID formats a seat id such as "A1" or "J16".
func SeatID(row rune, column int) string {
	return fmt.Sprintf("%c%d", row, column)
}

// ParseSeatID splits a seat id into its row letter and column number. Only the form
// SeatID produces is accepted, so "A01" and "A+1" are rejected.
func ParseSeatID(id string) (rune, int, error) {
	if len(id) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatID, id)
	}
	row := rune(id[0])
	if row < 'A' || row > 'Z' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatID, id)
	}
	column, err := strconv.Atoi(id[1:])
	if err != nil || column < 1 || SeatID(row, column) != id {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeatID, id)
	}
	return row, column, nil
}
