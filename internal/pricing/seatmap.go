package pricing

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusLocked    Status = "locked"
	StatusBooked    Status = "booked"
)

var ErrUnknownSeat = errors.New("pricing: unknown seat")

type Seat struct {
	ID     string          `json:"id"`
	Row    string          `json:"row"`
	Number int             `json:"number"`
	Tier   Tier            `json:"tier"`
	Price  decimal.Decimal `json:"price"`
	Status Status          `json:"status"`
}

func (s Seat) Available() bool {
	return s.Status == StatusAvailable
}

// Options tune seat map generation.
type Options struct {
	// BookedRatio pre-marks roughly this share of seats as booked. Used for demo data.
	BookedRatio float64
	Rand        *rand.Rand
}

type SeatMap struct {
	Seats []Seat `json:"seats"`
	index map[string]int
}

// Generate builds every seat of the layout priced from the showtime base price.
func Generate(l Layout, base decimal.Decimal, opts Options) *SeatMap {
	seats := make([]Seat, 0, len(l.Rows)*l.Columns)
	index := make(map[string]int, cap(seats))

	r := opts.Rand
	if opts.BookedRatio > 0 && r == nil {
		r = rand.New(rand.NewSource(rand.Int63()))
	}

	for _, row := range l.Rows {
		for column := 1; column <= l.Columns; column++ {
			tier := l.TierOf(row, column)
			seat := Seat{
				ID:     SeatID(row, column),
				Row:    string(row),
				Number: column,
				Tier:   tier,
				Price:  l.PriceOf(tier, base),
				Status: StatusAvailable,
			}
			if opts.BookedRatio > 0 && r.Float64() < opts.BookedRatio {
				seat.Status = StatusBooked
			}
			index[seat.ID] = len(seats)
			seats = append(seats, seat)
		}
	}

	return &SeatMap{Seats: seats, index: index}
}

func (m *SeatMap) Seat(id string) (Seat, bool) {
	i, ok := m.index[id]
	if !ok {
		return Seat{}, false
	}
	return m.Seats[i], true
}

func (m *SeatMap) IDs() []string {
	ids := make([]string, len(m.Seats))
	for i, s := range m.Seats {
		ids[i] = s.ID
	}
	return ids
}

// Apply overlays live statuses. Seats missing from statuses keep their current status.
func (m *SeatMap) Apply(statuses map[string]Status) {
	for id, st := range statuses {
		if i, ok := m.index[id]; ok && st != "" {
			m.Seats[i].Status = st
		}
	}
}

// Pick returns the seats for ids in request order.
func (m *SeatMap) Pick(ids []string) ([]Seat, error) {
	seats := make([]Seat, 0, len(ids))
	for _, id := range ids {
		seat, ok := m.Seat(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSeat, id)
		}
		seats = append(seats, seat)
	}
	return seats, nil
}

// Rows groups seats by row in layout order.
func (m *SeatMap) Rows() [][]Seat {
	var rows [][]Seat
	for i, s := range m.Seats {
		if i == 0 || m.Seats[i-1].Row != s.Row {
			rows = append(rows, nil)
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], s)
	}
	return rows
}

func (m *SeatMap) Count(status Status) int {
	n := 0
	for _, s := range m.Seats {
		if s.Status == status {
			n++
		}
	}
	return n
}
