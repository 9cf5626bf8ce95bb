package pricing

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var (
	ErrSeatUnavailable = errors.New("pricing: seat not available")
	ErrSelectionFull   = errors.New("pricing: selection is full")
)

// Selection is an ordered set of selected seat ids.
type Selection struct {
	max int
	ids []string
}

// NewSelection creates a selection holding at most max seats; max <= 0 means no limit.
// Seats already held by the user can be passed in as selected.
func NewSelection(max int, selected ...string) *Selection {
	return &Selection{max: max, ids: append([]string(nil), selected...)}
}

// Toggle adds the seat when absent and removes it when present.
// It reports whether the seat is selected afterwards.
func (s *Selection) Toggle(seat Seat) (bool, error) {
	if s.Has(seat.ID) {
		s.ids = lo.Without(s.ids, seat.ID)
		return false, nil
	}
	if !seat.Available() {
		return false, fmt.Errorf("%w: %s is %s", ErrSeatUnavailable, seat.ID, seat.Status)
	}
	if s.max > 0 && s.Len() >= s.max {
		return false, ErrSelectionFull
	}
	s.ids = append(s.ids, seat.ID)
	return true, nil
}

func (s *Selection) Has(id string) bool {
	return lo.Contains(s.ids, id)
}

func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s *Selection) Len() int {
	return len(s.ids)
}
