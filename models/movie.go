package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Movie struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DurationMin int    `json:"duration_min"`
	Rating      string `json:"rating"` // G, PG, PG-13, R
	PosterURL   string `json:"poster_url,omitempty"`
	Status      string `json:"status"` // now_showing, coming_soon, archived
}

// Showtime is a scheduled screening of a movie on one screen.
type Showtime struct {
	ID        string          `json:"id"`
	MovieID   string          `json:"movie_id"`
	Movie     string          `json:"movie"`
	Screen    string          `json:"screen"`
	StartsAt  time.Time       `json:"starts_at"`
	BasePrice decimal.Decimal `json:"base_price"`
}
