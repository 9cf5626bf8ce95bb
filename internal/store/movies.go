package store

import (
	"context"
	"time"

	"cinema-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func (s *Store) ListMovies(ctx context.Context, st string) ([]models.Movie, error) {
	var where dbx.Expression
	if st != "" {
		where = dbx.HashExp{"status": st}
	}
	records, err := s.all(ctx, Movies, "title ASC", where)
	if err != nil {
		return nil, err
	}

	movies := make([]models.Movie, len(records))
	for i, r := range records {
		movies[i] = movieFromRecord(r)
	}
	return movies, nil
}

func (s *Store) GetMovie(ctx context.Context, id string) (*models.Movie, error) {
	r, err := s.find(ctx, Movies, id)
	if err != nil {
		return nil, err
	}
	m := movieFromRecord(r)
	return &m, nil
}

func (s *Store) CreateMovie(ctx context.Context, m *models.Movie) error {
	r, err := s.newRecord(Movies)
	if err != nil {
		return err
	}
	r.Set("title", m.Title)
	r.Set("description", m.Description)
	r.Set("duration_min", m.DurationMin)
	r.Set("rating", m.Rating)
	r.Set("poster_url", m.PosterURL)
	r.Set("status", m.Status)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	m.ID = r.Id
	return nil
}

// ListShowtimes returns showtimes starting at or after from, earliest first.
func (s *Store) ListShowtimes(ctx context.Context, movieID string, from time.Time) ([]models.Showtime, error) {
	where := []dbx.Expression{dbx.NewExp("starts_at >= {:from}", dbx.Params{"from": dbTime(from)})}
	if movieID != "" {
		where = append(where, dbx.HashExp{"movie": movieID})
	}
	records, err := s.all(ctx, Showtimes, "starts_at ASC", where...)
	if err != nil {
		return nil, err
	}

	if err := expandErr(s.app.ExpandRecords(records, []string{"movie"}, nil)); err != nil {
		return nil, err
	}

	showtimes := make([]models.Showtime, len(records))
	for i, r := range records {
		showtimes[i] = showtimeFromRecord(r)
	}
	return showtimes, nil
}

func (s *Store) GetShowtime(ctx context.Context, id string) (*models.Showtime, error) {
	r, err := s.find(ctx, Showtimes, id)
	if err != nil {
		return nil, err
	}
	if err := expandErr(s.app.ExpandRecord(r, []string{"movie"}, nil)); err != nil {
		return nil, err
	}
	st := showtimeFromRecord(r)
	return &st, nil
}

func (s *Store) CreateShowtime(ctx context.Context, st *models.Showtime) error {
	r, err := s.newRecord(Showtimes)
	if err != nil {
		return err
	}
	r.Set("movie", st.MovieID)
	r.Set("screen", st.Screen)
	setTime(r, "starts_at", st.StartsAt)
	setDecimal(r, "base_price", st.BasePrice)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	st.ID = r.Id
	return nil
}

func movieFromRecord(r *core.Record) models.Movie {
	return models.Movie{
		ID:          r.Id,
		Title:       r.GetString("title"),
		Description: r.GetString("description"),
		DurationMin: r.GetInt("duration_min"),
		Rating:      r.GetString("rating"),
		PosterURL:   r.GetString("poster_url"),
		Status:      r.GetString("status"),
	}
}

func showtimeFromRecord(r *core.Record) models.Showtime {
	st := models.Showtime{
		ID:        r.Id,
		MovieID:   r.GetString("movie"),
		Screen:    r.GetString("screen"),
		StartsAt:  getTime(r, "starts_at"),
		BasePrice: getDecimal(r, "base_price"),
	}
	if movie := r.ExpandedOne("movie"); movie != nil {
		st.Movie = movie.GetString("title")
	}
	return st
}
