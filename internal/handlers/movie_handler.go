package handlers

import (
	"net/http"
	"time"

	"cinema-ticket/internal/services"

	"github.com/pocketbase/pocketbase/core"
)

type MovieHandler struct {
	movies services.MovieStore
}

func NewMovieHandler(movies services.MovieStore) *MovieHandler {
	return &MovieHandler{movies: movies}
}

func (h *MovieHandler) ListMovies(e *core.RequestEvent) error {
	movies, err := h.movies.ListMovies(e.Request.Context(), e.Request.URL.Query().Get("status"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, movies)
}

func (h *MovieHandler) GetMovie(e *core.RequestEvent) error {
	movie, err := h.movies.GetMovie(e.Request.Context(), e.Request.PathValue("movieId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, movie)
}

// ListShowtimes lists upcoming showtimes, optionally for one movie and from a given time.
func (h *MovieHandler) ListShowtimes(e *core.RequestEvent) error {
	from, err := queryTime(e, "from")
	if err != nil {
		return err
	}
	if from.IsZero() {
		from = time.Now().UTC()
	}

	movieID := e.Request.PathValue("movieId")
	if movieID == "" {
		movieID = e.Request.URL.Query().Get("movie_id")
	}

	showtimes, err := h.movies.ListShowtimes(e.Request.Context(), movieID, from)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, showtimes)
}
