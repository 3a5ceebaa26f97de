package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

// SeatLookup is the read side used by MovieHandler.
type SeatLookup interface {
    TheatersByMovie(ctx context.Context, movieID uint64) ([]model.Theater, error)
    SeatMatrix(ctx context.Context, movieID, theaterID uint64, date, label string) (model.SeatMatrix, error)
}

// MovieHandler serves the public per-movie endpoints.  No authentication is
// required to look at seats.
type MovieHandler struct {
    Lookup SeatLookup
}

// NewMovieHandler returns a MovieHandler.
func NewMovieHandler(l SeatLookup) *MovieHandler { return &MovieHandler{Lookup: l} }

// GetSeats handles GET /api/movies/:movieId/seats?theaterId=&showtime=[&date=].
// The body is the seat grid as rows of booleans; true means booked.
func (h *MovieHandler) GetSeats(c echo.Context) error {
    movieID, ok := parseID(c.Param("movieId"))
    theaterID, ok2 := parseID(c.QueryParam("theaterId"))
    showtime := strings.TrimSpace(c.QueryParam("showtime"))
    if !ok || !ok2 || showtime == "" {
        return badRequest(c, "Missing required parameters: movieId, theaterId, or showtime")
    }
    seats, err := h.Lookup.SeatMatrix(c.Request().Context(), movieID, theaterID, strings.TrimSpace(c.QueryParam("date")), showtime)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, seats)
}

// GetTheaters handles GET /api/movies/:movieId/theaters.  Each theater in
// the body carries only this movie's show.
func (h *MovieHandler) GetTheaters(c echo.Context) error {
    movieID, ok := parseID(c.Param("movieId"))
    if !ok {
        return badRequest(c, "Movie ID is required")
    }
    theaters, err := h.Lookup.TheatersByMovie(c.Request().Context(), movieID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, theaters)
}

// parseID accepts a positive decimal id.
func parseID(s string) (uint64, bool) {
    n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}
