package model

import (
    "errors"
    "fmt"
    "strings"
)

// ErrNotFound is the umbrella for every "does not exist" condition.  The
// specific errors below wrap it so handlers can collapse them into a 404
// while logs keep the precise step that failed.
var ErrNotFound = errors.New("not found")

var (
    ErrTheaterNotFound  = fmt.Errorf("theater %w", ErrNotFound)
    ErrMovieNotOffered  = fmt.Errorf("movie not shown in this theater: %w", ErrNotFound)
    ErrDateNotOffered   = fmt.Errorf("date not available: %w", ErrNotFound)
    ErrShowtimeNotFound = fmt.Errorf("showtime %w", ErrNotFound)
    ErrBookingNotFound  = fmt.Errorf("booking %w", ErrNotFound)
)

var (
    // ErrInvalidRequest covers malformed or missing parameters.
    ErrInvalidRequest = errors.New("invalid request")

    // ErrInvalidSeatCoordinate is returned for seats outside the grid.
    ErrInvalidSeatCoordinate = errors.New("invalid seat coordinate")

    // ErrSeatAlreadyBooked guards the write-once rule inside SeatMatrix.
    ErrSeatAlreadyBooked = errors.New("seat already booked")

    // ErrSeatConflict is matched by *SeatConflictError.
    ErrSeatConflict = errors.New("one or more seats already booked")

    // ErrPriceMismatch is returned when the client total disagrees with
    // the recomputed one.
    ErrPriceMismatch = errors.New("total price does not match seat price")

    // ErrForbidden means the caller is authenticated but does not own the resource.
    ErrForbidden = errors.New("forbidden")
)

// InvalidSeatError carries the offending coordinate and grid shape.
type InvalidSeatError struct {
    Seat Seat
    Rows int
    Cols int
}

func (e *InvalidSeatError) Error() string {
    return fmt.Sprintf("seat (%d,%d) outside %dx%d grid", e.Seat.Row, e.Seat.Column, e.Rows, e.Cols)
}

func (e *InvalidSeatError) Unwrap() error { return ErrInvalidSeatCoordinate }

// SeatConflictError lists every requested seat that was already booked.
// The whole request is rejected; none of the seats are marked.
type SeatConflictError struct {
    Seats []Seat
}

func (e *SeatConflictError) Error() string {
    parts := make([]string, 0, len(e.Seats))
    for _, s := range e.Seats {
        parts = append(parts, fmt.Sprintf("(%d,%d)", s.Row, s.Column))
    }
    return fmt.Sprintf("%s: %s", ErrSeatConflict.Error(), strings.Join(parts, ","))
}

func (e *SeatConflictError) Unwrap() error { return ErrSeatConflict }
