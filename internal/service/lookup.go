package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// TheaterReader is the read side of the showtime index.
type TheaterReader interface {
	ListTheatersByMovie(ctx context.Context, movieID uint64) ([]model.Theater, error)
	FindTheaterForMovie(ctx context.Context, theaterID, movieID uint64) (*model.Theater, error)
}

// Lookup answers seat and theater queries.  Results are snapshots; a
// concurrent reservation may land right after they are read.
type Lookup struct {
	store TheaterReader
}

// NewLookup returns a Lookup over store.
func NewLookup(store TheaterReader) *Lookup { return &Lookup{store: store} }

// TheatersByMovie lists every theater screening movieID with only that
// movie's show attached.  No theater at all is model.ErrNotFound.
func (l *Lookup) TheatersByMovie(ctx context.Context, movieID uint64) ([]model.Theater, error) {
	theaters, err := l.store.ListTheatersByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if len(theaters) == 0 {
		return nil, fmt.Errorf("no theaters for movie %d: %w", movieID, model.ErrNotFound)
	}
	return theaters, nil
}

// SeatMatrix returns the seat grid for a showtime.  When date is empty the
// first date, in stored order, that offers the time label is used.
func (l *Lookup) SeatMatrix(ctx context.Context, movieID, theaterID uint64, date, label string) (model.SeatMatrix, error) {
	if movieID == 0 || theaterID == 0 || label == "" {
		return nil, fmt.Errorf("%w: movieId, theaterId and time are required", model.ErrInvalidRequest)
	}
	t, err := l.store.FindTheaterForMovie(ctx, theaterID, movieID)
	if err != nil {
		return nil, err
	}
	if date != "" {
		st, err := t.Resolve(model.ShowtimeKey{TheaterID: theaterID, MovieID: movieID, Date: date, Time: label})
		if err != nil {
			return nil, err
		}
		return st.Seats, nil
	}

	show, ok := t.ShowFor(movieID)
	if !ok {
		return nil, model.ErrMovieNotOffered
	}
	d, ok := show.FirstDateWithTime(label)
	if !ok {
		return nil, model.ErrShowtimeNotFound
	}
	st, _ := d.ShowtimeAt(label)
	return st.Seats, nil
}
