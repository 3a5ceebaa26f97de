// Package inmem is a process-local store with the same contract as the
// MySQL store.  It backs the memory storage driver and the service tests.
package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// CommitHook runs inside CommitReservation after the version check and
// before anything is written.  A non-nil error aborts the commit.
type CommitHook func(key model.ShowtimeKey, b *model.Booking) error

// Store keeps theaters, bookings and rollover claims in memory.  Every read
// returns a copy so callers never share seat grids with the store.
type Store struct {
	mu       sync.RWMutex
	theaters []*model.Theater
	versions map[model.ShowtimeKey]uint64
	bookings map[string]model.Booking
	byUser   map[uint64][]string
	claims   map[string]struct{}
	nextID   uint64
	hook     CommitHook
}

// New returns an empty store.
func New() *Store {
	return &Store{
		versions: make(map[model.ShowtimeKey]uint64),
		bookings: make(map[string]model.Booking),
		byUser:   make(map[uint64][]string),
		claims:   make(map[string]struct{}),
	}
}

// SetCommitHook installs h; nil removes it.
func (s *Store) SetCommitHook(h CommitHook) {
	s.mu.Lock()
	s.hook = h
	s.mu.Unlock()
}

// CreateTheater stores a copy of t and assigns t.ID when it is zero.
func (s *Store) CreateTheater(_ context.Context, t *model.Theater) error {
	for _, show := range t.Shows {
		for _, d := range show.Dates {
			for _, st := range d.Showtimes {
				if err := st.Seats.Validate(); err != nil {
					return err
				}
			}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		s.nextID++
		t.ID = s.nextID
	} else if t.ID > s.nextID {
		s.nextID = t.ID
	}
	c := t.Clone()
	s.theaters = append(s.theaters, &c)
	return nil
}

func (s *Store) theater(id uint64) *model.Theater {
	for _, t := range s.theaters {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ListTheatersByMovie returns every theater screening movieID with only
// that movie's show attached.
func (s *Store) ListTheatersByMovie(_ context.Context, movieID uint64) ([]model.Theater, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Theater{}
	for _, t := range s.theaters {
		if _, ok := t.ShowFor(movieID); ok {
			out = append(out, t.Clone().OnlyMovie(movieID))
		}
	}
	return out, nil
}

// FindTheaterForMovie loads one theater with only movieID's show attached.
func (s *Store) FindTheaterForMovie(_ context.Context, theaterID, movieID uint64) (*model.Theater, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.theater(theaterID)
	if t == nil {
		return nil, model.ErrTheaterNotFound
	}
	out := t.Clone().OnlyMovie(movieID)
	return &out, nil
}

// LoadShowtime returns a copy of the showtime at key and the version it
// was read at.
func (s *Store) LoadShowtime(_ context.Context, key model.ShowtimeKey) (*model.ShowtimeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.theater(key.TheaterID)
	if t == nil {
		return nil, model.ErrTheaterNotFound
	}
	st, err := t.Resolve(key)
	if err != nil {
		return nil, err
	}
	return &model.ShowtimeState{
		Key:         key,
		TheaterName: t.Name,
		SeatPrice:   st.SeatPrice,
		Seats:       st.Seats.Clone(),
		Version:     s.versions[key],
	}, nil
}

// CommitReservation installs next as the seat grid for st.Key if the
// version still matches and records b, all under one lock.
func (s *Store) CommitReservation(_ context.Context, st *model.ShowtimeState, next model.SeatMatrix, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.versions[st.Key] != st.Version {
		return repository.ErrVersionConflict
	}
	t := s.theater(st.Key.TheaterID)
	if t == nil {
		return model.ErrTheaterNotFound
	}
	cur, err := t.Resolve(st.Key)
	if err != nil {
		return err
	}
	if _, dup := s.bookings[b.ID]; dup {
		return repository.ErrDuplicateBookingID
	}
	if s.hook != nil {
		if err := s.hook(st.Key, b); err != nil {
			return err
		}
	}

	cur.Seats = next.Clone()
	s.versions[st.Key]++
	s.appendBooking(b)
	return nil
}

// CreateBooking appends b to the ledger.
func (s *Store) CreateBooking(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.bookings[b.ID]; dup {
		return repository.ErrDuplicateBookingID
	}
	s.appendBooking(b)
	return nil
}

func (s *Store) appendBooking(b *model.Booking) {
	c := *b
	c.Seats = append([]model.Seat(nil), b.Seats...)
	s.bookings[c.ID] = c
	s.byUser[c.UserID] = append(s.byUser[c.UserID], c.ID)
}

// FindBookingByID returns the booking with the given code.
func (s *Store) FindBookingByID(_ context.Context, id string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	b.Seats = append([]model.Seat(nil), b.Seats...)
	return &b, nil
}

// FindBookingsByUser returns a user's bookings newest first.
func (s *Store) FindBookingsByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byUser[userID]
	out := make([]model.Booking, 0, len(ids))
	for _, id := range ids {
		b := s.bookings[id]
		b.Seats = append([]model.Seat(nil), b.Seats...)
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ClaimRolloverRun reports whether day had not been claimed yet.
func (s *Store) ClaimRolloverRun(_ context.Context, day string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[day]; ok {
		return false, nil
	}
	s.claims[day] = struct{}{}
	return true, nil
}

// RolloverDates drops every date equal to retire and appends an empty add
// date to every show.  Not idempotent.
func (s *Store) RolloverDates(_ context.Context, retire, add string) (repository.RolloverResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res repository.RolloverResult
	for _, t := range s.theaters {
		for i := range t.Shows {
			show := &t.Shows[i]
			kept := show.Dates[:0]
			for _, d := range show.Dates {
				if d.Date == retire {
					res.Removed++
					for _, st := range d.Showtimes {
						delete(s.versions, model.ShowtimeKey{TheaterID: t.ID, MovieID: show.MovieID, Date: d.Date, Time: st.Time})
					}
					continue
				}
				kept = append(kept, d)
			}
			show.Dates = append(kept, model.ShowDate{Date: add, Showtimes: []model.Showtime{}})
			res.Added++
		}
	}
	return res, nil
}
