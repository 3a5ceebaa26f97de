// Package service holds the booking use cases: seat lookup, reservation,
// the booking ledger reads and the daily date rollover.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// ShowtimeStore reads a showtime for reservation and commits the new seat
// grid together with its ledger entry.
type ShowtimeStore interface {
	LoadShowtime(ctx context.Context, key model.ShowtimeKey) (*model.ShowtimeState, error)
	CommitReservation(ctx context.Context, st *model.ShowtimeState, next model.SeatMatrix, b *model.Booking) error
}

// BookingNotifier is told about every committed booking.  Failures are
// logged and never undo the booking.
type BookingNotifier interface {
	PublishBookingConfirmed(ctx context.Context, b *model.Booking) error
}

const (
	defaultMaxAttempts = 5
	notifyTimeout      = 3 * time.Second
)

// ReserveRequest is a customer's request to book seats at one showtime.
// TheaterName is informational; the stored name comes from the theater.
// A zero TotalPrice means the client did not supply one.
type ReserveRequest struct {
	UserID      uint64
	MovieID     uint64
	TheaterID   uint64
	TheaterName string
	Date        string
	Time        string
	Seats       []model.Seat
	TotalPrice  uint64
}

func (r ReserveRequest) key() model.ShowtimeKey {
	return model.ShowtimeKey{TheaterID: r.TheaterID, MovieID: r.MovieID, Date: r.Date, Time: r.Time}
}

func (r ReserveRequest) validate() error {
	var missing []string
	if r.UserID == 0 {
		missing = append(missing, "userId")
	}
	if r.MovieID == 0 {
		missing = append(missing, "movieId")
	}
	if r.TheaterID == 0 {
		missing = append(missing, "theaterId")
	}
	if r.Date == "" {
		missing = append(missing, "date")
	}
	if r.Time == "" {
		missing = append(missing, "time")
	}
	if len(r.Seats) == 0 {
		missing = append(missing, "seats")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", model.ErrInvalidRequest, strings.Join(missing, ", "))
	}
	seen := make(map[model.Seat]struct{}, len(r.Seats))
	for _, s := range r.Seats {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: seat (%d,%d) requested twice", model.ErrInvalidRequest, s.Row, s.Column)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// Reserver runs the reservation transaction.  Requests for the same
// showtime are serialised in-process; across processes the store's
// version check rejects a stale write and the attempt is retried against
// fresh state.  Requests for different showtimes never wait on each other.
type Reserver struct {
	store       ShowtimeStore
	clock       Clock
	newID       IDGenerator
	notifier    BookingNotifier
	maxAttempts int
	locks       *keyedLock
	log         logrus.FieldLogger
}

// ReserverOption configures a Reserver.
type ReserverOption func(*Reserver)

// WithClock overrides the clock used for booking timestamps.
func WithClock(c Clock) ReserverOption {
	return func(r *Reserver) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithIDGenerator overrides the booking code generator.
func WithIDGenerator(g IDGenerator) ReserverOption {
	return func(r *Reserver) {
		if g != nil {
			r.newID = g
		}
	}
}

// WithNotifier publishes each committed booking.
func WithNotifier(n BookingNotifier) ReserverOption {
	return func(r *Reserver) { r.notifier = n }
}

// WithMaxAttempts bounds the optimistic retry loop.
func WithMaxAttempts(n int) ReserverOption {
	return func(r *Reserver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) ReserverOption {
	return func(r *Reserver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewReserver returns a Reserver over store.
func NewReserver(store ShowtimeStore, opts ...ReserverOption) *Reserver {
	r := &Reserver{
		store:       store,
		clock:       SystemClock,
		newID:       NewBookingID,
		maxAttempts: defaultMaxAttempts,
		locks:       newKeyedLock(),
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reserve books every requested seat or none of them.  On success the
// seats are marked in the showtime's grid and the returned booking is in
// the ledger.  Errors:
//   - model.ErrInvalidRequest for missing fields or duplicate seats
//   - model.ErrNotFound variants when the showtime cannot be resolved
//   - *model.InvalidSeatError for a coordinate outside the grid
//   - *model.SeatConflictError listing every seat already taken
//   - model.ErrPriceMismatch when a supplied total disagrees
func (r *Reserver) Reserve(ctx context.Context, req ReserveRequest) (*model.Booking, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	b, err := r.reserveLocked(ctx, req)
	if err != nil {
		return nil, err
	}
	// The showtime lock is already released; a slow broker only delays
	// this caller.
	r.notify(ctx, b)
	return b, nil
}

// reserveLocked runs the retry loop under the showtime's lock.
func (r *Reserver) reserveLocked(ctx context.Context, req ReserveRequest) (*model.Booking, error) {
	key := req.key()
	logger := r.log.WithFields(logrus.Fields{"showtime": key.String(), "user_id": req.UserID})

	unlock := r.locks.Lock(key.String())
	defer unlock()

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := r.attempt(ctx, req)
		switch {
		case err == nil:
			logger.WithFields(logrus.Fields{"booking_id": b.ID, "seats": len(b.Seats), "attempt": attempt}).Info("booking confirmed")
			return b, nil
		case errors.Is(err, repository.ErrVersionConflict), errors.Is(err, repository.ErrDuplicateBookingID):
			logger.WithError(err).WithField("attempt", attempt).Debug("reservation retry")
			continue
		default:
			return nil, err
		}
	}
	logger.WithField("attempts", r.maxAttempts).Error("reservation gave up after repeated conflicts")
	return nil, fmt.Errorf("reserving %s: gave up after %d attempts", key, r.maxAttempts)
}

func (r *Reserver) attempt(ctx context.Context, req ReserveRequest) (*model.Booking, error) {
	st, err := r.store.LoadShowtime(ctx, req.key())
	if err != nil {
		return nil, err
	}

	var taken []model.Seat
	for _, s := range req.Seats {
		booked, err := st.Seats.IsBooked(s.Row, s.Column)
		if err != nil {
			return nil, err
		}
		if booked {
			taken = append(taken, s)
		}
	}
	if len(taken) > 0 {
		return nil, &model.SeatConflictError{Seats: taken}
	}

	total := uint64(len(req.Seats)) * uint64(st.SeatPrice)
	if req.TotalPrice != 0 && req.TotalPrice != total {
		return nil, fmt.Errorf("%w: got %d, expected %d", model.ErrPriceMismatch, req.TotalPrice, total)
	}

	next := st.Seats.Clone()
	for _, s := range req.Seats {
		if err := next.MarkBooked(s.Row, s.Column); err != nil {
			return nil, err
		}
	}

	id, err := r.newID()
	if err != nil {
		return nil, fmt.Errorf("generating booking id: %w", err)
	}
	b := &model.Booking{
		ID:          id,
		UserID:      req.UserID,
		MovieID:     req.MovieID,
		TheaterID:   req.TheaterID,
		TheaterName: st.TheaterName,
		Date:        req.Date,
		Time:        req.Time,
		Seats:       append([]model.Seat(nil), req.Seats...),
		TotalPrice:  total,
		CreatedAt:   r.clock.Now().UTC(),
	}
	if b.TheaterName == "" {
		b.TheaterName = req.TheaterName
	}

	if err := r.store.CommitReservation(ctx, st, next, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Reserver) notify(ctx context.Context, b *model.Booking) {
	if r.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := r.notifier.PublishBookingConfirmed(ctx, b); err != nil {
		r.log.WithError(err).WithField("booking_id", b.ID).Warn("booking event not published")
	}
}
