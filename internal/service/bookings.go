package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Ledger is the read side of the booking ledger.
type Ledger interface {
	FindBookingByID(ctx context.Context, id string) (*model.Booking, error)
	FindBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// Bookings serves a user's view of the ledger.
type Bookings struct {
	ledger Ledger
}

// NewBookings returns a Bookings over ledger.
func NewBookings(ledger Ledger) *Bookings { return &Bookings{ledger: ledger} }

// Get returns the booking if it belongs to userID.  Another user's booking
// is model.ErrForbidden.
func (s *Bookings) Get(ctx context.Context, userID uint64, bookingID string) (*model.Booking, error) {
	if !ValidBookingID(bookingID) {
		return nil, model.ErrBookingNotFound
	}
	b, err := s.ledger.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, fmt.Errorf("booking %s: %w", bookingID, model.ErrForbidden)
	}
	return b, nil
}

// ListByUser returns userID's bookings, newest first.
func (s *Bookings) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.ledger.FindBookingsByUser(ctx, userID)
}
