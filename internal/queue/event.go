// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

// BookingQueueName is the durable queue booking events are published to.
const BookingQueueName = "booking.confirmed"

// BookingConfirmedEvent is published after a reservation commits.  It
// carries enough of the booking for downstream consumers to log or notify
// without querying the ledger.
type BookingConfirmedEvent struct {
    BookingID   string       `json:"booking_id"`
    UserID      uint64       `json:"user_id"`
    MovieID     uint64       `json:"movie_id"`
    TheaterID   uint64       `json:"theater_id"`
    TheaterName string       `json:"theater_name"`
    Date        string       `json:"date"`
    Time        string       `json:"time"`
    Seats       []model.Seat `json:"seats"`
    TotalPrice  uint64       `json:"total_price"`
    ConfirmedAt string       `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the event payload for b.
func NewBookingConfirmedEvent(b *model.Booking) BookingConfirmedEvent {
    return BookingConfirmedEvent{
        BookingID:   b.ID,
        UserID:      b.UserID,
        MovieID:     b.MovieID,
        TheaterID:   b.TheaterID,
        TheaterName: b.TheaterName,
        Date:        b.Date,
        Time:        b.Time,
        Seats:       append([]model.Seat(nil), b.Seats...),
        TotalPrice:  b.TotalPrice,
        ConfirmedAt: b.CreatedAt.UTC().Format(time.RFC3339),
    }
}
