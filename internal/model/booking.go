package model

import "time"

// Seat is a zero-based grid coordinate.
type Seat struct {
    Row    int `json:"row"`
    Column int `json:"column"`
}

// Booking is an immutable ledger entry created by a successful
// reservation.  It points at its showtime by (theater, movie, date, time)
// and keeps the theater name and the price as they were at booking time.
//
// Fields:
//  ID          – 10 character booking code shown to the customer.
//  UserID      – owner, as asserted by the identity layer.
//  MovieID     – movie that was booked.
//  TheaterID   – theater that owns the showtime.
//  TheaterName – theater name at booking time.
//  Date        – ShowDate key.
//  Time        – showtime label.
//  Seats       – booked coordinates in request order.
//  TotalPrice  – len(Seats) * seat price at booking time.
//  CreatedAt   – ledger timestamp (UTC).
type Booking struct {
    ID          string    `json:"id"`
    UserID      uint64    `json:"userId"`
    MovieID     uint64    `json:"movieId"`
    TheaterID   uint64    `json:"theaterId"`
    TheaterName string    `json:"theaterName"`
    Date        string    `json:"date"`
    Time        string    `json:"time"`
    Seats       []Seat    `json:"seats"`
    TotalPrice  uint64    `json:"totalPrice"`
    CreatedAt   time.Time `json:"createdAt"`
}

// Key returns the showtime the booking refers to.
func (b *Booking) Key() ShowtimeKey {
    return ShowtimeKey{TheaterID: b.TheaterID, MovieID: b.MovieID, Date: b.Date, Time: b.Time}
}
