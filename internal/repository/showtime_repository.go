package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

type showtimeRow struct {
    ID          uint64 `db:"id"`
    TheaterName string `db:"theater_name"`
    SeatPrice   uint32 `db:"seat_price"`
    Seats       []byte `db:"seats"`
    Version     uint64 `db:"version"`
}

// LoadShowtime reads the seat grid, price and version for key.  When the
// showtime does not exist the aggregate is walked again to report which
// level is missing.  Duplicate dates (a double rollover) resolve to the
// first one stored.
func (s *Store) LoadShowtime(ctx context.Context, key model.ShowtimeKey) (*model.ShowtimeState, error) {
    const q = `SELECT st.id, t.name AS theater_name, st.seat_price, st.seats, st.version
                 FROM theaters t
                 JOIN theater_shows ts ON ts.theater_id = t.id
                 JOIN show_dates sd ON sd.show_id = ts.id
                 JOIN showtimes st ON st.show_date_id = sd.id
                WHERE t.id = ? AND ts.movie_id = ? AND sd.show_date = ? AND st.time_label = ?
                ORDER BY sd.id
                LIMIT 1`
    var row showtimeRow
    err := s.db.GetContext(ctx, &row, q, key.TheaterID, key.MovieID, key.Date, key.Time)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, s.missingLevel(ctx, key)
    }
    if err != nil {
        return nil, err
    }
    seats, err := decodeSeats(row.Seats)
    if err != nil {
        return nil, err
    }
    return &model.ShowtimeState{
        ID:          row.ID,
        Key:         key,
        TheaterName: row.TheaterName,
        SeatPrice:   row.SeatPrice,
        Seats:       seats,
        Version:     row.Version,
    }, nil
}

func (s *Store) missingLevel(ctx context.Context, key model.ShowtimeKey) error {
    t, err := s.FindTheaterForMovie(ctx, key.TheaterID, key.MovieID)
    if err != nil {
        return err
    }
    if _, err := t.Resolve(key); err != nil {
        return err
    }
    // The showtime appeared between the two reads.
    return ErrVersionConflict
}

// CommitReservation swaps in the new seat grid if the showtime is still at
// the version that was read and appends the booking to the ledger.  Both
// writes share one transaction, so either the seats are booked and the
// ledger entry exists, or neither happened.
func (s *Store) CommitReservation(ctx context.Context, st *model.ShowtimeState, next model.SeatMatrix, b *model.Booking) error {
    raw, err := encodeSeats(next)
    if err != nil {
        return err
    }

    tx, err := s.db.BeginTxx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := tx.ExecContext(ctx,
        `UPDATE showtimes SET seats = ?, version = version + 1 WHERE id = ? AND version = ?`,
        raw, st.ID, st.Version)
    if err != nil {
        return fmt.Errorf("updating seats for %s: %w", st.Key, err)
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrVersionConflict
    }

    if err := s.CreateBookingTx(ctx, tx, b); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
