package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

// bookingRecord mirrors the bookings table.  Business logic should use
// model.Booking instead.
type bookingRecord struct {
    ID          string    `db:"id"`
    UserID      uint64    `db:"user_id"`
    MovieID     uint64    `db:"movie_id"`
    TheaterID   uint64    `db:"theater_id"`
    TheaterName string    `db:"theater_name"`
    ShowDate    string    `db:"show_date"`
    TimeLabel   string    `db:"time_label"`
    Seats       []byte    `db:"seats"`
    TotalPrice  uint64    `db:"total_price"`
    CreatedAt   time.Time `db:"created_at"`
}

func (r *bookingRecord) toModel() (*model.Booking, error) {
    seats, err := decodeSeatList(r.Seats)
    if err != nil {
        return nil, err
    }
    return &model.Booking{
        ID:          r.ID,
        UserID:      r.UserID,
        MovieID:     r.MovieID,
        TheaterID:   r.TheaterID,
        TheaterName: r.TheaterName,
        Date:        r.ShowDate,
        Time:        r.TimeLabel,
        Seats:       seats,
        TotalPrice:  r.TotalPrice,
        CreatedAt:   r.CreatedAt.UTC(),
    }, nil
}

const bookingColumns = `id, user_id, movie_id, theater_id, theater_name, show_date, time_label, seats, total_price, created_at`

// CreateBooking appends b to the ledger outside any reservation.  The
// ledger is append-only, so this is also how a correcting record is added;
// nothing here updates or deletes an existing booking.
func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
    return s.insertBooking(ctx, s.db, b)
}

// CreateBookingTx appends b to the ledger within an existing transaction.
// The caller must commit or rollback.
func (s *Store) CreateBookingTx(ctx context.Context, tx *sqlx.Tx, b *model.Booking) error {
    return s.insertBooking(ctx, tx, b)
}

func (s *Store) insertBooking(ctx context.Context, ex sqlx.ExecerContext, b *model.Booking) error {
    raw, err := encodeSeatList(b.Seats)
    if err != nil {
        return err
    }
    const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    _, err = ex.ExecContext(ctx, q, b.ID, b.UserID, b.MovieID, b.TheaterID, b.TheaterName,
        b.Date, b.Time, raw, b.TotalPrice, b.CreatedAt.UTC())
    if isDuplicateEntry(err) {
        return ErrDuplicateBookingID
    }
    return err
}

// FindBookingByID returns the booking with the given code or
// model.ErrBookingNotFound.
func (s *Store) FindBookingByID(ctx context.Context, id string) (*model.Booking, error) {
    var rec bookingRecord
    err := s.db.GetContext(ctx, &rec, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, model.ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    return rec.toModel()
}

// FindBookingsByUser returns a user's bookings newest first.
func (s *Store) FindBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    var recs []bookingRecord
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id`
    if err := s.db.SelectContext(ctx, &recs, q, userID); err != nil {
        return nil, err
    }
    out := make([]model.Booking, 0, len(recs))
    for i := range recs {
        b, err := recs[i].toModel()
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, nil
}
