package repository

import (
    "encoding/json"
    "errors"
    "fmt"

    "github.com/go-sql-driver/mysql"
    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Store is the MySQL backed implementation of the showtime index, the
// booking ledger and the rollover bookkeeping.  Seat grids are stored as
// JSON on their showtime row next to a version counter; a reservation
// commit is a compare-and-swap on that counter plus the ledger insert,
// both inside one transaction.
type Store struct {
    db *sqlx.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

func encodeSeats(m model.SeatMatrix) ([]byte, error) {
    if m == nil {
        m = model.SeatMatrix{}
    }
    return json.Marshal(m)
}

func decodeSeats(raw []byte) (model.SeatMatrix, error) {
    var m model.SeatMatrix
    if len(raw) == 0 {
        return model.SeatMatrix{}, nil
    }
    if err := json.Unmarshal(raw, &m); err != nil {
        return nil, fmt.Errorf("decoding seat matrix: %w", err)
    }
    if err := m.Validate(); err != nil {
        return nil, err
    }
    return m, nil
}

func encodeSeatList(seats []model.Seat) ([]byte, error) {
    if seats == nil {
        seats = []model.Seat{}
    }
    return json.Marshal(seats)
}

func decodeSeatList(raw []byte) ([]model.Seat, error) {
    seats := []model.Seat{}
    if len(raw) == 0 {
        return seats, nil
    }
    if err := json.Unmarshal(raw, &seats); err != nil {
        return nil, fmt.Errorf("decoding booked seats: %w", err)
    }
    return seats, nil
}
