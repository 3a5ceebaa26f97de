package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

// theaterTreeRow is one flattened row of the theater -> show -> date ->
// showtime join.  Dates without showtimes (fresh from a rollover) come back
// with NULL showtime columns.
type theaterTreeRow struct {
    TheaterID uint64         `db:"theater_id"`
    Name      string         `db:"name"`
    Location  string         `db:"location"`
    MovieID   uint64         `db:"movie_id"`
    DateID    sql.NullInt64  `db:"date_id"`
    ShowDate  sql.NullString `db:"show_date"`
    TimeLabel sql.NullString `db:"time_label"`
    SeatPrice sql.NullInt64  `db:"seat_price"`
    Seats     []byte         `db:"seats"`
}

const theaterTreeSelect = `SELECT t.id AS theater_id, t.name, t.location, ts.movie_id,
       sd.id AS date_id, sd.show_date, st.time_label, st.seat_price, st.seats
  FROM theaters t
  JOIN theater_shows ts ON ts.theater_id = t.id
  LEFT JOIN show_dates sd ON sd.show_id = ts.id
  LEFT JOIN showtimes st ON st.show_date_id = sd.id
 WHERE ts.movie_id = ?`

const theaterTreeOrder = ` ORDER BY t.id, ts.id, sd.id, st.id`

// ListTheatersByMovie returns every theater screening movieID with only
// that movie's show attached.  Rows arrive ordered so dates and
// showtimes keep their stored order.
func (s *Store) ListTheatersByMovie(ctx context.Context, movieID uint64) ([]model.Theater, error) {
    var rows []theaterTreeRow
    if err := s.db.SelectContext(ctx, &rows, theaterTreeSelect+theaterTreeOrder, movieID); err != nil {
        return nil, err
    }
    return assembleTheaters(rows)
}

// FindTheaterForMovie loads one theater with only movieID's show attached.
// A theater that exists but does not screen the movie comes back with no
// shows; a missing theater is model.ErrTheaterNotFound.
func (s *Store) FindTheaterForMovie(ctx context.Context, theaterID, movieID uint64) (*model.Theater, error) {
    var head struct {
        ID       uint64 `db:"id"`
        Name     string `db:"name"`
        Location string `db:"location"`
    }
    err := s.db.GetContext(ctx, &head, `SELECT id, name, location FROM theaters WHERE id = ?`, theaterID)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, model.ErrTheaterNotFound
    }
    if err != nil {
        return nil, err
    }

    var rows []theaterTreeRow
    q := theaterTreeSelect + ` AND t.id = ?` + theaterTreeOrder
    if err := s.db.SelectContext(ctx, &rows, q, movieID, theaterID); err != nil {
        return nil, err
    }
    theaters, err := assembleTheaters(rows)
    if err != nil {
        return nil, err
    }
    if len(theaters) == 0 {
        return &model.Theater{ID: head.ID, Name: head.Name, Location: head.Location, Shows: []model.Show{}}, nil
    }
    return &theaters[0], nil
}

func assembleTheaters(rows []theaterTreeRow) ([]model.Theater, error) {
    theaters := []model.Theater{}
    var lastDateID int64 = -1
    for _, r := range rows {
        n := len(theaters)
        if n == 0 || theaters[n-1].ID != r.TheaterID {
            theaters = append(theaters, model.Theater{
                ID:       r.TheaterID,
                Name:     r.Name,
                Location: r.Location,
                Shows:    []model.Show{{MovieID: r.MovieID, Dates: []model.ShowDate{}}},
            })
            n++
            lastDateID = -1
        }
        show := &theaters[n-1].Shows[0]
        if !r.DateID.Valid {
            continue
        }
        if r.DateID.Int64 != lastDateID {
            show.Dates = append(show.Dates, model.ShowDate{Date: r.ShowDate.String, Showtimes: []model.Showtime{}})
            lastDateID = r.DateID.Int64
        }
        if !r.TimeLabel.Valid {
            continue
        }
        seats, err := decodeSeats(r.Seats)
        if err != nil {
            return nil, err
        }
        date := &show.Dates[len(show.Dates)-1]
        date.Showtimes = append(date.Showtimes, model.Showtime{
            Time:      r.TimeLabel.String,
            SeatPrice: uint32(r.SeatPrice.Int64),
            Seats:     seats,
        })
    }
    return theaters, nil
}

// CreateTheater inserts a theater with its shows, dates and showtimes in
// one transaction and sets t.ID.  Used by the seeder.
func (s *Store) CreateTheater(ctx context.Context, t *model.Theater) error {
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

    res, err := tx.ExecContext(ctx, `INSERT INTO theaters (name, location) VALUES (?, ?)`, t.Name, t.Location)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }

    for _, show := range t.Shows {
        if err := insertShowTx(ctx, tx, uint64(id), show); err != nil {
            return err
        }
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    t.ID = uint64(id)
    return nil
}

func insertShowTx(ctx context.Context, tx *sqlx.Tx, theaterID uint64, show model.Show) error {
    res, err := tx.ExecContext(ctx, `INSERT INTO theater_shows (theater_id, movie_id) VALUES (?, ?)`, theaterID, show.MovieID)
    if err != nil {
        return err
    }
    showID, err := res.LastInsertId()
    if err != nil {
        return err
    }
    for _, d := range show.Dates {
        res, err := tx.ExecContext(ctx, `INSERT INTO show_dates (show_id, show_date) VALUES (?, ?)`, showID, d.Date)
        if err != nil {
            return err
        }
        dateID, err := res.LastInsertId()
        if err != nil {
            return err
        }
        for _, st := range d.Showtimes {
            if err := st.Seats.Validate(); err != nil {
                return err
            }
            raw, err := encodeSeats(st.Seats)
            if err != nil {
                return err
            }
            const q = `INSERT INTO showtimes (show_date_id, time_label, seat_price, seat_rows, seat_cols, seats)
                       VALUES (?, ?, ?, ?, ?, ?)`
            if _, err := tx.ExecContext(ctx, q, dateID, st.Time, st.SeatPrice, st.Seats.Rows(), st.Seats.Cols(), raw); err != nil {
                return err
            }
        }
    }
    return nil
}
