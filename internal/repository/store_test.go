package repository

import (
    "database/sql"
    "errors"
    "fmt"
    "testing"

    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

func TestDecodeSeats(t *testing.T) {
    tests := []struct {
        name    string
        raw     string
        want    model.SeatMatrix
        wantErr bool
    }{
        {"empty column", "", model.SeatMatrix{}, false},
        {"grid", `[[false,true],[true,false]]`, model.SeatMatrix{{false, true}, {true, false}}, false},
        {"ragged", `[[false,false],[false]]`, nil, true},
        {"not json", `{"rows":2}`, nil, true},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got, err := decodeSeats([]byte(tt.raw))
            if tt.wantErr {
                assert.Error(t, err)
                return
            }
            require.NoError(t, err)
            assert.Equal(t, tt.want, got)
        })
    }

    raw, err := encodeSeats(nil)
    require.NoError(t, err)
    assert.Equal(t, "[]", string(raw))
}

func TestSeatListCodec(t *testing.T) {
    raw, err := encodeSeatList(nil)
    require.NoError(t, err)
    assert.Equal(t, "[]", string(raw))

    seats, err := decodeSeatList([]byte(`[{"row":1,"column":2}]`))
    require.NoError(t, err)
    assert.Equal(t, []model.Seat{{Row: 1, Column: 2}}, seats)

    seats, err = decodeSeatList(nil)
    require.NoError(t, err)
    assert.Empty(t, seats)
}

func TestIsDuplicateEntry(t *testing.T) {
    tests := []struct {
        name string
        err  error
        want bool
    }{
        {"nil", nil, false},
        {"duplicate key", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
        {"wrapped duplicate", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), true},
        {"other server error", &mysql.MySQLError{Number: 1452}, false},
        {"plain error", errors.New("1062"), false},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            assert.Equal(t, tt.want, isDuplicateEntry(tt.err))
        })
    }
}

func row(theaterID, movieID uint64, dateID int64, date, label string, price int64, seats string) theaterTreeRow {
    r := theaterTreeRow{TheaterID: theaterID, Name: fmt.Sprintf("T%d", theaterID), Location: "L", MovieID: movieID}
    if dateID > 0 {
        r.DateID = sql.NullInt64{Int64: dateID, Valid: true}
        r.ShowDate = sql.NullString{String: date, Valid: true}
    }
    if label != "" {
        r.TimeLabel = sql.NullString{String: label, Valid: true}
        r.SeatPrice = sql.NullInt64{Int64: price, Valid: true}
        r.Seats = []byte(seats)
    }
    return r
}

func TestAssembleTheaters(t *testing.T) {
    grid := `[[false,true]]`
    empty := []model.Showtime{}

    tests := []struct {
        name string
        rows []theaterTreeRow
        want []model.Theater
    }{
        {
            name: "no rows",
            rows: nil,
            want: []model.Theater{},
        },
        {
            name: "show without dates",
            rows: []theaterTreeRow{row(1, 5, 0, "", "", 0, "")},
            want: []model.Theater{{ID: 1, Name: "T1", Location: "L", Shows: []model.Show{{MovieID: 5, Dates: []model.ShowDate{}}}}},
        },
        {
            name: "dates keep order and an empty date has no showtimes",
            rows: []theaterTreeRow{
                row(1, 5, 10, "2025-01-01", "10:00 AM", 150, grid),
                row(1, 5, 10, "2025-01-01", "2:00 PM", 150, grid),
                row(1, 5, 11, "2025-01-04", "", 0, ""),
            },
            want: []model.Theater{{ID: 1, Name: "T1", Location: "L", Shows: []model.Show{{MovieID: 5, Dates: []model.ShowDate{
                {Date: "2025-01-01", Showtimes: []model.Showtime{
                    {Time: "10:00 AM", SeatPrice: 150, Seats: model.SeatMatrix{{false, true}}},
                    {Time: "2:00 PM", SeatPrice: 150, Seats: model.SeatMatrix{{false, true}}},
                }},
                {Date: "2025-01-04", Showtimes: empty},
            }}}}},
        },
        {
            // Two theaters whose date rows share an id must not merge.
            name: "date tracking resets on a new theater",
            rows: []theaterTreeRow{
                row(1, 5, 10, "2025-01-01", "10:00 AM", 150, grid),
                row(2, 5, 10, "2025-01-01", "9:30 AM", 200, grid),
            },
            want: []model.Theater{
                {ID: 1, Name: "T1", Location: "L", Shows: []model.Show{{MovieID: 5, Dates: []model.ShowDate{
                    {Date: "2025-01-01", Showtimes: []model.Showtime{{Time: "10:00 AM", SeatPrice: 150, Seats: model.SeatMatrix{{false, true}}}}},
                }}}},
                {ID: 2, Name: "T2", Location: "L", Shows: []model.Show{{MovieID: 5, Dates: []model.ShowDate{
                    {Date: "2025-01-01", Showtimes: []model.Showtime{{Time: "9:30 AM", SeatPrice: 200, Seats: model.SeatMatrix{{false, true}}}}},
                }}}},
            },
        },
        {
            name: "duplicate date entries stay separate",
            rows: []theaterTreeRow{
                row(1, 5, 20, "2025-01-04", "", 0, ""),
                row(1, 5, 21, "2025-01-04", "", 0, ""),
            },
            want: []model.Theater{{ID: 1, Name: "T1", Location: "L", Shows: []model.Show{{MovieID: 5, Dates: []model.ShowDate{
                {Date: "2025-01-04", Showtimes: empty},
                {Date: "2025-01-04", Showtimes: empty},
            }}}}},
        },
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got, err := assembleTheaters(tt.rows)
            require.NoError(t, err)
            assert.Equal(t, tt.want, got)
        })
    }

    _, err := assembleTheaters([]theaterTreeRow{row(1, 5, 10, "2025-01-01", "10:00 AM", 150, `[[false],[]]`)})
    assert.Error(t, err)
}
