package model

import "fmt"

// Theater is the aggregate that owns every show screened at one venue.
// Seat matrices live nested inside it, but each showtime row carries its
// own version so reservations only contend on the showtime they touch.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – display name; snapshotted onto bookings.
//  Location – free-form address line.
//  Shows    – one entry per movie screened here, in insertion order.
type Theater struct {
    ID       uint64 `json:"id"`
    Name     string `json:"name"`
    Location string `json:"location"`
    Shows    []Show `json:"shows"`
}

// Show associates one movie with its ordered calendar of dates inside a
// single theater.
type Show struct {
    MovieID uint64     `json:"movieId"`
    Dates   []ShowDate `json:"dates"`
}

// ShowDate is an opaque calendar key ("2006-01-02") owning the ordered
// showtimes for one movie in one theater.
type ShowDate struct {
    Date      string     `json:"date"`
    Showtimes []Showtime `json:"showtimes"`
}

// Showtime is one screening.  Time is the label shown to customers
// ("10:00 AM") and is unique within its date.
type Showtime struct {
    Time      string     `json:"time"`
    SeatPrice uint32     `json:"seatPrice"`
    Seats     SeatMatrix `json:"seats"`
}

// ShowFor returns the show for movieID, if the theater screens it.
func (t *Theater) ShowFor(movieID uint64) (*Show, bool) {
    for i := range t.Shows {
        if t.Shows[i].MovieID == movieID {
            return &t.Shows[i], true
        }
    }
    return nil, false
}

// OnlyMovie returns a copy of the theater whose Shows hold just the entry
// for movieID.  Listing endpoints use it so other movies never leak into
// a response.
func (t Theater) OnlyMovie(movieID uint64) Theater {
    out := Theater{ID: t.ID, Name: t.Name, Location: t.Location, Shows: []Show{}}
    if s, ok := t.ShowFor(movieID); ok {
        out.Shows = append(out.Shows, *s)
    }
    return out
}

// DateFor returns the entry keyed by date.
func (s *Show) DateFor(date string) (*ShowDate, bool) {
    for i := range s.Dates {
        if s.Dates[i].Date == date {
            return &s.Dates[i], true
        }
    }
    return nil, false
}

// FirstDateWithTime returns the first date, in calendar order as stored,
// that offers the given time label.
func (s *Show) FirstDateWithTime(label string) (*ShowDate, bool) {
    for i := range s.Dates {
        if _, ok := s.Dates[i].ShowtimeAt(label); ok {
            return &s.Dates[i], true
        }
    }
    return nil, false
}

// ShowtimeAt returns the showtime with the given label.
func (d *ShowDate) ShowtimeAt(label string) (*Showtime, bool) {
    for i := range d.Showtimes {
        if d.Showtimes[i].Time == label {
            return &d.Showtimes[i], true
        }
    }
    return nil, false
}

// ShowtimeKey addresses a single seat matrix.
type ShowtimeKey struct {
    TheaterID uint64
    MovieID   uint64
    Date      string
    Time      string
}

func (k ShowtimeKey) String() string {
    return fmt.Sprintf("%d/%d/%s/%s", k.TheaterID, k.MovieID, k.Date, k.Time)
}

// ShowtimeState is a showtime as read for a reservation: the seat grid,
// the price, the theater name to snapshot, and the version the grid was
// read at.  A commit succeeds only if the stored version still matches.
type ShowtimeState struct {
    ID          uint64
    Key         ShowtimeKey
    TheaterName string
    SeatPrice   uint32
    Seats       SeatMatrix
    Version     uint64
}

// Clone returns a deep copy of the theater, seat grids included.
func (t Theater) Clone() Theater {
    out := Theater{ID: t.ID, Name: t.Name, Location: t.Location, Shows: make([]Show, len(t.Shows))}
    for i, s := range t.Shows {
        dates := make([]ShowDate, len(s.Dates))
        for j, d := range s.Dates {
            times := make([]Showtime, len(d.Showtimes))
            for k, st := range d.Showtimes {
                times[k] = Showtime{Time: st.Time, SeatPrice: st.SeatPrice, Seats: st.Seats.Clone()}
            }
            dates[j] = ShowDate{Date: d.Date, Showtimes: times}
        }
        out.Shows[i] = Show{MovieID: s.MovieID, Dates: dates}
    }
    return out
}

// Resolve walks theater -> show -> date -> showtime for key and reports
// the first level that is missing.
func (t *Theater) Resolve(key ShowtimeKey) (*Showtime, error) {
    show, ok := t.ShowFor(key.MovieID)
    if !ok {
        return nil, ErrMovieNotOffered
    }
    date, ok := show.DateFor(key.Date)
    if !ok {
        return nil, ErrDateNotOffered
    }
    st, ok := date.ShowtimeAt(key.Time)
    if !ok {
        return nil, ErrShowtimeNotFound
    }
    return st, nil
}
