// Package seed builds the demo theater catalogue used by the memory store
// and the cmd/seed tool.
package seed

import (
	"math/rand/v2"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const (
	DateLayout = "2006-01-02"

	Rows     = 8
	Cols     = 10
	Days     = 3
	MinPrice = 150
	MaxPrice = 250
)

type venue struct {
	name     string
	location string
	times    []string
}

var venues = []venue{
	{"PVR Cinemas, Mumbai", "Mumbai, Maharashtra", []string{"10:00 AM", "2:00 PM", "6:00 PM"}},
	{"INOX, Delhi", "Delhi, NCR", []string{"9:30 AM", "1:30 PM", "5:30 PM"}},
}

// Theaters returns the demo venues screening every movie in movieIDs for
// Days consecutive dates starting at today.  Theater IDs are left zero;
// the store assigns them.  rng may be nil for a random seed.
func Theaters(today time.Time, movieIDs []uint64, rng *rand.Rand) []model.Theater {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	dates := make([]string, Days)
	for i := range dates {
		dates[i] = today.AddDate(0, 0, i).Format(DateLayout)
	}

	out := make([]model.Theater, 0, len(venues))
	for _, v := range venues {
		t := model.Theater{Name: v.name, Location: v.location, Shows: make([]model.Show, 0, len(movieIDs))}
		for _, movieID := range movieIDs {
			show := model.Show{MovieID: movieID, Dates: make([]model.ShowDate, 0, len(dates))}
			for _, d := range dates {
				sd := model.ShowDate{Date: d, Showtimes: make([]model.Showtime, 0, len(v.times))}
				for _, label := range v.times {
					sd.Showtimes = append(sd.Showtimes, model.Showtime{
						Time:      label,
						SeatPrice: uint32(MinPrice + rng.IntN(MaxPrice-MinPrice+1)),
						Seats:     model.NewSeatMatrix(Rows, Cols),
					})
				}
				show.Dates = append(show.Dates, sd)
			}
			t.Shows = append(t.Shows, show)
		}
		out = append(out, t)
	}
	return out
}
