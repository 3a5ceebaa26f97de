package seed

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheaters(t *testing.T) {
	today := time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC)
	theaters := Theaters(today, []uint64{7, 8}, rand.New(rand.NewPCG(1, 2)))

	require.Len(t, theaters, 2)
	assert.Equal(t, "PVR Cinemas, Mumbai", theaters[0].Name)
	assert.Equal(t, "INOX, Delhi", theaters[1].Name)

	for _, th := range theaters {
		require.Len(t, th.Shows, 2)
		for _, show := range th.Shows {
			require.Len(t, show.Dates, Days)
			assert.Equal(t, "2024-12-31", show.Dates[0].Date)
			assert.Equal(t, "2025-01-01", show.Dates[1].Date)
			assert.Equal(t, "2025-01-02", show.Dates[2].Date)
			for _, d := range show.Dates {
				require.Len(t, d.Showtimes, 3)
				for _, st := range d.Showtimes {
					assert.GreaterOrEqual(t, st.SeatPrice, uint32(MinPrice))
					assert.LessOrEqual(t, st.SeatPrice, uint32(MaxPrice))
					assert.Equal(t, Rows, st.Seats.Rows())
					assert.Equal(t, Cols, st.Seats.Cols())
					assert.Equal(t, Rows*Cols, st.Seats.Available())
				}
			}
		}
	}
}
