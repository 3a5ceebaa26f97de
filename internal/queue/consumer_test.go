package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

func TestHandleMessageAppendsLine(t *testing.T) {
    path := filepath.Join(t.TempDir(), "logs", "booking.log")
    c := NewConsumer("", path, nil)

    b := &model.Booking{
        ID:          "AB12CD34EF",
        UserID:      7,
        MovieID:     3,
        TheaterID:   1,
        TheaterName: "PVR Cinemas, Mumbai",
        Date:        "2025-01-01",
        Time:        "10:00 AM",
        Seats:       []model.Seat{{Row: 0, Column: 1}, {Row: 2, Column: 3}},
        TotalPrice:  400,
        CreatedAt:   time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
    }
    body, err := json.Marshal(NewBookingConfirmedEvent(b))
    require.NoError(t, err)

    require.NoError(t, c.HandleMessage(body))
    require.NoError(t, c.HandleMessage(body))

    raw, err := os.ReadFile(path)
    require.NoError(t, err)
    line := "[2025-01-01T08:00:00Z] Booking confirmed | booking_id=AB12CD34EF | user_id=7 | movie_id=3 | theater=\"PVR Cinemas, Mumbai\" | date=2025-01-01 | time=\"10:00 AM\" | total=400 | seats=[(0,1),(2,3)]\n"
    assert.Equal(t, line+line, string(raw))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
    c := NewConsumer("", filepath.Join(t.TempDir(), "booking.log"), nil)

    assert.Error(t, c.HandleMessage([]byte("not json")))
    assert.Error(t, c.HandleMessage([]byte(`{"user_id":1}`)))
}
