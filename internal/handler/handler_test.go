package handler_test

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movie-ticket-booking/internal/config"
    "github.com/iliyamo/movie-ticket-booking/internal/handler"
    "github.com/iliyamo/movie-ticket-booking/internal/model"
    "github.com/iliyamo/movie-ticket-booking/internal/repository/inmem"
    "github.com/iliyamo/movie-ticket-booking/internal/router"
    "github.com/iliyamo/movie-ticket-booking/internal/service"
    "github.com/iliyamo/movie-ticket-booking/internal/utils"
)

const secret = "test-secret"

var today = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type api struct {
    e     *echo.Echo
    store *inmem.Store
    th    model.Theater
}

func newAPI(t *testing.T) *api {
    t.Helper()
    store := inmem.New()
    th := model.Theater{
        Name:     "PVR Cinemas, Mumbai",
        Location: "Mumbai, Maharashtra",
        Shows: []model.Show{{MovieID: 1, Dates: []model.ShowDate{
            {Date: "2025-03-10", Showtimes: []model.Showtime{{Time: "10:00 AM", SeatPrice: 200, Seats: model.NewSeatMatrix(2, 3)}}},
            {Date: "2025-03-11", Showtimes: []model.Showtime{{Time: "10:00 AM", SeatPrice: 200, Seats: model.NewSeatMatrix(2, 3)}}},
        }}},
    }
    require.NoError(t, store.CreateTheater(context.Background(), &th))

    clock := service.ClockFunc(func() time.Time { return today })
    e := echo.New()
    router.Register(e, router.Handlers{
        Movies:   handler.NewMovieHandler(service.NewLookup(store)),
        Bookings: handler.NewBookingHandler(service.NewReserver(store, service.WithClock(clock)), service.NewBookings(store)),
        Admin:    handler.NewAdminHandler(service.NewHousekeeper(store, service.WithHousekeeperClock(clock), service.WithLocation(time.UTC))),
    }, router.Options{
        JWTSecret: secret,
        RateLimit: config.RateLimitConfig{Enabled: false},
        Cache:     config.CacheConfig{Enabled: false},
    })
    return &api{e: e, store: store, th: th}
}

func token(t *testing.T, userID uint64, role string) string {
    t.Helper()
    tok, err := utils.NewAccessToken(secret, userID, role, time.Hour)
    require.NoError(t, err)
    return tok.Token
}

func (a *api) do(method, path, tok, body string) *httptest.ResponseRecorder {
    var req *http.Request
    if body != "" {
        req = httptest.NewRequest(method, path, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    } else {
        req = httptest.NewRequest(method, path, nil)
    }
    if tok != "" {
        req.Header.Set("Authorization", "Bearer "+tok)
    }
    rec := httptest.NewRecorder()
    a.e.ServeHTTP(rec, req)
    return rec
}

func (a *api) seatsPath(extra string) string {
    return "/api/movies/1/seats?theaterId=" + itoa(a.th.ID) + "&showtime=10:00%20AM" + extra
}

func itoa(n uint64) string {
    b, _ := json.Marshal(n)
    return string(b)
}

func (a *api) bookingBody(seats string, total int) string {
    return `{"movieId":1,"theaterId":` + itoa(a.th.ID) + `,"theaterName":"whatever","date":"2025-03-10","time":"10:00 AM","seats":` +
        seats + `,"totalPrice":` + itoa(uint64(total)) + `}`
}

func TestHealth(t *testing.T) {
    a := newAPI(t)
    rec := a.do(http.MethodGet, "/healthz", "", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "ok", rec.Body.String())
}

func TestGetSeats(t *testing.T) {
    a := newAPI(t)

    rec := a.do(http.MethodGet, a.seatsPath(""), "", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `[[false,false,false],[false,false,false]]`, rec.Body.String())

    rec = a.do(http.MethodGet, a.seatsPath("&date=2025-03-11"), "", "")
    assert.Equal(t, http.StatusOK, rec.Code)

    tests := []struct {
        name   string
        path   string
        status int
        kind   string
    }{
        {"missing theater", "/api/movies/1/seats?showtime=10:00%20AM", http.StatusBadRequest, "invalid_request"},
        {"missing showtime", "/api/movies/1/seats?theaterId=" + itoa(a.th.ID), http.StatusBadRequest, "invalid_request"},
        {"unknown theater", "/api/movies/1/seats?theaterId=99&showtime=10:00%20AM", http.StatusNotFound, "not_found"},
        {"movie not shown", "/api/movies/7/seats?theaterId=" + itoa(a.th.ID) + "&showtime=10:00%20AM", http.StatusNotFound, "not_found"},
        {"unknown time", "/api/movies/1/seats?theaterId=" + itoa(a.th.ID) + "&showtime=11:00%20PM", http.StatusNotFound, "not_found"},
        {"unknown date", a.seatsPath("&date=2025-04-01"), http.StatusNotFound, "not_found"},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            rec := a.do(http.MethodGet, tt.path, "", "")
            assert.Equal(t, tt.status, rec.Code)
            assert.Contains(t, rec.Body.String(), `"error":"`+tt.kind+`"`)
        })
    }
}

func TestGetTheaters(t *testing.T) {
    a := newAPI(t)

    rec := a.do(http.MethodGet, "/api/movies/1/theaters", "", "")
    require.Equal(t, http.StatusOK, rec.Code)
    var got []model.Theater
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
    require.Len(t, got, 1)
    assert.Equal(t, "PVR Cinemas, Mumbai", got[0].Name)
    require.Len(t, got[0].Shows, 1)

    rec = a.do(http.MethodGet, "/api/movies/42/theaters", "", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBooking(t *testing.T) {
    a := newAPI(t)
    user := token(t, 7, "USER")

    rec := a.do(http.MethodPost, "/api/bookings", user, a.bookingBody(`[{"row":0,"column":1},{"row":1,"column":2}]`, 400))
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

    var b model.Booking
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
    assert.True(t, service.ValidBookingID(b.ID))
    assert.Equal(t, uint64(7), b.UserID)
    assert.Equal(t, "PVR Cinemas, Mumbai", b.TheaterName)
    assert.Equal(t, uint64(400), b.TotalPrice)

    rec = a.do(http.MethodGet, a.seatsPath("&date=2025-03-10"), "", "")
    assert.JSONEq(t, `[[false,true,false],[false,false,true]]`, rec.Body.String())

    // A second request overlapping one seat books nothing.
    rec = a.do(http.MethodPost, "/api/bookings", user, a.bookingBody(`[{"row":0,"column":0},{"row":0,"column":1}]`, 0))
    require.Equal(t, http.StatusBadRequest, rec.Code)
    assert.JSONEq(t, `{"error":"seat_conflict","message":"One or more seats already booked","seats":[{"row":0,"column":1}]}`, rec.Body.String())

    rec = a.do(http.MethodGet, a.seatsPath("&date=2025-03-10"), "", "")
    assert.JSONEq(t, `[[false,true,false],[false,false,true]]`, rec.Body.String())
}

func TestCreateBookingRejects(t *testing.T) {
    a := newAPI(t)
    user := token(t, 7, "USER")

    tests := []struct {
        name   string
        tok    string
        body   string
        status int
    }{
        {"no token", "", a.bookingBody(`[{"row":0,"column":0}]`, 200), http.StatusUnauthorized},
        {"bad json", user, `{"movieId":`, http.StatusBadRequest},
        {"no seats", user, a.bookingBody(`[]`, 0), http.StatusBadRequest},
        {"out of bounds", user, a.bookingBody(`[{"row":5,"column":0}]`, 200), http.StatusBadRequest},
        {"price mismatch", user, a.bookingBody(`[{"row":0,"column":0}]`, 1), http.StatusBadRequest},
        {"duplicate seat", user, a.bookingBody(`[{"row":0,"column":0},{"row":0,"column":0}]`, 0), http.StatusBadRequest},
        {"unknown date", user, strings.Replace(a.bookingBody(`[{"row":0,"column":0}]`, 0), "2025-03-10", "2025-05-01", 1), http.StatusNotFound},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            rec := a.do(http.MethodPost, "/api/bookings", tt.tok, tt.body)
            assert.Equal(t, tt.status, rec.Code, rec.Body.String())
        })
    }

    rec := a.do(http.MethodGet, a.seatsPath("&date=2025-03-10"), "", "")
    assert.JSONEq(t, `[[false,false,false],[false,false,false]]`, rec.Body.String())
}

func TestListAndGetBookings(t *testing.T) {
    a := newAPI(t)
    alice := token(t, 1, "USER")
    bob := token(t, 2, "USER")

    rec := a.do(http.MethodPost, "/api/bookings", alice, a.bookingBody(`[{"row":0,"column":0}]`, 200))
    require.Equal(t, http.StatusCreated, rec.Code)
    var b model.Booking
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))

    rec = a.do(http.MethodGet, "/api/bookings", alice, "")
    require.Equal(t, http.StatusOK, rec.Code)
    var list []model.Booking
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
    require.Len(t, list, 1)
    assert.Equal(t, b.ID, list[0].ID)

    rec = a.do(http.MethodGet, "/api/bookings", bob, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `[]`, rec.Body.String())

    assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/bookings/"+b.ID, alice, "").Code)
    assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/bookings/"+b.ID, bob, "").Code)
    assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/bookings/ZZZZZZZZZZ", alice, "").Code)
    assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/bookings/"+b.ID, "", "").Code)
}

func TestAdminRollover(t *testing.T) {
    a := newAPI(t)

    assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/admin/rollover", token(t, 1, "USER"), "").Code)

    admin := token(t, 9, "ADMIN")
    rec := a.do(http.MethodPost, "/api/admin/rollover", admin, "")
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    var rep service.RolloverReport
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
    assert.False(t, rep.Skipped)
    assert.Equal(t, "2025-03-10", rep.Retired)

    rec = a.do(http.MethodPost, "/api/admin/rollover", admin, "")
    require.Equal(t, http.StatusOK, rec.Code)
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
    assert.True(t, rep.Skipped)

    // The retired date is gone; the next day still has a showing.
    assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, a.seatsPath("&date=2025-03-10"), "", "").Code)
    assert.Equal(t, http.StatusOK, a.do(http.MethodGet, a.seatsPath(""), "", "").Code)
}
