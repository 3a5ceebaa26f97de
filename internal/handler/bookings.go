package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticket-booking/internal/middleware"
    "github.com/iliyamo/movie-ticket-booking/internal/model"
    "github.com/iliyamo/movie-ticket-booking/internal/service"
)

// Reserver creates bookings.
type Reserver interface {
    Reserve(ctx context.Context, req service.ReserveRequest) (*model.Booking, error)
}

// BookingReader reads a user's bookings.
type BookingReader interface {
    Get(ctx context.Context, userID uint64, bookingID string) (*model.Booking, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// BookingHandler serves /api/bookings.  Every route sits behind JWTAuth.
type BookingHandler struct {
    Reserver Reserver
    Bookings BookingReader
}

// NewBookingHandler returns a BookingHandler.
func NewBookingHandler(r Reserver, b BookingReader) *BookingHandler {
    return &BookingHandler{Reserver: r, Bookings: b}
}

// createBookingReq is the POST /api/bookings body.  totalPrice may be
// omitted; when present it must equal seats x seat price.
type createBookingReq struct {
    MovieID     uint64       `json:"movieId"`
    TheaterID   uint64       `json:"theaterId"`
    TheaterName string       `json:"theaterName"`
    Date        string       `json:"date"`
    Time        string       `json:"time"`
    Seats       []model.Seat `json:"seats"`
    TotalPrice  uint64       `json:"totalPrice"`
}

// Create handles POST /api/bookings and answers 201 with the booking.
func (h *BookingHandler) Create(c echo.Context) error {
    uid, ok := middleware.UserID(c)
    if !ok {
        return unauthorized(c)
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid JSON body")
    }
    b, err := h.Reserver.Reserve(c.Request().Context(), service.ReserveRequest{
        UserID:      uid,
        MovieID:     req.MovieID,
        TheaterID:   req.TheaterID,
        TheaterName: req.TheaterName,
        Date:        req.Date,
        Time:        req.Time,
        Seats:       req.Seats,
        TotalPrice:  req.TotalPrice,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, b)
}

// List handles GET /api/bookings: the caller's bookings, newest first.
func (h *BookingHandler) List(c echo.Context) error {
    uid, ok := middleware.UserID(c)
    if !ok {
        return unauthorized(c)
    }
    list, err := h.Bookings.ListByUser(c.Request().Context(), uid)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, list)
}

// Get handles GET /api/bookings/:bookingId.  Someone else's booking is 403.
func (h *BookingHandler) Get(c echo.Context) error {
    uid, ok := middleware.UserID(c)
    if !ok {
        return unauthorized(c)
    }
    b, err := h.Bookings.Get(c.Request().Context(), uid, c.Param("bookingId"))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, b)
}
