package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Error kinds returned in the "error" field of every failure body.
const (
    kindNotFound       = "not_found"
    kindUnauthorized   = "unauthorized"
    kindForbidden      = "forbidden"
    kindSeatConflict   = "seat_conflict"
    kindInvalidRequest = "invalid_request"
    kindInternal       = "internal_error"
)

// writeError maps a service error onto a status code and a structured body
// {"error": kind, "message": text}.  Internal failures are logged and
// their details are not echoed back.
func writeError(c echo.Context, err error) error {
    var conflict *model.SeatConflictError
    switch {
    case errors.As(err, &conflict):
        return c.JSON(http.StatusBadRequest, echo.Map{
            "error":   kindSeatConflict,
            "message": "One or more seats already booked",
            "seats":   conflict.Seats,
        })
    case errors.Is(err, model.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": kindNotFound, "message": notFoundMessage(err)})
    case errors.Is(err, model.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": kindForbidden, "message": "Unauthorized access"})
    case errors.Is(err, model.ErrInvalidRequest),
        errors.Is(err, model.ErrInvalidSeatCoordinate),
        errors.Is(err, model.ErrPriceMismatch):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": kindInvalidRequest, "message": err.Error()})
    }
    logrus.WithError(err).WithFields(logrus.Fields{
        "method": c.Request().Method,
        "path":   c.Request().URL.Path,
    }).Error("request failed")
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": kindInternal, "message": "Internal server error"})
}

func notFoundMessage(err error) string {
    switch {
    case errors.Is(err, model.ErrTheaterNotFound):
        return "Theater not found"
    case errors.Is(err, model.ErrMovieNotOffered):
        return "Movie not shown in this theater"
    case errors.Is(err, model.ErrDateNotOffered):
        return "Date not available"
    case errors.Is(err, model.ErrShowtimeNotFound):
        return "Showtime not found"
    case errors.Is(err, model.ErrBookingNotFound):
        return "Booking not found"
    }
    return err.Error()
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": kindInvalidRequest, "message": msg})
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": kindUnauthorized, "message": "Unauthorized: No token provided"})
}
