package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticket-booking/internal/service"
)

// Rollover runs the date housekeeping job.
type Rollover interface {
    Run(ctx context.Context) (service.RolloverReport, error)
}

// AdminHandler exposes operator actions.  Routes require the ADMIN role.
type AdminHandler struct {
    Rollover Rollover
}

// NewAdminHandler returns an AdminHandler.
func NewAdminHandler(r Rollover) *AdminHandler { return &AdminHandler{Rollover: r} }

// RunRollover handles POST /api/admin/rollover.  A day that already rolled
// over reports skipped=true.
func (h *AdminHandler) RunRollover(c echo.Context) error {
    rep, err := h.Rollover.Run(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, rep)
}
