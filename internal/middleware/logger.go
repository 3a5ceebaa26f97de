package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request.  Responses of 400 and above are
// logged at error level.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
    if log == nil {
        log = logrus.StandardLogger()
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let echo's error handler write the response first
                c.Error(err)
            }

            req := c.Request()
            status := c.Response().Status
            entry := log.WithFields(logrus.Fields{
                "method":     req.Method,
                "path":       req.URL.Path,
                "route":      c.Path(),
                "status":     status,
                "duration":   time.Since(start),
                "client_ip":  c.RealIP(),
                "user_agent": req.UserAgent(),
                "user_id":    userKey(c),
            })
            if err != nil {
                entry = entry.WithError(err)
            }
            if status >= 400 {
                entry.Error("Request failed")
            } else {
                entry.Info("Request processed")
            }
            return nil
        }
    }
}
