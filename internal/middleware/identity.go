package middleware

// identity.go holds the helpers that read the authenticated user back out
// of the Echo context.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
    return toUserID(c.Get(UserIDKey))
}

func toUserID(v interface{}) (uint64, bool) {
    switch t := v.(type) {
    case uint64:
        return t, true
    case int:
        if t >= 0 {
            return uint64(t), true
        }
    case int64:
        if t >= 0 {
            return uint64(t), true
        }
    case float64:
        // JSON numbers decode as float64
        if t >= 0 && t == float64(uint64(t)) {
            return uint64(t), true
        }
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, true
        }
    }
    return 0, false
}

// userKey is the user id as a string for log fields and rate-limit keys;
// "anon" when the request is unauthenticated.
func userKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
