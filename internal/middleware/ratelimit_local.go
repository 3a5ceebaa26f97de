package middleware

import (
    "strconv"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "golang.org/x/time/rate"

    "github.com/iliyamo/movie-ticket-booking/internal/config"
)

// NewLocalTokenBucket is the single-instance fallback used when Redis is not
// available.  Buckets live in process memory and idle ones are swept after
// cfg.TTL.
func NewLocalTokenBucket(cfg config.RateLimitConfig) echo.MiddlewareFunc {
    cfg = cfg.Normalized()
    lim := newLocalLimiter(cfg, time.Now)
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            if delay := lim.take(rateKey(cfg, c)); delay > 0 {
                return tooManyRequests(c, delay)
            }
            return next(c)
        }
    }
}

type localBucket struct {
    lim  *rate.Limiter
    seen time.Time
}

type localLimiter struct {
    mu      sync.Mutex
    buckets map[string]*localBucket
    every   rate.Limit
    burst   int
    ttl     time.Duration
    now     func() time.Time
    swept   time.Time
}

func newLocalLimiter(cfg config.RateLimitConfig, now func() time.Time) *localLimiter {
    cfg = cfg.Normalized()
    per := cfg.RefillInterval / time.Duration(cfg.RefillTokens)
    return &localLimiter{
        buckets: make(map[string]*localBucket),
        every:   rate.Every(per),
        burst:   cfg.Capacity,
        ttl:     cfg.TTL,
        now:     now,
        swept:   now(),
    }
}

// take consumes a token for key and returns zero, or returns how long until
// one is available without consuming anything.
func (l *localLimiter) take(key string) time.Duration {
    l.mu.Lock()
    defer l.mu.Unlock()
    now := l.now()
    if now.Sub(l.swept) > l.ttl {
        for k, b := range l.buckets {
            if now.Sub(b.seen) > l.ttl {
                delete(l.buckets, k)
            }
        }
        l.swept = now
    }
    b, ok := l.buckets[key]
    if !ok {
        b = &localBucket{lim: rate.NewLimiter(l.every, l.burst)}
        l.buckets[key] = b
    }
    b.seen = now
    r := b.lim.ReserveN(now, 1)
    d := r.DelayFrom(now)
    if d > 0 {
        r.CancelAt(now)
    }
    return d
}
