package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Movies   *handler.MovieHandler
	Bookings *handler.BookingHandler
	Admin    *handler.AdminHandler
	Health   echo.HandlerFunc
}

// Options carries the middleware settings.  A nil Redis client disables the
// response cache and switches rate limiting to the in-process bucket.
type Options struct {
	JWTSecret string
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client
}

// RegisterRoutes registers routes that do not require authentication: the
// health check and the per-movie browse endpoints.
func RegisterRoutes(e *echo.Echo, h Handlers, opt Options) {
	health := h.Health
	if health == nil {
		health = handler.Health(nil)
	}
	e.GET("/healthz", health)

	g := e.Group("/api/movies/:movieId")
	g.GET("/seats", h.Movies.GetSeats)
	// The listing embeds each showtime's seat grid, so a cached body can
	// lag a booking by up to the cache TTL.  Display reads are allowed to
	// be stale; reservations always re-read the grid.  /seats is not cached.
	g.GET("/theaters", h.Movies.GetTheaters, middleware.NewRedisCache(opt.Cache, opt.Redis))
}

// RegisterBookings registers the authenticated booking routes.  Creating a
// booking is rate limited per user.
func RegisterBookings(e *echo.Echo, h Handlers, opt Options) {
	g := e.Group("/api/bookings", middleware.JWTAuth(opt.JWTSecret))
	g.POST("", h.Bookings.Create, middleware.NewTokenBucket(opt.RateLimit, opt.Redis))
	g.GET("", h.Bookings.List)
	g.GET("/:bookingId", h.Bookings.Get)
}

// RegisterAdmin registers operator routes; the ADMIN role is required.
func RegisterAdmin(e *echo.Echo, h Handlers, opt Options) {
	g := e.Group("/api/admin", middleware.JWTAuth(opt.JWTSecret), middleware.RequireRole("ADMIN"))
	g.POST("/rollover", h.Admin.RunRollover)
}

// Register wires the full route table.
func Register(e *echo.Echo, h Handlers, opt Options) {
	RegisterRoutes(e, h, opt)
	RegisterBookings(e, h, opt)
	RegisterAdmin(e, h, opt)
}
