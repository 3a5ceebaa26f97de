package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/repository/inmem"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/seed"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// store is the union of what the services need from storage.
type store interface {
	service.ShowtimeStore
	service.TheaterReader
	service.Ledger
	service.RolloverStore
}

func main() {
	cfg, v := config.Load() // Load environment config
	log := config.NewLogger(cfg)
	logrus.SetLevel(log.GetLevel())
	logrus.SetFormatter(log.Formatter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, pinger, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("storage unavailable")
	}
	defer closeStore()

	opts := []service.ReserverOption{
		service.WithLogger(log),
		service.WithMaxAttempts(cfg.ReserveAttempts),
	}
	if cfg.EventsEnabled {
		opts = append(opts, service.WithNotifier(queue.NewPublisher(cfg.AMQPURL, log)))
	}
	reserver := service.NewReserver(st, opts...)
	housekeeper := service.NewHousekeeper(st,
		service.WithLocation(cfg.Location),
		service.WithSchedule(cfg.RolloverSchedule),
		service.WithDaysAhead(cfg.RolloverDays),
		service.WithHousekeeperLogger(log),
	)

	rdb := config.NewRedisClient(v)
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	router.Register(e, router.Handlers{
		Movies:   handler.NewMovieHandler(service.NewLookup(st)),
		Bookings: handler.NewBookingHandler(reserver, service.NewBookings(st)),
		Admin:    handler.NewAdminHandler(housekeeper),
		Health:   handler.Health(pinger),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: config.LoadRateLimitConfig(v),
		Cache:     config.LoadCacheConfig(v),
		Redis:     rdb,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(logrus.Fields{"addr": cfg.Addr(), "env": cfg.Env, "storage": cfg.StorageDriver}).Info("listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return housekeeper.Start(gctx) })
	if cfg.ConsumerEnabled {
		g.Go(func() error { return queue.NewConsumer(cfg.AMQPURL, "", log).Run(gctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("shut down")
}

// openStore builds the configured storage backend.  The memory driver is
// seeded with the demo catalogue so the API is usable without a database.
func openStore(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (store, handler.Pinger, func(), error) {
	if cfg.StorageDriver == config.DriverMemory {
		mem := inmem.New()
		for _, th := range seed.Theaters(time.Now().In(cfg.Location), cfg.SeedMovieIDs, nil) {
			if err := mem.CreateTheater(ctx, &th); err != nil {
				return nil, nil, nil, err
			}
		}
		log.WithField("movies", cfg.SeedMovieIDs).Info("memory store seeded")
		return mem, nil, func() {}, nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return repository.NewStore(db), db, func() { db.Close() }, nil
}
