// Command seed creates the database schema and loads the demo theater
// catalogue into MySQL.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var movies string
	var start string
	var migrateOnly bool

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&movies, "movies", "", "comma-separated movie ids (default: SEED_MOVIE_IDS)")
	flagSet.StringVar(&start, "start", "", "first show date, YYYY-MM-DD (default: today in TZ_NAME)")
	flagSet.BoolVar(&migrateOnly, "migrate-only", false, "create the schema and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, _ := config.Load()
	log := config.NewLogger(cfg)

	movieIDs := cfg.SeedMovieIDs
	if movies != "" {
		ids, err := parseMovieIDs(movies)
		if err != nil {
			return err
		}
		movieIDs = ids
	}
	today := time.Now().In(cfg.Location)
	if start != "" {
		t, err := time.ParseInLocation(seed.DateLayout, start, cfg.Location)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		today = t
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	if migrateOnly {
		log.Info("schema up to date")
		return nil
	}

	store := repository.NewStore(db)
	for _, th := range seed.Theaters(today, movieIDs, nil) {
		if err := store.CreateTheater(ctx, &th); err != nil {
			return fmt.Errorf("seed %s: %w", th.Name, err)
		}
		log.WithFields(logrus.Fields{"theater_id": th.ID, "name": th.Name, "shows": len(th.Shows)}).Info("theater seeded")
	}
	return nil
}

func parseMovieIDs(s string) ([]uint64, error) {
	var out []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("--movies: invalid id %q", part)
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("--movies: no ids given")
	}
	return out, nil
}
