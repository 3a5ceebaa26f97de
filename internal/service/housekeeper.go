package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// RolloverStore retires and adds calendar dates across every show.
type RolloverStore interface {
	ClaimRolloverRun(ctx context.Context, day string) (bool, error)
	RolloverDates(ctx context.Context, retire, add string) (repository.RolloverResult, error)
}

const (
	dateLayout              = "2006-01-02"
	DefaultRolloverSchedule = "0 0 * * *"
	DefaultDaysAhead        = 3
)

// RolloverReport describes one housekeeping run.
type RolloverReport struct {
	Retired string `json:"retired"`
	Added   string `json:"added"`
	Removed int64  `json:"removedEntries"`
	Created int64  `json:"addedEntries"`
	Skipped bool   `json:"skipped"`
}

// Housekeeper keeps a sliding window of bookable dates: each day it drops
// today's date entries and appends an empty date DaysAhead days out.  A
// run claims the calendar day first, so repeated runs on the same day are
// no-ops.
type Housekeeper struct {
	store     RolloverStore
	clock     Clock
	loc       *time.Location
	schedule  string
	daysAhead int
	log       logrus.FieldLogger
}

// HousekeeperOption configures a Housekeeper.
type HousekeeperOption func(*Housekeeper)

// WithHousekeeperClock overrides the clock that decides "today".
func WithHousekeeperClock(c Clock) HousekeeperOption {
	return func(h *Housekeeper) {
		if c != nil {
			h.clock = c
		}
	}
}

// WithLocation sets the time zone "today" is computed in.
func WithLocation(loc *time.Location) HousekeeperOption {
	return func(h *Housekeeper) {
		if loc != nil {
			h.loc = loc
		}
	}
}

// WithSchedule sets the cron spec Start uses.
func WithSchedule(spec string) HousekeeperOption {
	return func(h *Housekeeper) {
		if spec != "" {
			h.schedule = spec
		}
	}
}

// WithDaysAhead sets how far out the added date is.
func WithDaysAhead(n int) HousekeeperOption {
	return func(h *Housekeeper) {
		if n > 0 {
			h.daysAhead = n
		}
	}
}

// WithHousekeeperLogger sets the logger.
func WithHousekeeperLogger(l logrus.FieldLogger) HousekeeperOption {
	return func(h *Housekeeper) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHousekeeper returns a Housekeeper over store.
func NewHousekeeper(store RolloverStore, opts ...HousekeeperOption) *Housekeeper {
	h := &Housekeeper{
		store:     store,
		clock:     SystemClock,
		loc:       time.Local,
		schedule:  DefaultRolloverSchedule,
		daysAhead: DefaultDaysAhead,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithField("component", "housekeeper")
	return h
}

// Run performs today's rollover unless it already happened.  A day that
// was claimed but whose rollover failed stays claimed; the error is
// returned so the caller can log it.
func (h *Housekeeper) Run(ctx context.Context) (RolloverReport, error) {
	today := h.clock.Now().In(h.loc)
	rep := RolloverReport{
		Retired: today.Format(dateLayout),
		Added:   today.AddDate(0, 0, h.daysAhead).Format(dateLayout),
	}
	logger := h.log.WithFields(logrus.Fields{"retire": rep.Retired, "add": rep.Added})

	claimed, err := h.store.ClaimRolloverRun(ctx, rep.Retired)
	if err != nil {
		return rep, fmt.Errorf("claiming rollover for %s: %w", rep.Retired, err)
	}
	if !claimed {
		rep.Skipped = true
		logger.Info("rollover already done today")
		return rep, nil
	}

	res, err := h.store.RolloverDates(ctx, rep.Retired, rep.Added)
	if err != nil {
		return rep, fmt.Errorf("rolling over %s: %w", rep.Retired, err)
	}
	rep.Removed, rep.Created = res.Removed, res.Added
	logger.WithFields(logrus.Fields{"removed": res.Removed, "added": res.Added}).Info("date rollover complete")
	return rep, nil
}

// Start schedules Run on the configured cron spec and blocks until ctx is
// cancelled.  Runs already in flight finish before Start returns.
func (h *Housekeeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(h.loc))
	if _, err := c.AddFunc(h.schedule, func() {
		if _, err := h.Run(ctx); err != nil {
			h.log.WithError(err).Error("scheduled rollover failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid rollover schedule %q: %w", h.schedule, err)
	}
	c.Start()
	h.log.WithField("schedule", h.schedule).Info("rollover scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	h.log.Info("rollover scheduler stopped")
	return nil
}
