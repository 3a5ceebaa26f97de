package repository

import (
    "context"
    "fmt"
)

// RolloverResult reports how many date entries a rollover touched.
type RolloverResult struct {
    Removed int64
    Added   int64
}

// ClaimRolloverRun records that the rollover for day has started.  It
// returns false when another run already claimed the same day.
func (s *Store) ClaimRolloverRun(ctx context.Context, day string) (bool, error) {
    res, err := s.db.ExecContext(ctx, `INSERT IGNORE INTO rollover_runs (run_date) VALUES (?)`, day)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

// RolloverDates removes every date entry equal to retire (and with it the
// showtimes and seat grids under it) and appends an empty entry for add to
// every show in every theater.  The raw operation is not idempotent:
// running it twice for the same add date leaves two entries.
func (s *Store) RolloverDates(ctx context.Context, retire, add string) (RolloverResult, error) {
    var out RolloverResult
    tx, err := s.db.BeginTxx(ctx, nil)
    if err != nil {
        return out, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := tx.ExecContext(ctx, `DELETE FROM show_dates WHERE show_date = ?`, retire)
    if err != nil {
        return out, fmt.Errorf("removing %s: %w", retire, err)
    }
    if out.Removed, err = res.RowsAffected(); err != nil {
        return out, err
    }

    res, err = tx.ExecContext(ctx, `INSERT INTO show_dates (show_id, show_date) SELECT id, ? FROM theater_shows ORDER BY id`, add)
    if err != nil {
        return out, fmt.Errorf("adding %s: %w", add, err)
    }
    if out.Added, err = res.RowsAffected(); err != nil {
        return out, err
    }

    if err := tx.Commit(); err != nil {
        return out, err
    }
    committed = true
    return out, nil
}
