package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Each showtime row owns its seat grid (JSON) and a version counter, so a
// reservation only contends on the showtime it books.  Deleting a date
// cascades to its showtimes; bookings are history and are never cascaded.
var migrations = []struct {
	name string
	stmt string
}{
	{"theaters", `CREATE TABLE IF NOT EXISTS theaters (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		location VARCHAR(255) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB`},
	{"theater_shows", `CREATE TABLE IF NOT EXISTS theater_shows (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		theater_id BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_theater_movie (theater_id, movie_id),
		KEY idx_movie (movie_id),
		CONSTRAINT fk_shows_theater FOREIGN KEY (theater_id) REFERENCES theaters(id) ON DELETE CASCADE
	) ENGINE=InnoDB`},
	{"show_dates", `CREATE TABLE IF NOT EXISTS show_dates (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		show_id BIGINT UNSIGNED NOT NULL,
		show_date VARCHAR(10) NOT NULL,
		KEY idx_show_date (show_date),
		CONSTRAINT fk_dates_show FOREIGN KEY (show_id) REFERENCES theater_shows(id) ON DELETE CASCADE
	) ENGINE=InnoDB`},
	{"showtimes", `CREATE TABLE IF NOT EXISTS showtimes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		show_date_id BIGINT UNSIGNED NOT NULL,
		time_label VARCHAR(32) NOT NULL,
		seat_price INT UNSIGNED NOT NULL,
		seat_rows INT UNSIGNED NOT NULL,
		seat_cols INT UNSIGNED NOT NULL,
		seats JSON NOT NULL,
		version BIGINT UNSIGNED NOT NULL DEFAULT 0,
		UNIQUE KEY uq_date_time (show_date_id, time_label),
		CONSTRAINT fk_showtimes_date FOREIGN KEY (show_date_id) REFERENCES show_dates(id) ON DELETE CASCADE
	) ENGINE=InnoDB`},
	{"bookings", `CREATE TABLE IF NOT EXISTS bookings (
		id CHAR(10) NOT NULL PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		theater_id BIGINT UNSIGNED NOT NULL,
		theater_name VARCHAR(255) NOT NULL,
		show_date VARCHAR(10) NOT NULL,
		time_label VARCHAR(32) NOT NULL,
		seats JSON NOT NULL,
		total_price BIGINT UNSIGNED NOT NULL,
		created_at DATETIME(6) NOT NULL,
		KEY idx_user_created (user_id, created_at)
	) ENGINE=InnoDB`},
	{"rollover_runs", `CREATE TABLE IF NOT EXISTS rollover_runs (
		run_date VARCHAR(10) NOT NULL PRIMARY KEY,
		ran_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`},
}

// Migrate creates the tables the stores need.  It is safe to run on every
// start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("creating %s table: %w", m.name, err)
		}
	}
	return nil
}
