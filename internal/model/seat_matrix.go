package model

import "fmt"

// SeatMatrix is the per-showtime availability grid.  Rows are ordered
// front to back and each row holds one flag per seat; true means booked.
// The shape is fixed when the showtime is created and a cell only ever
// moves from false to true.
type SeatMatrix [][]bool

// NewSeatMatrix returns an empty rows x cols grid with every seat free.
func NewSeatMatrix(rows, cols int) SeatMatrix {
    if rows < 0 {
        rows = 0
    }
    if cols < 0 {
        cols = 0
    }
    m := make(SeatMatrix, rows)
    for r := range m {
        m[r] = make([]bool, cols)
    }
    return m
}

// Rows returns the number of rows in the grid.
func (m SeatMatrix) Rows() int { return len(m) }

// Cols returns the number of seats per row (0 for an empty grid).
func (m SeatMatrix) Cols() int {
    if len(m) == 0 {
        return 0
    }
    return len(m[0])
}

// Validate checks that every row has the same length.  Grids decoded from
// storage pass through here before being used.
func (m SeatMatrix) Validate() error {
    cols := m.Cols()
    for r, row := range m {
        if len(row) != cols {
            return fmt.Errorf("seat matrix row %d has %d seats, want %d", r, len(row), cols)
        }
    }
    return nil
}

// InBounds reports whether (row, col) lies inside [0, Rows) x [0, Cols).
func (m SeatMatrix) InBounds(row, col int) bool {
    return row >= 0 && row < m.Rows() && col >= 0 && col < m.Cols()
}

// IsBooked reports whether the seat at (row, col) is taken.
func (m SeatMatrix) IsBooked(row, col int) (bool, error) {
    if !m.InBounds(row, col) {
        return false, &InvalidSeatError{Seat: Seat{Row: row, Column: col}, Rows: m.Rows(), Cols: m.Cols()}
    }
    return m[row][col], nil
}

// MarkBooked flips the seat at (row, col) to booked.  Callers validate the
// whole request first; marking an already booked seat is reported as
// ErrSeatAlreadyBooked so the write-once rule can never be bypassed.
func (m SeatMatrix) MarkBooked(row, col int) error {
    booked, err := m.IsBooked(row, col)
    if err != nil {
        return err
    }
    if booked {
        return fmt.Errorf("seat (%d,%d): %w", row, col, ErrSeatAlreadyBooked)
    }
    m[row][col] = true
    return nil
}

// Clone returns a deep copy so a candidate state can be built without
// touching the one that was read.
func (m SeatMatrix) Clone() SeatMatrix {
    out := make(SeatMatrix, len(m))
    for r, row := range m {
        out[r] = append([]bool(nil), row...)
    }
    return out
}

// Available counts the free seats.
func (m SeatMatrix) Available() int {
    n := 0
    for _, row := range m {
        for _, booked := range row {
            if !booked {
                n++
            }
        }
    }
    return n
}
