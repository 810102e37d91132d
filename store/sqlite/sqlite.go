/*
Package sqlite provides a SQLite-backed implementation of payroll.ShiftStore.

PURPOSE:
  Persists the caller-owned shift collection between runs of the server and
  CLI. The report engine never reads the database; handlers load a snapshot
  and hand it to payroll.GenerateReport.

KEY TABLES:
  shifts: One row per worked shift. Dates are stored as "2006-01-02" TEXT so
          range queries compare lexicographically. Manual overrides are a
          JSON object in overrides_json (NULL when none are set).

INDEXES:
  - idx_shifts_date_start: List/ListRange ordering (hot path for reports)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, as SQLite allows a single writer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  shifts, err := store.ListRange(ctx, period.Start, period.End)

SEE ALSO:
  - payroll/store.go: ShiftStore interface
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.ShiftStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.ShiftStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		shift_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		overrides_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_date_start
		ON shifts(shift_date, start_time);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT STORE (payroll.ShiftStore interface)
// =============================================================================

// Save inserts or replaces a shift.
func (s *Store) Save(ctx context.Context, shift payroll.ShiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveShift(ctx, s.db, shift)
}

// SaveBatch inserts or replaces shifts in one transaction.
func (s *Store) SaveBatch(ctx context.Context, shifts []payroll.ShiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, shift := range shifts {
		if err := saveShift(ctx, tx, shift); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func saveShift(ctx context.Context, db interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, shift payroll.ShiftRecord) error {
	overrides, err := encodeOverrides(shift.Overrides)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO shifts (id, shift_date, start_time, end_time, notes, overrides_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			shift_date = excluded.shift_date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			notes = excluded.notes,
			overrides_json = excluded.overrides_json,
			updated_at = excluded.updated_at
	`
	_, err = db.ExecContext(ctx, query,
		string(shift.ID), shift.Date.String(), shift.Start, shift.End,
		shift.Notes, overrides, now, now,
	)
	if err != nil {
		return fmt.Errorf("save shift %s: %w", shift.ID, err)
	}
	return nil
}

// Get retrieves a shift by ID.
func (s *Store) Get(ctx context.Context, id payroll.ShiftID) (payroll.ShiftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, shift_date, start_time, end_time, notes, overrides_json
		FROM shifts WHERE id = ?`, string(id))

	shift, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.ShiftRecord{}, generic.ErrShiftNotFound
	}
	return shift, err
}

// List returns all shifts ordered by date and start time.
func (s *Store) List(ctx context.Context) ([]payroll.ShiftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryShifts(ctx, `
		SELECT id, shift_date, start_time, end_time, notes, overrides_json
		FROM shifts
		ORDER BY shift_date, id`)
}

// ListRange returns shifts dated within [from, to].
func (s *Store) ListRange(ctx context.Context, from, to generic.TimePoint) ([]payroll.ShiftRecord, error) {
	if err := (generic.Period{Start: from, End: to}).Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryShifts(ctx, `
		SELECT id, shift_date, start_time, end_time, notes, overrides_json
		FROM shifts
		WHERE shift_date BETWEEN ? AND ?
		ORDER BY shift_date, id`, from.String(), to.String())
}

// Delete removes a shift.
func (s *Store) Delete(ctx context.Context, id payroll.ShiftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return generic.ErrShiftNotFound
	}
	return nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM shifts")
	return err
}

// =============================================================================
// SCANNING
// =============================================================================

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]payroll.ShiftRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []payroll.ShiftRecord
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Start times are free-form "H:MM"/"HH:MM", so text ordering is not enough.
	payroll.SortChronological(shifts)
	return shifts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShift(row scanner) (payroll.ShiftRecord, error) {
	var (
		shift     payroll.ShiftRecord
		id, date  string
		overrides sql.NullString
	)
	if err := row.Scan(&id, &date, &shift.Start, &shift.End, &shift.Notes, &overrides); err != nil {
		return payroll.ShiftRecord{}, err
	}
	shift.ID = payroll.ShiftID(id)

	tp, err := generic.ParseDate(date)
	if err != nil {
		return payroll.ShiftRecord{}, fmt.Errorf("shift %s: %w", id, err)
	}
	shift.Date = tp

	if overrides.Valid && overrides.String != "" {
		var o payroll.Overrides
		if err := json.Unmarshal([]byte(overrides.String), &o); err != nil {
			return payroll.ShiftRecord{}, fmt.Errorf("shift %s overrides: %w", id, err)
		}
		if !o.IsEmpty() {
			shift.Overrides = &o
		}
	}
	return shift, nil
}

func encodeOverrides(o *payroll.Overrides) (sql.NullString, error) {
	if o.IsEmpty() {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
