/*
Package sqlite provides the SQLite-backed implementation of planning.Store.

PURPOSE:
  Implements the upsert-by-natural-key persistence contract using SQLite.
  Every conflict key the domain names becomes a UNIQUE constraint, and every
  write is an INSERT ... ON CONFLICT DO UPDATE, so the importer's write
  sequence is idempotent at the database level.

KEY TABLES:
  cycles:       UNIQUE(year, cycle_number)
  weeks:        UNIQUE(cycle_id, iso_week_number)
  employees:    UNIQUE(full_name)
  assignments:  UNIQUE(week_id, employee_id, day_of_week, start_time)
  need_slots:   UNIQUE(week_id, day_of_week, start_time, category)

CONCURRENCY:
  Uses sync.RWMutex for in-process thread-safety. Two imports targeting the
  same (year, cycle_number) still race at the row level; the upserts keep
  the final state consistent but last write wins.

WAL MODE:
  Opened with WAL for better read concurrency and crash recovery.

USAGE:
  store, err := sqlite.New("./data/planning.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - planning/store.go: Interface definition
  - planning/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/planning-engine/planning"
)

const dateLayout = "2006-01-02"

// Store implements planning.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ planning.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

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
	CREATE TABLE IF NOT EXISTS cycles (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		cycle_number INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE(year, cycle_number)
	);

	CREATE TABLE IF NOT EXISTS weeks (
		id TEXT PRIMARY KEY,
		cycle_id TEXT NOT NULL REFERENCES cycles(id),
		iso_week_number INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		UNIQUE(cycle_id, iso_week_number)
	);
	CREATE INDEX IF NOT EXISTS idx_weeks_cycle ON weeks(cycle_id, start_date);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		team_id TEXT,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		week_id TEXT NOT NULL REFERENCES weeks(id),
		employee_id TEXT NOT NULL REFERENCES employees(id),
		day_of_week INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		category TEXT NOT NULL,
		notes TEXT,
		UNIQUE(week_id, employee_id, day_of_week, start_time)
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_week ON assignments(week_id, day_of_week, start_time);

	CREATE TABLE IF NOT EXISTS need_slots (
		id TEXT PRIMARY KEY,
		week_id TEXT NOT NULL REFERENCES weeks(id),
		day_of_week INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		category TEXT NOT NULL,
		required_count INTEGER NOT NULL,
		UNIQUE(week_id, day_of_week, start_time, category)
	);
	CREATE INDEX IF NOT EXISTS idx_need_slots_week ON need_slots(week_id, day_of_week, start_time);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CYCLES
// =============================================================================

func (s *Store) UpsertCycle(ctx context.Context, c planning.Cycle) (planning.Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO cycles (id, year, cycle_number, start_date, end_date, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(year, cycle_number) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			is_active = excluded.is_active
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(), c.Year, c.Number,
		c.StartDate.Format(dateLayout), c.EndDate.Format(dateLayout),
		boolToInt(c.Active),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return planning.Cycle{}, err
	}

	// Re-read to obtain the persisted id (preserved on conflict).
	row := s.db.QueryRowContext(ctx,
		"SELECT id, year, cycle_number, start_date, end_date, is_active FROM cycles WHERE year = ? AND cycle_number = ?",
		c.Year, c.Number,
	)
	return scanCycle(row)
}

func (s *Store) GetCycle(ctx context.Context, id planning.CycleID) (planning.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, year, cycle_number, start_date, end_date, is_active FROM cycles WHERE id = ?",
		string(id),
	)
	return scanCycle(row)
}

func (s *Store) ListCycles(ctx context.Context) ([]planning.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, year, cycle_number, start_date, end_date, is_active
		FROM cycles
		ORDER BY is_active DESC, year DESC, cycle_number DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []planning.Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

// ActivateCycle deactivates every cycle, then activates the target.
// Runs in a transaction so readers never observe two active cycles.
func (s *Store) ActivateCycle(ctx context.Context, id planning.CycleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE cycles SET is_active = 0 WHERE is_active = 1"); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "UPDATE cycles SET is_active = 1 WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return planning.ErrNotFound
	}
	return tx.Commit()
}

// =============================================================================
// WEEKS
// =============================================================================

func (s *Store) UpsertWeeks(ctx context.Context, weeks []planning.Week) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO weeks (id, cycle_id, iso_week_number, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cycle_id, iso_week_number) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`
	for _, w := range weeks {
		if _, err := tx.ExecContext(ctx, query,
			uuid.NewString(), string(w.CycleID), w.ISOWeek,
			w.StartDate.Format(dateLayout), w.EndDate.Format(dateLayout),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) WeeksByCycle(ctx context.Context, cycleID planning.CycleID) ([]planning.Week, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cycle_id, iso_week_number, start_date, end_date
		FROM weeks WHERE cycle_id = ? ORDER BY start_date ASC`,
		string(cycleID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weeks []planning.Week
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

func (s *Store) GetWeek(ctx context.Context, id planning.WeekID) (planning.Week, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, cycle_id, iso_week_number, start_date, end_date FROM weeks WHERE id = ?",
		string(id),
	)
	return scanWeek(row)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) UpsertEmployees(ctx context.Context, employees []planning.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO employees (id, full_name, type, team_id, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(full_name) DO UPDATE SET
			type = excluded.type,
			team_id = excluded.team_id,
			is_active = excluded.is_active
	`
	for _, e := range employees {
		if _, err := tx.ExecContext(ctx, query,
			uuid.NewString(), e.FullName, string(e.Type),
			nullString(e.TeamID), boolToInt(e.Active),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) EmployeesByName(ctx context.Context, names []string) ([]planning.Employee, error) {
	if len(names) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := make([]byte, 0, len(names)*2)
	args := make([]any, 0, len(names))
	for i, name := range names {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, name)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, full_name, type, team_id, is_active FROM employees WHERE full_name IN ("+string(placeholders)+")",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEmployees(rows)
}

func (s *Store) ListEmployees(ctx context.Context, includeInactive bool) ([]planning.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, full_name, type, team_id, is_active FROM employees"
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY full_name ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEmployees(rows)
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (s *Store) UpsertAssignments(ctx context.Context, assignments []planning.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO assignments (id, week_id, employee_id, day_of_week, start_time, end_time, category, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(week_id, employee_id, day_of_week, start_time) DO UPDATE SET
			end_time = excluded.end_time,
			category = excluded.category,
			notes = excluded.notes
	`
	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx, query,
			uuid.NewString(), string(a.WeekID), string(a.EmployeeID),
			a.Day, a.Start, a.End, string(a.Category), nullString(a.Note),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) AssignmentsByWeek(ctx context.Context, weekID planning.WeekID) ([]planning.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, week_id, employee_id, day_of_week, start_time, end_time, category, notes
		FROM assignments WHERE week_id = ?
		ORDER BY day_of_week ASC, start_time ASC`,
		string(weekID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []planning.Assignment
	for rows.Next() {
		var a planning.Assignment
		var notes sql.NullString
		if err := rows.Scan(&a.ID, &a.WeekID, &a.EmployeeID, &a.Day, &a.Start, &a.End, &a.Category, &notes); err != nil {
			return nil, err
		}
		a.Note = notes.String
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// =============================================================================
// NEED SLOTS
// =============================================================================

func (s *Store) UpsertNeedSlots(ctx context.Context, needs []planning.NeedSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO need_slots (id, week_id, day_of_week, start_time, end_time, category, required_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(week_id, day_of_week, start_time, category) DO UPDATE SET
			end_time = excluded.end_time,
			required_count = excluded.required_count
	`
	for _, n := range needs {
		if _, err := tx.ExecContext(ctx, query,
			uuid.NewString(), string(n.WeekID), n.Day, n.Start, n.End,
			string(n.Category), n.Required,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) NeedSlotsByWeek(ctx context.Context, weekID planning.WeekID) ([]planning.NeedSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, week_id, day_of_week, start_time, end_time, category, required_count
		FROM need_slots WHERE week_id = ?
		ORDER BY day_of_week ASC, start_time ASC`,
		string(weekID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var needs []planning.NeedSlot
	for rows.Next() {
		var n planning.NeedSlot
		if err := rows.Scan(&n.ID, &n.WeekID, &n.Day, &n.Start, &n.End, &n.Category, &n.Required); err != nil {
			return nil, err
		}
		needs = append(needs, n)
	}
	return needs, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (planning.Cycle, error) {
	var c planning.Cycle
	var start, end string
	var active int
	err := row.Scan(&c.ID, &c.Year, &c.Number, &start, &end, &active)
	if err == sql.ErrNoRows {
		return planning.Cycle{}, planning.ErrNotFound
	}
	if err != nil {
		return planning.Cycle{}, err
	}
	c.StartDate, _ = time.Parse(dateLayout, start)
	c.EndDate, _ = time.Parse(dateLayout, end)
	c.Active = active != 0
	return c, nil
}

func scanWeek(row rowScanner) (planning.Week, error) {
	var w planning.Week
	var start, end string
	err := row.Scan(&w.ID, &w.CycleID, &w.ISOWeek, &start, &end)
	if err == sql.ErrNoRows {
		return planning.Week{}, planning.ErrNotFound
	}
	if err != nil {
		return planning.Week{}, err
	}
	w.StartDate, _ = time.Parse(dateLayout, start)
	w.EndDate, _ = time.Parse(dateLayout, end)
	return w, nil
}

func collectEmployees(rows *sql.Rows) ([]planning.Employee, error) {
	var employees []planning.Employee
	for rows.Next() {
		var e planning.Employee
		var teamID sql.NullString
		var active int
		if err := rows.Scan(&e.ID, &e.FullName, &e.Type, &teamID, &active); err != nil {
			return nil, err
		}
		e.TeamID = teamID.String
		e.Active = active != 0
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
