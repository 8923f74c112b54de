/*
Package sqlite provides a SQLite-backed attendance.Source.

PURPOSE:
  Persists users, weekly schedules, clock events, absences, company holidays
  and month-close report runs. The engine only reads through attendance.Source;
  the write methods below are used by seeding, the admin side and tests.

INTERFACES IMPLEMENTED:
  attendance.Source:         Reads for one reconciliation
  attendance.SnapshotSource: The same reads inside one read transaction

KEY TABLES:
  users:            Employees and admins, expected weekly hours
  work_schedules:   One row per scheduled weekday (0=Sunday .. 6=Saturday)
  clock_events:     At most one per (user, date)
  absences:         Sick/personal/vacation leave keyed by id, end_date NULL =
                    open-ended; several rows may share (user, start_date)
  company_holidays: One row per date
  report_runs:      Month-close export bookkeeping, one row per (year, month)

STORAGE FORMATS:
  Dates are TEXT "2006-01-02", clock times TEXT "15:04:05". Both sort
  lexicographically, so range filters are plain string comparisons.
  Hours and money are TEXT decimals, parsed with shopspring/decimal.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Snapshot holds the read lock and runs
  every read in one transaction, so an approval cannot land halfway through
  a reconciliation.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/timekeeper.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  reconciler := attendance.NewReconciler(store, logger, attendance.Options{})

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - attendance/source.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/timekeeper/attendance"
	"github.com/warp/timekeeper/calendar"
)

// Store implements attendance.SnapshotSource using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ attendance.SnapshotSource = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
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

// Ping checks the connection. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT,
		role TEXT NOT NULL CHECK (role IN ('employee', 'admin')),
		active INTEGER NOT NULL DEFAULT 1,
		expected_weekly_hours TEXT,
		created_at TEXT NOT NULL
	);

	-- Stored weekday is Sunday-origin (0=Sunday .. 6=Saturday)
	CREATE TABLE IF NOT EXISTS work_schedules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		UNIQUE (user_id, weekday)
	);

	CREATE TABLE IF NOT EXISTS clock_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		clock_in TEXT NOT NULL,
		clock_out TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'approved')),
		came_by_car INTEGER NOT NULL DEFAULT 0,
		parking_cost TEXT,
		km_driven TEXT,
		UNIQUE (user_id, date)
	);

	-- Hot path: one employee, one period
	CREATE INDEX IF NOT EXISTS idx_clock_events_user_date
		ON clock_events(user_id, date);

	CREATE TABLE IF NOT EXISTS absences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT,
		type TEXT NOT NULL CHECK (type IN ('sick', 'personal', 'vacation')),
		status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
		reason TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_absences_user_status
		ON absences(user_id, status, start_date);

	CREATE TABLE IF NOT EXISTS company_holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS report_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		status TEXT NOT NULL,
		file_path TEXT,
		rows INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		UNIQUE (year, month)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// READS (attendance.Source)
// =============================================================================

func (s *Store) Employee(ctx context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s.db}.Employee(ctx, id)
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s.db}.ActiveEmployees(ctx)
}

func (s *Store) Schedule(ctx context.Context, id attendance.EmployeeID) ([]attendance.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s.db}.Schedule(ctx, id)
}

func (s *Store) ClockEvents(ctx context.Context, id attendance.EmployeeID, period calendar.Period) ([]attendance.ClockEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s.db}.ClockEvents(ctx, id, period)
}

func (s *Store) ApprovedAbsences(ctx context.Context, id attendance.EmployeeID, period calendar.Period) ([]attendance.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s.db}.ApprovedAbsences(ctx, id, period)
}

func (s *Store) Holidays(ctx context.Context, period calendar.Period) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s.db}.Holidays(ctx, period)
}

// =============================================================================
// SNAPSHOT (attendance.SnapshotSource)
// =============================================================================

// Snapshot runs fn with a Source bound to a single read transaction.
func (s *Store) Snapshot(ctx context.Context, fn func(attendance.Source) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	return fn(reader{sqlTx})
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// reader runs the attendance.Source queries. The caller holds the lock.
type reader struct {
	q queryer
}

const employeeColumns = "id, username, email, role, active, expected_weekly_hours"

func (r reader) Employee(ctx context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM users WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get employee %d: %w", id, err)
	}
	return &emp, nil
}

func (r reader) ActiveEmployees(ctx context.Context) ([]attendance.Employee, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM users WHERE active = 1 AND role = ? ORDER BY id",
		string(attendance.RoleEmployee),
	)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	defer rows.Close()

	var employees []attendance.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (r reader) Schedule(ctx context.Context, id attendance.EmployeeID) ([]attendance.ScheduleEntry, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT weekday FROM work_schedules WHERE user_id = ? ORDER BY weekday", id)
	if err != nil {
		return nil, fmt.Errorf("get schedule %d: %w", id, err)
	}
	defer rows.Close()

	var entries []attendance.ScheduleEntry
	for rows.Next() {
		e := attendance.ScheduleEntry{EmployeeID: id}
		if err := rows.Scan(&e.Weekday); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r reader) ClockEvents(ctx context.Context, id attendance.EmployeeID, period calendar.Period) ([]attendance.ClockEvent, error) {
	query := `
		SELECT user_id, date, clock_in, clock_out, status, came_by_car, parking_cost, km_driven
		FROM clock_events
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`
	rows, err := r.q.QueryContext(ctx, query, id, period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("get clock events %d %s: %w", id, period, err)
	}
	defer rows.Close()

	var events []attendance.ClockEvent
	for rows.Next() {
		e, err := scanClockEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r reader) ApprovedAbsences(ctx context.Context, id attendance.EmployeeID, period calendar.Period) ([]attendance.Absence, error) {
	query := `
		SELECT id, user_id, start_date, end_date, type, status, reason
		FROM absences
		WHERE user_id = ? AND status = 'approved'
			AND start_date <= ?
			AND (end_date IS NULL OR end_date >= ?)
		ORDER BY start_date, id
	`
	rows, err := r.q.QueryContext(ctx, query, id, period.End.String(), period.Start.String())
	if err != nil {
		return nil, fmt.Errorf("get absences %d %s: %w", id, period, err)
	}
	defer rows.Close()

	var absences []attendance.Absence
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, err
		}
		absences = append(absences, a)
	}
	return absences, rows.Err()
}

func (r reader) Holidays(ctx context.Context, period calendar.Period) ([]calendar.Holiday, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT date, name FROM company_holidays WHERE date >= ? AND date <= ? ORDER BY date",
		period.Start.String(), period.End.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("get holidays %s: %w", period, err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		var date string
		if err := rows.Scan(&date, &h.Name); err != nil {
			return nil, err
		}
		if h.Date, err = calendar.ParseDate(date); err != nil {
			return nil, fmt.Errorf("holiday date %q: %w", date, err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// WRITES
// =============================================================================

// SaveEmployee inserts or updates a user.
func (s *Store) SaveEmployee(ctx context.Context, emp attendance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO users (id, username, email, role, active, expected_weekly_hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			role = excluded.role,
			active = excluded.active,
			expected_weekly_hours = excluded.expected_weekly_hours
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Username, nullString(emp.Email), string(emp.Role), emp.Active,
		nullDecimal(emp.ExpectedWeeklyHours),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ReplaceSchedule swaps the whole schedule of an employee in one transaction.
// Weekdays are Sunday-origin; anything outside 0..6 is rejected by the schema.
func (s *Store) ReplaceSchedule(ctx context.Context, id attendance.EmployeeID, weekdays ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM work_schedules WHERE user_id = ?", id); err != nil {
		return err
	}
	for _, wd := range weekdays {
		if _, err := sqlTx.ExecContext(ctx,
			"INSERT INTO work_schedules (user_id, weekday) VALUES (?, ?) ON CONFLICT(user_id, weekday) DO NOTHING",
			id, wd,
		); err != nil {
			return fmt.Errorf("schedule weekday %d: %w", wd, err)
		}
	}

	return sqlTx.Commit()
}

// SaveClockEvent inserts or replaces the event for (employee, date).
func (s *Store) SaveClockEvent(ctx context.Context, e attendance.ClockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO clock_events (user_id, date, clock_in, clock_out, status, came_by_car, parking_cost, km_driven)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			clock_in = excluded.clock_in,
			clock_out = excluded.clock_out,
			status = excluded.status,
			came_by_car = excluded.came_by_car,
			parking_cost = excluded.parking_cost,
			km_driven = excluded.km_driven
	`

	_, err := s.db.ExecContext(ctx, query,
		e.EmployeeID, e.Date.String(), e.ClockIn.String(), e.ClockOut.String(),
		string(e.Status), e.CameByCar,
		nullDecimal(e.ParkingCost), nullDecimal(e.KmDriven),
	)
	return err
}

// ErrAbsenceNotFound is returned when updating an absence id that does not exist
// for the employee.
var ErrAbsenceNotFound = errors.New("absence not found")

// SaveAbsence inserts a new absence (ID zero) or updates the absence with a.ID.
// Several requests may start on the same day, e.g. a new request after a
// rejected one. Returns the row id.
func (s *Store) SaveAbsence(ctx context.Context, a attendance.Absence) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var endDate sql.NullString
	if a.EndDate != nil {
		endDate = nullString(a.EndDate.String())
	}

	if a.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO absences (user_id, start_date, end_date, type, status, reason)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.EmployeeID, a.StartDate.String(), endDate,
			string(a.Type), string(a.Status), nullString(a.Reason),
		)
		if err != nil {
			return 0, fmt.Errorf("insert absence: %w", err)
		}
		return res.LastInsertId()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE absences
		SET start_date = ?, end_date = ?, type = ?, status = ?, reason = ?
		WHERE id = ? AND user_id = ?`,
		a.StartDate.String(), endDate, string(a.Type), string(a.Status), nullString(a.Reason),
		a.ID, a.EmployeeID,
	)
	if err != nil {
		return 0, fmt.Errorf("update absence %d: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %d", ErrAbsenceNotFound, a.ID)
	}
	return a.ID, nil
}

// SaveHoliday inserts or renames the holiday on h.Date.
func (s *Store) SaveHoliday(ctx context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO company_holidays (date, name) VALUES (?, ?) ON CONFLICT(date) DO UPDATE SET name = excluded.name",
		h.Date.String(), h.Name,
	)
	return err
}

// DeleteHoliday removes the holiday on d, if any.
func (s *Store) DeleteHoliday(ctx context.Context, d calendar.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM company_holidays WHERE date = ?", d.String())
	return err
}

// =============================================================================
// REPORT RUNS STORE
// =============================================================================

// Report run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// ReportRun records one month-close export.
type ReportRun struct {
	ID          int64
	Year        int
	Month       time.Month
	Status      string // running, completed, failed
	FilePath    string
	Rows        int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SaveReportRun inserts or updates the run for (year, month).
func (s *Store) SaveReportRun(ctx context.Context, r ReportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO report_runs (year, month, status, file_path, rows, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(year, month) DO UPDATE SET
			status = excluded.status,
			file_path = excluded.file_path,
			rows = excluded.rows,
			error = excluded.error,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at
	`

	var completedAt *string
	if r.CompletedAt != nil {
		s := r.CompletedAt.UTC().Format(time.RFC3339)
		completedAt = &s
	}

	_, err := s.db.ExecContext(ctx, query,
		r.Year, int(r.Month), r.Status, nullString(r.FilePath), r.Rows, nullString(r.Error),
		r.StartedAt.UTC().Format(time.RFC3339), completedAt,
	)
	return err
}

// GetReportRuns returns runs, newest month first. An empty status returns all.
func (s *Store) GetReportRuns(ctx context.Context, status string) ([]ReportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, year, month, status, file_path, rows, error, started_at, completed_at
		FROM report_runs
	`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY year DESC, month DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ReportRun
	for rows.Next() {
		var r ReportRun
		var month int
		var filePath, errText, completedAt sql.NullString
		var startedAt string
		if err := rows.Scan(
			&r.ID, &r.Year, &month, &r.Status, &filePath, &r.Rows, &errText, &startedAt, &completedAt,
		); err != nil {
			return nil, err
		}

		r.Month = time.Month(month)
		r.FilePath = filePath.String
		r.Error = errText.String
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if completedAt.Valid {
			t, _ := time.Parse(time.RFC3339, completedAt.String)
			r.CompletedAt = &t
		}

		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// IsReportComplete checks if the month-close export for (year, month) already succeeded.
func (s *Store) IsReportComplete(ctx context.Context, year int, month time.Month) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM report_runs WHERE year = ? AND month = ? AND status = ?",
		year, int(month), RunCompleted,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// =============================================================================
// SCANNING
// =============================================================================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(sc scanner) (attendance.Employee, error) {
	var emp attendance.Employee
	var email, weekly sql.NullString
	var role string
	if err := sc.Scan(&emp.ID, &emp.Username, &email, &role, &emp.Active, &weekly); err != nil {
		return emp, err
	}
	emp.Email = email.String
	emp.Role = attendance.Role(role)

	hours, err := parseNullDecimal(weekly)
	if err != nil {
		return emp, fmt.Errorf("employee %d expected_weekly_hours: %w", emp.ID, err)
	}
	emp.ExpectedWeeklyHours = hours
	return emp, nil
}

func scanClockEvent(sc scanner) (attendance.ClockEvent, error) {
	var e attendance.ClockEvent
	var date, clockIn, clockOut, status string
	var parking, km sql.NullString
	if err := sc.Scan(&e.EmployeeID, &date, &clockIn, &clockOut, &status, &e.CameByCar, &parking, &km); err != nil {
		return e, err
	}

	var err error
	if e.Date, err = calendar.ParseDate(date); err != nil {
		return e, fmt.Errorf("clock event date %q: %w", date, err)
	}
	if e.ClockIn, err = calendar.ParseClock(clockIn); err != nil {
		return e, fmt.Errorf("clock event %s clock_in: %w", date, err)
	}
	if e.ClockOut, err = calendar.ParseClock(clockOut); err != nil {
		return e, fmt.Errorf("clock event %s clock_out: %w", date, err)
	}
	e.Status = attendance.ClockStatus(status)
	if e.ParkingCost, err = parseNullDecimal(parking); err != nil {
		return e, fmt.Errorf("clock event %s parking_cost: %w", date, err)
	}
	if e.KmDriven, err = parseNullDecimal(km); err != nil {
		return e, fmt.Errorf("clock event %s km_driven: %w", date, err)
	}
	return e, nil
}

func scanAbsence(sc scanner) (attendance.Absence, error) {
	var a attendance.Absence
	var start, typ, status string
	var end, reason sql.NullString
	if err := sc.Scan(&a.ID, &a.EmployeeID, &start, &end, &typ, &status, &reason); err != nil {
		return a, err
	}

	var err error
	if a.StartDate, err = calendar.ParseDate(start); err != nil {
		return a, fmt.Errorf("absence start_date %q: %w", start, err)
	}
	if end.Valid {
		d, err := calendar.ParseDate(end.String)
		if err != nil {
			return a, fmt.Errorf("absence end_date %q: %w", end.String, err)
		}
		a.EndDate = &d
	}
	a.Type = attendance.AbsenceType(typ)
	a.Status = attendance.AbsenceStatus(status)
	a.Reason = reason.String
	return a, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
