/*
Package sqlite provides the SQLite-backed implementation of hr.TxStore.

PURPOSE:
  Production persistence for every entity. The same SQL patterns apply to
  PostgreSQL with minor dialect differences.

KEY TABLES:
  employees, departments, attendance, leave_requests, compliance_records,
  users.

INVARIANT-BEARING SCHEMA:
  - UNIQUE(employee_id, work_day) on attendance: at most one row per
    employee per calendar day, even under concurrent approvals. A
    constraint violation during insert falls back to update per the
    upsert contract, never surfaces as a hard failure.
  - attendance.source_leave_id: explicit provenance of leave-synced rows.
    Retraction matches this column; the notes marker string is written
    for clients but never parsed.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - hr/store.go:     interface definitions and the upsert contract
  - store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/hr-engine/access"
	"github.com/warp/hr-engine/dates"
	"github.com/warp/hr-engine/hr"
)

// Store implements hr.TxStore using SQLite.
type Store struct {
	db *sql.DB
	*queries
}

// New creates a store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and avoids
	// SQLITE_BUSY under the single-writer model.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, queries: &queries{db: db}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		manager_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		department_id TEXT NOT NULL DEFAULT '',
		manager_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		employment_type TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		termination_date TEXT,
		salary TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_employees_department ON employees(department_id);
	CREATE INDEX IF NOT EXISTS idx_employees_manager ON employees(manager_id);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		work_day TEXT NOT NULL,
		time_in TEXT,
		time_out TEXT,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		source_leave_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	-- CRITICAL: one attendance row per employee per calendar day. This is
	-- the storage-level backstop against duplicates under concurrent
	-- approvals.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_employee_day
		ON attendance(employee_id, work_day);
	CREATE INDEX IF NOT EXISTS idx_attendance_source_leave
		ON attendance(source_leave_id) WHERE source_leave_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		half_first_day INTEGER NOT NULL DEFAULT 0,
		half_last_day INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT '',
		approver_id TEXT NOT NULL DEFAULT '',
		approver_name TEXT NOT NULL DEFAULT '',
		approved_at TEXT,
		approver_notes TEXT NOT NULL DEFAULT '',
		total_days TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leave_employee_status
		ON leave_requests(employee_id, status);
	CREATE INDEX IF NOT EXISTS idx_leave_status ON leave_requests(status);

	CREATE TABLE IF NOT EXISTS compliance_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL DEFAULT '',
		department_id TEXT NOT NULL DEFAULT '',
		license_type TEXT NOT NULL,
		license_number TEXT NOT NULL DEFAULT '',
		issue_date TEXT NOT NULL,
		expiration_date TEXT NOT NULL,
		hipaa_sensitive INTEGER NOT NULL DEFAULT 0,
		verified_by TEXT NOT NULL DEFAULT '',
		verified_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_compliance_employee ON compliance_records(employee_id);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		employee_id TEXT NOT NULL DEFAULT '',
		department_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn against a transactional view. An error from fn rolls
// back every write the view made.
func (s *Store) WithTx(ctx context.Context, fn func(hr.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&queries{db: tx}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// =============================================================================
// QUERIES - shared between the auto-commit Store and WithTx views
// =============================================================================

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

// --- column encoding helpers ---

func encDate(d dates.Date) string { return d.String() }

func encDatePtr(d *dates.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func encTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func encTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encTime(*t)
}

func decDate(s string) (dates.Date, error) { return dates.Parse(s) }

func decDatePtr(s sql.NullString) (*dates.Date, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := dates.Parse(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func decTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func decTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := decTime(s.String)
	return &t
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeCols = `id, first_name, last_name, email, department_id, manager_id,
	status, employment_type, hire_date, termination_date, salary, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (hr.Employee, error) {
	var e hr.Employee
	var hireDate, salary, createdAt, updatedAt string
	var termDate sql.NullString
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.DepartmentID,
		&e.ManagerID, (*string)(&e.Status), (*string)(&e.EmploymentType),
		&hireDate, &termDate, &salary, &createdAt, &updatedAt)
	if err != nil {
		return hr.Employee{}, err
	}
	if e.HireDate, err = decDate(hireDate); err != nil {
		return hr.Employee{}, fmt.Errorf("parse hire_date: %w", err)
	}
	if e.TerminationDate, err = decDatePtr(termDate); err != nil {
		return hr.Employee{}, fmt.Errorf("parse termination_date: %w", err)
	}
	if e.Salary, err = decimal.NewFromString(salary); err != nil {
		return hr.Employee{}, fmt.Errorf("parse salary: %w", err)
	}
	e.CreatedAt = decTime(createdAt)
	e.UpdatedAt = decTime(updatedAt)
	return e, nil
}

func (q *queries) CreateEmployee(ctx context.Context, e hr.Employee) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO employees (`+employeeCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FirstName, e.LastName, e.Email, e.DepartmentID, e.ManagerID,
		string(e.Status), string(e.EmploymentType), encDate(e.HireDate),
		encDatePtr(e.TerminationDate), e.Salary.String(),
		encTime(e.CreatedAt), encTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

func (q *queries) GetEmployee(ctx context.Context, id string) (hr.Employee, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+employeeCols+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.Employee{}, &hr.NotFoundError{Entity: "employee", ID: id}
	}
	return e, err
}

func (q *queries) ListEmployees(ctx context.Context, departmentID string) ([]hr.Employee, error) {
	query := `SELECT ` + employeeCols + ` FROM employees`
	var args []any
	if departmentID != "" {
		query += ` WHERE department_id = ?`
		args = append(args, departmentID)
	}
	query += ` ORDER BY last_name COLLATE NOCASE, first_name COLLATE NOCASE`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []hr.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *queries) UpdateEmployee(ctx context.Context, e hr.Employee) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}
	res, err := q.db.ExecContext(ctx, `
		UPDATE employees SET first_name=?, last_name=?, email=?, department_id=?,
			manager_id=?, status=?, employment_type=?, hire_date=?,
			termination_date=?, salary=?, updated_at=?
		WHERE id=?`,
		e.FirstName, e.LastName, e.Email, e.DepartmentID, e.ManagerID,
		string(e.Status), string(e.EmploymentType), encDate(e.HireDate),
		encDatePtr(e.TerminationDate), e.Salary.String(), encTime(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return requireRow(res, "employee", e.ID)
}

func (q *queries) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := q.GetEmployee(ctx, id); err != nil {
		return err
	}
	checks := []struct {
		query string
		what  string
	}{
		{`SELECT COUNT(*) FROM employees WHERE manager_id = ?`, "subordinates"},
		{`SELECT COUNT(*) FROM leave_requests WHERE employee_id = ?`, "leave requests"},
		{`SELECT COUNT(*) FROM attendance WHERE employee_id = ?`, "attendance records"},
	}
	for _, c := range checks {
		var n int
		if err := q.db.QueryRowContext(ctx, c.query, id).Scan(&n); err != nil {
			return fmt.Errorf("check employee dependents: %w", err)
		}
		if n > 0 {
			return &hr.DependentsExistError{Entity: "employee", ID: id, Dependents: c.what}
		}
	}
	_, err := q.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	return err
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func (q *queries) CreateDepartment(ctx context.Context, d hr.Department) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO departments (id, name, manager_id, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.ManagerID, d.Description, encTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert department: %w", err)
	}
	return nil
}

func (q *queries) GetDepartment(ctx context.Context, id string) (hr.Department, error) {
	var d hr.Department
	var createdAt string
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, manager_id, description, created_at
		FROM departments WHERE id = ?`, id).
		Scan(&d.ID, &d.Name, &d.ManagerID, &d.Description, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.Department{}, &hr.NotFoundError{Entity: "department", ID: id}
	}
	if err != nil {
		return hr.Department{}, err
	}
	d.CreatedAt = decTime(createdAt)
	return d, nil
}

func (q *queries) ListDepartments(ctx context.Context) ([]hr.Department, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, manager_id, description, created_at
		FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var out []hr.Department
	for rows.Next() {
		var d hr.Department
		var createdAt string
		if err := rows.Scan(&d.ID, &d.Name, &d.ManagerID, &d.Description, &createdAt); err != nil {
			return nil, err
		}
		d.CreatedAt = decTime(createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *queries) UpdateDepartment(ctx context.Context, d hr.Department) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE departments SET name=?, manager_id=?, description=? WHERE id=?`,
		d.Name, d.ManagerID, d.Description, d.ID)
	if err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	return requireRow(res, "department", d.ID)
}

func (q *queries) DeleteDepartment(ctx context.Context, id string) error {
	if _, err := q.GetDepartment(ctx, id); err != nil {
		return err
	}
	var n int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE department_id = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("check department dependents: %w", err)
	}
	if n > 0 {
		return &hr.DependentsExistError{Entity: "department", ID: id, Dependents: "employees"}
	}
	_, err := q.db.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
	return err
}

// =============================================================================
// ATTENDANCE
// =============================================================================

const attendanceCols = `id, employee_id, work_day, time_in, time_out, status,
	notes, source_leave_id, created_at, updated_at`

func scanAttendance(row interface{ Scan(...any) error }) (hr.AttendanceRecord, error) {
	var a hr.AttendanceRecord
	var workDay, createdAt, updatedAt string
	var timeIn, timeOut, sourceLeave sql.NullString
	err := row.Scan(&a.ID, &a.EmployeeID, &workDay, &timeIn, &timeOut,
		(*string)(&a.Status), &a.Notes, &sourceLeave, &createdAt, &updatedAt)
	if err != nil {
		return hr.AttendanceRecord{}, err
	}
	if a.Day, err = decDate(workDay); err != nil {
		return hr.AttendanceRecord{}, fmt.Errorf("parse work_day: %w", err)
	}
	a.TimeIn = decTimePtr(timeIn)
	a.TimeOut = decTimePtr(timeOut)
	a.SourceLeaveID = strPtr(sourceLeave)
	a.CreatedAt = decTime(createdAt)
	a.UpdatedAt = decTime(updatedAt)
	return a, nil
}

func (q *queries) GetAttendance(ctx context.Context, id string) (hr.AttendanceRecord, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+attendanceCols+` FROM attendance WHERE id = ?`, id)
	a, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.AttendanceRecord{}, &hr.NotFoundError{Entity: "attendance record", ID: id}
	}
	return a, err
}

func (q *queries) FindAttendanceInRange(ctx context.Context, employeeID string, from, to dates.Date) ([]hr.AttendanceRecord, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+attendanceCols+` FROM attendance
		WHERE employee_id = ? AND work_day BETWEEN ? AND ?
		ORDER BY work_day`,
		employeeID, encDate(from), encDate(to))
	if err != nil {
		return nil, fmt.Errorf("find attendance in range: %w", err)
	}
	defer rows.Close()
	return collectAttendance(rows)
}

func (q *queries) ListAttendance(ctx context.Context, f hr.AttendanceFilter) ([]hr.AttendanceRecord, error) {
	query := `SELECT ` + attendanceCols + ` FROM attendance WHERE 1=1`
	var args []any
	if f.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, f.EmployeeID)
	}
	if !f.From.IsZero() {
		query += ` AND work_day >= ?`
		args = append(args, encDate(f.From))
	}
	if !f.To.IsZero() {
		query += ` AND work_day <= ?`
		args = append(args, encDate(f.To))
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY work_day`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()
	return collectAttendance(rows)
}

func collectAttendance(rows *sql.Rows) ([]hr.AttendanceRecord, error) {
	var out []hr.AttendanceRecord
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertAttendance updates the existing (employee, day) row in place or
// inserts a new one. A unique-constraint race on insert is retried as an
// update per the hr.AttendanceStore contract.
func (q *queries) UpsertAttendance(ctx context.Context, rec hr.AttendanceRecord) (hr.AttendanceRecord, error) {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	existing, err := q.findAttendanceByDay(ctx, rec.EmployeeID, rec.Day)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return hr.AttendanceRecord{}, err
	}
	if err == nil {
		return q.updateAttendanceRow(ctx, existing, rec)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO attendance (`+attendanceCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EmployeeID, encDate(rec.Day), encTimePtr(rec.TimeIn),
		encTimePtr(rec.TimeOut), string(rec.Status), rec.Notes,
		nullable(rec.SourceLeaveID), encTime(rec.CreatedAt), encTime(rec.UpdatedAt))
	if isUniqueViolation(err) {
		// A concurrent insert won the race; fall back to update.
		existing, ferr := q.findAttendanceByDay(ctx, rec.EmployeeID, rec.Day)
		if ferr != nil {
			return hr.AttendanceRecord{}, fmt.Errorf("upsert attendance fallback: %w", ferr)
		}
		return q.updateAttendanceRow(ctx, existing, rec)
	}
	if err != nil {
		return hr.AttendanceRecord{}, fmt.Errorf("insert attendance: %w", err)
	}
	return rec, nil
}

func (q *queries) findAttendanceByDay(ctx context.Context, employeeID string, day dates.Date) (hr.AttendanceRecord, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+attendanceCols+` FROM attendance
		WHERE employee_id = ? AND work_day = ?`,
		employeeID, encDate(day))
	return scanAttendance(row)
}

func (q *queries) updateAttendanceRow(ctx context.Context, existing, rec hr.AttendanceRecord) (hr.AttendanceRecord, error) {
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	_, err := q.db.ExecContext(ctx, `
		UPDATE attendance SET time_in=?, time_out=?, status=?, notes=?,
			source_leave_id=?, updated_at=?
		WHERE id=?`,
		encTimePtr(rec.TimeIn), encTimePtr(rec.TimeOut), string(rec.Status),
		rec.Notes, nullable(rec.SourceLeaveID), encTime(rec.UpdatedAt), rec.ID)
	if err != nil {
		return hr.AttendanceRecord{}, fmt.Errorf("update attendance: %w", err)
	}
	return rec, nil
}

func (q *queries) DeleteAttendanceForLeave(ctx context.Context, leaveID, employeeID string, from, to dates.Date) (int, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM attendance
		WHERE employee_id = ? AND work_day BETWEEN ? AND ? AND source_leave_id = ?`,
		employeeID, encDate(from), encDate(to), leaveID)
	if err != nil {
		return 0, fmt.Errorf("delete attendance for leave: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

const leaveCols = `id, employee_id, leave_type, status, start_date, end_date,
	half_first_day, half_last_day, reason, approver_id, approver_name,
	approved_at, approver_notes, total_days, created_at, updated_at`

func scanLeave(row interface{ Scan(...any) error }) (hr.LeaveRequest, error) {
	var lr hr.LeaveRequest
	var startDate, endDate, totalDays, createdAt, updatedAt string
	var approvedAt sql.NullString
	err := row.Scan(&lr.ID, &lr.EmployeeID, (*string)(&lr.Type), (*string)(&lr.Status),
		&startDate, &endDate, &lr.HalfFirstDay, &lr.HalfLastDay, &lr.Reason,
		&lr.ApproverID, &lr.ApproverName, &approvedAt, &lr.ApproverNotes,
		&totalDays, &createdAt, &updatedAt)
	if err != nil {
		return hr.LeaveRequest{}, err
	}
	if lr.StartDate, err = decDate(startDate); err != nil {
		return hr.LeaveRequest{}, fmt.Errorf("parse start_date: %w", err)
	}
	if lr.EndDate, err = decDate(endDate); err != nil {
		return hr.LeaveRequest{}, fmt.Errorf("parse end_date: %w", err)
	}
	if lr.TotalDays, err = decimal.NewFromString(totalDays); err != nil {
		return hr.LeaveRequest{}, fmt.Errorf("parse total_days: %w", err)
	}
	lr.ApprovedAt = decTimePtr(approvedAt)
	lr.CreatedAt = decTime(createdAt)
	lr.UpdatedAt = decTime(updatedAt)
	return lr, nil
}

func (q *queries) CreateLeave(ctx context.Context, lr hr.LeaveRequest) error {
	if lr.CreatedAt.IsZero() {
		lr.CreatedAt = time.Now()
	}
	if lr.UpdatedAt.IsZero() {
		lr.UpdatedAt = lr.CreatedAt
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO leave_requests (`+leaveCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lr.ID, lr.EmployeeID, string(lr.Type), string(lr.Status),
		encDate(lr.StartDate), encDate(lr.EndDate), lr.HalfFirstDay, lr.HalfLastDay,
		lr.Reason, lr.ApproverID, lr.ApproverName, encTimePtr(lr.ApprovedAt),
		lr.ApproverNotes, lr.TotalDays.String(), encTime(lr.CreatedAt), encTime(lr.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert leave request: %w", err)
	}
	return nil
}

func (q *queries) GetLeave(ctx context.Context, id string) (hr.LeaveRequest, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+leaveCols+` FROM leave_requests WHERE id = ?`, id)
	lr, err := scanLeave(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.LeaveRequest{}, &hr.NotFoundError{Entity: "leave request", ID: id}
	}
	return lr, err
}

func (q *queries) UpdateLeave(ctx context.Context, lr hr.LeaveRequest) error {
	if lr.UpdatedAt.IsZero() {
		lr.UpdatedAt = time.Now()
	}
	res, err := q.db.ExecContext(ctx, `
		UPDATE leave_requests SET leave_type=?, status=?, start_date=?, end_date=?,
			half_first_day=?, half_last_day=?, reason=?, approver_id=?,
			approver_name=?, approved_at=?, approver_notes=?, total_days=?,
			updated_at=?
		WHERE id=?`,
		string(lr.Type), string(lr.Status), encDate(lr.StartDate), encDate(lr.EndDate),
		lr.HalfFirstDay, lr.HalfLastDay, lr.Reason, lr.ApproverID, lr.ApproverName,
		encTimePtr(lr.ApprovedAt), lr.ApproverNotes, lr.TotalDays.String(),
		encTime(lr.UpdatedAt), lr.ID)
	if err != nil {
		return fmt.Errorf("update leave request: %w", err)
	}
	return requireRow(res, "leave request", lr.ID)
}

func (q *queries) DeleteLeave(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM leave_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete leave request: %w", err)
	}
	return requireRow(res, "leave request", id)
}

func (q *queries) FindLeaveByEmployee(ctx context.Context, employeeID string, statuses []hr.LeaveStatus) ([]hr.LeaveRequest, error) {
	query := `SELECT ` + leaveCols + ` FROM leave_requests WHERE employee_id = ?`
	args := []any{employeeID}
	if len(statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(",?", len(statuses)-1) + `)`
		for _, s := range statuses {
			args = append(args, string(s))
		}
	}
	query += ` ORDER BY start_date`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find leave by employee: %w", err)
	}
	defer rows.Close()
	return collectLeave(rows)
}

func (q *queries) ListLeaveByStatus(ctx context.Context, status hr.LeaveStatus, departmentID string) ([]hr.LeaveRequest, error) {
	var query string
	var args []any
	if departmentID != "" {
		query = `
			SELECT ` + prefixCols(leaveCols, "lr.") + `
			FROM leave_requests lr
			JOIN employees e ON e.id = lr.employee_id
			WHERE lr.status = ? AND e.department_id = ?
			ORDER BY lr.start_date`
		args = []any{string(status), departmentID}
	} else {
		query = `SELECT ` + leaveCols + ` FROM leave_requests WHERE status = ? ORDER BY start_date`
		args = []any{string(status)}
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave by status: %w", err)
	}
	defer rows.Close()
	return collectLeave(rows)
}

func collectLeave(rows *sql.Rows) ([]hr.LeaveRequest, error) {
	var out []hr.LeaveRequest
	for rows.Next() {
		lr, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// =============================================================================
// COMPLIANCE
// =============================================================================

const complianceCols = `id, employee_id, department_id, license_type, license_number,
	issue_date, expiration_date, hipaa_sensitive, verified_by, verified_at,
	created_at, updated_at`

func scanCompliance(row interface{ Scan(...any) error }) (hr.ComplianceRecord, error) {
	var c hr.ComplianceRecord
	var issueDate, expirationDate, createdAt, updatedAt string
	var verifiedAt sql.NullString
	err := row.Scan(&c.ID, &c.EmployeeID, &c.DepartmentID, &c.LicenseType,
		&c.LicenseNumber, &issueDate, &expirationDate, &c.HIPAASensitive,
		&c.VerifiedBy, &verifiedAt, &createdAt, &updatedAt)
	if err != nil {
		return hr.ComplianceRecord{}, err
	}
	if c.IssueDate, err = decDate(issueDate); err != nil {
		return hr.ComplianceRecord{}, fmt.Errorf("parse issue_date: %w", err)
	}
	if c.ExpirationDate, err = decDate(expirationDate); err != nil {
		return hr.ComplianceRecord{}, fmt.Errorf("parse expiration_date: %w", err)
	}
	c.VerifiedAt = decTimePtr(verifiedAt)
	c.CreatedAt = decTime(createdAt)
	c.UpdatedAt = decTime(updatedAt)
	return c, nil
}

func (q *queries) CreateCompliance(ctx context.Context, c hr.ComplianceRecord) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO compliance_records (`+complianceCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.EmployeeID, c.DepartmentID, c.LicenseType, c.LicenseNumber,
		encDate(c.IssueDate), encDate(c.ExpirationDate), c.HIPAASensitive,
		c.VerifiedBy, encTimePtr(c.VerifiedAt), encTime(c.CreatedAt), encTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert compliance record: %w", err)
	}
	return nil
}

func (q *queries) GetCompliance(ctx context.Context, id string) (hr.ComplianceRecord, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+complianceCols+` FROM compliance_records WHERE id = ?`, id)
	c, err := scanCompliance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.ComplianceRecord{}, &hr.NotFoundError{Entity: "compliance record", ID: id}
	}
	return c, err
}

func (q *queries) ListCompliance(ctx context.Context, employeeID string) ([]hr.ComplianceRecord, error) {
	query := `SELECT ` + complianceCols + ` FROM compliance_records`
	var args []any
	if employeeID != "" {
		query += ` WHERE employee_id = ?`
		args = append(args, employeeID)
	}
	query += ` ORDER BY expiration_date`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list compliance records: %w", err)
	}
	defer rows.Close()

	var out []hr.ComplianceRecord
	for rows.Next() {
		c, err := scanCompliance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *queries) UpdateCompliance(ctx context.Context, c hr.ComplianceRecord) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	res, err := q.db.ExecContext(ctx, `
		UPDATE compliance_records SET employee_id=?, department_id=?, license_type=?,
			license_number=?, issue_date=?, expiration_date=?, hipaa_sensitive=?,
			verified_by=?, verified_at=?, updated_at=?
		WHERE id=?`,
		c.EmployeeID, c.DepartmentID, c.LicenseType, c.LicenseNumber,
		encDate(c.IssueDate), encDate(c.ExpirationDate), c.HIPAASensitive,
		c.VerifiedBy, encTimePtr(c.VerifiedAt), encTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update compliance record: %w", err)
	}
	return requireRow(res, "compliance record", c.ID)
}

func (q *queries) DeleteCompliance(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM compliance_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete compliance record: %w", err)
	}
	return requireRow(res, "compliance record", id)
}

// =============================================================================
// USERS
// =============================================================================

const userCols = `id, email, password_hash, role, employee_id, department_id, created_at`

func scanUser(row interface{ Scan(...any) error }) (hr.User, error) {
	var u hr.User
	var role, createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.EmployeeID,
		&u.DepartmentID, &createdAt)
	if err != nil {
		return hr.User{}, err
	}
	u.Role = access.Role(role)
	u.CreatedAt = decTime(createdAt)
	return u, nil
}

func (q *queries) CreateUser(ctx context.Context, u hr.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (`+userCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, string(u.Role), u.EmployeeID, u.DepartmentID,
		encTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (q *queries) GetUser(ctx context.Context, id string) (hr.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.User{}, &hr.NotFoundError{Entity: "user", ID: id}
	}
	return u, err
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (hr.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.User{}, &hr.NotFoundError{Entity: "user", ID: email}
	}
	return u, err
}

func (q *queries) ListUsers(ctx context.Context) ([]hr.User, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []hr.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (q *queries) UpdateUser(ctx context.Context, u hr.User) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE users SET email=?, password_hash=?, role=?, employee_id=?, department_id=?
		WHERE id=?`,
		u.Email, u.PasswordHash, string(u.Role), u.EmployeeID, u.DepartmentID, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res, "user", u.ID)
}

func (q *queries) DeleteUser(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res, "user", id)
}

// =============================================================================
// HELPERS
// =============================================================================

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &hr.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func prefixCols(cols, prefix string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// Compile-time interface checks.
var (
	_ hr.Store   = (*queries)(nil)
	_ hr.TxStore = (*Store)(nil)
)
