/*
store.go - Persistence interfaces consumed by the core

PURPOSE:
  Defines the repository boundary. The leave engine and the API never touch
  a database directly; they receive a Store (or TxStore when atomicity is
  required) and call these methods. Implementations: store/ (in-memory,
  tests and dev) and store/sqlite/ (production).

UPSERT CONTRACT:
  UpsertAttendance is the ONLY attendance write. Keyed by
  (EmployeeID, Day): if a row exists it is updated in place, preserving the
  row id; otherwise a new row is created. A storage-level unique-constraint
  violation during insert means "row already exists" and must fall back to
  update, never surface as a hard failure.

TRANSACTIONS:
  TxStore.WithTx runs fn against a transactional view. Leave status changes
  and their attendance side effects share one WithTx block, so a sync
  failure rolls back the status change too. No best-effort drift.

SEE ALSO:
  - store/memory.go:        in-memory implementation with snapshot rollback
  - store/sqlite/sqlite.go: SQLite implementation, UNIQUE(employee_id, work_day)
*/
package hr

import (
	"context"

	"github.com/warp/hr-engine/dates"
)

// =============================================================================
// PER-ENTITY INTERFACES
// =============================================================================

type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context, departmentID string) ([]Employee, error)
	UpdateEmployee(ctx context.Context, e Employee) error

	// DeleteEmployee hard-deletes. Fails with DependentsExistError while
	// the employee has subordinates or linked leave/attendance rows.
	DeleteEmployee(ctx context.Context, id string) error
}

type DepartmentStore interface {
	CreateDepartment(ctx context.Context, d Department) error
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	UpdateDepartment(ctx context.Context, d Department) error

	// DeleteDepartment fails with DependentsExistError while any employee
	// references the department.
	DeleteDepartment(ctx context.Context, id string) error
}

// AttendanceFilter narrows ListAttendance. Zero values mean "no filter".
type AttendanceFilter struct {
	EmployeeID string
	From       dates.Date
	To         dates.Date
	Status     AttendanceStatus
}

type AttendanceStore interface {
	GetAttendance(ctx context.Context, id string) (AttendanceRecord, error)

	// FindAttendanceInRange returns the employee's rows with
	// from <= Day <= to, ordered by day.
	FindAttendanceInRange(ctx context.Context, employeeID string, from, to dates.Date) ([]AttendanceRecord, error)

	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)

	// UpsertAttendance creates or updates the row for (rec.EmployeeID,
	// rec.Day). See the upsert contract above.
	UpsertAttendance(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error)

	// DeleteAttendanceForLeave removes the rows in [from, to] whose
	// SourceLeaveID equals leaveID. Manual rows are never touched.
	// Returns the number of rows removed.
	DeleteAttendanceForLeave(ctx context.Context, leaveID, employeeID string, from, to dates.Date) (int, error)
}

type LeaveStore interface {
	CreateLeave(ctx context.Context, lr LeaveRequest) error
	GetLeave(ctx context.Context, id string) (LeaveRequest, error)
	UpdateLeave(ctx context.Context, lr LeaveRequest) error
	DeleteLeave(ctx context.Context, id string) error

	// FindLeaveByEmployee returns the employee's requests whose status is
	// in statuses (all statuses when empty), ordered by start date.
	FindLeaveByEmployee(ctx context.Context, employeeID string, statuses []LeaveStatus) ([]LeaveRequest, error)

	// ListLeaveByStatus returns requests in the given status, optionally
	// scoped to employees of one department (the approver queue).
	ListLeaveByStatus(ctx context.Context, status LeaveStatus, departmentID string) ([]LeaveRequest, error)
}

type ComplianceStore interface {
	CreateCompliance(ctx context.Context, c ComplianceRecord) error
	GetCompliance(ctx context.Context, id string) (ComplianceRecord, error)
	ListCompliance(ctx context.Context, employeeID string) ([]ComplianceRecord, error)
	UpdateCompliance(ctx context.Context, c ComplianceRecord) error
	DeleteCompliance(ctx context.Context, id string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, u User) error
	DeleteUser(ctx context.Context, id string) error
}

// =============================================================================
// AGGREGATE STORE
// =============================================================================

// Store is the full repository surface. Both store implementations satisfy
// it; most consumers depend on the narrow per-entity interfaces instead.
type Store interface {
	EmployeeStore
	DepartmentStore
	AttendanceStore
	LeaveStore
	ComplianceStore
	UserStore
}

// TxStore adds transactional execution.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional Store view. An error from
	// fn rolls back every write made through the view.
	WithTx(ctx context.Context, fn func(Store) error) error
}
