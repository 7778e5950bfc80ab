package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/hr-engine/access"
	"github.com/warp/hr-engine/dates"
	"github.com/warp/hr-engine/hr"
	"github.com/warp/hr-engine/leave"
	"github.com/warp/hr-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func march(d int) dates.Date { return dates.New(2025, time.March, d) }

// =============================================================================
// ATTENDANCE UPSERT
// =============================================================================

func TestUpsertAttendance_OneRowPerEmployeeDay(t *testing.T) {
	// GIVEN: A row for (emp-1, March 10) already in the database
	// WHEN: Upserting the same key with new data
	// THEN: The row is rewritten in place, keeping its id and creation time

	st := newStore(t)
	ctx := context.Background()

	first, err := st.UpsertAttendance(ctx, hr.AttendanceRecord{
		EmployeeID: "emp-1", Day: march(10), Status: hr.AttendancePresent,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := st.UpsertAttendance(ctx, hr.AttendanceRecord{
		EmployeeID: "emp-1", Day: march(10), Status: hr.AttendanceSick, Notes: "rewritten",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	rows, err := st.FindAttendanceInRange(ctx, "emp-1", march(10), march(10))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, hr.AttendanceSick, rows[0].Status)
	assert.Equal(t, "rewritten", rows[0].Notes)
}

func TestUpsertAttendance_DistinctKeysDistinctRows(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	a, err := st.UpsertAttendance(ctx, hr.AttendanceRecord{EmployeeID: "emp-1", Day: march(10), Status: hr.AttendancePresent})
	require.NoError(t, err)
	b, err := st.UpsertAttendance(ctx, hr.AttendanceRecord{EmployeeID: "emp-1", Day: march(11), Status: hr.AttendancePresent})
	require.NoError(t, err)
	c, err := st.UpsertAttendance(ctx, hr.AttendanceRecord{EmployeeID: "emp-2", Day: march(10), Status: hr.AttendancePresent})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestUpsertAttendance_ClockTimesRoundTrip(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	in := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	out := time.Date(2025, time.March, 10, 17, 30, 0, 0, time.UTC)
	_, err := st.UpsertAttendance(ctx, hr.AttendanceRecord{
		EmployeeID: "emp-1", Day: march(10), Status: hr.AttendancePresent,
		TimeIn: &in, TimeOut: &out,
	})
	require.NoError(t, err)

	rows, err := st.FindAttendanceInRange(ctx, "emp-1", march(10), march(10))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].TimeIn)
	require.NotNil(t, rows[0].TimeOut)
	assert.True(t, rows[0].TimeIn.Equal(in))
	assert.Equal(t, "08:30", rows[0].TotalHours())
}

func TestDeleteAttendanceForLeave_ScopedByProvenanceAndRange(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	lrID, otherID := "lr-1", "lr-2"
	seed := func(day int, src *string) {
		_, err := st.UpsertAttendance(ctx, hr.AttendanceRecord{
			EmployeeID: "emp-1", Day: march(day), Status: hr.AttendanceVacation, SourceLeaveID: src,
		})
		require.NoError(t, err)
	}
	seed(10, &lrID)
	seed(11, &lrID)
	seed(12, &otherID) // other leave, same range
	seed(13, nil)      // manual row, same range
	seed(20, &lrID)    // right leave, outside range

	n, err := st.DeleteAttendanceForLeave(ctx, lrID, "emp-1", march(10), march(14))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := st.FindAttendanceInRange(ctx, "emp-1", march(10), march(20))
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// The freed day accepts a fresh row.
	fresh, err := st.UpsertAttendance(ctx, hr.AttendanceRecord{
		EmployeeID: "emp-1", Day: march(10), Status: hr.AttendancePresent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.ID)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollbackDiscardsWrites(t *testing.T) {
	// GIVEN: An empty database
	// WHEN: A transaction writes a department and an attendance row and fails
	// THEN: Neither write survives

	st := newStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx hr.Store) error {
		if err := tx.CreateDepartment(ctx, hr.Department{ID: "eng", Name: "Engineering"}); err != nil {
			return err
		}
		if _, err := tx.UpsertAttendance(ctx, hr.AttendanceRecord{
			EmployeeID: "emp-1", Day: march(10), Status: hr.AttendancePresent,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = st.GetDepartment(ctx, "eng")
	assert.ErrorIs(t, err, hr.ErrNotFound)

	rows, err := st.FindAttendanceInRange(ctx, "emp-1", march(10), march(10))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWithTx_CommitKeepsWrites(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	err := st.WithTx(ctx, func(tx hr.Store) error {
		return tx.CreateDepartment(ctx, hr.Department{ID: "eng", Name: "Engineering"})
	})
	require.NoError(t, err)

	d, err := st.GetDepartment(ctx, "eng")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", d.Name)
}

// =============================================================================
// LEAVE LIFECYCLE OVER SQLITE
// =============================================================================

func seedLifecycle(t *testing.T, st *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.CreateDepartment(ctx, hr.Department{ID: "eng", Name: "Engineering"}))
	require.NoError(t, st.CreateEmployee(ctx, hr.Employee{
		ID: "emp-alice", FirstName: "Alice", LastName: "Nguyen", DepartmentID: "eng",
		Status: hr.EmployeeActive, EmploymentType: hr.EmploymentFullTime,
		HireDate: dates.New(2023, time.January, 9),
	}))
	require.NoError(t, st.CreateEmployee(ctx, hr.Employee{
		ID: "emp-mgr", FirstName: "Marco", LastName: "Diaz", DepartmentID: "eng",
		Status: hr.EmployeeActive, EmploymentType: hr.EmploymentFullTime,
		HireDate: dates.New(2020, time.June, 1),
	}))
	require.NoError(t, st.CreateUser(ctx, hr.User{
		ID: "u-mgr", Email: "marco@example.com", PasswordHash: "x",
		Role: access.RoleDepartmentManager, EmployeeID: "emp-mgr", DepartmentID: "eng",
	}))
}

func TestLeaveLifecycle_ApproveConflictRetract(t *testing.T) {
	// GIVEN: The leave service running over the SQLite store
	// WHEN: A request is filed, approved, challenged by an overlap, and
	// finally rejected
	// THEN: Attendance rows appear on approval with marker and provenance,
	// the overlapping request conflicts, and rejection takes all rows back

	st := newStore(t)
	seedLifecycle(t, st)
	ctx := context.Background()
	svc := leave.NewService(st, zerolog.Nop())

	alice := access.Actor{UserID: "u-alice", Role: access.RoleEmployee, EmployeeID: "emp-alice", DepartmentID: "eng"}
	mgr := access.Actor{UserID: "u-mgr", Role: access.RoleDepartmentManager, EmployeeID: "emp-mgr", DepartmentID: "eng"}

	req, err := svc.CreateLeaveRequest(ctx, alice, leave.CreateLeaveInput{
		EmployeeID: "emp-alice", Type: hr.LeaveVacation,
		StartDate: march(10), EndDate: march(12),
	})
	require.NoError(t, err)
	assert.Equal(t, "3", req.TotalDays.String())

	approved, err := svc.UpdateLeaveStatus(ctx, mgr, req.ID, hr.LeaveApproved, "")
	require.NoError(t, err)
	assert.Equal(t, "Marco Diaz", approved.ApproverName)

	rows, err := st.FindAttendanceInRange(ctx, "emp-alice", march(10), march(12))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, hr.AttendanceVacation, r.Status)
		assert.Equal(t, "Vacation (Leave Request #"+req.ID+")", r.Notes)
		require.NotNil(t, r.SourceLeaveID)
		assert.Equal(t, req.ID, *r.SourceLeaveID)
	}

	_, err = svc.CreateLeaveRequest(ctx, alice, leave.CreateLeaveInput{
		EmployeeID: "emp-alice", Type: hr.LeaveSick,
		StartDate: march(12), EndDate: march(14),
	})
	assert.ErrorIs(t, err, hr.ErrConflict)

	rejected, err := svc.UpdateLeaveStatus(ctx, mgr, req.ID, hr.LeaveRejected, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, hr.LeaveRejected, rejected.Status)

	rows, err = st.FindAttendanceInRange(ctx, "emp-alice", march(10), march(12))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSyncAttendance_IdempotentOverSQLite(t *testing.T) {
	// Re-running sync rewrites the same rows: same count, same ids.
	st := newStore(t)
	ctx := context.Background()

	lr := hr.LeaveRequest{
		ID: "lr-1", EmployeeID: "emp-1", Type: hr.LeaveVacation,
		Status: hr.LeaveApproved, StartDate: march(10), EndDate: march(16),
	}

	first, err := leave.SyncAttendance(ctx, st, lr, time.Now())
	require.NoError(t, err)
	require.Len(t, first, 7, "weekends materialize too")

	second, err := leave.SyncAttendance(ctx, st, lr, time.Now())
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	rows, err := st.FindAttendanceInRange(ctx, "emp-1", march(10), march(16))
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

// =============================================================================
// ENTITY ROUND TRIPS AND GUARDS
// =============================================================================

func TestEmployee_RoundTripWithOptionalFields(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	term := march(31)
	require.NoError(t, st.CreateEmployee(ctx, hr.Employee{
		ID: "emp-1", FirstName: "Ada", LastName: "Byrne", Email: "ada@example.com",
		Status: hr.EmployeeTerminated, EmploymentType: hr.EmploymentContract,
		HireDate: dates.New(2021, time.May, 3), TerminationDate: &term,
		Salary: decimal.RequireFromString("98500.50"),
	}))

	e, err := st.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Byrne", e.FullName())
	require.NotNil(t, e.TerminationDate)
	assert.True(t, e.TerminationDate.Equal(term))
	assert.Equal(t, "98500.5", e.Salary.String())

	_, err = st.GetEmployee(ctx, "emp-ghost")
	assert.ErrorIs(t, err, hr.ErrNotFound)
}

func TestDeleteEmployee_BlockedByDependents(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	require.NoError(t, st.CreateEmployee(ctx, hr.Employee{
		ID: "emp-1", FirstName: "A", LastName: "One",
		Status: hr.EmployeeActive, EmploymentType: hr.EmploymentFullTime,
		HireDate: march(1),
	}))
	require.NoError(t, st.CreateLeave(ctx, hr.LeaveRequest{
		ID: "lr-1", EmployeeID: "emp-1", Type: hr.LeaveVacation,
		Status: hr.LeavePending, StartDate: march(10), EndDate: march(11),
		TotalDays: decimal.NewFromInt(2),
	}))

	err := st.DeleteEmployee(ctx, "emp-1")
	assert.ErrorIs(t, err, hr.ErrConflict)

	var de *hr.DependentsExistError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "leave requests", de.Dependents)

	require.NoError(t, st.DeleteLeave(ctx, "lr-1"))
	assert.NoError(t, st.DeleteEmployee(ctx, "emp-1"))
}

func TestDeleteDepartment_BlockedByEmployees(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	require.NoError(t, st.CreateDepartment(ctx, hr.Department{ID: "eng", Name: "Engineering"}))
	require.NoError(t, st.CreateEmployee(ctx, hr.Employee{
		ID: "emp-1", FirstName: "A", LastName: "One", DepartmentID: "eng",
		Status: hr.EmployeeActive, EmploymentType: hr.EmploymentFullTime,
		HireDate: march(1),
	}))

	assert.ErrorIs(t, st.DeleteDepartment(ctx, "eng"), hr.ErrConflict)
}

func TestListLeaveByStatus_DepartmentFilterJoinsEmployees(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	require.NoError(t, st.CreateEmployee(ctx, hr.Employee{
		ID: "emp-eng", FirstName: "A", LastName: "One", DepartmentID: "eng",
		Status: hr.EmployeeActive, EmploymentType: hr.EmploymentFullTime, HireDate: march(1),
	}))
	require.NoError(t, st.CreateEmployee(ctx, hr.Employee{
		ID: "emp-sales", FirstName: "B", LastName: "Two", DepartmentID: "sales",
		Status: hr.EmployeeActive, EmploymentType: hr.EmploymentFullTime, HireDate: march(1),
	}))
	for _, lr := range []hr.LeaveRequest{
		{ID: "lr-eng", EmployeeID: "emp-eng", Type: hr.LeaveVacation, Status: hr.LeavePending,
			StartDate: march(10), EndDate: march(11), TotalDays: decimal.NewFromInt(2)},
		{ID: "lr-sales", EmployeeID: "emp-sales", Type: hr.LeaveSick, Status: hr.LeavePending,
			StartDate: march(10), EndDate: march(11), TotalDays: decimal.NewFromInt(2)},
	} {
		require.NoError(t, st.CreateLeave(ctx, lr))
	}

	all, err := st.ListLeaveByStatus(ctx, hr.LeavePending, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	eng, err := st.ListLeaveByStatus(ctx, hr.LeavePending, "eng")
	require.NoError(t, err)
	require.Len(t, eng, 1)
	assert.Equal(t, "lr-eng", eng[0].ID)
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	// The email column collates NOCASE; lookups match regardless of case.
	st := newStore(t)
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, hr.User{
		ID: "u-1", Email: "Alice@Example.com", PasswordHash: "x", Role: access.RoleEmployee,
	}))

	u, err := st.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)

	_, err = st.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, hr.ErrNotFound)
}
