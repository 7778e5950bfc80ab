/*
errors.go - Conflict errors carrying the records that caused them

PURPOSE:
  A leave operation that fails on conflict must tell the client WHAT it
  collided with, so the UI can show "you already logged work on July 2".
  ConflictError carries the offending attendance rows or leave requests
  and unwraps to hr.ErrConflict for errors.Is checks.
*/
package leave

import (
	"fmt"

	"github.com/warp/hr-engine/hr"
)

// ConflictKind distinguishes the two independent checks.
type ConflictKind string

const (
	// ConflictAttendance: a real workday was already logged in the range.
	ConflictAttendance ConflictKind = "attendance"

	// ConflictLeaveOverlap: another pending/approved request overlaps.
	ConflictLeaveOverlap ConflictKind = "leave_overlap"
)

// ConflictError aborts a create/edit/approve before any write. Exactly one
// of Attendance/Leaves is populated, matching Kind.
type ConflictError struct {
	Kind       ConflictKind
	EmployeeID string
	Attendance []hr.AttendanceRecord
	Leaves     []hr.LeaveRequest
}

func (e *ConflictError) Error() string {
	switch e.Kind {
	case ConflictAttendance:
		return fmt.Sprintf("attendance conflict: %d existing record(s) in range for employee %s",
			len(e.Attendance), e.EmployeeID)
	case ConflictLeaveOverlap:
		return fmt.Sprintf("leave overlap: %d overlapping request(s) for employee %s",
			len(e.Leaves), e.EmployeeID)
	default:
		return "leave conflict"
	}
}

func (e *ConflictError) Unwrap() error { return hr.ErrConflict }
