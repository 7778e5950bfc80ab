/*
conflict.go - Conflict detection for leave creation, edits, and approvals

PURPOSE:
  Two independent checks, BOTH required before a leave request is created,
  has its dates changed, or is approved:

  1. Attendance conflict: a row in the requested range that represents a
     real logged workday blocks the request. A row is "real" if it has a
     recorded time-in or time-out, or its status is anything outside
     {absent, leave, sick, vacation}.

     Rows that are artifacts of a previous leave sync (those placeholder
     statuses, no clock times) deliberately do NOT block. This lets a leave
     edit pass through the placeholder rows its own earlier approval
     created, and lets a new request supersede a stale placeholder.

  2. Leave overlap: any OTHER request for the same employee in status
     pending or approved whose [start, end] overlaps the requested interval
     blocks the request. When editing, the request's own id is excluded
     from the comparison set.

  Both checks run before any write. On failure the whole operation aborts
  with a ConflictError carrying the offending records - no partial state.

CONCURRENCY:
  The checks are read-then-write. Callers run them inside the same WithTx
  block as the subsequent write; the (employee, day) unique index on
  attendance is the storage-level backstop.

SEE ALSO:
  - dates.Overlaps:  the inclusive-bounds interval test
  - service.go:      wires the detector into every mutation path
*/
package leave

import (
	"context"

	"github.com/warp/hr-engine/dates"
	"github.com/warp/hr-engine/hr"
)

// Detector runs the pre-write conflict checks against injected stores.
type Detector struct {
	Attendance hr.AttendanceStore
	Leaves     hr.LeaveStore
}

// nonBlockingStatuses are the attendance statuses a leave request may pass
// through: absences and leave-sync placeholders.
var nonBlockingStatuses = map[hr.AttendanceStatus]bool{
	hr.AttendanceAbsent:   true,
	hr.AttendanceLeave:    true,
	hr.AttendanceSick:     true,
	hr.AttendanceVacation: true,
}

// blocksLeave reports whether an existing attendance row is a real logged
// workday that must block an overlapping leave.
func blocksLeave(rec hr.AttendanceRecord) bool {
	if rec.TimeIn != nil || rec.TimeOut != nil {
		return true
	}
	return !nonBlockingStatuses[rec.Status]
}

// CheckAttendance fails with ConflictError if any attendance row in
// [start, end] represents a real logged workday.
func (d Detector) CheckAttendance(ctx context.Context, employeeID string, start, end dates.Date) error {
	rows, err := d.Attendance.FindAttendanceInRange(ctx, employeeID, start, end)
	if err != nil {
		return err
	}

	var conflicting []hr.AttendanceRecord
	for _, rec := range rows {
		if blocksLeave(rec) {
			conflicting = append(conflicting, rec)
		}
	}
	if len(conflicting) > 0 {
		return &ConflictError{
			Kind:       ConflictAttendance,
			EmployeeID: employeeID,
			Attendance: conflicting,
		}
	}
	return nil
}

// CheckLeaveOverlap fails with ConflictError if any other pending or
// approved request for the employee overlaps [start, end]. excludeID is
// the id of the request being edited/approved, skipped in the comparison
// set; pass "" when creating.
func (d Detector) CheckLeaveOverlap(ctx context.Context, employeeID string, start, end dates.Date, excludeID string) error {
	existing, err := d.Leaves.FindLeaveByEmployee(ctx, employeeID,
		[]hr.LeaveStatus{hr.LeavePending, hr.LeaveApproved})
	if err != nil {
		return err
	}

	var overlapping []hr.LeaveRequest
	for _, lr := range existing {
		if lr.ID == excludeID {
			continue
		}
		if dates.Overlaps(start, end, lr.StartDate, lr.EndDate) {
			overlapping = append(overlapping, lr)
		}
	}
	if len(overlapping) > 0 {
		return &ConflictError{
			Kind:       ConflictLeaveOverlap,
			EmployeeID: employeeID,
			Leaves:     overlapping,
		}
	}
	return nil
}

// Check runs both checks, attendance first.
func (d Detector) Check(ctx context.Context, employeeID string, start, end dates.Date, excludeID string) error {
	if err := d.CheckAttendance(ctx, employeeID, start, end); err != nil {
		return err
	}
	return d.CheckLeaveOverlap(ctx, employeeID, start, end, excludeID)
}
