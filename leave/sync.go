/*
sync.go - Attendance materialization for approved leave

PURPOSE:
  When a request transitions into approved, one attendance row per calendar
  day in its range appears, keyed by (employee, day). When it transitions
  back out (rejected/cancelled after approval) or is deleted, exactly those
  rows vanish. Manual rows are never touched by retraction.

WEEKENDS:
  dates.Range does not skip Saturday/Sunday, so an approved Mon-Sun leave
  materializes seven rows. This mirrors how leave totals count calendar
  days; only the attendance-rate summary excludes weekends.

IDEMPOTENCY:
  Sync is an upsert per day. Re-running it for the same approved leave
  rewrites the same rows to the same values - same row count, same ids.
  A unique-index violation on insert means the row appeared concurrently
  and the store falls back to update (see hr.AttendanceStore contract).

PROVENANCE:
  Each synced row gets SourceLeaveID = the leave's id, plus the notes
  marker "<LeaveType> (Leave Request #<id>)". Retraction matches on the
  column; the marker is kept as a display/wire contract.

SEE ALSO:
  - service.go: invokes Sync/Retract inside the status-change transaction
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/hr-engine/dates"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// LEAVE TYPE -> ATTENDANCE STATUS
// =============================================================================

// attendanceStatusByLeaveType is the fixed lookup table. Unmapped types
// fall back to the generic "leave" status.
var attendanceStatusByLeaveType = map[hr.LeaveType]hr.AttendanceStatus{
	hr.LeaveSick:        hr.AttendanceSick,
	hr.LeaveVacation:    hr.AttendanceVacation,
	hr.LeavePersonal:    hr.AttendancePersonal,
	hr.LeaveBereavement: hr.AttendanceExcused,
	hr.LeaveMaternity:   hr.AttendanceMaternity,
	hr.LeavePaternity:   hr.AttendanceMaternity,
	hr.LeaveUnpaid:      hr.AttendanceUnpaid,
}

// AttendanceStatusFor maps a leave type to the status its synced rows get.
func AttendanceStatusFor(t hr.LeaveType) hr.AttendanceStatus {
	if s, ok := attendanceStatusByLeaveType[t]; ok {
		return s
	}
	return hr.AttendanceLeave
}

// Marker is the notes string embedded in every synced row. The exact
// format is a preserved contract; clients display it verbatim.
func Marker(t hr.LeaveType, leaveID string) string {
	return fmt.Sprintf("%s (Leave Request #%s)", t.Label(), leaveID)
}

// =============================================================================
// SYNC / RETRACT
// =============================================================================

// SyncAttendance materializes one attendance row per calendar day of the
// leave's range. No-op (returns nil rows) unless the request is approved.
// Existing rows for a day are overwritten: status, notes, and provenance
// are replaced, clock times cleared. Idempotent.
func SyncAttendance(ctx context.Context, store hr.AttendanceStore, lr hr.LeaveRequest, now time.Time) ([]hr.AttendanceRecord, error) {
	if lr.Status != hr.LeaveApproved {
		return nil, nil
	}

	status := AttendanceStatusFor(lr.Type)
	marker := Marker(lr.Type, lr.ID)
	leaveID := lr.ID

	var synced []hr.AttendanceRecord
	for _, day := range dates.Range(lr.StartDate, lr.EndDate) {
		rec, err := store.UpsertAttendance(ctx, hr.AttendanceRecord{
			EmployeeID:    lr.EmployeeID,
			Day:           day,
			TimeIn:        nil,
			TimeOut:       nil,
			Status:        status,
			Notes:         marker,
			SourceLeaveID: &leaveID,
			UpdatedAt:     now,
		})
		if err != nil {
			return synced, fmt.Errorf("sync attendance for %s on %s: %w", lr.EmployeeID, day, err)
		}
		synced = append(synced, rec)
	}
	return synced, nil
}

// RetractAttendance removes the rows a previously approved leave created:
// those in the leave's range whose SourceLeaveID matches. Returns the
// count removed. Manual rows in the same range are untouched.
func RetractAttendance(ctx context.Context, store hr.AttendanceStore, lr hr.LeaveRequest) (int, error) {
	removed, err := store.DeleteAttendanceForLeave(ctx, lr.ID, lr.EmployeeID, lr.StartDate, lr.EndDate)
	if err != nil {
		return 0, fmt.Errorf("retract attendance for leave %s: %w", lr.ID, err)
	}
	return removed, nil
}
