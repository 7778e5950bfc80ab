/*
service.go - Leave request operations

PURPOSE:
  The entry points HTTP handlers call for every leave mutation:

    CreateLeaveRequest   file a new request (self or on behalf of)
    UpdateLeaveStatus    walk the state machine, with attendance sync
    UpdateLeaveDates     move a request's date range
    DeleteLeaveRequest   remove a request, retracting synced attendance

  Each operation runs the same gauntlet, in order:
    1. Validation        (fail fast, nothing written)
    2. Access policy     (access package predicates)
    3. State machine     (for status changes)
    4. Conflict detector (for anything touching dates or approval)
    5. Write + side effects, atomically

ATOMICITY:
  The status write and its attendance side effect share one WithTx block.
  If materializing or retracting attendance fails, the status change rolls
  back and the caller gets the error - the system never holds an approved
  leave with half-synced attendance. (The alternative - log and continue -
  was rejected; both aggregates live in the same store, so one local
  transaction is cheap.)

SEE ALSO:
  - machine.go:  transition rules consumed in step 3
  - conflict.go: the detector consumed in step 4
  - sync.go:     the side effects of step 5
*/
package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/hr-engine/access"
	"github.com/warp/hr-engine/dates"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service orchestrates the leave request lifecycle over an injected store.
type Service struct {
	store hr.TxStore
	log   zerolog.Logger

	// Overridable in tests.
	now   func() time.Time
	newID func() string
}

func NewService(store hr.TxStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// CreateLeaveInput carries everything needed to file a request.
type CreateLeaveInput struct {
	EmployeeID   string
	Type         hr.LeaveType
	StartDate    dates.Date
	EndDate      dates.Date
	HalfFirstDay bool
	HalfLastDay  bool
	Reason       string
}

// =============================================================================
// CREATE
// =============================================================================

// CreateLeaveRequest validates, authorizes, checks conflicts, and files a
// pending request. TotalDays is computed here (calendar days inclusive,
// half-day aware) and never recomputed by readers.
func (s *Service) CreateLeaveRequest(ctx context.Context, actor access.Actor, in CreateLeaveInput) (hr.LeaveRequest, error) {
	if err := validateDates(in.StartDate, in.EndDate); err != nil {
		return hr.LeaveRequest{}, err
	}
	if !in.Type.Valid() {
		return hr.LeaveRequest{}, &hr.ValidationError{Field: "leave_type", Message: "unknown leave type"}
	}

	emp, err := s.store.GetEmployee(ctx, in.EmployeeID)
	if err != nil {
		return hr.LeaveRequest{}, err
	}

	if !access.CanCreateLeave(actor, emp.ID, emp.DepartmentID) {
		return hr.LeaveRequest{}, &hr.ForbiddenError{
			Action: "create leave request",
			Reason: "not your record, your department, or an HR/admin role",
		}
	}

	now := s.now()
	req := hr.LeaveRequest{
		ID:           s.newID(),
		EmployeeID:   emp.ID,
		Type:         in.Type,
		Status:       hr.LeavePending,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		HalfFirstDay: in.HalfFirstDay,
		HalfLastDay:  in.HalfLastDay,
		Reason:       in.Reason,
		TotalDays:    dates.LeaveDays(in.StartDate, in.EndDate, in.HalfFirstDay, in.HalfLastDay),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Conflict checks and the insert share one transaction so a
	// concurrent overlapping request cannot slip between them.
	err = s.store.WithTx(ctx, func(tx hr.Store) error {
		det := Detector{Attendance: tx, Leaves: tx}
		if err := det.Check(ctx, emp.ID, in.StartDate, in.EndDate, ""); err != nil {
			return err
		}
		return tx.CreateLeave(ctx, req)
	})
	if err != nil {
		return hr.LeaveRequest{}, err
	}

	s.log.Info().
		Str("leave_id", req.ID).
		Str("employee_id", req.EmployeeID).
		Str("type", string(req.Type)).
		Str("range", req.StartDate.String()+".."+req.EndDate.String()).
		Msg("leave request created")
	return req, nil
}

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

// UpdateLeaveStatus moves a request through the state machine. Approval
// re-runs the conflict detector and materializes attendance; revoking an
// approved request retracts it. Status write and side effects are atomic.
func (s *Service) UpdateLeaveStatus(ctx context.Context, actor access.Actor, leaveID string, to hr.LeaveStatus, approverNotes string) (hr.LeaveRequest, error) {
	if !to.Valid() {
		return hr.LeaveRequest{}, &hr.ValidationError{Field: "status", Message: "unknown status"}
	}

	req, err := s.store.GetLeave(ctx, leaveID)
	if err != nil {
		return hr.LeaveRequest{}, err
	}
	emp, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return hr.LeaveRequest{}, err
	}

	if err := Authorize(actor, req, emp.DepartmentID, to); err != nil {
		return hr.LeaveRequest{}, err
	}

	from := req.Status
	now := s.now()
	var removed int

	err = s.store.WithTx(ctx, func(tx hr.Store) error {
		if to == hr.LeaveApproved {
			det := Detector{Attendance: tx, Leaves: tx}
			if err := det.Check(ctx, req.EmployeeID, req.StartDate, req.EndDate, req.ID); err != nil {
				return err
			}
		}

		req.Status = to
		req.UpdatedAt = now
		if to == hr.LeaveApproved || to == hr.LeaveRejected {
			req.ApproverID = actor.UserID
			req.ApproverName = s.approverName(ctx, tx, actor.UserID)
			req.ApprovedAt = &now
			if approverNotes != "" {
				req.ApproverNotes = approverNotes
			}
		}

		if err := tx.UpdateLeave(ctx, req); err != nil {
			return err
		}

		switch {
		case to == hr.LeaveApproved:
			_, err := SyncAttendance(ctx, tx, req, now)
			return err
		case from == hr.LeaveApproved:
			// approved -> rejected/cancelled: take the synced rows back.
			n, err := RetractAttendance(ctx, tx, req)
			removed = n
			return err
		}
		return nil
	})
	if err != nil {
		return hr.LeaveRequest{}, err
	}

	s.log.Info().
		Str("leave_id", req.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("actor", actor.UserID).
		Int("attendance_removed", removed).
		Msg("leave status changed")
	return req, nil
}

// approverName resolves the display name stamped on decided requests.
// Falls back to the user id when no employee record is linked.
func (s *Service) approverName(ctx context.Context, tx hr.Store, userID string) string {
	u, err := tx.GetUser(ctx, userID)
	if err != nil {
		return userID
	}
	if u.EmployeeID != "" {
		if emp, err := tx.GetEmployee(ctx, u.EmployeeID); err == nil {
			return emp.FullName()
		}
	}
	return u.Email
}

// =============================================================================
// DATE EDITS
// =============================================================================

// UpdateLeaveDates moves a request's range. The conflict detector runs
// against the new range (excluding the request itself) before anything is
// written. For an approved request the old attendance rows are retracted
// and the new range materialized, all in the same transaction.
func (s *Service) UpdateLeaveDates(ctx context.Context, actor access.Actor, leaveID string, start, end dates.Date) (hr.LeaveRequest, error) {
	if err := validateDates(start, end); err != nil {
		return hr.LeaveRequest{}, err
	}

	req, err := s.store.GetLeave(ctx, leaveID)
	if err != nil {
		return hr.LeaveRequest{}, err
	}
	emp, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return hr.LeaveRequest{}, err
	}

	allowed := false
	if req.Status == hr.LeavePending {
		allowed = access.CanEditPendingLeave(actor, emp.ID, emp.DepartmentID)
	} else {
		// Once decided, the owning employee may no longer edit.
		allowed = access.CanEditDecidedLeave(actor, emp.DepartmentID)
	}
	if !allowed {
		return hr.LeaveRequest{}, &hr.ForbiddenError{
			Action: "edit leave request dates",
			Reason: "request is no longer editable by this actor",
		}
	}

	oldRange := req
	req.StartDate = start
	req.EndDate = end
	req.TotalDays = dates.LeaveDays(start, end, req.HalfFirstDay, req.HalfLastDay)
	req.UpdatedAt = s.now()

	err = s.store.WithTx(ctx, func(tx hr.Store) error {
		det := Detector{Attendance: tx, Leaves: tx}

		if req.Status == hr.LeaveApproved {
			// Retract first so the old placeholder rows cannot collide
			// with the new range's attendance check.
			if _, err := RetractAttendance(ctx, tx, oldRange); err != nil {
				return err
			}
		}
		if err := det.Check(ctx, req.EmployeeID, start, end, req.ID); err != nil {
			return err
		}
		if err := tx.UpdateLeave(ctx, req); err != nil {
			return err
		}
		if req.Status == hr.LeaveApproved {
			_, err := SyncAttendance(ctx, tx, req, req.UpdatedAt)
			return err
		}
		return nil
	})
	if err != nil {
		return hr.LeaveRequest{}, err
	}

	s.log.Info().
		Str("leave_id", req.ID).
		Str("range", start.String()+".."+end.String()).
		Str("actor", actor.UserID).
		Msg("leave dates changed")
	return req, nil
}

// =============================================================================
// DELETE
// =============================================================================

// DeleteLeaveRequest removes a request. Self-service deletion is pending
// only; managers (scoped) and HR/admin may delete at any status. Deleting
// an approved request retracts its synced attendance in the same
// transaction.
func (s *Service) DeleteLeaveRequest(ctx context.Context, actor access.Actor, leaveID string) error {
	req, err := s.store.GetLeave(ctx, leaveID)
	if err != nil {
		return err
	}
	emp, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return err
	}

	if !access.CanDeleteLeave(actor, emp.ID, emp.DepartmentID, req.Status == hr.LeavePending) {
		return &hr.ForbiddenError{
			Action: "delete leave request",
			Reason: "self-service deletion is pending-only",
		}
	}

	var removed int
	err = s.store.WithTx(ctx, func(tx hr.Store) error {
		if req.Status == hr.LeaveApproved {
			n, err := RetractAttendance(ctx, tx, req)
			if err != nil {
				return err
			}
			removed = n
		}
		return tx.DeleteLeave(ctx, req.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("leave_id", req.ID).
		Str("actor", actor.UserID).
		Int("attendance_removed", removed).
		Msg("leave request deleted")
	return nil
}

// =============================================================================
// READS
// =============================================================================

// ListForEmployee returns an employee's requests, policy-gated the same
// way attendance views are.
func (s *Service) ListForEmployee(ctx context.Context, actor access.Actor, employeeID string) ([]hr.LeaveRequest, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewAttendance(actor, emp.ID, emp.DepartmentID) {
		return nil, &hr.ForbiddenError{Action: "list leave requests"}
	}
	return s.store.FindLeaveByEmployee(ctx, employeeID, nil)
}

// PendingQueue returns the requests awaiting the actor's decision:
// everything pending for HR/admin, the manager's department otherwise.
func (s *Service) PendingQueue(ctx context.Context, actor access.Actor) ([]hr.LeaveRequest, error) {
	switch {
	case actor.Role.Privileged():
		return s.store.ListLeaveByStatus(ctx, hr.LeavePending, "")
	case actor.Role == access.RoleDepartmentManager && actor.DepartmentID != "":
		return s.store.ListLeaveByStatus(ctx, hr.LeavePending, actor.DepartmentID)
	default:
		return nil, &hr.ForbiddenError{Action: "view pending leave queue"}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateDates(start, end dates.Date) error {
	if start.IsZero() {
		return &hr.ValidationError{Field: "start_date", Message: "required"}
	}
	if end.IsZero() {
		return &hr.ValidationError{Field: "end_date", Message: "required"}
	}
	if end.Before(start) {
		return &hr.ValidationError{Field: "end_date", Message: "end date before start date"}
	}
	return nil
}
