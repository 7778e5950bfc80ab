/*
machine.go - Leave request status transitions and who may trigger them

PURPOSE:
  The state machine behind every status mutation:

      pending ──▶ approved ──▶ rejected   (revocation)
         │            └──────▶ cancelled  (revocation)
         ├──────────▶ rejected
         └──────────▶ cancelled

  "completed" is terminal and reachable only through external batch
  processing; it is never a valid user transition, into or out of.

AUTHORIZATION:
  ValidTransition answers "is this edge in the graph"; Authorize answers
  "may THIS actor walk it". Both must pass, and Authorize never consults
  the store - callers supply the owning employee's department.

  Decisions (approved/rejected) are manager-and-up, scoped to the
  manager's department. An employee may never decide a request, including
  their own. Cancellation of one's own pending request is open to every
  role; revoking past pending requires decision authority.

SEE ALSO:
  - access/policy.go: the underlying role predicates
  - service.go:       stamps approver fields and runs side effects
*/
package leave

import (
	"fmt"

	"github.com/warp/hr-engine/access"
	"github.com/warp/hr-engine/hr"
)

// transitions is the full edge set of the status graph.
var transitions = map[hr.LeaveStatus][]hr.LeaveStatus{
	hr.LeavePending:  {hr.LeaveApproved, hr.LeaveRejected, hr.LeaveCancelled},
	hr.LeaveApproved: {hr.LeaveRejected, hr.LeaveCancelled},
	// rejected, cancelled, completed: no user transitions out.
}

// ValidTransition reports whether from -> to is an edge in the graph.
func ValidTransition(from, to hr.LeaveStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrInvalidTransition wraps hr.ErrValidation with the offending edge.
func invalidTransition(from, to hr.LeaveStatus) error {
	return &hr.ValidationError{
		Field:   "status",
		Message: fmt.Sprintf("cannot transition %s -> %s", from, to),
	}
}

// Authorize checks that the actor may move the request to the target
// status. ownerDepartmentID is the department of the request's employee.
// Returns a ForbiddenError on denial, a ValidationError on an edge that
// does not exist.
func Authorize(actor access.Actor, req hr.LeaveRequest, ownerDepartmentID string, to hr.LeaveStatus) error {
	if !ValidTransition(req.Status, to) {
		return invalidTransition(req.Status, to)
	}

	switch to {
	case hr.LeaveApproved, hr.LeaveRejected:
		// Employees never decide, not even for themselves.
		if !access.CanDecideLeave(actor, ownerDepartmentID) {
			return &hr.ForbiddenError{
				Action: fmt.Sprintf("set leave request to %s", to),
				Reason: "requires department manager, HR, or admin",
			}
		}
		return nil

	case hr.LeaveCancelled:
		// Anyone may cancel their own pending request. Revoking an
		// approved request takes decision authority.
		if req.Status == hr.LeavePending && access.CanCancelOwnPendingLeave(actor, req.EmployeeID) {
			return nil
		}
		if access.CanDecideLeave(actor, ownerDepartmentID) {
			return nil
		}
		return &hr.ForbiddenError{
			Action: "cancel leave request",
			Reason: "only the owner (while pending) or an authorized manager",
		}

	default:
		return invalidTransition(req.Status, to)
	}
}
