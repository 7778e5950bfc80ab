package leave_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/hr-engine/access"
	"github.com/warp/hr-engine/hr"
	"github.com/warp/hr-engine/leave"
)

// =============================================================================
// TRANSITION GRAPH
// =============================================================================

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to hr.LeaveStatus
		want     bool
	}{
		{hr.LeavePending, hr.LeaveApproved, true},
		{hr.LeavePending, hr.LeaveRejected, true},
		{hr.LeavePending, hr.LeaveCancelled, true},
		{hr.LeaveApproved, hr.LeaveRejected, true},
		{hr.LeaveApproved, hr.LeaveCancelled, true},

		// completed is batch-only: no user transition in or out.
		{hr.LeavePending, hr.LeaveCompleted, false},
		{hr.LeaveApproved, hr.LeaveCompleted, false},
		{hr.LeaveCompleted, hr.LeaveCancelled, false},

		// terminal states.
		{hr.LeaveRejected, hr.LeaveApproved, false},
		{hr.LeaveCancelled, hr.LeavePending, false},
		{hr.LeaveApproved, hr.LeavePending, false},
		{hr.LeaveApproved, hr.LeaveApproved, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, leave.ValidTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

// =============================================================================
// AUTHORIZATION
// =============================================================================

func TestAuthorize_EmployeeCannotApproveOwnRequest(t *testing.T) {
	// GIVEN: Alice's own pending request
	// WHEN: Alice tries to approve it
	// THEN: Forbidden - employees never decide

	aliceActor := access.Actor{UserID: "u-alice", Role: access.RoleEmployee, EmployeeID: "emp-alice", DepartmentID: "eng"}
	req := hr.LeaveRequest{ID: "lr-1", EmployeeID: "emp-alice", Status: hr.LeavePending}

	err := leave.Authorize(aliceActor, req, "eng", hr.LeaveApproved)
	assert.ErrorIs(t, err, hr.ErrForbidden)
}

func TestAuthorize_ManagerScopedToDepartment(t *testing.T) {
	req := hr.LeaveRequest{ID: "lr-1", EmployeeID: "emp-alice", Status: hr.LeavePending}

	engMgr := access.Actor{UserID: "u-mgr", Role: access.RoleDepartmentManager, DepartmentID: "eng"}
	assert.NoError(t, leave.Authorize(engMgr, req, "eng", hr.LeaveApproved))

	salesMgr := access.Actor{UserID: "u-mgr2", Role: access.RoleDepartmentManager, DepartmentID: "sales"}
	assert.ErrorIs(t, leave.Authorize(salesMgr, req, "eng", hr.LeaveApproved), hr.ErrForbidden)
}

func TestAuthorize_OwnerCancelsOwnPending(t *testing.T) {
	aliceActor := access.Actor{UserID: "u-alice", Role: access.RoleEmployee, EmployeeID: "emp-alice", DepartmentID: "eng"}

	pending := hr.LeaveRequest{ID: "lr-1", EmployeeID: "emp-alice", Status: hr.LeavePending}
	assert.NoError(t, leave.Authorize(aliceActor, pending, "eng", hr.LeaveCancelled))

	// Once approved, cancelling takes decision authority.
	approved := pending
	approved.Status = hr.LeaveApproved
	assert.ErrorIs(t, leave.Authorize(aliceActor, approved, "eng", hr.LeaveCancelled), hr.ErrForbidden)
}

func TestAuthorize_InvalidEdgeBeatsPermission(t *testing.T) {
	// Even an admin cannot walk an edge that does not exist.
	adminActor := access.Actor{UserID: "u-admin", Role: access.RoleAdmin}
	rejected := hr.LeaveRequest{ID: "lr-1", EmployeeID: "emp-alice", Status: hr.LeaveRejected}

	err := leave.Authorize(adminActor, rejected, "eng", hr.LeaveApproved)
	assert.ErrorIs(t, err, hr.ErrValidation)

	var ve *hr.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "status", ve.Field)
}

func TestAuthorize_HRRevokesApproved(t *testing.T) {
	hrActor := access.Actor{UserID: "u-hr", Role: access.RoleHRManager}
	approved := hr.LeaveRequest{ID: "lr-1", EmployeeID: "emp-alice", Status: hr.LeaveApproved}

	assert.NoError(t, leave.Authorize(hrActor, approved, "eng", hr.LeaveRejected))
	assert.NoError(t, leave.Authorize(hrActor, approved, "eng", hr.LeaveCancelled))
}
