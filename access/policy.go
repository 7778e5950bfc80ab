/*
Package access implements role-based authorization as pure predicates.

PURPOSE:
  Maps (actor, action, target) to allow/deny for every entity endpoint.
  No I/O, no stores - callers load whatever target attributes the predicate
  needs (owning employee, department) and pass them in. That keeps this
  package trivially testable and free of repository dependencies.

ROLE MODEL:
  A single four-tier hierarchy used everywhere:

    admin > hr_manager > department_manager > employee

  admin and hr_manager are equivalent for every rule in this system; both
  are "privileged". department_manager authority is scoped to the manager's
  own department. employee authority is scoped to the employee's own records.

  Historically role names drifted across subsystems (Admin/Manager/Employee,
  admin/hr/manager). They are normalized to the four constants below at the
  authentication boundary; nothing past that boundary sees a raw role string.

LEAVE AUTHORIZATION TABLE (the one non-obvious matrix):

  Actor               create   create    edit      approve/  cancel   delete
                      self     other     pending   reject    own      any
  employee            yes      no        own only  no        yes      own pending
  department_manager  yes      own dept  own dept  own dept  yes      own dept
  hr_manager/admin    yes      yes       yes       yes       yes      yes

SEE ALSO:
  - leave/machine.go: combines these predicates with status-transition rules
  - api/auth.go:      builds the Actor from a verified token
*/
package access

// =============================================================================
// ROLES AND ACTOR
// =============================================================================

type Role string

const (
	RoleAdmin             Role = "admin"
	RoleHRManager         Role = "hr_manager"
	RoleDepartmentManager Role = "department_manager"
	RoleEmployee          Role = "employee"
)

// NormalizeRole maps the role spellings found at the boundary onto the
// canonical four-tier enum. Unknown strings degrade to the least-privileged
// role rather than failing open.
func NormalizeRole(s string) Role {
	switch s {
	case "admin", "Admin", "administrator":
		return RoleAdmin
	case "hr_manager", "hr", "HR", "HRManager":
		return RoleHRManager
	case "department_manager", "manager", "Manager", "dept_manager":
		return RoleDepartmentManager
	default:
		return RoleEmployee
	}
}

// Valid reports whether r is one of the four canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHRManager, RoleDepartmentManager, RoleEmployee:
		return true
	}
	return false
}

// Privileged reports whether the role bypasses ownership and department
// scoping entirely.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleHRManager
}

// Actor is the read-only projection of the authenticated user that every
// core operation receives: who is asking, with what role, linked to which
// employee record and department.
type Actor struct {
	UserID       string
	Role         Role
	EmployeeID   string // empty when the user has no linked employee record
	DepartmentID string // empty when the user has no department
}

// IsSelf reports whether the target employee is the actor's own record.
func (a Actor) IsSelf(employeeID string) bool {
	return a.EmployeeID != "" && a.EmployeeID == employeeID
}

// ManagesDepartment reports whether the actor is a department manager of
// the given department.
func (a Actor) ManagesDepartment(departmentID string) bool {
	return a.Role == RoleDepartmentManager &&
		a.DepartmentID != "" && a.DepartmentID == departmentID
}

// =============================================================================
// LEAVE PREDICATES
// =============================================================================
// The target is identified by the owning employee's id and department.

// CanCreateLeave: anyone may file for themselves; managers may file for
// employees in their department; privileged roles for anyone.
func CanCreateLeave(a Actor, ownerEmployeeID, ownerDepartmentID string) bool {
	if a.Role.Privileged() {
		return true
	}
	if a.IsSelf(ownerEmployeeID) {
		return true
	}
	return a.ManagesDepartment(ownerDepartmentID)
}

// CanEditPendingLeave: owners may edit their own pending request; managers
// within their department; privileged roles anywhere. Once a request leaves
// pending, the owning employee loses edit access (see CanEditDecidedLeave).
func CanEditPendingLeave(a Actor, ownerEmployeeID, ownerDepartmentID string) bool {
	if a.Role.Privileged() {
		return true
	}
	if a.IsSelf(ownerEmployeeID) {
		return true
	}
	return a.ManagesDepartment(ownerDepartmentID)
}

// CanEditDecidedLeave: after approval/rejection only privileged roles and
// the scoped department manager may touch the request. The owner may not,
// even for their own record.
func CanEditDecidedLeave(a Actor, ownerDepartmentID string) bool {
	if a.Role.Privileged() {
		return true
	}
	return a.ManagesDepartment(ownerDepartmentID)
}

// CanDecideLeave: approve or reject. Employees never decide - not even
// their own requests. Department managers decide within their department.
func CanDecideLeave(a Actor, ownerDepartmentID string) bool {
	if a.Role.Privileged() {
		return true
	}
	return a.ManagesDepartment(ownerDepartmentID)
}

// CanCancelOwnPendingLeave: any role may cancel its own pending request.
func CanCancelOwnPendingLeave(a Actor, ownerEmployeeID string) bool {
	return a.IsSelf(ownerEmployeeID)
}

// CanDeleteLeave: owners may delete their own request only while pending.
// Department managers delete within their department, privileged roles
// anywhere, at any status.
func CanDeleteLeave(a Actor, ownerEmployeeID, ownerDepartmentID string, pending bool) bool {
	if a.Role.Privileged() {
		return true
	}
	if a.ManagesDepartment(ownerDepartmentID) {
		return true
	}
	return pending && a.IsSelf(ownerEmployeeID)
}

// =============================================================================
// ATTENDANCE PREDICATES
// =============================================================================

// CanLogAttendance: employees log their own days; managers log for their
// department; privileged roles for anyone.
func CanLogAttendance(a Actor, ownerEmployeeID, ownerDepartmentID string) bool {
	if a.Role.Privileged() {
		return true
	}
	if a.IsSelf(ownerEmployeeID) {
		return true
	}
	return a.ManagesDepartment(ownerDepartmentID)
}

// CanViewAttendance mirrors CanLogAttendance; there is no read-widening.
func CanViewAttendance(a Actor, ownerEmployeeID, ownerDepartmentID string) bool {
	return CanLogAttendance(a, ownerEmployeeID, ownerDepartmentID)
}

// =============================================================================
// EMPLOYEE / DEPARTMENT / USER PREDICATES
// =============================================================================

// CanManageEmployees: create, update, hard-delete employee records.
// HR/admin only.
func CanManageEmployees(a Actor) bool { return a.Role.Privileged() }

// CanViewEmployee: privileged roles see everyone, managers their
// department, employees themselves.
func CanViewEmployee(a Actor, employeeID, departmentID string) bool {
	if a.Role.Privileged() {
		return true
	}
	if a.IsSelf(employeeID) {
		return true
	}
	return a.ManagesDepartment(departmentID)
}

// CanManageDepartments: HR/admin only.
func CanManageDepartments(a Actor) bool { return a.Role.Privileged() }

// CanManageUsers: HR/admin only.
func CanManageUsers(a Actor) bool { return a.Role.Privileged() }

// =============================================================================
// COMPLIANCE PREDICATES
// =============================================================================

// CanManageCompliance: create/update/delete compliance records. HR/admin
// plus the scoped department manager.
func CanManageCompliance(a Actor, ownerDepartmentID string) bool {
	if a.Role.Privileged() {
		return true
	}
	return a.ManagesDepartment(ownerDepartmentID)
}

// CanViewSensitiveCompliance gates HIPAA-flagged fields (license numbers).
// Only HR/admin and the record's own employee see them; everyone else gets
// the redacted view.
func CanViewSensitiveCompliance(a Actor, ownerEmployeeID string) bool {
	if a.Role.Privileged() {
		return true
	}
	return a.IsSelf(ownerEmployeeID)
}
