/*
Package hr defines the entities of the HR system, the store interfaces the
core operates through, and the shared error taxonomy.

PURPOSE:
  One place for the relational data model: Employee, Department,
  AttendanceRecord, LeaveRequest, ComplianceRecord, User. Domain packages
  (leave, access, api) import hr; hr imports nothing above dates.

KEY INVARIANTS HELD BY THESE TYPES:
  - AttendanceRecord is unique per (EmployeeID, Day). Stores enforce it with
    a composite unique index; writers go through UpsertAttendance.
  - LeaveRequest keeps StartDate <= EndDate and carries its computed
    TotalDays (calendar days inclusive, decimal, half-day aware).
  - Attendance rows produced by leave sync carry SourceLeaveID; manual rows
    never do. Retraction matches on that column, not on the notes text.

PROVENANCE MARKER:
  Sync-created rows additionally embed "<LeaveType> (Leave Request #<id>)"
  in Notes. That string is a preserved wire contract for clients that
  display it; the authoritative provenance is SourceLeaveID.

SEE ALSO:
  - store.go:  store interfaces implemented by store/ and store/sqlite/
  - errors.go: sentinel + structured errors used across the system
*/
package hr

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/hr-engine/access"
	"github.com/warp/hr-engine/dates"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

type EmployeeStatus string

const (
	EmployeeOnboarding EmployeeStatus = "onboarding"
	EmployeeActive     EmployeeStatus = "active"
	EmployeeOnLeave    EmployeeStatus = "on_leave"
	EmployeeTerminated EmployeeStatus = "terminated"
	EmployeeSuspended  EmployeeStatus = "suspended"
)

type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentContract EmploymentType = "contract"
)

type Employee struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	DepartmentID    string // empty = unassigned
	ManagerID       string // empty = no manager
	Status          EmployeeStatus
	EmploymentType  EmploymentType
	HireDate        dates.Date
	TerminationDate *dates.Date
	Salary          decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (e Employee) FullName() string {
	return fmt.Sprintf("%s %s", e.FirstName, e.LastName)
}

// =============================================================================
// DEPARTMENT
// =============================================================================

type Department struct {
	ID          string
	Name        string
	ManagerID   string // employee id, empty = none
	Description string
	CreatedAt   time.Time
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "present"
	AttendanceAbsent    AttendanceStatus = "absent"
	AttendanceLate      AttendanceStatus = "late"
	AttendanceHalfDay   AttendanceStatus = "half_day"
	AttendanceRemote    AttendanceStatus = "remote"
	AttendanceLeave     AttendanceStatus = "leave"
	AttendanceSick      AttendanceStatus = "sick"
	AttendanceVacation  AttendanceStatus = "vacation"
	AttendancePersonal  AttendanceStatus = "personal"
	AttendanceExcused   AttendanceStatus = "excused"
	AttendanceMaternity AttendanceStatus = "maternity"
	AttendanceUnpaid    AttendanceStatus = "unpaid"
	AttendanceHoliday   AttendanceStatus = "holiday"
)

// AttendanceRecord is one row per (employee, calendar day).
type AttendanceRecord struct {
	ID            string
	EmployeeID    string
	Day           dates.Date
	TimeIn        *time.Time
	TimeOut       *time.Time
	Status        AttendanceStatus
	Notes         string
	SourceLeaveID *string // set only on rows materialized by leave sync
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalHours derives the worked duration as "HH:MM", or "" when either
// clock is missing.
func (a AttendanceRecord) TotalHours() string {
	if a.TimeIn == nil || a.TimeOut == nil {
		return ""
	}
	diff := a.TimeOut.Sub(*a.TimeIn)
	if diff < 0 {
		return ""
	}
	hours := int(diff.Hours())
	minutes := int(diff.Minutes()) % 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// FromLeaveSync reports whether this row was materialized by the sync
// engine rather than logged by a person.
func (a AttendanceRecord) FromLeaveSync() bool { return a.SourceLeaveID != nil }

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type LeaveType string

const (
	LeaveVacation    LeaveType = "vacation"
	LeaveSick        LeaveType = "sick"
	LeavePersonal    LeaveType = "personal"
	LeaveBereavement LeaveType = "bereavement"
	LeaveJuryDuty    LeaveType = "jury_duty"
	LeaveMaternity   LeaveType = "maternity"
	LeavePaternity   LeaveType = "paternity"
	LeaveUnpaid      LeaveType = "unpaid"
	LeaveOther       LeaveType = "other"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveVacation, LeaveSick, LeavePersonal, LeaveBereavement,
		LeaveJuryDuty, LeaveMaternity, LeavePaternity, LeaveUnpaid, LeaveOther:
		return true
	}
	return false
}

// Label is the human-readable spelling used in the notes marker.
func (t LeaveType) Label() string {
	switch t {
	case LeaveVacation:
		return "Vacation"
	case LeaveSick:
		return "Sick"
	case LeavePersonal:
		return "Personal"
	case LeaveBereavement:
		return "Bereavement"
	case LeaveJuryDuty:
		return "Jury Duty"
	case LeaveMaternity:
		return "Maternity"
	case LeavePaternity:
		return "Paternity"
	case LeaveUnpaid:
		return "Unpaid"
	default:
		return "Leave"
	}
}

type LeaveStatus string

const (
	LeavePending   LeaveStatus = "pending"
	LeaveApproved  LeaveStatus = "approved"
	LeaveRejected  LeaveStatus = "rejected"
	LeaveCancelled LeaveStatus = "cancelled"
	LeaveCompleted LeaveStatus = "completed" // batch-only, never a user transition
)

func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected, LeaveCancelled, LeaveCompleted:
		return true
	}
	return false
}

type LeaveRequest struct {
	ID           string
	EmployeeID   string
	Type         LeaveType
	Status       LeaveStatus
	StartDate    dates.Date
	EndDate      dates.Date
	HalfFirstDay bool
	HalfLastDay  bool
	Reason       string

	// Stamped on approval/rejection.
	ApproverID    string
	ApproverName  string
	ApprovedAt    *time.Time
	ApproverNotes string

	// Calendar days inclusive minus half-day flags. Never weekend-adjusted.
	TotalDays decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// COMPLIANCE
// =============================================================================

type ComplianceStatus string

const (
	ComplianceValid   ComplianceStatus = "valid"
	CompliancePending ComplianceStatus = "pending"
	ComplianceExpired ComplianceStatus = "expired"
)

type ComplianceRecord struct {
	ID             string
	EmployeeID     string // one of EmployeeID/DepartmentID is set
	DepartmentID   string
	LicenseType    string
	LicenseNumber  string
	IssueDate      dates.Date
	ExpirationDate dates.Date
	HIPAASensitive bool
	VerifiedBy     string // user id, empty = unverified
	VerifiedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StatusAsOf derives the record's compliance status from its dates:
// pending before the issue date, expired past the expiration date,
// valid in between.
func (c ComplianceRecord) StatusAsOf(day dates.Date) ComplianceStatus {
	if day.Before(c.IssueDate) {
		return CompliancePending
	}
	if day.After(c.ExpirationDate) {
		return ComplianceExpired
	}
	return ComplianceValid
}

// =============================================================================
// USER
// =============================================================================

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         access.Role
	EmployeeID   string // optional linked employee
	DepartmentID string
	CreatedAt    time.Time
}

// Actor projects the user into the read-only shape the core consumes.
func (u User) Actor() access.Actor {
	return access.Actor{
		UserID:       u.ID,
		Role:         u.Role,
		EmployeeID:   u.EmployeeID,
		DepartmentID: u.DepartmentID,
	}
}
