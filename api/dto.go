/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific redaction (HIPAA-flagged compliance fields)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES:
  All calendar dates travel as "YYYY-MM-DD" strings; timestamps as RFC3339.

VALIDATION:
  Validation is done in handlers and the domain core, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - hr/types.go: The domain model behind them
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/warp/hr-engine/hr"
	"github.com/warp/hr-engine/leave"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	EmployeeID   string `json:"employee_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

type CreateUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	EmployeeID   string `json:"employee_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

// =============================================================================
// EMPLOYEES / DEPARTMENTS
// =============================================================================

type EmployeeDTO struct {
	ID              string `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	DepartmentID    string `json:"department_id,omitempty"`
	ManagerID       string `json:"manager_id,omitempty"`
	Status          string `json:"status"`
	EmploymentType  string `json:"employment_type"`
	HireDate        string `json:"hire_date"`
	TerminationDate string `json:"termination_date,omitempty"`
	Salary          string `json:"salary,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

type EmployeeRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	DepartmentID    string `json:"department_id"`
	ManagerID       string `json:"manager_id"`
	Status          string `json:"status"`
	EmploymentType  string `json:"employment_type"`
	HireDate        string `json:"hire_date"`
	TerminationDate string `json:"termination_date"`
	Salary          string `json:"salary"`
}

type DepartmentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ManagerID   string `json:"manager_id,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type DepartmentRequest struct {
	Name        string `json:"name"`
	ManagerID   string `json:"manager_id"`
	Description string `json:"description"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	Date          string `json:"date"`
	TimeIn        string `json:"time_in,omitempty"`
	TimeOut       string `json:"time_out,omitempty"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
	TotalHours    string `json:"total_hours,omitempty"`
	SourceLeaveID string `json:"source_leave_id,omitempty"`
}

type AttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	TimeIn     string `json:"time_in,omitempty"`  // RFC3339
	TimeOut    string `json:"time_out,omitempty"` // RFC3339
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

type AttendanceSummaryDTO struct {
	EmployeeID     string `json:"employee_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Workdays       int    `json:"workdays"`
	DaysPresent    int    `json:"days_present"`
	DaysOnLeave    int    `json:"days_on_leave"`
	DaysAbsent     int    `json:"days_absent"`
	AttendanceRate string `json:"attendance_rate"`
}

// =============================================================================
// LEAVE
// =============================================================================

type LeaveDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	Type          string `json:"leave_type"`
	Status        string `json:"status"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	HalfFirstDay  bool   `json:"half_first_day,omitempty"`
	HalfLastDay   bool   `json:"half_last_day,omitempty"`
	Reason        string `json:"reason,omitempty"`
	ApproverID    string `json:"approver_id,omitempty"`
	ApproverName  string `json:"approver_name,omitempty"`
	ApprovedAt    string `json:"approved_at,omitempty"`
	ApproverNotes string `json:"approver_notes,omitempty"`
	TotalDays     string `json:"total_days"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type CreateLeaveRequest struct {
	EmployeeID   string `json:"employee_id"`
	Type         string `json:"leave_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	HalfFirstDay bool   `json:"half_first_day"`
	HalfLastDay  bool   `json:"half_last_day"`
	Reason       string `json:"reason"`
}

type UpdateLeaveStatusRequest struct {
	Status        string `json:"status"`
	ApproverNotes string `json:"approver_notes,omitempty"`
}

type UpdateLeaveDatesRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// =============================================================================
// COMPLIANCE
// =============================================================================

type ComplianceDTO struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id,omitempty"`
	DepartmentID   string `json:"department_id,omitempty"`
	LicenseType    string `json:"license_type"`
	LicenseNumber  string `json:"license_number,omitempty"` // redacted unless permitted
	IssueDate      string `json:"issue_date"`
	ExpirationDate string `json:"expiration_date"`
	Status         string `json:"status"`
	HIPAASensitive bool   `json:"hipaa_sensitive"`
	VerifiedBy     string `json:"verified_by,omitempty"`
	VerifiedAt     string `json:"verified_at,omitempty"`
}

type ComplianceRequest struct {
	EmployeeID     string `json:"employee_id"`
	DepartmentID   string `json:"department_id"`
	LicenseType    string `json:"license_type"`
	LicenseNumber  string `json:"license_number"`
	IssueDate      string `json:"issue_date"`
	ExpirationDate string `json:"expiration_date"`
	HIPAASensitive bool   `json:"hipaa_sensitive"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ConflictDetails enumerates what a failed leave operation collided with.
type ConflictDetails struct {
	Kind       string          `json:"kind"`
	Attendance []AttendanceDTO `json:"attendance,omitempty"`
	Leaves     []LeaveDTO      `json:"leaves,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e hr.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:             e.ID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Email:          e.Email,
		DepartmentID:   e.DepartmentID,
		ManagerID:      e.ManagerID,
		Status:         string(e.Status),
		EmploymentType: string(e.EmploymentType),
		HireDate:       e.HireDate.String(),
		Salary:         e.Salary.String(),
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}
	if e.TerminationDate != nil {
		dto.TerminationDate = e.TerminationDate.String()
	}
	return dto
}

func toDepartmentDTO(d hr.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:          d.ID,
		Name:        d.Name,
		ManagerID:   d.ManagerID,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}

func toAttendanceDTO(a hr.AttendanceRecord) AttendanceDTO {
	dto := AttendanceDTO{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Day.String(),
		Status:     string(a.Status),
		Notes:      a.Notes,
		TotalHours: a.TotalHours(),
	}
	if a.TimeIn != nil {
		dto.TimeIn = a.TimeIn.Format(time.RFC3339)
	}
	if a.TimeOut != nil {
		dto.TimeOut = a.TimeOut.Format(time.RFC3339)
	}
	if a.SourceLeaveID != nil {
		dto.SourceLeaveID = *a.SourceLeaveID
	}
	return dto
}

func toAttendanceDTOs(recs []hr.AttendanceRecord) []AttendanceDTO {
	dtos := make([]AttendanceDTO, len(recs))
	for i, a := range recs {
		dtos[i] = toAttendanceDTO(a)
	}
	return dtos
}

func toLeaveDTO(lr hr.LeaveRequest) LeaveDTO {
	dto := LeaveDTO{
		ID:            lr.ID,
		EmployeeID:    lr.EmployeeID,
		Type:          string(lr.Type),
		Status:        string(lr.Status),
		StartDate:     lr.StartDate.String(),
		EndDate:       lr.EndDate.String(),
		HalfFirstDay:  lr.HalfFirstDay,
		HalfLastDay:   lr.HalfLastDay,
		Reason:        lr.Reason,
		ApproverID:    lr.ApproverID,
		ApproverName:  lr.ApproverName,
		ApproverNotes: lr.ApproverNotes,
		TotalDays:     lr.TotalDays.String(),
		CreatedAt:     lr.CreatedAt.Format(time.RFC3339),
	}
	if lr.ApprovedAt != nil {
		dto.ApprovedAt = lr.ApprovedAt.Format(time.RFC3339)
	}
	return dto
}

func toLeaveDTOs(reqs []hr.LeaveRequest) []LeaveDTO {
	dtos := make([]LeaveDTO, len(reqs))
	for i, lr := range reqs {
		dtos[i] = toLeaveDTO(lr)
	}
	return dtos
}

// toComplianceDTO renders a record, blanking the license number unless the
// caller may see HIPAA-flagged fields. Non-sensitive records are always
// rendered in full.
func toComplianceDTO(c hr.ComplianceRecord, asOf string, showSensitive bool) ComplianceDTO {
	dto := ComplianceDTO{
		ID:             c.ID,
		EmployeeID:     c.EmployeeID,
		DepartmentID:   c.DepartmentID,
		LicenseType:    c.LicenseType,
		LicenseNumber:  c.LicenseNumber,
		IssueDate:      c.IssueDate.String(),
		ExpirationDate: c.ExpirationDate.String(),
		Status:         asOf,
		HIPAASensitive: c.HIPAASensitive,
		VerifiedBy:     c.VerifiedBy,
	}
	if c.VerifiedAt != nil {
		dto.VerifiedAt = c.VerifiedAt.Format(time.RFC3339)
	}
	if c.HIPAASensitive && !showSensitive {
		dto.LicenseNumber = ""
	}
	return dto
}

func toConflictDetails(ce *leave.ConflictError) ConflictDetails {
	return ConflictDetails{
		Kind:       string(ce.Kind),
		Attendance: toAttendanceDTOs(ce.Attendance),
		Leaves:     toLeaveDTOs(ce.Leaves),
	}
}

func toUserDTO(u hr.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		EmployeeID:   u.EmployeeID,
		DepartmentID: u.DepartmentID,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// JSON HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, details any) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}
