/*
handlers.go - HTTP API handlers for the HR engine

PURPOSE:
  Exposes the HR core via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic. No business rules live
  here; handlers parse, call the core, and map its error taxonomy onto
  status codes.

ENDPOINTS:
  Auth:
    POST   /api/login                    Exchange credentials for a token

  Employees:
    GET    /api/employees                List (optionally by department)
    POST   /api/employees                Create (HR/admin)
    GET    /api/employees/{id}           Get one
    PUT    /api/employees/{id}           Update (HR/admin)
    DELETE /api/employees/{id}           Delete (HR/admin, blocked by dependents)

  Departments:
    GET/POST /api/departments            List / create
    GET/PUT/DELETE /api/departments/{id}

  Attendance:
    GET    /api/attendance               List (employee_id, from, to, status)
    POST   /api/attendance               Log a day (upsert per employee+day)
    GET    /api/attendance/summary       Workday-based attendance rate
    GET    /api/attendance/{id}          Get one

  Leave:
    GET    /api/leaves?employee_id=      An employee's requests
    POST   /api/leaves                   File a request (conflict-checked)
    GET    /api/leaves/pending           The actor's approval queue
    GET    /api/leaves/{id}              Get one
    PUT    /api/leaves/{id}/status       Walk the state machine
    PUT    /api/leaves/{id}/dates        Move the date range
    DELETE /api/leaves/{id}              Delete, retracting synced attendance

  Compliance:
    GET/POST /api/compliance             List / create
    GET/PUT/DELETE /api/compliance/{id}  (license numbers redacted per role)

  Users:
    GET/POST /api/users                  List / create (HR/admin)
    PUT/DELETE /api/users/{id}

ERROR HANDLING:
  The core's error taxonomy maps 1:1 onto status codes:
  - 400: hr.ErrValidation
  - 401: missing/invalid token (auth.go)
  - 403: hr.ErrForbidden
  - 404: hr.ErrNotFound
  - 409: hr.ErrConflict; leave.ConflictError additionally carries the
         conflicting records in the details payload
  - 500: everything else

SEE ALSO:
  - dto.go:     request/response shapes and converters
  - auth.go:    login and the token middleware
  - server.go:  router setup
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/hr-engine/access"
	"github.com/warp/hr-engine/dates"
	"github.com/warp/hr-engine/hr"
	"github.com/warp/hr-engine/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store hr.TxStore
	Leave *leave.Service
	Auth  *Auth

	log zerolog.Logger
}

// NewHandler wires the handler over a store.
func NewHandler(store hr.TxStore, auth *Auth, log zerolog.Logger) *Handler {
	return &Handler{
		Store: store,
		Leave: leave.NewService(store, log),
		Auth:  auth,
		log:   log,
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// actor pulls the authenticated actor; RequireAuth guarantees presence on
// protected routes.
func actor(r *http.Request) access.Actor {
	a, _ := ActorFrom(r.Context())
	return a
}

// handleError maps the domain error taxonomy onto HTTP responses.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var ce *leave.ConflictError
	if errors.As(err, &ce) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:   ce.Error(),
			Code:    "conflict",
			Details: toConflictDetails(ce),
		})
		return
	}

	switch {
	case errors.Is(err, hr.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, hr.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, hr.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, hr.ErrConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict"})
	default:
		h.log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func parseDate(field, s string) (dates.Date, error) {
	if s == "" {
		return dates.Date{}, &hr.ValidationError{Field: field, Message: "required"}
	}
	d, err := dates.Parse(s)
	if err != nil {
		return dates.Date{}, &hr.ValidationError{Field: field, Message: "expected YYYY-MM-DD"}
	}
	return d, nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns employees visible to the actor: everyone for
// HR/admin, the manager's own department otherwise.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	departmentID := r.URL.Query().Get("department_id")

	if !a.Role.Privileged() {
		if a.Role != access.RoleDepartmentManager || a.DepartmentID == "" {
			h.handleError(w, &hr.ForbiddenError{Action: "list employees"})
			return
		}
		departmentID = a.DepartmentID
	}

	employees, err := h.Store.ListEmployees(r.Context(), departmentID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates an employee record. HR/admin only.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageEmployees(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "create employee"})
		return
	}

	var req EmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	e, err := employeeFromRequest(req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt

	if err := h.Store.CreateEmployee(r.Context(), e); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

// GetEmployee returns one employee, scoped by CanViewEmployee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !access.CanViewEmployee(actor(r), e.ID, e.DepartmentID) {
		h.handleError(w, &hr.ForbiddenError{Action: "view employee"})
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

// UpdateEmployee replaces an employee's mutable fields. HR/admin only.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageEmployees(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "update employee"})
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	var req EmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	e, err := employeeFromRequest(req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now()

	if err := h.Store.UpdateEmployee(r.Context(), e); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

// DeleteEmployee hard-deletes. Blocked with 409 while dependents exist.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageEmployees(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "delete employee"})
		return
	}
	if err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func employeeFromRequest(req EmployeeRequest) (hr.Employee, error) {
	if req.FirstName == "" || req.LastName == "" {
		return hr.Employee{}, &hr.ValidationError{Field: "name", Message: "first and last name are required"}
	}
	hireDate, err := parseDate("hire_date", req.HireDate)
	if err != nil {
		return hr.Employee{}, err
	}

	e := hr.Employee{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		DepartmentID:   req.DepartmentID,
		ManagerID:      req.ManagerID,
		Status:         hr.EmployeeStatus(req.Status),
		EmploymentType: hr.EmploymentType(req.EmploymentType),
		HireDate:       hireDate,
	}
	if e.Status == "" {
		e.Status = hr.EmployeeActive
	}
	if e.EmploymentType == "" {
		e.EmploymentType = hr.EmploymentFullTime
	}
	if req.TerminationDate != "" {
		td, err := parseDate("termination_date", req.TerminationDate)
		if err != nil {
			return hr.Employee{}, err
		}
		e.TerminationDate = &td
	}
	if req.Salary != "" {
		salary, err := decimal.NewFromString(req.Salary)
		if err != nil {
			return hr.Employee{}, &hr.ValidationError{Field: "salary", Message: "expected a decimal number"}
		}
		e.Salary = salary
	}
	return e, nil
}

// =============================================================================
// DEPARTMENT HANDLERS
// =============================================================================

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	deps, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	dtos := make([]DepartmentDTO, len(deps))
	for i, d := range deps {
		dtos[i] = toDepartmentDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageDepartments(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "create department"})
		return
	}
	var req DepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Name == "" {
		h.handleError(w, &hr.ValidationError{Field: "name", Message: "required"})
		return
	}

	d := hr.Department{
		ID:          uuid.NewString(),
		Name:        req.Name,
		ManagerID:   req.ManagerID,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	if err := h.Store.CreateDepartment(r.Context(), d); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDepartmentDTO(d))
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.GetDepartment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDepartmentDTO(d))
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageDepartments(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "update department"})
		return
	}
	existing, err := h.Store.GetDepartment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	var req DepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	existing.ManagerID = req.ManagerID
	existing.Description = req.Description

	if err := h.Store.UpdateDepartment(r.Context(), existing); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDepartmentDTO(existing))
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageDepartments(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "delete department"})
		return
	}
	if err := h.Store.DeleteDepartment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// LogAttendance records one day for one employee. Upsert semantics: logging
// the same day twice updates the existing row. Manual logs never carry a
// SourceLeaveID.
func (h *Handler) LogAttendance(w http.ResponseWriter, r *http.Request) {
	var req AttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.EmployeeID == "" {
		h.handleError(w, &hr.ValidationError{Field: "employee_id", Message: "required"})
		return
	}
	day, err := parseDate("date", req.Date)
	if err != nil {
		h.handleError(w, err)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), req.EmployeeID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !access.CanLogAttendance(actor(r), emp.ID, emp.DepartmentID) {
		h.handleError(w, &hr.ForbiddenError{Action: "log attendance"})
		return
	}

	rec := hr.AttendanceRecord{
		EmployeeID: emp.ID,
		Day:        day,
		Status:     hr.AttendanceStatus(req.Status),
		Notes:      req.Notes,
		UpdatedAt:  time.Now(),
	}
	if rec.Status == "" {
		rec.Status = hr.AttendancePresent
	}
	if rec.TimeIn, err = parseClock("time_in", req.TimeIn); err != nil {
		h.handleError(w, err)
		return
	}
	if rec.TimeOut, err = parseClock("time_out", req.TimeOut); err != nil {
		h.handleError(w, err)
		return
	}

	saved, err := h.Store.UpsertAttendance(r.Context(), rec)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTO(saved))
}

func parseClock(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, &hr.ValidationError{Field: field, Message: "expected RFC3339 timestamp"}
	}
	return &t, nil
}

// ListAttendance returns rows matching the query filters. Non-privileged
// actors must name an employee they may view.
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	q := r.URL.Query()

	filter := hr.AttendanceFilter{
		EmployeeID: q.Get("employee_id"),
		Status:     hr.AttendanceStatus(q.Get("status")),
	}
	var err error
	if s := q.Get("from"); s != "" {
		if filter.From, err = parseDate("from", s); err != nil {
			h.handleError(w, err)
			return
		}
	}
	if s := q.Get("to"); s != "" {
		if filter.To, err = parseDate("to", s); err != nil {
			h.handleError(w, err)
			return
		}
	}

	if !a.Role.Privileged() {
		if filter.EmployeeID == "" {
			h.handleError(w, &hr.ValidationError{Field: "employee_id", Message: "required"})
			return
		}
		emp, err := h.Store.GetEmployee(r.Context(), filter.EmployeeID)
		if err != nil {
			h.handleError(w, err)
			return
		}
		if !access.CanViewAttendance(a, emp.ID, emp.DepartmentID) {
			h.handleError(w, &hr.ForbiddenError{Action: "view attendance"})
			return
		}
	}

	rows, err := h.Store.ListAttendance(r.Context(), filter)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTOs(rows))
}

func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	emp, err := h.Store.GetEmployee(r.Context(), rec.EmployeeID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !access.CanViewAttendance(actor(r), emp.ID, emp.DepartmentID) {
		h.handleError(w, &hr.ForbiddenError{Action: "view attendance"})
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTO(rec))
}

// AttendanceSummary computes the workday-based attendance rate for one
// employee over [from, to].
func (h *Handler) AttendanceSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employeeID := q.Get("employee_id")
	if employeeID == "" {
		h.handleError(w, &hr.ValidationError{Field: "employee_id", Message: "required"})
		return
	}
	from, err := parseDate("from", q.Get("from"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	to, err := parseDate("to", q.Get("to"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	if to.Before(from) {
		h.handleError(w, &hr.ValidationError{Field: "to", Message: "end before start"})
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), employeeID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !access.CanViewAttendance(actor(r), emp.ID, emp.DepartmentID) {
		h.handleError(w, &hr.ForbiddenError{Action: "view attendance summary"})
		return
	}

	rows, err := h.Store.FindAttendanceInRange(r.Context(), employeeID, from, to)
	if err != nil {
		h.handleError(w, err)
		return
	}
	s := hr.Summarize(employeeID, rows, from, to)

	writeJSON(w, http.StatusOK, AttendanceSummaryDTO{
		EmployeeID:     s.EmployeeID,
		From:           s.From.String(),
		To:             s.To.String(),
		Workdays:       s.Workdays,
		DaysPresent:    s.DaysPresent,
		DaysOnLeave:    s.DaysOnLeave,
		DaysAbsent:     s.DaysAbsent,
		AttendanceRate: s.AttendanceRate.StringFixed(2),
	})
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// CreateLeave files a request; conflicts come back as 409 with the
// colliding records in details.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	a := actor(r)
	employeeID := req.EmployeeID
	if employeeID == "" {
		// Default to the actor's own record.
		employeeID = a.EmployeeID
	}
	if employeeID == "" {
		h.handleError(w, &hr.ValidationError{Field: "employee_id", Message: "required"})
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		h.handleError(w, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		h.handleError(w, err)
		return
	}

	created, err := h.Leave.CreateLeaveRequest(r.Context(), a, leave.CreateLeaveInput{
		EmployeeID:   employeeID,
		Type:         hr.LeaveType(req.Type),
		StartDate:    start,
		EndDate:      end,
		HalfFirstDay: req.HalfFirstDay,
		HalfLastDay:  req.HalfLastDay,
		Reason:       req.Reason,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(created))
}

// ListLeaves returns one employee's requests.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		employeeID = a.EmployeeID
	}
	if employeeID == "" {
		h.handleError(w, &hr.ValidationError{Field: "employee_id", Message: "required"})
		return
	}

	reqs, err := h.Leave.ListForEmployee(r.Context(), a, employeeID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(reqs))
}

// PendingLeaves is the approval queue for the actor.
func (h *Handler) PendingLeaves(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Leave.PendingQueue(r.Context(), actor(r))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(reqs))
}

func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	lr, err := h.Store.GetLeave(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	emp, err := h.Store.GetEmployee(r.Context(), lr.EmployeeID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !access.CanViewAttendance(actor(r), emp.ID, emp.DepartmentID) {
		h.handleError(w, &hr.ForbiddenError{Action: "view leave request"})
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(lr))
}

// UpdateLeaveStatus walks the state machine; approvals materialize
// attendance, revocations retract it, atomically.
func (h *Handler) UpdateLeaveStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeaveStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	updated, err := h.Leave.UpdateLeaveStatus(r.Context(), actor(r),
		chi.URLParam(r, "id"), hr.LeaveStatus(req.Status), req.ApproverNotes)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(updated))
}

// UpdateLeaveDates moves a request's range, re-running conflict checks and
// re-syncing attendance when the request is approved.
func (h *Handler) UpdateLeaveDates(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeaveDatesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		h.handleError(w, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		h.handleError(w, err)
		return
	}

	updated, err := h.Leave.UpdateLeaveDates(r.Context(), actor(r), chi.URLParam(r, "id"), start, end)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(updated))
}

func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.Leave.DeleteLeaveRequest(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// COMPLIANCE HANDLERS
// =============================================================================

func (h *Handler) ListCompliance(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	records, err := h.Store.ListCompliance(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	today := dates.Today()
	dtos := make([]ComplianceDTO, len(records))
	for i, c := range records {
		show := access.CanViewSensitiveCompliance(a, c.EmployeeID)
		dtos[i] = toComplianceDTO(c, string(c.StatusAsOf(today)), show)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCompliance(w http.ResponseWriter, r *http.Request) {
	var req ComplianceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	c, err := complianceFromRequest(req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !access.CanManageCompliance(actor(r), c.DepartmentID) {
		h.handleError(w, &hr.ForbiddenError{Action: "create compliance record"})
		return
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	if err := h.Store.CreateCompliance(r.Context(), c); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toComplianceDTO(c, string(c.StatusAsOf(dates.Today())), true))
}

func (h *Handler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCompliance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	show := access.CanViewSensitiveCompliance(actor(r), c.EmployeeID)
	writeJSON(w, http.StatusOK, toComplianceDTO(c, string(c.StatusAsOf(dates.Today())), show))
}

func (h *Handler) UpdateCompliance(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Store.GetCompliance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !access.CanManageCompliance(actor(r), existing.DepartmentID) {
		h.handleError(w, &hr.ForbiddenError{Action: "update compliance record"})
		return
	}
	var req ComplianceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	c, err := complianceFromRequest(req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	c.ID = existing.ID
	c.VerifiedBy = existing.VerifiedBy
	c.VerifiedAt = existing.VerifiedAt
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()

	if err := h.Store.UpdateCompliance(r.Context(), c); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toComplianceDTO(c, string(c.StatusAsOf(dates.Today())), true))
}

func (h *Handler) DeleteCompliance(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Store.GetCompliance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !access.CanManageCompliance(actor(r), existing.DepartmentID) {
		h.handleError(w, &hr.ForbiddenError{Action: "delete compliance record"})
		return
	}
	if err := h.Store.DeleteCompliance(r.Context(), existing.ID); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func complianceFromRequest(req ComplianceRequest) (hr.ComplianceRecord, error) {
	if req.LicenseType == "" {
		return hr.ComplianceRecord{}, &hr.ValidationError{Field: "license_type", Message: "required"}
	}
	if req.EmployeeID == "" && req.DepartmentID == "" {
		return hr.ComplianceRecord{}, &hr.ValidationError{
			Field: "employee_id", Message: "an employee or department is required",
		}
	}
	issue, err := parseDate("issue_date", req.IssueDate)
	if err != nil {
		return hr.ComplianceRecord{}, err
	}
	expiry, err := parseDate("expiration_date", req.ExpirationDate)
	if err != nil {
		return hr.ComplianceRecord{}, err
	}
	if expiry.Before(issue) {
		return hr.ComplianceRecord{}, &hr.ValidationError{
			Field: "expiration_date", Message: "expiration before issue date",
		}
	}
	return hr.ComplianceRecord{
		EmployeeID:     req.EmployeeID,
		DepartmentID:   req.DepartmentID,
		LicenseType:    req.LicenseType,
		LicenseNumber:  req.LicenseNumber,
		IssueDate:      issue,
		ExpirationDate: expiry,
		HIPAASensitive: req.HIPAASensitive,
	}, nil
}

// =============================================================================
// USER HANDLERS
// =============================================================================

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageUsers(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "list users"})
		return
	}
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageUsers(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "create user"})
		return
	}
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		h.handleError(w, &hr.ValidationError{Field: "email", Message: "email and password are required"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.handleError(w, err)
		return
	}
	u := hr.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         access.NormalizeRole(req.Role),
		EmployeeID:   req.EmployeeID,
		DepartmentID: req.DepartmentID,
		CreatedAt:    time.Now(),
	}
	if err := h.Store.CreateUser(r.Context(), u); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageUsers(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "update user"})
		return
	}
	u, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			h.handleError(w, err)
			return
		}
		u.PasswordHash = hash
	}
	if req.Role != "" {
		u.Role = access.NormalizeRole(req.Role)
	}
	u.EmployeeID = req.EmployeeID
	u.DepartmentID = req.DepartmentID

	if err := h.Store.UpdateUser(r.Context(), u); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !access.CanManageUsers(actor(r)) {
		h.handleError(w, &hr.ForbiddenError{Action: "delete user"})
		return
	}
	if err := h.Store.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
