package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/hr-engine/access"
	"github.com/warp/hr-engine/api"
	"github.com/warp/hr-engine/dates"
	"github.com/warp/hr-engine/hr"
	"github.com/warp/hr-engine/store"
)

// =============================================================================
// TEST SERVER
// =============================================================================

const testPassword = "s3cret-pw"

type env struct {
	router http.Handler
	store  *store.Memory

	hrToken    string
	mgrToken   string
	aliceToken string
}

// newEnv spins up the full router over a seeded in-memory store and logs
// each fixture user in for a real session token.
func newEnv(t *testing.T) *env {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.CreateDepartment(ctx, hr.Department{ID: "eng", Name: "Engineering"}))
	require.NoError(t, mem.CreateEmployee(ctx, hr.Employee{
		ID: "emp-alice", FirstName: "Alice", LastName: "Nguyen", DepartmentID: "eng",
		Status: hr.EmployeeActive, EmploymentType: hr.EmploymentFullTime,
		HireDate: dates.New(2023, time.January, 9),
	}))
	require.NoError(t, mem.CreateEmployee(ctx, hr.Employee{
		ID: "emp-mgr", FirstName: "Marco", LastName: "Diaz", DepartmentID: "eng",
		Status: hr.EmployeeActive, EmploymentType: hr.EmploymentFullTime,
		HireDate: dates.New(2020, time.June, 1),
	}))

	hash, err := api.HashPassword(testPassword)
	require.NoError(t, err)
	for _, u := range []hr.User{
		{ID: "u-hr", Email: "hr@example.com", PasswordHash: hash, Role: access.RoleHRManager},
		{ID: "u-mgr", Email: "marco@example.com", PasswordHash: hash, Role: access.RoleDepartmentManager, EmployeeID: "emp-mgr", DepartmentID: "eng"},
		{ID: "u-alice", Email: "alice@example.com", PasswordHash: hash, Role: access.RoleEmployee, EmployeeID: "emp-alice", DepartmentID: "eng"},
	} {
		require.NoError(t, mem.CreateUser(ctx, u))
	}

	auth := api.NewAuth("test-secret", time.Hour)
	h := api.NewHandler(mem, auth, zerolog.Nop())
	e := &env{router: api.NewRouter(h, []string{"*"}), store: mem}

	e.hrToken = e.login(t, "hr@example.com")
	e.mgrToken = e.login(t, "marco@example.com")
	e.aliceToken = e.login(t, "alice@example.com")
	return e
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) login(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": email, "password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// =============================================================================
// AUTH
// =============================================================================

func TestLogin_BadCredentialsAreUniform(t *testing.T) {
	// Unknown email and wrong password must be indistinguishable.
	e := newEnv(t)

	wrongPw := e.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "alice@example.com", "password": "nope",
	})
	unknown := e.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ghost@example.com", "password": testPassword,
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/employees", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/leaves", "garbage-token", nil).Code)
}

// =============================================================================
// LEAVE WORKFLOW END TO END
// =============================================================================

func TestLeaveWorkflow_CreateApproveObserveAttendance(t *testing.T) {
	// GIVEN: Alice logged in
	// WHEN: She files Mon-Sun vacation, her manager approves it
	// THEN: The attendance listing shows one synced row per calendar day

	e := newEnv(t)

	created := e.do(t, http.MethodPost, "/api/leaves", e.aliceToken, map[string]any{
		"leave_type": "vacation",
		"start_date": "2025-03-10",
		"end_date":   "2025-03-16",
		"reason":     "spring break",
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	lr := decode[map[string]any](t, created)
	leaveID := lr["id"].(string)
	assert.Equal(t, "pending", lr["status"])
	assert.Equal(t, "7", lr["total_days"])
	assert.Equal(t, "emp-alice", lr["employee_id"], "employee_id defaults to the actor")

	approved := e.do(t, http.MethodPut, "/api/leaves/"+leaveID+"/status", e.mgrToken, map[string]string{
		"status": "approved", "approver_notes": "enjoy",
	})
	require.Equal(t, http.StatusOK, approved.Code, approved.Body.String())
	body := decode[map[string]any](t, approved)
	assert.Equal(t, "approved", body["status"])
	assert.Equal(t, "Marco Diaz", body["approver_name"])

	listed := e.do(t, http.MethodGet,
		"/api/attendance?employee_id=emp-alice&from=2025-03-10&to=2025-03-16", e.aliceToken, nil)
	require.Equal(t, http.StatusOK, listed.Code)
	rows := decode[[]map[string]any](t, listed)
	require.Len(t, rows, 7)
	for _, r := range rows {
		assert.Equal(t, "vacation", r["status"])
		assert.Equal(t, leaveID, r["source_leave_id"])
		assert.Equal(t, "Vacation (Leave Request #"+leaveID+")", r["notes"])
	}
}

func TestLeaveWorkflow_OverlapReturns409WithDetails(t *testing.T) {
	e := newEnv(t)

	first := e.do(t, http.MethodPost, "/api/leaves", e.aliceToken, map[string]any{
		"leave_type": "vacation", "start_date": "2025-03-10", "end_date": "2025-03-14",
	})
	require.Equal(t, http.StatusCreated, first.Code)
	firstID := decode[map[string]any](t, first)["id"].(string)

	second := e.do(t, http.MethodPost, "/api/leaves", e.aliceToken, map[string]any{
		"leave_type": "sick", "start_date": "2025-03-14", "end_date": "2025-03-18",
	})
	require.Equal(t, http.StatusConflict, second.Code, second.Body.String())

	var resp struct {
		Code    string `json:"code"`
		Details struct {
			Kind   string           `json:"kind"`
			Leaves []map[string]any `json:"leaves"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "conflict", resp.Code)
	assert.Equal(t, "leave_overlap", resp.Details.Kind)
	require.Len(t, resp.Details.Leaves, 1)
	assert.Equal(t, firstID, resp.Details.Leaves[0]["id"])
}

func TestLeaveWorkflow_EmployeeCannotApprove(t *testing.T) {
	e := newEnv(t)

	created := e.do(t, http.MethodPost, "/api/leaves", e.aliceToken, map[string]any{
		"leave_type": "vacation", "start_date": "2025-03-10", "end_date": "2025-03-12",
	})
	require.Equal(t, http.StatusCreated, created.Code)
	leaveID := decode[map[string]any](t, created)["id"].(string)

	w := e.do(t, http.MethodPut, "/api/leaves/"+leaveID+"/status", e.aliceToken, map[string]string{
		"status": "approved",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPendingQueue_ManagerScoped(t *testing.T) {
	e := newEnv(t)

	created := e.do(t, http.MethodPost, "/api/leaves", e.aliceToken, map[string]any{
		"leave_type": "personal", "start_date": "2025-03-10", "end_date": "2025-03-10",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	queue := e.do(t, http.MethodGet, "/api/leaves/pending", e.mgrToken, nil)
	require.Equal(t, http.StatusOK, queue.Code)
	assert.Len(t, decode[[]map[string]any](t, queue), 1)

	denied := e.do(t, http.MethodGet, "/api/leaves/pending", e.aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestLogAttendance_UpsertsPerDay(t *testing.T) {
	// Logging the same day twice rewrites the row instead of duplicating it.
	e := newEnv(t)

	first := e.do(t, http.MethodPost, "/api/attendance", e.aliceToken, map[string]any{
		"employee_id": "emp-alice", "date": "2025-03-10",
		"time_in": "2025-03-10T09:00:00Z",
	})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	firstRow := decode[map[string]any](t, first)
	assert.Equal(t, "present", firstRow["status"], "status defaults to present")

	second := e.do(t, http.MethodPost, "/api/attendance", e.aliceToken, map[string]any{
		"employee_id": "emp-alice", "date": "2025-03-10",
		"time_in": "2025-03-10T09:00:00Z", "time_out": "2025-03-10T17:30:00Z",
	})
	require.Equal(t, http.StatusOK, second.Code)
	secondRow := decode[map[string]any](t, second)

	assert.Equal(t, firstRow["id"], secondRow["id"])
	assert.Equal(t, "08:30", secondRow["total_hours"])
}

func TestAttendanceSummary(t *testing.T) {
	e := newEnv(t)

	for _, day := range []string{"2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13"} {
		w := e.do(t, http.MethodPost, "/api/attendance", e.aliceToken, map[string]any{
			"employee_id": "emp-alice", "date": day, "status": "present",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := e.do(t, http.MethodGet,
		"/api/attendance/summary?employee_id=emp-alice&from=2025-03-10&to=2025-03-16", e.mgrToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	s := decode[map[string]any](t, w)
	assert.Equal(t, float64(5), s["workdays"])
	assert.Equal(t, float64(4), s["days_present"])
	assert.Equal(t, "80.00", s["attendance_rate"])
}

// =============================================================================
// ACCESS AND ERRORS
// =============================================================================

func TestEmployeeManagement_RoleGates(t *testing.T) {
	e := newEnv(t)

	body := map[string]any{
		"first_name": "New", "last_name": "Hire", "hire_date": "2025-03-01", "department_id": "eng",
	}

	denied := e.do(t, http.MethodPost, "/api/employees", e.aliceToken, body)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	created := e.do(t, http.MethodPost, "/api/employees", e.hrToken, body)
	assert.Equal(t, http.StatusCreated, created.Code, created.Body.String())
}

func TestGetEmployee_NotFound(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/employees/nope", e.hrToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEmployee_BlockedByDependents(t *testing.T) {
	e := newEnv(t)

	created := e.do(t, http.MethodPost, "/api/leaves", e.aliceToken, map[string]any{
		"leave_type": "vacation", "start_date": "2025-03-10", "end_date": "2025-03-12",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	w := e.do(t, http.MethodDelete, "/api/employees/emp-alice", e.hrToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

// =============================================================================
// COMPLIANCE REDACTION
// =============================================================================

func TestCompliance_LicenseNumberRedactedByRole(t *testing.T) {
	// GIVEN: A HIPAA-flagged record created by HR
	// THEN: HR reads the license number, the department manager does not

	e := newEnv(t)

	created := e.do(t, http.MethodPost, "/api/compliance", e.hrToken, map[string]any{
		"employee_id":     "emp-alice",
		"license_type":    "RN License",
		"license_number":  "RN-12345",
		"issue_date":      "2024-01-01",
		"expiration_date": "2099-01-01",
		"hipaa_sensitive": true,
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	rec := decode[map[string]any](t, created)
	id := rec["id"].(string)
	assert.Equal(t, "valid", rec["status"])

	full := decode[map[string]any](t, e.do(t, http.MethodGet, "/api/compliance/"+id, e.hrToken, nil))
	assert.Equal(t, "RN-12345", full["license_number"])

	redacted := decode[map[string]any](t, e.do(t, http.MethodGet, "/api/compliance/"+id, e.mgrToken, nil))
	_, present := redacted["license_number"]
	assert.False(t, present, "license_number must be omitted for this role")
}

func TestCompliance_ValidationAndRoleGates(t *testing.T) {
	e := newEnv(t)

	noTarget := e.do(t, http.MethodPost, "/api/compliance", e.hrToken, map[string]any{
		"license_type": "CPR", "issue_date": "2024-01-01", "expiration_date": "2025-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, noTarget.Code)

	badRange := e.do(t, http.MethodPost, "/api/compliance", e.hrToken, map[string]any{
		"employee_id": "emp-alice", "license_type": "CPR",
		"issue_date": "2025-01-01", "expiration_date": "2024-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, badRange.Code)

	denied := e.do(t, http.MethodPost, "/api/compliance", e.aliceToken, map[string]any{
		"employee_id": "emp-alice", "license_type": "CPR",
		"issue_date": "2024-01-01", "expiration_date": "2025-01-01",
	})
	assert.Equal(t, http.StatusForbidden, denied.Code)
}

// =============================================================================
// USERS
// =============================================================================

func TestUserManagement_HRCreatesAndNewUserLogsIn(t *testing.T) {
	e := newEnv(t)

	created := e.do(t, http.MethodPost, "/api/users", e.hrToken, map[string]any{
		"email": "new@example.com", "password": "fresh-pw", "role": "manager",
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	u := decode[map[string]any](t, created)
	assert.Equal(t, "department_manager", u["role"], "role strings are normalized")

	login := e.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "new@example.com", "password": "fresh-pw",
	})
	assert.Equal(t, http.StatusOK, login.Code)

	denied := e.do(t, http.MethodGet, "/api/users", e.aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)
}
