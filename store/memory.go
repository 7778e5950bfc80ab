// Package store provides an in-memory hr.TxStore for tests and dev.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/hr-engine/dates"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements hr.TxStore with plain maps. WithTx simulates a
// transaction by snapshotting state and restoring it when fn fails,
// matching the rollback semantics of the SQLite store.
type Memory struct {
	mu sync.RWMutex
	t  *tables
}

func NewMemory() *Memory {
	return &Memory{t: newTables()}
}

// tables holds the raw state. Its methods implement hr.Store without
// locking; Memory wraps them with the mutex, and WithTx hands the bare
// tables to fn while holding the write lock.
type tables struct {
	employees   map[string]hr.Employee
	departments map[string]hr.Department
	attendance  map[string]hr.AttendanceRecord // by row id
	attByKey    map[attKey]string              // (employee, day) -> row id
	leaves      map[string]hr.LeaveRequest
	compliance  map[string]hr.ComplianceRecord
	users       map[string]hr.User
}

type attKey struct {
	EmployeeID string
	Day        string // YYYY-MM-DD
}

func newTables() *tables {
	return &tables{
		employees:   make(map[string]hr.Employee),
		departments: make(map[string]hr.Department),
		attendance:  make(map[string]hr.AttendanceRecord),
		attByKey:    make(map[attKey]string),
		leaves:      make(map[string]hr.LeaveRequest),
		compliance:  make(map[string]hr.ComplianceRecord),
		users:       make(map[string]hr.User),
	}
}

// =============================================================================
// TRANSACTIONS - snapshot + rollback
// =============================================================================

func (m *Memory) WithTx(_ context.Context, fn func(hr.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.t.clone()
	if err := fn(m.t); err != nil {
		m.t = snapshot
		return err
	}
	return nil
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.employees {
		c.employees[k] = v
	}
	for k, v := range t.departments {
		c.departments[k] = v
	}
	for k, v := range t.attendance {
		c.attendance[k] = v
	}
	for k, v := range t.attByKey {
		c.attByKey[k] = v
	}
	for k, v := range t.leaves {
		c.leaves[k] = v
	}
	for k, v := range t.compliance {
		c.compliance[k] = v
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	return c
}

func orID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (t *tables) CreateEmployee(_ context.Context, e hr.Employee) error {
	e.ID = orID(e.ID)
	e.CreatedAt = orNow(e.CreatedAt)
	t.employees[e.ID] = e
	return nil
}

func (t *tables) GetEmployee(_ context.Context, id string) (hr.Employee, error) {
	e, ok := t.employees[id]
	if !ok {
		return hr.Employee{}, &hr.NotFoundError{Entity: "employee", ID: id}
	}
	return e, nil
}

func (t *tables) ListEmployees(_ context.Context, departmentID string) ([]hr.Employee, error) {
	var out []hr.Employee
	for _, e := range t.employees {
		if departmentID != "" && e.DepartmentID != departmentID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].LastName) < strings.ToLower(out[j].LastName)
	})
	return out, nil
}

func (t *tables) UpdateEmployee(_ context.Context, e hr.Employee) error {
	if _, ok := t.employees[e.ID]; !ok {
		return &hr.NotFoundError{Entity: "employee", ID: e.ID}
	}
	t.employees[e.ID] = e
	return nil
}

func (t *tables) DeleteEmployee(_ context.Context, id string) error {
	if _, ok := t.employees[id]; !ok {
		return &hr.NotFoundError{Entity: "employee", ID: id}
	}
	for _, e := range t.employees {
		if e.ManagerID == id {
			return &hr.DependentsExistError{Entity: "employee", ID: id, Dependents: "subordinates"}
		}
	}
	for _, lr := range t.leaves {
		if lr.EmployeeID == id {
			return &hr.DependentsExistError{Entity: "employee", ID: id, Dependents: "leave requests"}
		}
	}
	for _, a := range t.attendance {
		if a.EmployeeID == id {
			return &hr.DependentsExistError{Entity: "employee", ID: id, Dependents: "attendance records"}
		}
	}
	delete(t.employees, id)
	return nil
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func (t *tables) CreateDepartment(_ context.Context, d hr.Department) error {
	d.ID = orID(d.ID)
	d.CreatedAt = orNow(d.CreatedAt)
	t.departments[d.ID] = d
	return nil
}

func (t *tables) GetDepartment(_ context.Context, id string) (hr.Department, error) {
	d, ok := t.departments[id]
	if !ok {
		return hr.Department{}, &hr.NotFoundError{Entity: "department", ID: id}
	}
	return d, nil
}

func (t *tables) ListDepartments(_ context.Context) ([]hr.Department, error) {
	var out []hr.Department
	for _, d := range t.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *tables) UpdateDepartment(_ context.Context, d hr.Department) error {
	if _, ok := t.departments[d.ID]; !ok {
		return &hr.NotFoundError{Entity: "department", ID: d.ID}
	}
	t.departments[d.ID] = d
	return nil
}

func (t *tables) DeleteDepartment(_ context.Context, id string) error {
	if _, ok := t.departments[id]; !ok {
		return &hr.NotFoundError{Entity: "department", ID: id}
	}
	for _, e := range t.employees {
		if e.DepartmentID == id {
			return &hr.DependentsExistError{Entity: "department", ID: id, Dependents: "employees"}
		}
	}
	delete(t.departments, id)
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (t *tables) GetAttendance(_ context.Context, id string) (hr.AttendanceRecord, error) {
	a, ok := t.attendance[id]
	if !ok {
		return hr.AttendanceRecord{}, &hr.NotFoundError{Entity: "attendance record", ID: id}
	}
	return a, nil
}

func (t *tables) FindAttendanceInRange(_ context.Context, employeeID string, from, to dates.Date) ([]hr.AttendanceRecord, error) {
	var out []hr.AttendanceRecord
	for _, a := range t.attendance {
		if a.EmployeeID == employeeID && a.Day.AfterOrEqual(from) && a.Day.BeforeOrEqual(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (t *tables) ListAttendance(_ context.Context, f hr.AttendanceFilter) ([]hr.AttendanceRecord, error) {
	var out []hr.AttendanceRecord
	for _, a := range t.attendance {
		if f.EmployeeID != "" && a.EmployeeID != f.EmployeeID {
			continue
		}
		if !f.From.IsZero() && a.Day.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && a.Day.After(f.To) {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// UpsertAttendance enforces the (employee, day) uniqueness invariant: an
// existing row is updated in place, keeping its id and creation time.
func (t *tables) UpsertAttendance(_ context.Context, rec hr.AttendanceRecord) (hr.AttendanceRecord, error) {
	k := attKey{EmployeeID: rec.EmployeeID, Day: rec.Day.String()}

	if existingID, ok := t.attByKey[k]; ok {
		existing := t.attendance[existingID]
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		rec.UpdatedAt = orNow(rec.UpdatedAt)
		t.attendance[rec.ID] = rec
		return rec, nil
	}

	rec.ID = orID(rec.ID)
	rec.CreatedAt = orNow(rec.CreatedAt)
	rec.UpdatedAt = orNow(rec.UpdatedAt)
	t.attendance[rec.ID] = rec
	t.attByKey[k] = rec.ID
	return rec, nil
}

func (t *tables) DeleteAttendanceForLeave(_ context.Context, leaveID, employeeID string, from, to dates.Date) (int, error) {
	removed := 0
	for id, a := range t.attendance {
		if a.EmployeeID != employeeID {
			continue
		}
		if a.Day.Before(from) || a.Day.After(to) {
			continue
		}
		if a.SourceLeaveID == nil || *a.SourceLeaveID != leaveID {
			continue
		}
		delete(t.attendance, id)
		delete(t.attByKey, attKey{EmployeeID: a.EmployeeID, Day: a.Day.String()})
		removed++
	}
	return removed, nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func (t *tables) CreateLeave(_ context.Context, lr hr.LeaveRequest) error {
	lr.ID = orID(lr.ID)
	lr.CreatedAt = orNow(lr.CreatedAt)
	t.leaves[lr.ID] = lr
	return nil
}

func (t *tables) GetLeave(_ context.Context, id string) (hr.LeaveRequest, error) {
	lr, ok := t.leaves[id]
	if !ok {
		return hr.LeaveRequest{}, &hr.NotFoundError{Entity: "leave request", ID: id}
	}
	return lr, nil
}

func (t *tables) UpdateLeave(_ context.Context, lr hr.LeaveRequest) error {
	if _, ok := t.leaves[lr.ID]; !ok {
		return &hr.NotFoundError{Entity: "leave request", ID: lr.ID}
	}
	t.leaves[lr.ID] = lr
	return nil
}

func (t *tables) DeleteLeave(_ context.Context, id string) error {
	if _, ok := t.leaves[id]; !ok {
		return &hr.NotFoundError{Entity: "leave request", ID: id}
	}
	delete(t.leaves, id)
	return nil
}

func (t *tables) FindLeaveByEmployee(_ context.Context, employeeID string, statuses []hr.LeaveStatus) ([]hr.LeaveRequest, error) {
	want := make(map[hr.LeaveStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []hr.LeaveRequest
	for _, lr := range t.leaves {
		if lr.EmployeeID != employeeID {
			continue
		}
		if len(want) > 0 && !want[lr.Status] {
			continue
		}
		out = append(out, lr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (t *tables) ListLeaveByStatus(_ context.Context, status hr.LeaveStatus, departmentID string) ([]hr.LeaveRequest, error) {
	var out []hr.LeaveRequest
	for _, lr := range t.leaves {
		if lr.Status != status {
			continue
		}
		if departmentID != "" {
			emp, ok := t.employees[lr.EmployeeID]
			if !ok || emp.DepartmentID != departmentID {
				continue
			}
		}
		out = append(out, lr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// =============================================================================
// COMPLIANCE
// =============================================================================

func (t *tables) CreateCompliance(_ context.Context, c hr.ComplianceRecord) error {
	c.ID = orID(c.ID)
	c.CreatedAt = orNow(c.CreatedAt)
	t.compliance[c.ID] = c
	return nil
}

func (t *tables) GetCompliance(_ context.Context, id string) (hr.ComplianceRecord, error) {
	c, ok := t.compliance[id]
	if !ok {
		return hr.ComplianceRecord{}, &hr.NotFoundError{Entity: "compliance record", ID: id}
	}
	return c, nil
}

func (t *tables) ListCompliance(_ context.Context, employeeID string) ([]hr.ComplianceRecord, error) {
	var out []hr.ComplianceRecord
	for _, c := range t.compliance {
		if employeeID != "" && c.EmployeeID != employeeID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpirationDate.Before(out[j].ExpirationDate) })
	return out, nil
}

func (t *tables) UpdateCompliance(_ context.Context, c hr.ComplianceRecord) error {
	if _, ok := t.compliance[c.ID]; !ok {
		return &hr.NotFoundError{Entity: "compliance record", ID: c.ID}
	}
	t.compliance[c.ID] = c
	return nil
}

func (t *tables) DeleteCompliance(_ context.Context, id string) error {
	if _, ok := t.compliance[id]; !ok {
		return &hr.NotFoundError{Entity: "compliance record", ID: id}
	}
	delete(t.compliance, id)
	return nil
}

// =============================================================================
// USERS
// =============================================================================

func (t *tables) CreateUser(_ context.Context, u hr.User) error {
	u.ID = orID(u.ID)
	u.CreatedAt = orNow(u.CreatedAt)
	t.users[u.ID] = u
	return nil
}

func (t *tables) GetUser(_ context.Context, id string) (hr.User, error) {
	u, ok := t.users[id]
	if !ok {
		return hr.User{}, &hr.NotFoundError{Entity: "user", ID: id}
	}
	return u, nil
}

func (t *tables) GetUserByEmail(_ context.Context, email string) (hr.User, error) {
	for _, u := range t.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return hr.User{}, &hr.NotFoundError{Entity: "user", ID: email}
}

func (t *tables) ListUsers(_ context.Context) ([]hr.User, error) {
	var out []hr.User
	for _, u := range t.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (t *tables) UpdateUser(_ context.Context, u hr.User) error {
	if _, ok := t.users[u.ID]; !ok {
		return &hr.NotFoundError{Entity: "user", ID: u.ID}
	}
	t.users[u.ID] = u
	return nil
}

func (t *tables) DeleteUser(_ context.Context, id string) error {
	if _, ok := t.users[id]; !ok {
		return &hr.NotFoundError{Entity: "user", ID: id}
	}
	delete(t.users, id)
	return nil
}

// =============================================================================
// LOCKED DELEGATION - Memory wraps tables with the mutex
// =============================================================================

func (m *Memory) read(fn func(*tables) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(m.t)
}

func (m *Memory) write(fn func(*tables) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.t)
}

func (m *Memory) CreateEmployee(ctx context.Context, e hr.Employee) error {
	return m.write(func(t *tables) error { return t.CreateEmployee(ctx, e) })
}

func (m *Memory) GetEmployee(ctx context.Context, id string) (e hr.Employee, err error) {
	err = m.read(func(t *tables) error { e, err = t.GetEmployee(ctx, id); return err })
	return e, err
}

func (m *Memory) ListEmployees(ctx context.Context, departmentID string) (out []hr.Employee, err error) {
	err = m.read(func(t *tables) error { out, err = t.ListEmployees(ctx, departmentID); return err })
	return out, err
}

func (m *Memory) UpdateEmployee(ctx context.Context, e hr.Employee) error {
	return m.write(func(t *tables) error { return t.UpdateEmployee(ctx, e) })
}

func (m *Memory) DeleteEmployee(ctx context.Context, id string) error {
	return m.write(func(t *tables) error { return t.DeleteEmployee(ctx, id) })
}

func (m *Memory) CreateDepartment(ctx context.Context, d hr.Department) error {
	return m.write(func(t *tables) error { return t.CreateDepartment(ctx, d) })
}

func (m *Memory) GetDepartment(ctx context.Context, id string) (d hr.Department, err error) {
	err = m.read(func(t *tables) error { d, err = t.GetDepartment(ctx, id); return err })
	return d, err
}

func (m *Memory) ListDepartments(ctx context.Context) (out []hr.Department, err error) {
	err = m.read(func(t *tables) error { out, err = t.ListDepartments(ctx); return err })
	return out, err
}

func (m *Memory) UpdateDepartment(ctx context.Context, d hr.Department) error {
	return m.write(func(t *tables) error { return t.UpdateDepartment(ctx, d) })
}

func (m *Memory) DeleteDepartment(ctx context.Context, id string) error {
	return m.write(func(t *tables) error { return t.DeleteDepartment(ctx, id) })
}

func (m *Memory) GetAttendance(ctx context.Context, id string) (a hr.AttendanceRecord, err error) {
	err = m.read(func(t *tables) error { a, err = t.GetAttendance(ctx, id); return err })
	return a, err
}

func (m *Memory) FindAttendanceInRange(ctx context.Context, employeeID string, from, to dates.Date) (out []hr.AttendanceRecord, err error) {
	err = m.read(func(t *tables) error {
		out, err = t.FindAttendanceInRange(ctx, employeeID, from, to)
		return err
	})
	return out, err
}

func (m *Memory) ListAttendance(ctx context.Context, f hr.AttendanceFilter) (out []hr.AttendanceRecord, err error) {
	err = m.read(func(t *tables) error { out, err = t.ListAttendance(ctx, f); return err })
	return out, err
}

func (m *Memory) UpsertAttendance(ctx context.Context, rec hr.AttendanceRecord) (out hr.AttendanceRecord, err error) {
	err = m.write(func(t *tables) error { out, err = t.UpsertAttendance(ctx, rec); return err })
	return out, err
}

func (m *Memory) DeleteAttendanceForLeave(ctx context.Context, leaveID, employeeID string, from, to dates.Date) (n int, err error) {
	err = m.write(func(t *tables) error {
		n, err = t.DeleteAttendanceForLeave(ctx, leaveID, employeeID, from, to)
		return err
	})
	return n, err
}

func (m *Memory) CreateLeave(ctx context.Context, lr hr.LeaveRequest) error {
	return m.write(func(t *tables) error { return t.CreateLeave(ctx, lr) })
}

func (m *Memory) GetLeave(ctx context.Context, id string) (lr hr.LeaveRequest, err error) {
	err = m.read(func(t *tables) error { lr, err = t.GetLeave(ctx, id); return err })
	return lr, err
}

func (m *Memory) UpdateLeave(ctx context.Context, lr hr.LeaveRequest) error {
	return m.write(func(t *tables) error { return t.UpdateLeave(ctx, lr) })
}

func (m *Memory) DeleteLeave(ctx context.Context, id string) error {
	return m.write(func(t *tables) error { return t.DeleteLeave(ctx, id) })
}

func (m *Memory) FindLeaveByEmployee(ctx context.Context, employeeID string, statuses []hr.LeaveStatus) (out []hr.LeaveRequest, err error) {
	err = m.read(func(t *tables) error {
		out, err = t.FindLeaveByEmployee(ctx, employeeID, statuses)
		return err
	})
	return out, err
}

func (m *Memory) ListLeaveByStatus(ctx context.Context, status hr.LeaveStatus, departmentID string) (out []hr.LeaveRequest, err error) {
	err = m.read(func(t *tables) error {
		out, err = t.ListLeaveByStatus(ctx, status, departmentID)
		return err
	})
	return out, err
}

func (m *Memory) CreateCompliance(ctx context.Context, c hr.ComplianceRecord) error {
	return m.write(func(t *tables) error { return t.CreateCompliance(ctx, c) })
}

func (m *Memory) GetCompliance(ctx context.Context, id string) (c hr.ComplianceRecord, err error) {
	err = m.read(func(t *tables) error { c, err = t.GetCompliance(ctx, id); return err })
	return c, err
}

func (m *Memory) ListCompliance(ctx context.Context, employeeID string) (out []hr.ComplianceRecord, err error) {
	err = m.read(func(t *tables) error { out, err = t.ListCompliance(ctx, employeeID); return err })
	return out, err
}

func (m *Memory) UpdateCompliance(ctx context.Context, c hr.ComplianceRecord) error {
	return m.write(func(t *tables) error { return t.UpdateCompliance(ctx, c) })
}

func (m *Memory) DeleteCompliance(ctx context.Context, id string) error {
	return m.write(func(t *tables) error { return t.DeleteCompliance(ctx, id) })
}

func (m *Memory) CreateUser(ctx context.Context, u hr.User) error {
	return m.write(func(t *tables) error { return t.CreateUser(ctx, u) })
}

func (m *Memory) GetUser(ctx context.Context, id string) (u hr.User, err error) {
	err = m.read(func(t *tables) error { u, err = t.GetUser(ctx, id); return err })
	return u, err
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (u hr.User, err error) {
	err = m.read(func(t *tables) error { u, err = t.GetUserByEmail(ctx, email); return err })
	return u, err
}

func (m *Memory) ListUsers(ctx context.Context) (out []hr.User, err error) {
	err = m.read(func(t *tables) error { out, err = t.ListUsers(ctx); return err })
	return out, err
}

func (m *Memory) UpdateUser(ctx context.Context, u hr.User) error {
	return m.write(func(t *tables) error { return t.UpdateUser(ctx, u) })
}

func (m *Memory) DeleteUser(ctx context.Context, id string) error {
	return m.write(func(t *tables) error { return t.DeleteUser(ctx, id) })
}

// Compile-time interface checks.
var (
	_ hr.Store   = (*tables)(nil)
	_ hr.TxStore = (*Memory)(nil)
)
