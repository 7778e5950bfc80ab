package hr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/hr-engine/dates"
	"github.com/warp/hr-engine/hr"
)

func day(d int) dates.Date { return dates.New(2025, time.March, d) }

func rec(employeeID string, d dates.Date, status hr.AttendanceStatus) hr.AttendanceRecord {
	return hr.AttendanceRecord{ID: "rec-" + d.String(), EmployeeID: employeeID, Day: d, Status: status}
}

func TestSummarize_RateUsesWorkdayDenominator(t *testing.T) {
	// GIVEN: Mon-Sun week (5 workdays) with 4 present days logged
	// THEN: Rate is 4/5 = 80.00, not 4/7

	from, to := day(10), day(16) // Monday..Sunday
	rows := []hr.AttendanceRecord{
		rec("emp-1", day(10), hr.AttendancePresent),
		rec("emp-1", day(11), hr.AttendancePresent),
		rec("emp-1", day(12), hr.AttendanceLate),
		rec("emp-1", day(13), hr.AttendanceRemote),
		rec("emp-1", day(14), hr.AttendanceAbsent),
	}

	s := hr.Summarize("emp-1", rows, from, to)

	assert.Equal(t, 5, s.Workdays)
	assert.Equal(t, 4, s.DaysPresent)
	assert.Equal(t, 1, s.DaysAbsent)
	assert.Equal(t, "80.00", s.AttendanceRate.StringFixed(2))
}

func TestSummarize_LeaveSyncRowsCountAsOnLeave(t *testing.T) {
	// GIVEN: Two days materialized by leave sync and two manually present
	// THEN: Synced rows land in DaysOnLeave regardless of their status

	leaveID := "leave-1"
	synced := func(d dates.Date) hr.AttendanceRecord {
		r := rec("emp-1", d, hr.AttendanceVacation)
		r.SourceLeaveID = &leaveID
		return r
	}

	rows := []hr.AttendanceRecord{
		rec("emp-1", day(10), hr.AttendancePresent),
		rec("emp-1", day(11), hr.AttendancePresent),
		synced(day(12)),
		synced(day(13)),
	}

	s := hr.Summarize("emp-1", rows, day(10), day(14))
	assert.Equal(t, 2, s.DaysPresent)
	assert.Equal(t, 2, s.DaysOnLeave)
	assert.Equal(t, 0, s.DaysAbsent)
}

func TestSummarize_IgnoresRowsOutsidePeriodOrEmployee(t *testing.T) {
	rows := []hr.AttendanceRecord{
		rec("emp-1", day(9), hr.AttendancePresent),  // before period
		rec("emp-1", day(17), hr.AttendancePresent), // after period
		rec("emp-2", day(10), hr.AttendancePresent), // other employee
		rec("emp-1", day(10), hr.AttendancePresent),
	}

	s := hr.Summarize("emp-1", rows, day(10), day(16))
	assert.Equal(t, 1, s.DaysPresent)
}

func TestSummarize_ClockedInWithoutStatusCountsPresent(t *testing.T) {
	in := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	r := rec("emp-1", day(10), "")
	r.TimeIn = &in

	s := hr.Summarize("emp-1", []hr.AttendanceRecord{r}, day(10), day(10))
	assert.Equal(t, 1, s.DaysPresent)
}

func TestSummarize_ZeroWorkdays(t *testing.T) {
	// A weekend-only period must not divide by zero.
	s := hr.Summarize("emp-1", nil, day(8), day(9)) // Sat..Sun
	assert.Equal(t, 0, s.Workdays)
	assert.True(t, s.AttendanceRate.IsZero())
}

func TestAttendanceRecord_TotalHours(t *testing.T) {
	in := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	out := time.Date(2025, time.March, 10, 17, 30, 0, 0, time.UTC)

	r := hr.AttendanceRecord{TimeIn: &in, TimeOut: &out}
	assert.Equal(t, "08:30", r.TotalHours())

	assert.Equal(t, "", hr.AttendanceRecord{TimeIn: &in}.TotalHours())
	assert.Equal(t, "", hr.AttendanceRecord{TimeIn: &out, TimeOut: &in}.TotalHours(), "negative span")
}

func TestComplianceRecord_StatusAsOf(t *testing.T) {
	c := hr.ComplianceRecord{
		IssueDate:      day(10),
		ExpirationDate: day(20),
	}
	assert.Equal(t, hr.CompliancePending, c.StatusAsOf(day(9)))
	assert.Equal(t, hr.ComplianceValid, c.StatusAsOf(day(10)))
	assert.Equal(t, hr.ComplianceValid, c.StatusAsOf(day(20)))
	assert.Equal(t, hr.ComplianceExpired, c.StatusAsOf(day(21)))
}
