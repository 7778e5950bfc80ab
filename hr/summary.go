/*
summary.go - Attendance-rate statistic

PURPOSE:
  The dashboard's attendance summary for one employee over a period. This
  is the ONE place weekends are excluded from a day count. Leave totals
  (dates.LeaveDays) and leave sync (dates.Range) both count weekends; the
  three semantics are intentionally different and must stay separate.
*/
package hr

import (
	"github.com/shopspring/decimal"

	"github.com/warp/hr-engine/dates"
)

// AttendanceSummary aggregates one employee's attendance over [From, To].
type AttendanceSummary struct {
	EmployeeID  string
	From        dates.Date
	To          dates.Date
	Workdays    int // weekdays in the period (Sat/Sun excluded)
	DaysPresent int // present, late, remote, half_day, or clocked in
	DaysOnLeave int // rows materialized by leave sync
	DaysAbsent  int
	// DaysPresent / Workdays as a percentage, 2 decimal places.
	AttendanceRate decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Summarize computes the summary from the employee's rows in the period.
// Rows outside [from, to] are ignored; weekend rows count toward
// DaysPresent/DaysOnLeave tallies but the rate denominator is workdays only.
func Summarize(employeeID string, rows []AttendanceRecord, from, to dates.Date) AttendanceSummary {
	s := AttendanceSummary{
		EmployeeID: employeeID,
		From:       from,
		To:         to,
		Workdays:   dates.WorkdaysBetween(from, to),
	}

	for _, r := range rows {
		if r.EmployeeID != employeeID || r.Day.Before(from) || r.Day.After(to) {
			continue
		}
		switch {
		case r.FromLeaveSync():
			s.DaysOnLeave++
		case r.Status == AttendanceAbsent:
			s.DaysAbsent++
		case r.TimeIn != nil,
			r.Status == AttendancePresent,
			r.Status == AttendanceLate,
			r.Status == AttendanceRemote,
			r.Status == AttendanceHalfDay:
			s.DaysPresent++
		}
	}

	if s.Workdays > 0 {
		s.AttendanceRate = decimal.NewFromInt(int64(s.DaysPresent)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(s.Workdays))).
			Round(2)
	}
	return s
}
