/*
Package dates provides the pure date arithmetic used by the leave and
attendance subsystems.

PURPOSE:
  All leave/attendance date math lives here: inclusive day ranges, interval
  overlap, leave-day totals with half-day support, and workday counting.
  Every function is pure - no clocks, no hidden state.

THREE DISTINCT DAY-COUNT SEMANTICS (do not unify):
  1. LeaveDays:      ALL calendar days inclusive, minus 0.5 per half-day flag.
                     Used for leave request totals. Weekends COUNT.
  2. WorkdaysBetween: calendar days inclusive, excluding Saturday/Sunday.
                     Used only by the attendance-rate summary.
  3. Range:          every calendar day inclusive, weekends included.
                     Used by the attendance sync engine - an approved leave
                     materializes a row for Saturday and Sunday too.

  These intentionally disagree with each other. Leave totals and attendance
  rates were defined independently by the business and are kept that way.

PRECISION:
  Leave totals use decimal.Decimal so that 4.5 days is exactly 4.5, never
  4.499999. Same library and reasoning as the resource Amount type.

SEE ALSO:
  - leave/conflict.go: uses Overlaps for the leave-overlap check
  - leave/sync.go:     uses Range to materialize attendance rows
*/
package dates

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - A calendar day, normalized to midnight UTC
// =============================================================================

// Date is a calendar day. The wrapped time is always midnight UTC, so two
// Dates on the same calendar day compare equal regardless of how they were
// constructed.
type Date struct {
	t time.Time
}

func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates any timestamp to its calendar day.
func FromTime(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return FromTime(t), nil
}

func Today() Date {
	return FromTime(time.Now())
}

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

// Arithmetic
func (d Date) AddDays(n int) Date { return FromTime(d.t.AddDate(0, 0, n)) }

// Properties
func (d Date) Time() time.Time       { return d.t }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// RANGE - Inclusive day sequences
// =============================================================================

// Range returns every calendar day from start to end, inclusive of both
// endpoints. Weekends are included. Returns nil if end precedes start.
func Range(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}
	var days []Date
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// CalendarDays counts days from start to end inclusive. Weekends count.
func CalendarDays(start, end Date) int {
	if end.Before(start) {
		return 0
	}
	return int(end.t.Sub(start.t).Hours()/24) + 1
}

// =============================================================================
// LEAVE DAY TOTALS - calendar days with half-day flags
// =============================================================================

var half = decimal.NewFromFloat(0.5)

// LeaveDays computes the total-days figure stored on a leave request:
// all calendar days inclusive, minus 0.5 for a half first day and 0.5 for a
// half last day. Weekends are NOT excluded here - that is the attendance
// summary's semantics, not leave's.
func LeaveDays(start, end Date, halfFirstDay, halfLastDay bool) decimal.Decimal {
	if end.Before(start) {
		return decimal.Zero
	}
	total := decimal.NewFromInt(int64(CalendarDays(start, end)))
	if halfFirstDay {
		total = total.Sub(half)
	}
	if halfLastDay {
		total = total.Sub(half)
	}
	return total
}

// =============================================================================
// WORKDAY COUNTING - attendance summary only
// =============================================================================

// WorkdaysBetween counts days from start to end inclusive, excluding
// Saturdays and Sundays. Used by the attendance-rate summary and nowhere
// else - leave totals deliberately use LeaveDays instead.
func WorkdaysBetween(start, end Date) int {
	if end.Before(start) {
		return 0
	}
	n := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if !d.IsWeekend() {
			n++
		}
	}
	return n
}

// =============================================================================
// INTERVAL OVERLAP
// =============================================================================

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share at least
// one day. Bounds are inclusive: two intervals overlap iff
// aStart <= bEnd && aEnd >= bStart.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.BeforeOrEqual(bEnd) && aEnd.AfterOrEqual(bStart)
}
