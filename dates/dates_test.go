package dates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/hr-engine/dates"
)

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

func TestDate_Normalization(t *testing.T) {
	// GIVEN: The same calendar day constructed three different ways
	// THEN: All three compare equal

	fromNew := dates.New(2025, time.July, 4)
	fromTime := dates.FromTime(time.Date(2025, time.July, 4, 17, 45, 12, 0, time.UTC))
	fromParse, err := dates.Parse("2025-07-04")
	require.NoError(t, err)

	assert.True(t, fromNew.Equal(fromTime))
	assert.True(t, fromNew.Equal(fromParse))
	assert.Equal(t, "2025-07-04", fromNew.String())
}

func TestDate_Parse_Invalid(t *testing.T) {
	_, err := dates.Parse("07/04/2025")
	assert.Error(t, err)

	_, err = dates.Parse("")
	assert.Error(t, err)
}

func TestDate_Comparisons(t *testing.T) {
	a := dates.New(2025, time.March, 10)
	b := dates.New(2025, time.March, 11)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
}

func TestDate_IsWeekend(t *testing.T) {
	// 2025-03-08 is a Saturday, 2025-03-09 a Sunday, 2025-03-10 a Monday.
	assert.True(t, dates.New(2025, time.March, 8).IsWeekend())
	assert.True(t, dates.New(2025, time.March, 9).IsWeekend())
	assert.False(t, dates.New(2025, time.March, 10).IsWeekend())
}

// =============================================================================
// RANGES
// =============================================================================

func TestRange_IncludesWeekends(t *testing.T) {
	// GIVEN: Monday through the following Sunday
	// WHEN: Expanding the range
	// THEN: All seven days appear, Saturday and Sunday included

	start := dates.New(2025, time.March, 10) // Monday
	end := dates.New(2025, time.March, 16)   // Sunday

	days := dates.Range(start, end)
	require.Len(t, days, 7)
	assert.True(t, days[0].Equal(start))
	assert.True(t, days[6].Equal(end))
	assert.True(t, days[5].IsWeekend(), "Saturday must be in the range")
}

func TestRange_SingleDay(t *testing.T) {
	d := dates.New(2025, time.March, 10)
	days := dates.Range(d, d)
	require.Len(t, days, 1)
	assert.True(t, days[0].Equal(d))
}

func TestRange_EndBeforeStart(t *testing.T) {
	days := dates.Range(dates.New(2025, time.March, 11), dates.New(2025, time.March, 10))
	assert.Nil(t, days)
}

func TestCalendarDays(t *testing.T) {
	start := dates.New(2025, time.March, 10)
	assert.Equal(t, 1, dates.CalendarDays(start, start))
	assert.Equal(t, 7, dates.CalendarDays(start, start.AddDays(6)))
	assert.Equal(t, 0, dates.CalendarDays(start, start.AddDays(-1)))
}

// =============================================================================
// LEAVE DAY TOTALS
// =============================================================================

func TestLeaveDays_FullDays(t *testing.T) {
	// GIVEN: A Monday-Friday request with no half days
	// THEN: 5 days, not 4.999...

	start := dates.New(2025, time.March, 10)
	end := dates.New(2025, time.March, 14)

	total := dates.LeaveDays(start, end, false, false)
	assert.Equal(t, "5", total.String())
}

func TestLeaveDays_HalfDays(t *testing.T) {
	start := dates.New(2025, time.March, 10)
	end := dates.New(2025, time.March, 14)

	assert.Equal(t, "4.5", dates.LeaveDays(start, end, true, false).String())
	assert.Equal(t, "4.5", dates.LeaveDays(start, end, false, true).String())
	assert.Equal(t, "4", dates.LeaveDays(start, end, true, true).String())
}

func TestLeaveDays_WeekendsCount(t *testing.T) {
	// GIVEN: Monday through the following Sunday (7 calendar days)
	// THEN: The total is 7 - leave totals never exclude weekends

	start := dates.New(2025, time.March, 10)
	end := dates.New(2025, time.March, 16)

	assert.Equal(t, "7", dates.LeaveDays(start, end, false, false).String())
}

func TestLeaveDays_SingleDay(t *testing.T) {
	d := dates.New(2025, time.March, 10)
	assert.Equal(t, "1", dates.LeaveDays(d, d, false, false).String())
	assert.Equal(t, "0.5", dates.LeaveDays(d, d, true, false).String())
}

// =============================================================================
// WORKDAY COUNTING
// =============================================================================

func TestWorkdaysBetween_ExcludesWeekends(t *testing.T) {
	// GIVEN: Monday through the following Sunday
	// THEN: 5 workdays - the one place weekends are excluded

	start := dates.New(2025, time.March, 10)
	end := dates.New(2025, time.March, 16)

	assert.Equal(t, 5, dates.WorkdaysBetween(start, end))
}

func TestWorkdaysBetween_WeekendOnly(t *testing.T) {
	sat := dates.New(2025, time.March, 8)
	sun := dates.New(2025, time.March, 9)
	assert.Equal(t, 0, dates.WorkdaysBetween(sat, sun))
}

func TestWorkdaysBetween_DisagreesWithLeaveDays(t *testing.T) {
	// The two counters are intentionally different semantics for the same
	// interval; this pins the divergence down.
	start := dates.New(2025, time.March, 10)
	end := dates.New(2025, time.March, 23) // two full weeks

	assert.Equal(t, 10, dates.WorkdaysBetween(start, end))
	assert.Equal(t, "14", dates.LeaveDays(start, end, false, false).String())
}

// =============================================================================
// INTERVAL OVERLAP
// =============================================================================

func TestOverlaps(t *testing.T) {
	d := func(day int) dates.Date { return dates.New(2025, time.March, day) }

	tests := []struct {
		name                   string
		aStart, aEnd           int
		bStart, bEnd           int
		want                   bool
	}{
		{"identical", 10, 12, 10, 12, true},
		{"contained", 10, 20, 12, 14, true},
		{"partial front", 10, 12, 11, 15, true},
		{"partial back", 11, 15, 10, 12, true},
		{"touching end boundary", 10, 12, 12, 14, true},
		{"touching start boundary", 12, 14, 10, 12, true},
		{"adjacent, no shared day", 10, 11, 12, 13, false},
		{"disjoint", 1, 5, 20, 25, false},
		{"single day inside", 10, 20, 15, 15, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dates.Overlaps(d(tt.aStart), d(tt.aEnd), d(tt.bStart), d(tt.bEnd))
			assert.Equal(t, tt.want, got)
		})
	}
}
