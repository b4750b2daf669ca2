package timesheet_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// monFri2026 is Mon 2026-03-02 .. Fri 2026-03-06 wrapped in a full week
// period Mon..Sun.
func week2026() timesheet.Period {
	return timesheet.NewWeekPeriod(timesheet.NewTimePoint(2026, time.March, 2))
}

func standardPattern() []timesheet.WorkPattern {
	return []timesheet.WorkPattern{{
		ID:     "wp-1",
		Active: true,
		StandardHours: map[time.Weekday]timesheet.Amount{
			time.Monday:    timesheet.Hours(8),
			time.Tuesday:   timesheet.Hours(8),
			time.Wednesday: timesheet.Hours(8),
			time.Thursday:  timesheet.Hours(8),
			time.Friday:    timesheet.Hours(8),
		},
	}}
}

func day(y int, m time.Month, d int) timesheet.TimePoint {
	return timesheet.NewTimePoint(y, m, d)
}

// =============================================================================
// WEEKEND DERIVATION
// =============================================================================

func TestNonWorkingWeekdays_DerivedFromActivePatterns(t *testing.T) {
	// GIVEN: An active Mon-Fri pattern and an inactive pattern granting Saturday
	// WHEN: Deriving the non-working weekdays
	// THEN: Only Saturday and Sunday are non-working; the inactive pattern is ignored

	patterns := append(standardPattern(), timesheet.WorkPattern{
		ID:     "wp-old",
		Active: false,
		StandardHours: map[time.Weekday]timesheet.Amount{
			time.Saturday: timesheet.Hours(4),
		},
	})

	nonWorking := timesheet.NonWorkingWeekdays(patterns)
	assert.True(t, nonWorking[time.Saturday])
	assert.True(t, nonWorking[time.Sunday])
	assert.False(t, nonWorking[time.Monday])
	assert.False(t, nonWorking[time.Friday])
}

func TestNonWorkingWeekdays_ZeroHoursEntryIsNonWorking(t *testing.T) {
	// A weekday listed with zero standard hours is still non-working.
	patterns := []timesheet.WorkPattern{{
		ID:     "wp-1",
		Active: true,
		StandardHours: map[time.Weekday]timesheet.Amount{
			time.Monday: timesheet.Hours(8),
			time.Friday: timesheet.Hours(0),
		},
	}}
	nonWorking := timesheet.NonWorkingWeekdays(patterns)
	assert.False(t, nonWorking[time.Monday])
	assert.True(t, nonWorking[time.Friday])
}

// =============================================================================
// OVERLAY RESOLUTION
// =============================================================================

func TestResolveOverlay_ClassifiesEveryPeriodDate(t *testing.T) {
	period := week2026()
	overlay := timesheet.ResolveOverlay(period, standardPattern(), nil, nil)

	require.Len(t, overlay, 7)
	sat := overlay[day(2026, time.March, 7).Key()]
	assert.True(t, sat.IsWeekend)
	assert.False(t, sat.IsHoliday)
	mon := overlay[day(2026, time.March, 2).Key()]
	assert.False(t, mon.IsWeekend)
}

func TestResolveOverlay_HolidayLookupUsesSortedSubRange(t *testing.T) {
	// GIVEN: A sorted holiday list spanning several years
	// WHEN: Resolving a single week
	// THEN: Only in-range holidays are applied

	holidays := []timesheet.Holiday{
		{Date: day(2025, time.December, 25), Name: "Christmas"},
		{Date: day(2026, time.January, 1), Name: "New Year"},
		{Date: day(2026, time.March, 4), Name: "Founders Day"},
		{Date: day(2026, time.December, 25), Name: "Christmas"},
	}
	overlay := timesheet.ResolveOverlay(week2026(), standardPattern(), holidays, nil)

	wed := overlay[day(2026, time.March, 4).Key()]
	assert.True(t, wed.IsHoliday)
	assert.Equal(t, "Founders Day", wed.HolidayName)

	for key, d := range overlay {
		if key != day(2026, time.March, 4).Key() {
			assert.False(t, d.IsHoliday, "unexpected holiday on %s", key)
		}
	}
}

func TestResolveOverlay_AbsenceSplitsSummedPerDate(t *testing.T) {
	// GIVEN: Two absence records contributing splits to the same Tuesday
	// THEN: The date's absence hours are the sum of both contributions

	tue := day(2026, time.March, 3)
	absences := []timesheet.AbsenceRecord{
		{
			ID: "abs-1", Start: tue, End: tue, Reason: "sick", TypeName: "Sick leave",
			Splits: []timesheet.AbsenceSplit{{Date: tue, Hours: timesheet.Hours(4)}},
		},
		{
			ID: "abs-2", Start: tue, End: day(2026, time.March, 10), Reason: "therapy", TypeName: "Medical",
			Splits: []timesheet.AbsenceSplit{
				{Date: tue, Hours: timesheet.Hours(2)},
				// Outside the period: must not leak in.
				{Date: day(2026, time.March, 10), Hours: timesheet.Hours(8)},
			},
		},
	}
	overlay := timesheet.ResolveOverlay(week2026(), standardPattern(), nil, absences)

	d := overlay[tue.Key()]
	assert.True(t, d.IsAbsence)
	assert.True(t, d.AbsenceHours.Equal(timesheet.Hours(6)), "got %v", d.AbsenceHours.Value)
	assert.Equal(t, "sick", d.AbsenceReason)
}

func TestResolveOverlay_WeekendHolidayAbsenceFlagsAreIndependent(t *testing.T) {
	// GIVEN: A Saturday that is also a holiday with an absence split
	// THEN: All three flags are set; overlay duration is holiday + absence
	//       only, weekend contributes no duration

	sat := day(2026, time.March, 7)
	holidays := []timesheet.Holiday{{Date: sat, Name: "Carnival"}}
	absences := []timesheet.AbsenceRecord{{
		ID: "abs-1", Start: sat, End: sat, Reason: "trip", TypeName: "Vacation",
		Splits: []timesheet.AbsenceSplit{{Date: sat, Hours: timesheet.Hours(3)}},
	}}
	overlay := timesheet.ResolveOverlay(week2026(), standardPattern(), holidays, absences)

	d := overlay[sat.Key()]
	assert.True(t, d.IsWeekend)
	assert.True(t, d.IsHoliday)
	assert.True(t, d.IsAbsence)

	// 8h holiday + 3h absence; weekend marker adds nothing.
	assert.True(t, d.OverlayHours(timesheet.Hours(8)).Equal(timesheet.Hours(11)),
		"got %v", d.OverlayHours(timesheet.Hours(8)).Value)
}

func TestResolveOverlay_AbsenceSpanningPeriodStartIsIncluded(t *testing.T) {
	// A record starting before the period but ending inside it contributes
	// its in-range splits.
	mon := day(2026, time.March, 2)
	absences := []timesheet.AbsenceRecord{{
		ID: "abs-1", Start: day(2026, time.February, 26), End: mon,
		Reason: "flu", TypeName: "Sick leave",
		Splits: []timesheet.AbsenceSplit{
			{Date: day(2026, time.February, 27), Hours: timesheet.Hours(8)},
			{Date: mon, Hours: timesheet.Hours(8)},
		},
	}}
	overlay := timesheet.ResolveOverlay(week2026(), standardPattern(), nil, absences)

	d := overlay[mon.Key()]
	assert.True(t, d.IsAbsence)
	assert.True(t, d.AbsenceHours.Equal(timesheet.Hours(8)))
}
