/*
calendar.go - Calendar overlay resolution

PURPOSE:
  Classifies every date of a period as weekend/holiday/absence/plain and
  computes the overlay duration each date contributes to the per-day totals.
  The overlay is derived once per period from three external inputs and is
  never mutated by item edits.

INPUTS (from the employee profile collaborator):
  - Work pattern: weekday -> standard hours; weekdays with no positive
    standard-hours entry in any active pattern are non-working
  - Holiday list: sorted ascending by date
  - Absence records: sorted ascending by start date, each carrying per-day
    hour splits

LOOKUP:
  Holiday and absence lists are assumed sorted; the sub-range overlapping the
  period is found with binary search and then scanned linearly, O(log n + k).

OVERLAY DURATION:
  holiday       -> employee daily standard hours (no per-holiday override)
  absence       -> sum of in-range per-day splits (multiple records may
                   contribute to one date)
  weekend       -> zero; the flag is a marker only
  holiday + absence on the same date are additive; weekend never doubles.
*/
package timesheet

import (
	"sort"
	"time"
)

// =============================================================================
// PROFILE INPUTS
// =============================================================================

// WorkPattern declares an employee's standard hours per weekday. A pattern
// can be inactive (superseded) and is then ignored.
type WorkPattern struct {
	ID     string
	Active bool
	// StandardHours maps weekday -> contracted hours for that weekday.
	StandardHours map[time.Weekday]Amount
}

// Holiday is one public-holiday date, sorted input.
type Holiday struct {
	Date TimePoint
	Name string
}

// AbsenceSplit is one per-day hour contribution inside an absence record.
type AbsenceSplit struct {
	Date  TimePoint
	Hours Amount
}

// AbsenceRecord is one approved absence, possibly spanning several days.
// Records are sorted ascending by Start.
type AbsenceRecord struct {
	ID       string
	Start    TimePoint
	End      TimePoint
	Reason   string
	TypeName string
	Splits   []AbsenceSplit
}

// =============================================================================
// CALENDAR DAY - Derived, read-only classification per date
// =============================================================================

type CalendarDay struct {
	Date TimePoint

	IsWeekend bool

	IsHoliday   bool
	HolidayName string

	IsAbsence       bool
	AbsenceReason   string
	AbsenceTypeName string
	AbsenceHours    Amount
}

// OverlayHours is the duration this date contributes to per-day totals on
// top of user-entered items. Weekend contributes nothing.
func (d CalendarDay) OverlayHours(dailyStdHours Amount) Amount {
	total := ZeroHours()
	if d.IsHoliday {
		total = total.Add(dailyStdHours)
	}
	if d.IsAbsence {
		total = total.Add(d.AbsenceHours)
	}
	return total
}

// OverlayMap is the read-only per-date classification for one period.
type OverlayMap map[DayKey]CalendarDay

// =============================================================================
// RESOLVER
// =============================================================================

// NonWorkingWeekdays derives the weekend pattern from the active work
// patterns: a weekday is non-working when no active pattern grants it
// positive standard hours.
func NonWorkingWeekdays(patterns []WorkPattern) map[time.Weekday]bool {
	working := make(map[time.Weekday]bool)
	for _, p := range patterns {
		if !p.Active {
			continue
		}
		for wd, hours := range p.StandardHours {
			if hours.IsPositive() {
				working[wd] = true
			}
		}
	}
	nonWorking := make(map[time.Weekday]bool, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if !working[wd] {
			nonWorking[wd] = true
		}
	}
	return nonWorking
}

// ResolveOverlay builds the CalendarDay classification for every date of the
// period. Holidays and absences are assumed sorted ascending by date.
func ResolveOverlay(period Period, patterns []WorkPattern, holidays []Holiday, absences []AbsenceRecord) OverlayMap {
	overlay := make(OverlayMap, period.Length())
	nonWorking := NonWorkingWeekdays(patterns)

	for _, day := range period.Days() {
		overlay[day.Key()] = CalendarDay{
			Date:         day,
			IsWeekend:    nonWorking[day.Weekday()],
			AbsenceHours: ZeroHours(),
		}
	}

	applyHolidays(overlay, period, holidays)
	applyAbsences(overlay, period, absences)
	return overlay
}

// holidaysInRange extracts the sorted sub-range overlapping the period:
// binary search for the first date >= period start, linear scan to the end.
func holidaysInRange(holidays []Holiday, period Period) []Holiday {
	lo := sort.Search(len(holidays), func(i int) bool {
		return holidays[i].Date.AfterOrEqual(period.Start)
	})
	hi := lo
	for hi < len(holidays) && holidays[hi].Date.BeforeOrEqual(period.End) {
		hi++
	}
	return holidays[lo:hi]
}

func applyHolidays(overlay OverlayMap, period Period, holidays []Holiday) {
	for _, h := range holidaysInRange(holidays, period) {
		key := h.Date.Key()
		day, ok := overlay[key]
		if !ok {
			continue
		}
		day.IsHoliday = true
		day.HolidayName = h.Name
		overlay[key] = day
	}
}

// absencesInRange extracts records whose [Start, End] overlaps the period.
// Records are sorted by Start; the scan stops at the first record starting
// after the period end.
func absencesInRange(absences []AbsenceRecord, period Period) []AbsenceRecord {
	hi := sort.Search(len(absences), func(i int) bool {
		return absences[i].Start.After(period.End)
	})
	var out []AbsenceRecord
	for _, a := range absences[:hi] {
		if a.End.AfterOrEqual(period.Start) {
			out = append(out, a)
		}
	}
	return out
}

func applyAbsences(overlay OverlayMap, period Period, absences []AbsenceRecord) {
	for _, rec := range absencesInRange(absences, period) {
		for _, split := range rec.Splits {
			if !period.Contains(split.Date) {
				continue
			}
			key := split.Date.Key()
			day, ok := overlay[key]
			if !ok {
				continue
			}
			day.IsAbsence = true
			// A single date may receive splits from multiple records; sum.
			day.AbsenceHours = day.AbsenceHours.Add(split.Hours)
			if day.AbsenceReason == "" {
				day.AbsenceReason = rec.Reason
			}
			if day.AbsenceTypeName == "" {
				day.AbsenceTypeName = rec.TypeName
			}
			overlay[key] = day
		}
	}
}
