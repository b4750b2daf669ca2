package timesheet

// =============================================================================
// PERIOD - The visible date range of one timesheet
// =============================================================================

// Period is the contiguous date range a timesheet covers. Periods are
// backend-declared and not necessarily Monday-start.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewWeekPeriod returns the 7-day period starting at the given day.
func NewWeekPeriod(start TimePoint) Period {
	return Period{Start: start, End: start.AddDays(6)}
}

// Contains returns true if the day is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Valid reports whether the period is well-formed.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.BeforeOrEqual(p.End)
}

// Length returns the number of days in the period, inclusive.
func (p Period) Length() int {
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns all days in the period in ascending order.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// DayKeys returns the ordered ISO keys for all days in the period.
func (p Period) DayKeys() []DayKey {
	days := p.Days()
	keys := make([]DayKey, len(days))
	for i, d := range days {
		keys[i] = d.Key()
	}
	return keys
}

// Next returns the period immediately after this one, same length.
func (p Period) Next() Period {
	length := p.Length()
	start := p.End.AddDays(1)
	return Period{Start: start, End: start.AddDays(length - 1)}
}

// Previous returns the period immediately before this one, same length.
func (p Period) Previous() Period {
	length := p.Length()
	end := p.Start.AddDays(-1)
	return Period{Start: end.AddDays(-(length - 1)), End: end}
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// SCHEDULE - How periods are laid out for an employee
// =============================================================================

type ScheduleType string

const (
	// ScheduleWeekly is the fixed 7-day period layout.
	ScheduleWeekly ScheduleType = "weekly"
	// ScheduleDeclared uses a backend-declared period length in days.
	ScheduleDeclared ScheduleType = "declared"
)

// Schedule determines the period containing an arbitrary date and the length
// used when paging to neighboring periods.
type Schedule struct {
	Type ScheduleType

	// Anchor is a known period start; period boundaries repeat every Length
	// days from it.
	Anchor TimePoint

	// LengthDays applies to ScheduleDeclared; ignored for weekly.
	LengthDays int
}

// WeeklySchedule returns a 7-day schedule anchored at the given period start.
func WeeklySchedule(anchor TimePoint) Schedule {
	return Schedule{Type: ScheduleWeekly, Anchor: anchor, LengthDays: 7}
}

// Length returns the period length in days for this schedule.
func (s Schedule) Length() int {
	if s.Type == ScheduleWeekly || s.LengthDays <= 0 {
		return 7
	}
	return s.LengthDays
}

// PeriodFor returns the period containing the given date.
func (s Schedule) PeriodFor(date TimePoint) Period {
	length := s.Length()
	offset := DaysBetween(s.Anchor, date)
	// Floor division so dates before the anchor land in earlier periods.
	idx := offset / length
	if offset < 0 && offset%length != 0 {
		idx--
	}
	start := s.Anchor.AddDays(idx * length)
	return Period{Start: start, End: start.AddDays(length - 1)}
}
