package timesheet_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/timesheet-engine/timesheet"
)

func TestPeriod_NextPreviousAreInverse(t *testing.T) {
	p := week2026()
	assert.True(t, p.Next().Previous().Start.Equal(p.Start))
	assert.True(t, p.Previous().Next().End.Equal(p.End))
	assert.Equal(t, 7, p.Next().Length())
}

func TestPeriod_DaysAreContiguous(t *testing.T) {
	p := week2026()
	days := p.Days()
	assert.Len(t, days, 7)
	for i := 1; i < len(days); i++ {
		assert.Equal(t, 1, timesheet.DaysBetween(days[i-1], days[i]))
	}
}

func TestSchedule_PeriodForContainsDate(t *testing.T) {
	anchor := timesheet.NewTimePoint(2026, time.March, 2)

	tests := []struct {
		name     string
		schedule timesheet.Schedule
		date     timesheet.TimePoint
		wantLen  int
	}{
		{"weekly, date inside anchor week", timesheet.WeeklySchedule(anchor), day(2026, time.March, 5), 7},
		{"weekly, date before anchor", timesheet.WeeklySchedule(anchor), day(2026, time.February, 27), 7},
		{"declared 14-day", timesheet.Schedule{Type: timesheet.ScheduleDeclared, Anchor: anchor, LengthDays: 14}, day(2026, time.March, 20), 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.schedule.PeriodFor(tt.date)
			assert.True(t, p.Contains(tt.date), "period %s must contain %s", p, tt.date)
			assert.Equal(t, tt.wantLen, p.Length())
			// Boundaries repeat from the anchor.
			offset := timesheet.DaysBetween(tt.schedule.Anchor, p.Start)
			assert.Zero(t, offset%tt.schedule.Length())
		})
	}
}

func TestSchedule_AdjacentPeriodsTile(t *testing.T) {
	// Paging by the period's own length never skips or overlaps days.
	s := timesheet.Schedule{Type: timesheet.ScheduleDeclared, Anchor: timesheet.NewTimePoint(2026, time.January, 1), LengthDays: 10}
	p := s.PeriodFor(day(2026, time.February, 3))
	next := p.Next()
	assert.Equal(t, 1, timesheet.DaysBetween(p.End, next.Start))
	assert.True(t, s.PeriodFor(next.Start).Start.Equal(next.Start))
}
