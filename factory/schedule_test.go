package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/timesheet"
)

func TestParseSchedule_Weekly(t *testing.T) {
	s, err := ParseSchedule(`{"type": "weekly", "anchor": "2026-01-05"}`)
	require.NoError(t, err)
	assert.Equal(t, timesheet.ScheduleWeekly, s.Type)
	assert.Equal(t, 7, s.Length())
	assert.True(t, s.Anchor.Equal(timesheet.NewTimePoint(2026, time.January, 5)))
}

func TestParseSchedule_Declared(t *testing.T) {
	s, err := ParseSchedule(`{"type": "declared", "anchor": "2026-01-01", "length_days": 14}`)
	require.NoError(t, err)
	assert.Equal(t, 14, s.Length())
}

func TestParseSchedule_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad anchor", `{"type": "weekly", "anchor": "Jan 5"}`},
		{"unknown type", `{"type": "lunar", "anchor": "2026-01-05"}`},
		{"declared without length", `{"type": "declared", "anchor": "2026-01-05"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchedule(tt.json)
			assert.Error(t, err)
		})
	}
}

func TestParseWorkPattern_RoundTripsPreset(t *testing.T) {
	pattern, err := ParseWorkPattern(StandardWeekJSON("wp-1", 7.5))
	require.NoError(t, err)
	assert.Equal(t, "wp-1", pattern.ID)
	assert.True(t, pattern.Active)
	assert.True(t, pattern.StandardHours[time.Monday].Equal(timesheet.Hours(7.5)))
	_, hasSaturday := pattern.StandardHours[time.Saturday]
	assert.False(t, hasSaturday)
}

func TestParseWorkPattern_RejectsUnknownWeekday(t *testing.T) {
	_, err := ParseWorkPattern(`{"id": "wp-1", "active": true, "standard_hours": {"moonday": 8}}`)
	assert.Error(t, err)
}
