/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts JSON schedule and work-pattern definitions into timesheet types.
  This enables per-tenant configuration without code changes - operations
  can declare period layouts and contracted weekdays in JSON, stored next
  to the employee records.

JSON SCHEMA:
  Schedule:
    {"type": "weekly", "anchor": "2026-01-05"}
    {"type": "declared", "anchor": "2026-01-01", "length_days": 14}

  Work pattern:
    {
      "id": "wp-standard",
      "active": true,
      "standard_hours": {"monday": 8, "tuesday": 8, ..., "friday": 8}
    }

KEY FEATURES:
  - Validates JSON structure
  - Sets sensible defaults (weekly, 8h Mon-Fri)
  - Rejects unknown weekday names instead of silently dropping them

SEE ALSO:
  - timesheet/period.go: Schedule type definition
  - timesheet/calendar.go: WorkPattern consumption
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a period schedule.
type ScheduleJSON struct {
	Type       string `json:"type"` // weekly, declared
	Anchor     string `json:"anchor"`
	LengthDays int    `json:"length_days,omitempty"`
}

// WorkPatternJSON is the JSON representation of a work pattern.
type WorkPatternJSON struct {
	ID            string             `json:"id"`
	Active        bool               `json:"active"`
	StandardHours map[string]float64 `json:"standard_hours"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// =============================================================================
// PARSERS
// =============================================================================

// ParseSchedule converts a JSON schedule definition into a timesheet.Schedule.
func ParseSchedule(data string) (timesheet.Schedule, error) {
	var raw ScheduleJSON
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return timesheet.Schedule{}, fmt.Errorf("parse schedule: %w", err)
	}

	anchor, err := time.Parse("2006-01-02", raw.Anchor)
	if err != nil {
		return timesheet.Schedule{}, fmt.Errorf("parse schedule anchor %q: %w", raw.Anchor, err)
	}
	anchorDay := timesheet.TruncateToDay(anchor)

	switch raw.Type {
	case "", "weekly":
		return timesheet.WeeklySchedule(anchorDay), nil
	case "declared":
		if raw.LengthDays < 1 {
			return timesheet.Schedule{}, fmt.Errorf("declared schedule needs length_days >= 1, got %d", raw.LengthDays)
		}
		return timesheet.Schedule{
			Type:       timesheet.ScheduleDeclared,
			Anchor:     anchorDay,
			LengthDays: raw.LengthDays,
		}, nil
	default:
		return timesheet.Schedule{}, fmt.Errorf("unknown schedule type %q", raw.Type)
	}
}

// ParseWorkPattern converts a JSON work-pattern definition into a
// timesheet.WorkPattern. Unknown weekday names are an error.
func ParseWorkPattern(data string) (timesheet.WorkPattern, error) {
	var raw WorkPatternJSON
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return timesheet.WorkPattern{}, fmt.Errorf("parse work pattern: %w", err)
	}
	if raw.ID == "" {
		return timesheet.WorkPattern{}, fmt.Errorf("work pattern needs an id")
	}

	pattern := timesheet.WorkPattern{
		ID:            raw.ID,
		Active:        raw.Active,
		StandardHours: make(map[time.Weekday]timesheet.Amount, len(raw.StandardHours)),
	}
	for name, hours := range raw.StandardHours {
		wd, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return timesheet.WorkPattern{}, fmt.Errorf("unknown weekday %q in work pattern %s", name, raw.ID)
		}
		pattern.StandardHours[wd] = timesheet.Hours(hours)
	}
	return pattern, nil
}

// =============================================================================
// PRESETS
// =============================================================================

// StandardWeekJSON returns a Mon-Fri pattern with the given daily hours.
func StandardWeekJSON(id string, dailyHours float64) string {
	pattern := WorkPatternJSON{
		ID:     id,
		Active: true,
		StandardHours: map[string]float64{
			"monday":    dailyHours,
			"tuesday":   dailyHours,
			"wednesday": dailyHours,
			"thursday":  dailyHours,
			"friday":    dailyHours,
		},
	}
	data, _ := json.Marshal(pattern)
	return string(data)
}

// WeeklyScheduleJSON returns a weekly schedule anchored at the given date.
func WeeklyScheduleJSON(anchor string) string {
	data, _ := json.Marshal(ScheduleJSON{Type: "weekly", Anchor: anchor})
	return string(data)
}
