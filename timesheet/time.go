package timesheet

import (
	"time"
)

// =============================================================================
// TIME POINT - Day-granularity calendar date
// =============================================================================

// TimePoint is a calendar day in the period-local frame. The engine indexes
// everything at day precision; backend timestamps are truncated on the way in
// and rebuilt as midnight-normalized times on the way out.
type TimePoint struct {
	Time time.Time
}

func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// TruncateToDay drops the time-of-day component of an arbitrary timestamp.
func TruncateToDay(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	now := time.Now()
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.Time.Format("2006-01-02") }

// Midnight returns the midnight-normalized timestamp for outbound sub-items
// that carry no explicit start/end.
func (tp TimePoint) Midnight() time.Time { return tp.normalize() }

func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// DAY KEY - ISO string key for the item map
// =============================================================================

// DayKey is the ISO-date string key used by ItemMap and the overlay map.
type DayKey string

func (tp TimePoint) Key() DayKey { return DayKey(tp.String()) }

// ParseDayKey parses an ISO day key back into a TimePoint.
func ParseDayKey(k DayKey) (TimePoint, error) {
	t, err := time.Parse("2006-01-02", string(k))
	if err != nil {
		return TimePoint{}, err
	}
	return TruncateToDay(t), nil
}
