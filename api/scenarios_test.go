package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/api"
	"github.com/warp/timesheet-engine/store/sqlite"
	"github.com/warp/timesheet-engine/timesheet"
)

func newScenarioFixture(t *testing.T) (*sqlite.Store, *api.ScenarioManager, timesheet.Schedule) {
	t.Helper()
	store, err := sqlite.New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	schedule := timesheet.WeeklySchedule(timesheet.NewTimePoint(2026, time.January, 5))
	return store, api.NewScenarioManager(store, schedule, nil), schedule
}

func openScenarioSession(t *testing.T, store *sqlite.Store, schedule timesheet.Schedule) *timesheet.Session {
	t.Helper()
	sess, err := timesheet.OpenSession(context.Background(), timesheet.SessionConfig{
		EmployeeID: "emp-demo",
		Schedule:   schedule,
		API:        store,
		Profile:    store,
	})
	require.NoError(t, err)
	return sess
}

func TestLoadScenario_UnknownName(t *testing.T) {
	_, mgr, _ := newScenarioFixture(t)
	err := mgr.Load(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, api.ErrUnknownScenario)
}

func TestLoadScenario_Empty(t *testing.T) {
	store, mgr, schedule := newScenarioFixture(t)
	require.NoError(t, mgr.Load(context.Background(), "empty"))

	sess := openScenarioSession(t, store, schedule)
	assert.True(t, sess.Aggregates().TotalWorkTime.IsZero())
	assert.False(t, sess.HasUnsavedChanges())

	// The work pattern survived the store round trip: weekend derived.
	sat := sess.Period().Start.AddDays(5)
	day, ok := sess.OverlayDay(sat)
	require.True(t, ok)
	assert.True(t, day.IsWeekend)
}

func TestLoadScenario_StandardWeek(t *testing.T) {
	// GIVEN the standard-week scenario
	store, mgr, schedule := newScenarioFixture(t)
	require.NoError(t, mgr.Load(context.Background(), "standard-week"))

	// WHEN opening the demo employee's current period
	sess := openScenarioSession(t, store, schedule)

	// THEN the saved entries, holiday and absence all came back
	totals := sess.Aggregates()
	assert.True(t, totals.TotalWorkTime.Equal(timesheet.Hours(16)), "6+8+2 entered hours")

	holiday, ok := sess.OverlayDay(sess.Period().Start.AddDays(2))
	require.True(t, ok)
	assert.True(t, holiday.IsHoliday)
	assert.Equal(t, "Founders Day", holiday.HolidayName)

	absence, ok := sess.OverlayDay(sess.Period().Start.AddDays(3))
	require.True(t, ok)
	assert.True(t, absence.IsAbsence)
	assert.True(t, absence.AbsenceHours.Equal(timesheet.Hours(4)))

	// Loaded state is clean until the user edits.
	assert.False(t, sess.HasUnsavedChanges())
}

func TestLoadScenario_OvertimeSplitsByTimeType(t *testing.T) {
	store, mgr, schedule := newScenarioFixture(t)
	require.NoError(t, mgr.Load(context.Background(), "overtime-heavy"))

	sess := openScenarioSession(t, store, schedule)
	totals := sess.Aggregates()
	assert.True(t, totals.TotalWorkTime.Equal(timesheet.Hours(18.5)))
	assert.True(t, totals.OverTime.Equal(timesheet.Hours(2.5)))

	// The overtime row is a distinct group on the shared task.
	day2 := sess.DayItems(sess.Period().Start.AddDays(1))
	require.Len(t, day2, 2)
}

func TestLoadScenario_ReloadResetsPreviousData(t *testing.T) {
	store, mgr, schedule := newScenarioFixture(t)
	require.NoError(t, mgr.Load(context.Background(), "standard-week"))
	require.NoError(t, mgr.Load(context.Background(), "empty"))

	sess := openScenarioSession(t, store, schedule)
	assert.True(t, sess.Aggregates().TotalWorkTime.IsZero())
}
