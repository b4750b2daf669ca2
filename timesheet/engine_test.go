package timesheet_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newEngine(t *testing.T, overlay timesheet.OverlayMap) *timesheet.Engine {
	t.Helper()
	e, err := timesheet.NewEngine(week2026(), nil, overlay, timesheet.Hours(8), nil)
	require.NoError(t, err)
	return e
}

func workItem(id, taskID string, date timesheet.TimePoint, hours float64) timesheet.WorkItem {
	return timesheet.WorkItem{
		ID:         id,
		Date:       date,
		Identity:   timesheet.TaskIdentity{CustomerID: "c1", ProjectID: "p1", TaskID: taskID, DepartmentID: "d1"},
		TaskName:   taskID,
		Billable:   true,
		ActualTime: timesheet.Hours(hours),
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

func TestEngine_CreateOrUpdate_InsertsAndRecomputes(t *testing.T) {
	e := newEngine(t, nil)
	mon := day(2026, time.March, 2)

	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", mon, 2)))

	items := e.DayItems(mon)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsDirty)
	assert.True(t, e.Totals().TotalWorkTime.Equal(timesheet.Hours(2)))
}

func TestEngine_CreateOrUpdate_RejectsDuplicateSlot(t *testing.T) {
	// GIVEN: An existing item at (Monday, t1)
	// WHEN: A different item targets the same slot
	// THEN: DuplicateItemError, and the map is unchanged

	e := newEngine(t, nil)
	mon := day(2026, time.March, 2)
	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", mon, 2)))

	err := e.CreateOrUpdateItem(workItem("i2", "t1", mon, 5))
	require.Error(t, err)
	assert.ErrorIs(t, err, timesheet.ErrDuplicateItem)

	var dup *timesheet.DuplicateItemError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "i1", dup.ExistingID)

	items := e.DayItems(mon)
	require.Len(t, items, 1)
	assert.True(t, items[0].ActualTime.Equal(timesheet.Hours(2)))
}

func TestEngine_CreateOrUpdate_SameItemMayEditItsOwnSlot(t *testing.T) {
	// Editing the occupant itself is an update, not a duplicate.
	e := newEngine(t, nil)
	mon := day(2026, time.March, 2)
	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", mon, 2)))
	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", mon, 6)))

	items := e.DayItems(mon)
	require.Len(t, items, 1)
	assert.True(t, items[0].ActualTime.Equal(timesheet.Hours(6)))
}

func TestEngine_CreateOrUpdate_MovingAnItemFreesItsOldSlot(t *testing.T) {
	// An edit that changes the date removes the old occurrence.
	e := newEngine(t, nil)
	mon, tue := day(2026, time.March, 2), day(2026, time.March, 3)
	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", mon, 2)))

	moved := workItem("i1", "t1", tue, 2)
	require.NoError(t, e.CreateOrUpdateItem(moved))

	assert.Empty(t, e.DayItems(mon))
	require.Len(t, e.DayItems(tue), 1)
}

func TestEngine_CreateOrUpdate_RejectsDateOutsidePeriod(t *testing.T) {
	e := newEngine(t, nil)
	err := e.CreateOrUpdateItem(workItem("i1", "t1", day(2026, time.April, 1), 2))
	assert.ErrorIs(t, err, timesheet.ErrDateOutsidePeriod)
	assert.True(t, e.Totals().TotalWorkTime.IsZero())
}

func TestEngine_CreateOrUpdate_RejectsEmptyIdentity(t *testing.T) {
	e := newEngine(t, nil)
	item := timesheet.WorkItem{ID: "i1", Date: day(2026, time.March, 2), ActualTime: timesheet.Hours(1)}
	assert.ErrorIs(t, e.CreateOrUpdateItem(item), timesheet.ErrMissingIdentity)
}

func TestEngine_DeleteItem_RemovesEmptyDateKey(t *testing.T) {
	// GIVEN: The last item on a date
	// WHEN: Deleting it, then deleting again
	// THEN: The date key disappears; the second delete is a no-op

	e := newEngine(t, nil)
	mon := day(2026, time.March, 2)
	item := workItem("i1", "t1", mon, 2)
	require.NoError(t, e.CreateOrUpdateItem(item))

	e.DeleteItem(mon, item.GroupKey())
	assert.Empty(t, e.DayItems(mon))
	_, present := e.Items()[mon.Key()]
	assert.False(t, present, "empty date key must be removed, map stays sparse")

	// No-op, no panic, no error path.
	e.DeleteItem(mon, item.GroupKey())
	assert.Empty(t, e.DayItems(mon))
}

// =============================================================================
// AGGREGATES
// =============================================================================

func TestEngine_Recompute_TwoItemsSameDate(t *testing.T) {
	// Example scenario: groupKeys A and B on one date, 2h and 3h, no overlays.
	e := newEngine(t, nil)
	mon := day(2026, time.March, 2)
	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "A", mon, 2)))
	require.NoError(t, e.CreateOrUpdateItem(workItem("i2", "B", mon, 3)))

	totals := e.Totals()
	assert.True(t, totals.PerDayTotal[mon.Key()].Equal(timesheet.Hours(5)))
	assert.True(t, totals.TotalWorkTime.Equal(timesheet.Hours(5)))

	pivot := e.PivotTable()
	taskRows := 0
	for _, row := range pivot.Rows {
		if row.Kind == timesheet.RowTask {
			taskRows++
		}
	}
	assert.Equal(t, 2, taskRows)
	assert.True(t, pivot.GrandTotal.Equal(timesheet.Hours(5)))
}

func TestEngine_Recompute_HolidayWithNoItems(t *testing.T) {
	// Example scenario: Wednesday is a holiday, dailyStdHours = 8h, no items.
	wed := day(2026, time.March, 4)
	overlay := timesheet.ResolveOverlay(week2026(), standardPattern(),
		[]timesheet.Holiday{{Date: wed}}, nil)
	e := newEngine(t, overlay)

	totals := e.Totals()
	assert.True(t, totals.PerDayTotal[wed.Key()].Equal(timesheet.Hours(8)))
	assert.True(t, totals.TotalWorkTime.IsZero())
	assert.True(t, totals.TimesheetTotalTime.Equal(timesheet.Hours(8)))
}

func TestEngine_Recompute_OverlayAdditivity(t *testing.T) {
	// Property: holiday + absence on one date sum before items; adding an
	// item adds exactly its actual time on top.

	tue := day(2026, time.March, 3)
	overlay := timesheet.ResolveOverlay(week2026(), standardPattern(),
		[]timesheet.Holiday{{Date: tue, Name: "Bridge day"}},
		[]timesheet.AbsenceRecord{{
			ID: "abs-1", Start: tue, End: tue, Reason: "sick",
			Splits: []timesheet.AbsenceSplit{{Date: tue, Hours: timesheet.Hours(4)}},
		}})
	e := newEngine(t, overlay)

	assert.True(t, e.Totals().PerDayTotal[tue.Key()].Equal(timesheet.Hours(12)),
		"dailyStdHours + absenceHours expected")

	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", tue, 1.5)))
	assert.True(t, e.Totals().PerDayTotal[tue.Key()].Equal(timesheet.Hours(13.5)))
}

func TestEngine_Recompute_BillableAndOvertimeSplits(t *testing.T) {
	e := newEngine(t, nil)
	mon := day(2026, time.March, 2)

	billable := workItem("i1", "t1", mon, 3)
	nonBillable := workItem("i2", "t2", mon, 2)
	nonBillable.Billable = false
	overtime := workItem("i3", "t3", mon, 1)
	overtime.Identity.TimeTypeID = "ot-50"

	require.NoError(t, e.CreateOrUpdateItem(billable))
	require.NoError(t, e.CreateOrUpdateItem(nonBillable))
	require.NoError(t, e.CreateOrUpdateItem(overtime))

	totals := e.Totals()
	assert.True(t, totals.TotalWorkTime.Equal(timesheet.Hours(6)))
	assert.True(t, totals.BillableTime.Equal(timesheet.Hours(4)), "billable + overtime items are billable")
	assert.True(t, totals.OverTime.Equal(timesheet.Hours(1)))
}

func TestEngine_Recompute_OrderIndependent(t *testing.T) {
	// Property: inserting the same final item set in any permutation yields
	// identical aggregates.

	mon, tue, fri := day(2026, time.March, 2), day(2026, time.March, 3), day(2026, time.March, 6)
	base := []timesheet.WorkItem{
		workItem("i1", "t1", mon, 1.25),
		workItem("i2", "t2", mon, 2.5),
		workItem("i3", "t1", tue, 3),
		workItem("i4", "t3", fri, 0.75),
	}

	reference := newEngine(t, nil)
	for _, it := range base {
		require.NoError(t, reference.CreateOrUpdateItem(it))
	}
	want := reference.Totals()

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		perm := rng.Perm(len(base))
		e := newEngine(t, nil)
		for _, idx := range perm {
			require.NoError(t, e.CreateOrUpdateItem(base[idx]))
		}
		got := e.Totals()
		assert.True(t, want.TotalWorkTime.Equal(got.TotalWorkTime))
		assert.True(t, want.BillableTime.Equal(got.BillableTime))
		assert.True(t, want.TimesheetTotalTime.Equal(got.TimesheetTotalTime))
		for key, amount := range want.PerDayTotal {
			assert.True(t, amount.Equal(got.PerDayTotal[key]), "per-day total for %s", key)
		}
	}
}

// =============================================================================
// DIRTY TRACKING
// =============================================================================

func TestEngine_DirtyTracking(t *testing.T) {
	e := newEngine(t, nil)
	mon := day(2026, time.March, 2)
	assert.False(t, e.HasDirtyItems())

	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", mon, 2)))
	assert.True(t, e.HasDirtyItems())

	e.MarkClean()
	assert.False(t, e.HasDirtyItems())

	// Deleting a clean item still dirties the sheet.
	e.DeleteItem(mon, timesheet.TaskIdentity{CustomerID: "c1", ProjectID: "p1", TaskID: "t1", DepartmentID: "d1"}.Key())
	assert.True(t, e.HasDirtyItems())
}
