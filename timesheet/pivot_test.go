package timesheet_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/timesheet"
)

func TestPivotTable_ShapeAndFixedRows(t *testing.T) {
	// GIVEN: Items on two dates plus a holiday overlay
	// THEN: One column per period date, one row per group key, plus the
	//       fixed holiday and absence rows

	wed := day(2026, time.March, 4)
	overlay := timesheet.ResolveOverlay(week2026(), standardPattern(),
		[]timesheet.Holiday{{Date: wed, Name: "Founders Day"}}, nil)
	e := newEngine(t, overlay)
	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", day(2026, time.March, 2), 2)))
	require.NoError(t, e.CreateOrUpdateItem(workItem("i2", "t2", day(2026, time.March, 3), 3)))

	pivot := e.PivotTable()

	assert.Len(t, pivot.Dates, 7)
	require.Len(t, pivot.Rows, 4) // t1, t2, holiday, absence
	assert.Equal(t, timesheet.RowHoliday, pivot.Rows[2].Kind)
	assert.Equal(t, timesheet.RowAbsence, pivot.Rows[3].Kind)
	assert.True(t, pivot.Rows[2].Total.Equal(timesheet.Hours(8)))
	assert.True(t, pivot.Rows[3].Total.IsZero())
}

func TestPivotTable_CrossTabulationConsistency(t *testing.T) {
	// Property: sum(row totals) == sum(column totals) == grand total.

	tue := day(2026, time.March, 3)
	overlay := timesheet.ResolveOverlay(week2026(), standardPattern(),
		[]timesheet.Holiday{{Date: day(2026, time.March, 4)}},
		[]timesheet.AbsenceRecord{{
			ID: "abs-1", Start: tue, End: tue, Reason: "sick",
			Splits: []timesheet.AbsenceSplit{{Date: tue, Hours: timesheet.Hours(4)}},
		}})
	e := newEngine(t, overlay)
	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", day(2026, time.March, 2), 1.25)))
	require.NoError(t, e.CreateOrUpdateItem(workItem("i2", "t2", tue, 2.5)))
	require.NoError(t, e.CreateOrUpdateItem(workItem("i3", "t1", day(2026, time.March, 6), 3)))

	pivot := e.PivotTable()

	rowSum := timesheet.ZeroHours()
	for _, row := range pivot.Rows {
		rowSum = rowSum.Add(row.Total)
	}
	colSum := timesheet.ZeroHours()
	for _, col := range pivot.ColumnTotals {
		colSum = colSum.Add(col)
	}

	assert.True(t, rowSum.Equal(pivot.GrandTotal), "row totals %v vs grand %v", rowSum.Value, pivot.GrandTotal.Value)
	assert.True(t, colSum.Equal(pivot.GrandTotal), "column totals %v vs grand %v", colSum.Value, pivot.GrandTotal.Value)

	// Column totals must also agree with the engine's per-day totals.
	totals := e.Totals()
	for i, date := range pivot.Dates {
		assert.True(t, pivot.ColumnTotals[i].Equal(totals.PerDayTotal[date.Key()]),
			"column %s", date)
	}
}

func TestPivotTable_Formatted(t *testing.T) {
	// Cells render as hours, two decimals max, trailing zeros stripped,
	// blank when zero; the trailing total row always renders totals.

	e := newEngine(t, nil)
	mon := day(2026, time.March, 2)
	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "t1", mon, 7.5)))

	rows := e.PivotTable().Formatted()

	require.Len(t, rows, 4) // t1, holiday, absence, total
	taskRow := rows[0]
	assert.Equal(t, "7.5", taskRow[1], "Monday cell")
	assert.Equal(t, "", taskRow[2], "empty Tuesday renders blank")
	assert.Equal(t, "7.5", taskRow[len(taskRow)-1], "row total")

	totalRow := rows[len(rows)-1]
	assert.Equal(t, "total", totalRow[0])
	assert.Equal(t, "7.5", totalRow[len(totalRow)-1])
}

func TestPivotTable_RowOrderIsDeterministic(t *testing.T) {
	// Buckets are kept sorted by group key, so repeated builds agree.
	e := newEngine(t, nil)
	mon := day(2026, time.March, 2)
	require.NoError(t, e.CreateOrUpdateItem(workItem("i1", "zulu", mon, 1)))
	require.NoError(t, e.CreateOrUpdateItem(workItem("i2", "alpha", mon, 2)))

	first := e.PivotTable()
	second := e.PivotTable()
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].Key, second.Rows[i].Key)
	}
}
