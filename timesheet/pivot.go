/*
pivot.go - Task rows by date columns cross tabulation

PURPOSE:
  Builds the pivot table the UI renders below the day editor: one row per
  distinct group key in the item map, two fixed rows for holiday and absence
  overlay, one column per period date plus a trailing total column, and a
  trailing total row. Row totals, column totals and the grand total must
  always agree.

CELL FORMATTING:
  Cells are hours with two-decimal precision, trailing zeros stripped,
  rendered blank when zero (Amount.FormatHours).
*/
package timesheet

// RowKind distinguishes task rows from the fixed overlay rows.
type RowKind string

const (
	RowTask    RowKind = "task"
	RowHoliday RowKind = "holiday"
	RowAbsence RowKind = "absence"
)

// PivotRow is one row of the cross tabulation. Cells align with
// PivotTable.Dates; Total is the trailing row total.
type PivotRow struct {
	Kind  RowKind
	Key   GroupKey // empty for overlay rows
	Label string
	Cells []Amount
	Total Amount
}

// PivotTable is the full cross tabulation for the open period.
type PivotTable struct {
	Dates        []TimePoint
	Rows         []PivotRow
	ColumnTotals []Amount // aligns with Dates
	GrandTotal   Amount
}

// PivotTable builds the cross tabulation from current state. Pure read.
func (e *Engine) PivotTable() PivotTable {
	dates := e.period.Days()
	table := PivotTable{Dates: dates}

	// Task rows in first-encounter order walking the period's days
	// (buckets are kept sorted by group key, so this is deterministic).
	rowIndex := make(map[GroupKey]int)
	for ci, date := range dates {
		for _, item := range e.items[date.Key()] {
			gk := item.GroupKey()
			ri, ok := rowIndex[gk]
			if !ok {
				ri = len(table.Rows)
				rowIndex[gk] = ri
				table.Rows = append(table.Rows, newPivotRow(RowTask, gk, item.RowLabel(), len(dates)))
			}
			table.Rows[ri].Cells[ci] = table.Rows[ri].Cells[ci].Add(item.ActualTime)
		}
	}

	// Fixed overlay rows, always present.
	holidayRow := newPivotRow(RowHoliday, "", "holiday", len(dates))
	absenceRow := newPivotRow(RowAbsence, "", "absence", len(dates))
	for ci, date := range dates {
		if day, ok := e.overlay[date.Key()]; ok {
			if day.IsHoliday {
				holidayRow.Cells[ci] = holidayRow.Cells[ci].Add(e.dailyStdHours)
			}
			if day.IsAbsence {
				absenceRow.Cells[ci] = absenceRow.Cells[ci].Add(day.AbsenceHours)
			}
		}
	}
	table.Rows = append(table.Rows, holidayRow, absenceRow)

	// Row totals, column totals, grand total.
	table.ColumnTotals = make([]Amount, len(dates))
	for i := range table.ColumnTotals {
		table.ColumnTotals[i] = ZeroHours()
	}
	table.GrandTotal = ZeroHours()
	for ri := range table.Rows {
		rowTotal := ZeroHours()
		for ci, cell := range table.Rows[ri].Cells {
			rowTotal = rowTotal.Add(cell)
			table.ColumnTotals[ci] = table.ColumnTotals[ci].Add(cell)
		}
		table.Rows[ri].Total = rowTotal
		table.GrandTotal = table.GrandTotal.Add(rowTotal)
	}
	return table
}

func newPivotRow(kind RowKind, key GroupKey, label string, columns int) PivotRow {
	cells := make([]Amount, columns)
	for i := range cells {
		cells[i] = ZeroHours()
	}
	return PivotRow{Kind: kind, Key: key, Label: label, Cells: cells, Total: ZeroHours()}
}

// Formatted renders the table as display strings: one slice per row
// (label, cells..., total), followed by the trailing total row. Zero cells
// render blank; totals always render, even when zero.
func (t PivotTable) Formatted() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	for _, row := range t.Rows {
		line := make([]string, 0, len(row.Cells)+2)
		line = append(line, row.Label)
		for _, cell := range row.Cells {
			line = append(line, cell.FormatHours())
		}
		line = append(line, formatTotal(row.Total))
		out = append(out, line)
	}
	totalLine := make([]string, 0, len(t.ColumnTotals)+2)
	totalLine = append(totalLine, "total")
	for _, col := range t.ColumnTotals {
		totalLine = append(totalLine, col.FormatHours())
	}
	totalLine = append(totalLine, formatTotal(t.GrandTotal))
	return append(out, totalLine)
}

func formatTotal(a Amount) string {
	if s := a.FormatHours(); s != "" {
		return s
	}
	return "0"
}
