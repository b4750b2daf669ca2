/*
Package timesheet provides the timesheet reconciliation and aggregation engine.

PURPOSE:
  This package contains the types and algorithms for editing one timesheet
  period interactively: merging backend task groups with calendar overlays
  (weekends, holidays, approved absences), maintaining a date-indexed working
  set of items, and recomputing duration aggregates after every mutation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 8 hours), decimal-backed
  - WorkItem: One time/quantity entry for a task identity on a date
  - TaskGroup: Backend-shaped grouping of dated sub-items
  - GroupKey: Stable identity used to detect same-task entries
  - ItemMap: The date-indexed working set the UI edits

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so duration sums never drift
  2. Exhaustive recomputation: Aggregates are rebuilt, never patched
  3. Type Safety: Strong typing for keys prevents mixing dates and groups
  4. Fail-soft boundaries: Malformed backend records are skipped, not fatal

SEE ALSO:
  - calendar.go: Calendar overlay resolution (weekend/holiday/absence)
  - transform.go: Task-grouped <-> date-indexed conversion
  - engine.go: Mutation operations and aggregate recomputation
  - session.go: Dirty tracking, save/discard, period navigation
*/
package timesheet

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Duration/quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitHours Unit = "hours"
	UnitDays  Unit = "days"
	UnitPiece Unit = "piece"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func Hours(value float64) Amount {
	return NewAmount(value, UnitHours)
}

func ZeroHours() Amount {
	return Amount{Value: decimal.Zero, Unit: UnitHours}
}

// ParseHours parses a decimal string as an hour amount. Empty input is zero.
func ParseHours(s string) (Amount, error) {
	if s == "" {
		return ZeroHours(), nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroHours(), fmt.Errorf("parse hours %q: %w", s, err)
	}
	return Amount{Value: v, Unit: UnitHours}, nil
}

func (a Amount) Zero() Amount              { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Neg() Amount               { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }

// FormatHours renders an amount for pivot cells: two-decimal precision with
// trailing zeros stripped, empty string for zero.
func (a Amount) FormatHours() string {
	if a.Value.IsZero() {
		return ""
	}
	s := a.Value.Round(2).String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// =============================================================================
// GROUP KEY - Stable identity across the task dimensions
// =============================================================================

// GroupKey identifies a task row: every item sharing the key belongs to the
// same customer/project/task/department/time-type combination. At most one
// WorkItem may exist per (date, GroupKey) pair.
type GroupKey string

// TaskIdentity holds the dimensions a GroupKey is derived from.
type TaskIdentity struct {
	CustomerID   string
	ProjectID    string
	TaskID       string
	DepartmentID string
	TimeTypeID   string // non-empty marks the row as overtime
}

// Key derives the stable grouping key. The derivation is the single source of
// truth for item identity; it must stay in sync with nothing else.
func (ti TaskIdentity) Key() GroupKey {
	return GroupKey(strings.Join([]string{
		ti.CustomerID, ti.ProjectID, ti.TaskID, ti.DepartmentID, ti.TimeTypeID,
	}, "|"))
}

// IsOvertime reports whether items with this identity count as overtime.
// Any non-empty time-type extension id classifies the whole row as overtime.
func (ti TaskIdentity) IsOvertime() bool {
	return ti.TimeTypeID != ""
}

// Valid reports whether the identity carries at least one task dimension.
// A fully empty identity cannot be keyed and is rejected at the engine
// boundary.
func (ti TaskIdentity) Valid() bool {
	return ti.CustomerID != "" || ti.ProjectID != "" || ti.TaskID != "" || ti.DepartmentID != ""
}

// =============================================================================
// WORK ITEM - One entry for (date, group key)
// =============================================================================

// Quantity is an optional piece-count attached to an item.
type Quantity struct {
	Value decimal.Decimal
	Unit  string
}

func (q Quantity) IsZero() bool { return q.Value.IsZero() && q.Unit == "" }

// Status mirrors the backend's record status (e.g. open, submitted, approved).
type Status struct {
	ID    string
	Label string
}

// WorkItem is one time/quantity entry for a specific task identity on a
// specific date. Invariant: at most one WorkItem per (Date, GroupKey).
type WorkItem struct {
	ID   string // backend record id, or a fresh uuid for new items
	Date TimePoint

	Identity TaskIdentity

	// Descriptive labels carried for display; never part of the key.
	CustomerName   string
	ProjectName    string
	TaskName       string
	DepartmentName string
	TimeTypeName   string

	Billable   bool
	Productive bool

	ActualTime     Amount
	BillableTime   Amount
	ActualQuantity Quantity

	Remark string
	Status Status

	IsDirty bool
}

// GroupKey returns the derived key for this item's identity.
func (w WorkItem) GroupKey() GroupKey { return w.Identity.Key() }

// RowLabel is the display label for the item's pivot row.
func (w WorkItem) RowLabel() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{w.ProjectName, w.TaskName, w.TimeTypeName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return string(w.GroupKey())
	}
	return strings.Join(parts, " / ")
}

// =============================================================================
// TASK GROUP - Backend-shaped aggregate
// =============================================================================

// SubItem is one dated entry inside a TaskGroup as the backend ships it.
type SubItem struct {
	ID       string
	Start    TimePoint // zero when the backend omits explicit times
	End      TimePoint
	Date     TimePoint
	Actual   Amount
	Billable Amount
	Quantity Quantity
	Remark   string
	Status   Status
}

// TaskGroup is the backend's task-grouped representation: identity fields
// plus an ordered list of dated sub-items. Sub-items must cover disjoint
// dates within one group.
type TaskGroup struct {
	Identity TaskIdentity

	CustomerName   string
	ProjectName    string
	TaskName       string
	DepartmentName string
	TimeTypeName   string

	Billable   bool
	Productive bool

	Items []SubItem
}

// Key returns the group's derived key.
func (tg TaskGroup) Key() GroupKey { return tg.Identity.Key() }

// =============================================================================
// ITEM MAP - Date-indexed working set
// =============================================================================

// ItemMap is the mutable, date-indexed working set. Keys are ISO day keys
// inside the open period; bucket entries have pairwise-distinct GroupKeys.
type ItemMap map[DayKey][]WorkItem

// Clone returns a deep copy of the map (buckets copied, items are values).
func (m ItemMap) Clone() ItemMap {
	out := make(ItemMap, len(m))
	for k, items := range m {
		bucket := make([]WorkItem, len(items))
		copy(bucket, items)
		out[k] = bucket
	}
	return out
}

// Count returns the total number of items across all dates.
func (m ItemMap) Count() int {
	n := 0
	for _, items := range m {
		n += len(items)
	}
	return n
}
