/*
Package expense provides the expense-sheet sibling of the timesheet engine.

The mobile editor ships parallel editors for timesheets, expenses and
absences. Expenses share the timesheet shape - a period, a date-indexed
working set, group-keyed rows, wholesale recomputation - but carry money
instead of hours and need no calendar overlay. This package reuses the
timesheet period and dirty-tracking conventions at that smaller scale.
*/
package expense

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// TYPES
// =============================================================================

// Money is an amount in a single currency.
type Money struct {
	Value    decimal.Decimal
	Currency string
}

func NewMoney(value float64, currency string) Money {
	return Money{Value: decimal.NewFromFloat(value), Currency: currency}
}

func (m Money) Add(o Money) Money { return Money{Value: m.Value.Add(o.Value), Currency: m.Currency} }
func (m Money) IsZero() bool      { return m.Value.IsZero() }
func (m Money) Equal(o Money) bool {
	return m.Value.Equal(o.Value) && m.Currency == o.Currency
}

// Item is one expense entry for a specific expense type on a specific date.
// At most one item per (date, group key).
type Item struct {
	ID   string
	Date timesheet.TimePoint

	// Identity dimensions for the group key.
	ProjectID     string
	ExpenseTypeID string

	ProjectName     string
	ExpenseTypeName string

	Amount     Money
	Billable   bool
	ReceiptRef string
	Remark     string

	IsDirty bool
}

// GroupKey derives the row identity, mirroring the timesheet derivation.
func (i Item) GroupKey() timesheet.GroupKey {
	return timesheet.TaskIdentity{ProjectID: i.ProjectID, TaskID: i.ExpenseTypeID}.Key()
}

// Totals are rebuilt wholesale after every mutation, like the timesheet
// aggregates.
type Totals struct {
	Total    Money
	Billable Money
	PerDay   map[timesheet.DayKey]Money
}

// =============================================================================
// SHEET
// =============================================================================

// Sheet is the date-indexed expense working set for one period.
type Sheet struct {
	period timesheet.Period
	items  map[timesheet.DayKey][]Item
	totals Totals

	currency  string
	deletions int
}

func NewSheet(period timesheet.Period, currency string) (*Sheet, error) {
	if !period.Valid() {
		return nil, timesheet.ErrInvalidPeriod
	}
	s := &Sheet{
		period:   period,
		items:    make(map[timesheet.DayKey][]Item),
		currency: currency,
	}
	s.recompute()
	return s, nil
}

func (s *Sheet) Period() timesheet.Period { return s.period }
func (s *Sheet) Totals() Totals           { return s.totals }

// DayItems returns a copy of one date's items.
func (s *Sheet) DayItems(date timesheet.TimePoint) []Item {
	bucket := s.items[date.Key()]
	out := make([]Item, len(bucket))
	copy(out, bucket)
	return out
}

// CreateOrUpdate inserts or replaces an item. A different item on the same
// (date, group key) slot is rejected, matching the timesheet engine.
func (s *Sheet) CreateOrUpdate(item Item) error {
	if item.ProjectID == "" && item.ExpenseTypeID == "" {
		return timesheet.ErrMissingIdentity
	}
	if !s.period.Contains(item.Date) {
		return timesheet.ErrDateOutsidePeriod
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	key := item.Date.Key()
	gk := item.GroupKey()
	for i, existing := range s.items[key] {
		if existing.GroupKey() != gk {
			continue
		}
		if existing.ID != item.ID {
			return &timesheet.DuplicateItemError{Date: item.Date, GroupKey: gk, ExistingID: existing.ID}
		}
		item.IsDirty = true
		s.items[key][i] = item
		s.recompute()
		return nil
	}

	item.IsDirty = true
	s.items[key] = append(s.items[key], item)
	s.recompute()
	return nil
}

// Delete removes the item at (date, group key); missing items are a no-op.
func (s *Sheet) Delete(date timesheet.TimePoint, gk timesheet.GroupKey) {
	key := date.Key()
	bucket := s.items[key]
	for i, it := range bucket {
		if it.GroupKey() != gk {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(s.items, key)
		} else {
			s.items[key] = bucket
		}
		s.deletions++
		s.recompute()
		return
	}
}

// HasUnsavedChanges mirrors the timesheet dirty contract.
func (s *Sheet) HasUnsavedChanges() bool {
	if s.deletions > 0 {
		return true
	}
	for _, bucket := range s.items {
		for _, it := range bucket {
			if it.IsDirty {
				return true
			}
		}
	}
	return false
}

// MarkClean clears dirty flags after a successful save.
func (s *Sheet) MarkClean() {
	for key, bucket := range s.items {
		for i := range bucket {
			bucket[i].IsDirty = false
		}
		s.items[key] = bucket
	}
	s.deletions = 0
}

func (s *Sheet) recompute() {
	zero := Money{Value: decimal.Zero, Currency: s.currency}
	totals := Totals{
		Total:    zero,
		Billable: zero,
		PerDay:   make(map[timesheet.DayKey]Money, s.period.Length()),
	}
	for _, key := range s.period.DayKeys() {
		day := zero
		for _, it := range s.items[key] {
			day = day.Add(it.Amount)
			totals.Total = totals.Total.Add(it.Amount)
			if it.Billable {
				totals.Billable = totals.Billable.Add(it.Amount)
			}
		}
		totals.PerDay[key] = day
	}
	s.totals = totals
}
