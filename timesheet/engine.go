/*
engine.go - Reconciliation & aggregation engine

PURPOSE:
  Owns the date-indexed item map plus the calendar overlay for one open
  timesheet period and recomputes every aggregate after each mutation.

OWNERSHIP:
  The engine exclusively owns the ItemMap and AggregateTotals for the
  lifetime of one editing session. The overlay is read-only input, rebuilt
  only when the period or the calendar sources change (see session.go).

RECOMPUTATION:
  Aggregates are always rebuilt from scratch, never incrementally patched.
  Decimal summation is commutative and associative, so insertion order can
  never change a total.

SEE ALSO:
  - pivot.go: Task-rows-by-date-columns cross tabulation
  - session.go: Dirty tracking and save/discard around this engine
*/
package timesheet

import (
	"github.com/google/uuid"

	"github.com/warp/timesheet-engine/logging"
)

// =============================================================================
// AGGREGATE TOTALS - Derived wholesale on every mutation
// =============================================================================

type AggregateTotals struct {
	// TotalWorkTime is the sum of all item actual times.
	TotalWorkTime Amount

	// TimesheetTotalTime adds all calendar-overlay contributions on top of
	// TotalWorkTime (holidays at daily standard hours, absence splits).
	TimesheetTotalTime Amount

	// BillableTime sums actual time of billable items.
	BillableTime Amount

	// OverTime sums actual time of items whose identity carries an overtime
	// time-type.
	OverTime Amount

	// PerDayTotal is items plus overlay per date, for every period date.
	PerDayTotal map[DayKey]Amount
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine holds the working set for one open period. All mutation goes
// through CreateOrUpdateItem / DeleteItem; there is no other write path.
type Engine struct {
	period        Period
	items         ItemMap
	overlay       OverlayMap
	dailyStdHours Amount
	totals        AggregateTotals

	// deletions counts removals since the last clean point; a deletion
	// dirties the sheet even though no item remains to carry a dirty flag.
	deletions int

	log *logging.Logger
}

// NewEngine seeds an engine with the inbound-transformed item map and the
// resolved overlay. Aggregates are computed immediately.
func NewEngine(period Period, items ItemMap, overlay OverlayMap, dailyStdHours Amount, log *logging.Logger) (*Engine, error) {
	if !period.Valid() {
		return nil, ErrInvalidPeriod
	}
	if log == nil {
		log = logging.Discard()
	}
	e := &Engine{
		period:        period,
		items:         items,
		overlay:       overlay,
		dailyStdHours: dailyStdHours,
		log:           log.WithComponent(logging.ComponentEngine),
	}
	if e.items == nil {
		e.items = make(ItemMap)
	}
	e.Recompute()
	return e, nil
}

// Period returns the open period.
func (e *Engine) Period() Period { return e.period }

// Totals returns the current aggregates.
func (e *Engine) Totals() AggregateTotals { return e.totals }

// Overlay returns the calendar classification for a date.
func (e *Engine) Overlay(date TimePoint) (CalendarDay, bool) {
	d, ok := e.overlay[date.Key()]
	return d, ok
}

// DayItems returns a copy of the items for one date. Pure read.
func (e *Engine) DayItems(date TimePoint) []WorkItem {
	bucket := e.items[date.Key()]
	out := make([]WorkItem, len(bucket))
	copy(out, bucket)
	return out
}

// Items returns a deep copy of the full working set.
func (e *Engine) Items() ItemMap { return e.items.Clone() }

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateOrUpdateItem inserts a new item or replaces the one being edited.
// It rejects with DuplicateItemError when a different item already occupies
// the (date, group key) slot, and leaves all state unchanged on any error.
func (e *Engine) CreateOrUpdateItem(item WorkItem) error {
	if !item.Identity.Valid() {
		return ErrMissingIdentity
	}
	if !e.period.Contains(item.Date) {
		return ErrDateOutsidePeriod
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	gk := item.GroupKey()
	if occupant, ok := e.find(item.Date.Key(), gk); ok && occupant.ID != item.ID {
		return &DuplicateItemError{Date: item.Date, GroupKey: gk, ExistingID: occupant.ID}
	}

	// An edit may have moved the item to a new date or identity; drop the
	// old occurrence before inserting.
	e.removeByID(item.ID)

	item.IsDirty = true
	item.ActualTime = defaultHours(item.ActualTime)
	item.BillableTime = defaultHours(item.BillableTime)
	insertSorted(e.items, item)

	e.Recompute()
	e.log.Debug("item upserted",
		logging.FieldDate, item.Date.String(),
		logging.FieldGroupKey, string(gk),
		logging.FieldItemID, item.ID)
	return nil
}

// DeleteItem removes the item at (date, group key). Deleting an absent item
// is a no-op. The date key disappears when its bucket empties.
func (e *Engine) DeleteItem(date TimePoint, gk GroupKey) {
	key := date.Key()
	bucket := e.items[key]
	for i, it := range bucket {
		if it.GroupKey() != gk {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(e.items, key)
		} else {
			e.items[key] = bucket
		}
		e.deletions++
		e.Recompute()
		e.log.Debug("item deleted",
			logging.FieldDate, date.String(),
			logging.FieldGroupKey, string(gk))
		return
	}
}

func (e *Engine) find(key DayKey, gk GroupKey) (WorkItem, bool) {
	for _, it := range e.items[key] {
		if it.GroupKey() == gk {
			return it, true
		}
	}
	return WorkItem{}, false
}

func (e *Engine) removeByID(id string) {
	for key, bucket := range e.items {
		for i, it := range bucket {
			if it.ID != id {
				continue
			}
			bucket = append(bucket[:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				delete(e.items, key)
			} else {
				e.items[key] = bucket
			}
			return
		}
	}
}

// Replace swaps in a fresh working set (discard/reload) and recomputes.
func (e *Engine) Replace(items ItemMap) {
	if items == nil {
		items = make(ItemMap)
	}
	e.items = items
	e.deletions = 0
	e.Recompute()
}

// =============================================================================
// DIRTY TRACKING (item granularity; session-level fields live in session.go)
// =============================================================================

// HasDirtyItems reports whether any item diverged from the last clean point,
// including deletions of previously-loaded items.
func (e *Engine) HasDirtyItems() bool {
	if e.deletions > 0 {
		return true
	}
	for _, bucket := range e.items {
		for _, it := range bucket {
			if it.IsDirty {
				return true
			}
		}
	}
	return false
}

// MarkClean clears every dirty flag after a successful save.
func (e *Engine) MarkClean() {
	for key, bucket := range e.items {
		for i := range bucket {
			bucket[i].IsDirty = false
		}
		e.items[key] = bucket
	}
	e.deletions = 0
}

// =============================================================================
// RECOMPUTATION
// =============================================================================

// Recompute rebuilds every aggregate from scratch. Idempotent and order
// independent: it walks the full item map plus the overlay map each time.
func (e *Engine) Recompute() {
	totals := AggregateTotals{
		TotalWorkTime:      ZeroHours(),
		TimesheetTotalTime: ZeroHours(),
		BillableTime:       ZeroHours(),
		OverTime:           ZeroHours(),
		PerDayTotal:        make(map[DayKey]Amount, e.period.Length()),
	}

	for _, key := range e.period.DayKeys() {
		day := ZeroHours()
		for _, it := range e.items[key] {
			day = day.Add(it.ActualTime)
			totals.TotalWorkTime = totals.TotalWorkTime.Add(it.ActualTime)
			if it.Billable {
				totals.BillableTime = totals.BillableTime.Add(it.ActualTime)
			}
			if it.Identity.IsOvertime() {
				totals.OverTime = totals.OverTime.Add(it.ActualTime)
			}
		}
		if overlay, ok := e.overlay[key]; ok {
			day = day.Add(overlay.OverlayHours(e.dailyStdHours))
		}
		totals.PerDayTotal[key] = day
		totals.TimesheetTotalTime = totals.TimesheetTotalTime.Add(day)
	}

	e.totals = totals
}
