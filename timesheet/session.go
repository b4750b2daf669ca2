/*
session.go - Editing session: dirty tracking, save/discard, period paging

PURPOSE:
  One Session wraps one open timesheet-editing engine and adds everything
  around it: loading from the collaborators, dirty-state gating, the
  save/discard lifecycle, and paging the visible period.

STATE MACHINE:
  Loading -> Ready -> (mutate) -> Ready(dirty) -> Saved | Discarded
  Mutations are synchronous; aggregates are recomputed before any mutation
  returns.

CONCURRENCY:
  The engine itself is single-threaded; the only asynchronous boundary is
  the backend fetch/save. At most one network operation is outstanding per
  session: mutations during a save/load fail with BusyError, while period
  navigation waits for a pending save to resolve (it never cancels in-flight
  work).

GATING CONTRACT:
  Every destructive entry point (navigation, reload) checks
  HasUnsavedChanges() and requires the caller to pass confirm=true before
  unsaved state is thrown away. The confirmation dialog is the UI's job;
  the check-then-confirm-then-proceed contract lives here.
*/
package timesheet

import (
	"context"
	"sync"

	"github.com/warp/timesheet-engine/logging"
)

// SessionState tracks where the session is in its lifecycle.
type SessionState string

const (
	StateLoading   SessionState = "loading"
	StateReady     SessionState = "ready"
	StateSaved     SessionState = "saved"
	StateDiscarded SessionState = "discarded"
)

// SessionConfig carries everything needed to open a session.
type SessionConfig struct {
	EmployeeID string

	// Schedule lays out period boundaries (weekly or backend-declared).
	Schedule Schedule

	// At selects which period to open: the one containing this date.
	// Zero value opens the period containing today.
	At TimePoint

	API     TimesheetAPI
	Profile ProfileAPI
	Logger  *logging.Logger
}

// Session is one open timesheet-editing session.
type Session struct {
	mu   sync.Mutex
	cond *sync.Cond

	// busyOp is "" when idle, otherwise "save" or "load".
	busyOp string

	state      SessionState
	employeeID string
	schedule   Schedule
	selected   TimePoint

	engine *Engine
	doc    TimesheetDocument // last loaded/saved snapshot

	remark      string
	remarkDirty bool

	api       TimesheetAPI
	profile   ProfileAPI
	transform *Transformer
	log       *logging.Logger
}

// OpenSession loads the period containing cfg.At and returns a ready session.
func OpenSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	at := cfg.At
	if at.IsZero() {
		at = Today()
	}

	s := &Session{
		state:      StateLoading,
		employeeID: cfg.EmployeeID,
		schedule:   cfg.Schedule,
		selected:   at,
		api:        cfg.API,
		profile:    cfg.Profile,
		transform:  NewTransformer(log),
		log:        log.WithComponent(logging.ComponentSession),
	}
	s.cond = sync.NewCond(&s.mu)

	if err := s.load(ctx, cfg.Schedule.PeriodFor(at)); err != nil {
		return nil, err
	}
	return s, nil
}

// load fetches profile data and the timesheet document for the period,
// resolves the overlay and seeds a fresh engine. Caller must not hold mu.
func (s *Session) load(ctx context.Context, period Period) error {
	if !period.Valid() {
		return ErrInvalidPeriod
	}

	patterns, err := s.profile.WorkPatterns(ctx, s.employeeID)
	if err != nil {
		return err
	}
	holidays, err := s.profile.Holidays(ctx, s.employeeID)
	if err != nil {
		return err
	}
	stdHours, err := s.profile.DailyStandardHours(ctx, s.employeeID)
	if err != nil {
		return err
	}
	absences, err := s.profile.Absences(ctx, s.employeeID)
	if err != nil {
		return err
	}
	doc, err := s.api.Fetch(ctx, s.employeeID, period)
	if err != nil {
		return err
	}

	overlay := ResolveOverlay(period, patterns, holidays, absences)
	items := s.transform.ToItemMap(period, doc.Tasks)
	engine, err := NewEngine(period, items, overlay, stdHours, s.log)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.engine = engine
	s.doc = doc
	s.remark = doc.Remark
	s.remarkDirty = false
	if !period.Contains(s.selected) {
		// The previously selected date fell outside the new period.
		s.selected = period.Start
	}
	s.state = StateReady
	s.mu.Unlock()

	s.log.Info("period loaded",
		logging.FieldEmployee, s.employeeID,
		logging.FieldPeriod, period.String(),
		logging.FieldCount, items.Count())
	return nil
}

// =============================================================================
// READ ACCESSORS
// =============================================================================

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Period() Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Period()
}

// VisibleDates returns the dates of the open period in order.
func (s *Session) VisibleDates() []TimePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Period().Days()
}

func (s *Session) SelectedDate() TimePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SelectDate moves the selection, clamping to the period's start when the
// date falls outside the open period.
func (s *Session) SelectDate(date TimePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine.Period().Contains(date) {
		s.selected = date
	} else {
		s.selected = s.engine.Period().Start
	}
}

func (s *Session) DayItems(date TimePoint) []WorkItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.DayItems(date)
}

func (s *Session) OverlayDay(date TimePoint) (CalendarDay, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Overlay(date)
}

func (s *Session) Aggregates() AggregateTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Totals()
}

func (s *Session) Pivot() PivotTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.PivotTable()
}

func (s *Session) Remark() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remark
}

// HasUnsavedChanges reports whether any item or tracked header field
// diverged from the last loaded/saved snapshot.
func (s *Session) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasUnsavedLocked()
}

func (s *Session) hasUnsavedLocked() bool {
	return s.remarkDirty || s.engine.HasDirtyItems()
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateOrUpdateItem routes an item edit through the engine. Rejected with
// BusyError while a save or load is outstanding.
func (s *Session) CreateOrUpdateItem(item WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busyOp != "" {
		return &BusyError{Operation: s.busyOp}
	}
	if err := s.engine.CreateOrUpdateItem(item); err != nil {
		return err
	}
	s.state = StateReady
	return nil
}

// DeleteItem removes the item at (date, group key); a missing item is a
// no-op. Rejected with BusyError while a save or load is outstanding.
func (s *Session) DeleteItem(date TimePoint, gk GroupKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busyOp != "" {
		return &BusyError{Operation: s.busyOp}
	}
	s.engine.DeleteItem(date, gk)
	s.state = StateReady
	return nil
}

// SetRemark edits the sheet-level remark and marks it dirty.
func (s *Session) SetRemark(remark string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busyOp != "" {
		return &BusyError{Operation: s.busyOp}
	}
	if remark == s.remark {
		return nil
	}
	s.remark = remark
	s.remarkDirty = remark != s.doc.Remark
	s.state = StateReady
	return nil
}

// =============================================================================
// SAVE / DISCARD
// =============================================================================

// Save runs the outbound transform and hands the partial update to the
// backend. On success all dirty flags clear and the snapshot advances.
// Backend failures propagate unmodified; the engine does not retry.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.busyOp != "" {
		op := s.busyOp
		s.mu.Unlock()
		return &BusyError{Operation: op}
	}

	period := s.engine.Period()
	tasks := s.transform.ToTaskGroups(period, s.engine.Items())
	totals := s.engine.Totals()
	update := PartialUpdate{
		Tasks:         tasks,
		TotalTime:     totals.TotalWorkTime,
		BillableTime:  totals.BillableTime,
		TotalOvertime: totals.OverTime,
	}
	if s.remarkDirty {
		remark := s.remark
		update.Remark = &remark
	}

	s.busyOp = "save"
	s.mu.Unlock()

	err := s.api.Save(ctx, s.employeeID, period, update)

	s.mu.Lock()
	s.busyOp = ""
	s.cond.Broadcast()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.engine.MarkClean()
	s.doc.Tasks = tasks
	if update.Remark != nil {
		s.doc.Remark = *update.Remark
	}
	s.doc.TotalTime = update.TotalTime
	s.doc.BillableTime = update.BillableTime
	s.doc.TotalOvertime = update.TotalOvertime
	s.remarkDirty = false
	s.state = StateSaved
	s.mu.Unlock()

	s.log.Info("timesheet saved",
		logging.FieldEmployee, s.employeeID,
		logging.FieldPeriod, period.String(),
		logging.FieldCount, len(tasks))
	return nil
}

// Discard rebuilds the working set from the last loaded/saved snapshot and
// clears all dirty state.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busyOp != "" {
		return &BusyError{Operation: s.busyOp}
	}

	items := s.transform.ToItemMap(s.engine.Period(), s.doc.Tasks)
	s.engine.Replace(items)
	s.remark = s.doc.Remark
	s.remarkDirty = false
	s.state = StateDiscarded
	return nil
}

// =============================================================================
// PERIOD NAVIGATION
// =============================================================================

// PreviousPeriod pages to the period before the current one. See navigate.
func (s *Session) PreviousPeriod(ctx context.Context, confirm bool) error {
	return s.navigate(ctx, confirm, func(p Period) Period { return p.Previous() })
}

// NextPeriod pages to the period after the current one. See navigate.
func (s *Session) NextPeriod(ctx context.Context, confirm bool) error {
	return s.navigate(ctx, confirm, func(p Period) Period { return p.Next() })
}

// Reload refetches the current period, discarding local state. Gated on
// unsaved changes like navigation.
func (s *Session) Reload(ctx context.Context, confirm bool) error {
	return s.navigate(ctx, confirm, func(p Period) Period { return p })
}

// navigate waits out any pending save (never cancelling it), enforces the
// unsaved-changes confirmation contract, then loads the shifted period.
// Items outside the new period stay at the backend; the period is
// authoritative for visibility.
func (s *Session) navigate(ctx context.Context, confirm bool, shift func(Period) Period) error {
	s.mu.Lock()
	for s.busyOp == "save" {
		s.cond.Wait()
	}
	if s.busyOp != "" {
		op := s.busyOp
		s.mu.Unlock()
		return &BusyError{Operation: op}
	}
	if s.hasUnsavedLocked() && !confirm {
		s.mu.Unlock()
		return ErrUnsavedChanges
	}
	next := shift(s.engine.Period())
	s.busyOp = "load"
	s.state = StateLoading
	s.mu.Unlock()

	err := s.load(ctx, next)

	s.mu.Lock()
	s.busyOp = ""
	if err != nil {
		// The old engine state is intact; surface the failure and stay put.
		s.state = StateReady
	}
	s.cond.Broadcast()
	s.mu.Unlock()
	return err
}
