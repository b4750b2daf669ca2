// Package store provides collaborator implementations backing the engine.
package store

import (
	"context"
	"sync"

	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// MEMORY STORE - In-memory collaborator (for testing/dev)
// =============================================================================

// Memory implements timesheet.TimesheetAPI and timesheet.ProfileAPI from
// in-memory maps. Thread-safe so tests can exercise the session's busy
// semantics from multiple goroutines.
type Memory struct {
	mu        sync.RWMutex
	profiles  map[string]Profile
	documents map[docKey]timesheet.TimesheetDocument
}

// Profile bundles the employee profile inputs. Holiday and absence lists
// must be kept sorted ascending by date, as the resolver assumes.
type Profile struct {
	WorkPatterns  []timesheet.WorkPattern
	Holidays      []timesheet.Holiday
	DailyStdHours timesheet.Amount
	Absences      []timesheet.AbsenceRecord
}

type docKey struct {
	EmployeeID  string
	PeriodStart timesheet.DayKey
}

func NewMemory() *Memory {
	return &Memory{
		profiles:  make(map[string]Profile),
		documents: make(map[docKey]timesheet.TimesheetDocument),
	}
}

// SetProfile registers or replaces an employee profile.
func (m *Memory) SetProfile(employeeID string, p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[employeeID] = p
}

// PutDocument seeds a timesheet document for one employee and period.
func (m *Memory) PutDocument(doc timesheet.TimesheetDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[docKey{doc.EmployeeID, doc.Period.Start.Key()}] = doc
}

// =============================================================================
// TimesheetAPI
// =============================================================================

func (m *Memory) Fetch(_ context.Context, employeeID string, period timesheet.Period) (timesheet.TimesheetDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.documents[docKey{employeeID, period.Start.Key()}]
	if !ok {
		// An unsaved period is an empty sheet, not an error.
		return timesheet.TimesheetDocument{
			EmployeeID: employeeID,
			Period:     period,
			Status:     timesheet.Status{ID: "open", Label: "Open"},
		}, nil
	}
	return doc, nil
}

func (m *Memory) Save(_ context.Context, employeeID string, period timesheet.Period, update timesheet.PartialUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := docKey{employeeID, period.Start.Key()}
	doc, ok := m.documents[key]
	if !ok {
		doc = timesheet.TimesheetDocument{
			EmployeeID: employeeID,
			Period:     period,
			Status:     timesheet.Status{ID: "open", Label: "Open"},
		}
	}

	// Partial update: only supplied top-level fields change.
	doc.Tasks = update.Tasks
	doc.TotalTime = update.TotalTime
	doc.BillableTime = update.BillableTime
	doc.TotalOvertime = update.TotalOvertime
	if update.Remark != nil {
		doc.Remark = *update.Remark
	}
	m.documents[key] = doc
	return nil
}

// =============================================================================
// ProfileAPI
// =============================================================================

func (m *Memory) WorkPatterns(_ context.Context, employeeID string) ([]timesheet.WorkPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[employeeID].WorkPatterns, nil
}

func (m *Memory) Holidays(_ context.Context, employeeID string) ([]timesheet.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[employeeID].Holidays, nil
}

func (m *Memory) DailyStandardHours(_ context.Context, employeeID string) (timesheet.Amount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[employeeID]
	if !ok || p.DailyStdHours.Unit == "" {
		return timesheet.Hours(8), nil
	}
	return p.DailyStdHours, nil
}

func (m *Memory) Absences(_ context.Context, employeeID string) ([]timesheet.AbsenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[employeeID].Absences, nil
}
