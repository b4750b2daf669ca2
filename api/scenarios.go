/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates employees, work
	patterns, calendar data and saved timesheets that demonstrate
	specific features.

AVAILABLE SCENARIOS:

	empty:          One employee with a standard week, no entries
	standard-week:  Saved sheet with two tasks, a holiday and an absence
	overtime-heavy: Overtime entries split out by time type

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create the employee and work pattern
 3. Seed holidays and absences into the current period
 4. Save a timesheet document where the scenario wants entries

USAGE VIA API:

	POST /api/scenarios/load
	{"name": "standard-week"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - factory/schedule.go: Work pattern JSON presets
*/
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/logging"
	"github.com/warp/timesheet-engine/timesheet"
)

// ErrUnknownScenario is returned for scenario names that do not exist.
var ErrUnknownScenario = errors.New("unknown scenario")

// Seeder is the write surface scenarios need on a store. The SQLite store
// implements it; the session collaborator ports deliberately do not.
type Seeder interface {
	Reset(ctx context.Context) error
	UpsertEmployee(ctx context.Context, id, name string, dailyStdHours timesheet.Amount) error
	PutWorkPattern(ctx context.Context, employeeID, patternJSON string) error
	PutHoliday(ctx context.Context, employeeID string, h timesheet.Holiday) error
	PutAbsence(ctx context.Context, employeeID string, rec timesheet.AbsenceRecord) error
	Save(ctx context.Context, employeeID string, period timesheet.Period, update timesheet.PartialUpdate) error
}

// Scenario is one loadable demo data set.
type Scenario struct {
	Name        string
	Description string
	load        func(ctx context.Context, m *ScenarioManager) error
}

// ScenarioManager seeds demo scenarios into a store.
type ScenarioManager struct {
	seeder   Seeder
	schedule timesheet.Schedule
	log      *logging.Logger
}

// NewScenarioManager creates a scenario manager over the given store.
func NewScenarioManager(seeder Seeder, schedule timesheet.Schedule, log *logging.Logger) *ScenarioManager {
	if log == nil {
		log = logging.Discard()
	}
	return &ScenarioManager{seeder: seeder, schedule: schedule, log: log.WithComponent(logging.ComponentApp)}
}

// List returns the available scenarios.
func (m *ScenarioManager) List() []Scenario { return scenarios }

// Load resets the store and seeds the named scenario.
func (m *ScenarioManager) Load(ctx context.Context, name string) error {
	for _, sc := range scenarios {
		if sc.Name != name {
			continue
		}
		if err := m.seeder.Reset(ctx); err != nil {
			return err
		}
		if err := sc.load(ctx, m); err != nil {
			return err
		}
		m.log.Info("scenario loaded", "scenario", name)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownScenario, name)
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const demoEmployee = "emp-demo"

var scenarios = []Scenario{
	{
		Name:        "empty",
		Description: "One employee with a standard Mon-Fri week and no entries",
		load:        loadEmptyScenario,
	},
	{
		Name:        "standard-week",
		Description: "Saved sheet with two tasks, a midweek holiday and a half-day absence",
		load:        loadStandardWeekScenario,
	},
	{
		Name:        "overtime-heavy",
		Description: "Regular and overtime entries on the same tasks, split by time type",
		load:        loadOvertimeScenario,
	},
}

func loadEmptyScenario(ctx context.Context, m *ScenarioManager) error {
	if err := m.seeder.UpsertEmployee(ctx, demoEmployee, "Dana Rivera", timesheet.Hours(8)); err != nil {
		return err
	}
	return m.seeder.PutWorkPattern(ctx, demoEmployee, factory.StandardWeekJSON("wp-standard", 8))
}

func loadStandardWeekScenario(ctx context.Context, m *ScenarioManager) error {
	if err := loadEmptyScenario(ctx, m); err != nil {
		return err
	}
	period := m.schedule.PeriodFor(timesheet.Today())

	// Midweek holiday and a half-day absence on the day after.
	holiday := period.Start.AddDays(2)
	if err := m.seeder.PutHoliday(ctx, demoEmployee, timesheet.Holiday{Date: holiday, Name: "Founders Day"}); err != nil {
		return err
	}
	absenceDay := period.Start.AddDays(3)
	if err := m.seeder.PutAbsence(ctx, demoEmployee, timesheet.AbsenceRecord{
		ID:       "abs-demo-1",
		Start:    absenceDay,
		End:      absenceDay,
		Reason:   "Medical appointment",
		TypeName: "Sick leave",
		Splits: []timesheet.AbsenceSplit{
			{Date: absenceDay, Hours: timesheet.Hours(4)},
		},
	}); err != nil {
		return err
	}

	tasks := []timesheet.TaskGroup{
		demoTask(period.Start, "Acme Corp", "Website relaunch", "Frontend build", "", []demoEntry{
			{day: 0, hours: 6},
			{day: 1, hours: 8},
		}),
		demoTask(period.Start, "Acme Corp", "Website relaunch", "Design review", "", []demoEntry{
			{day: 0, hours: 2},
		}),
	}
	return m.saveTasks(ctx, period, tasks)
}

func loadOvertimeScenario(ctx context.Context, m *ScenarioManager) error {
	if err := loadEmptyScenario(ctx, m); err != nil {
		return err
	}
	period := m.schedule.PeriodFor(timesheet.Today())

	// Same task twice: regular hours and an overtime row keyed by time type.
	tasks := []timesheet.TaskGroup{
		demoTask(period.Start, "Globex", "Migration", "Data pipeline", "", []demoEntry{
			{day: 0, hours: 8},
			{day: 1, hours: 8},
		}),
		demoTask(period.Start, "Globex", "Migration", "Data pipeline", "tt-overtime", []demoEntry{
			{day: 1, hours: 2.5},
		}),
	}
	return m.saveTasks(ctx, period, tasks)
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

type demoEntry struct {
	day   int // offset from period start
	hours float64
}

func demoTask(start timesheet.TimePoint, customer, project, task, timeTypeID string, entries []demoEntry) timesheet.TaskGroup {
	group := timesheet.TaskGroup{
		Identity: timesheet.TaskIdentity{
			CustomerID: slug(customer),
			ProjectID:  slug(project),
			TaskID:     slug(task),
			TimeTypeID: timeTypeID,
		},
		CustomerName: customer,
		ProjectName:  project,
		TaskName:     task,
		Billable:     true,
		Productive:   true,
	}
	if timeTypeID != "" {
		group.TimeTypeName = "Overtime"
	}
	for i, e := range entries {
		date := start.AddDays(e.day)
		group.Items = append(group.Items, timesheet.SubItem{
			ID:       fmt.Sprintf("%s-%d", group.Identity.TaskID, i+1),
			Date:     date,
			Actual:   timesheet.Hours(e.hours),
			Billable: timesheet.Hours(e.hours),
			Status:   timesheet.Status{ID: "open", Label: "Open"},
		})
	}
	return group
}

// saveTasks persists seeded tasks as a saved timesheet document with
// aggregates matching what the engine would compute for the raw items.
func (m *ScenarioManager) saveTasks(ctx context.Context, period timesheet.Period, tasks []timesheet.TaskGroup) error {
	total := timesheet.ZeroHours()
	billable := timesheet.ZeroHours()
	overtime := timesheet.ZeroHours()
	for _, group := range tasks {
		for _, sub := range group.Items {
			total = total.Add(sub.Actual)
			if group.Billable {
				billable = billable.Add(sub.Billable)
			}
			if group.Identity.IsOvertime() {
				overtime = overtime.Add(sub.Actual)
			}
		}
	}
	return m.seeder.Save(ctx, demoEmployee, period, timesheet.PartialUpdate{
		Tasks:         tasks,
		TotalTime:     total,
		BillableTime:  billable,
		TotalOvertime: overtime,
	})
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}
