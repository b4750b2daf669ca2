/*
backend.go - External collaborator ports

PURPOSE:
  The engine consumes two external collaborators: the business-object API
  (read one period's timesheet, write a partial update) and the employee
  profile source (work pattern, holidays, daily standard hours, absence
  records). Both are consumed as black boxes; retry policy, transport and
  authentication live behind these interfaces.

IMPLEMENTATIONS:
  - timesheet/store: in-memory, for tests and dev
  - store/sqlite:    SQLite-backed local collaborator
*/
package timesheet

import "context"

// =============================================================================
// DOCUMENTS ON THE WIRE
// =============================================================================

// TimesheetDocument is the read shape: header fields plus the period's task
// groups.
type TimesheetDocument struct {
	EmployeeID string
	Period     Period

	Type   string
	Status Status
	Remark string

	// Totals placeholders as last persisted by the backend; the engine
	// recomputes its own and never trusts these for display.
	TotalTime     Amount
	BillableTime  Amount
	TotalOvertime Amount

	Tasks []TaskGroup
}

// PartialUpdate is the write shape: only changed top-level fields travel.
// The engine never issues a full replace.
type PartialUpdate struct {
	Tasks         []TaskGroup
	TotalTime     Amount
	BillableTime  Amount
	TotalOvertime Amount

	// Remark is nil when unchanged.
	Remark *string
}

// =============================================================================
// PORTS
// =============================================================================

// TimesheetAPI is the business-object API collaborator.
type TimesheetAPI interface {
	// Fetch returns the timesheet document for one employee and period.
	Fetch(ctx context.Context, employeeID string, period Period) (TimesheetDocument, error)

	// Save applies a partial update for one employee and period.
	Save(ctx context.Context, employeeID string, period Period, update PartialUpdate) error
}

// ProfileAPI is the employee profile collaborator. Holiday and absence
// lists are returned sorted ascending by date.
type ProfileAPI interface {
	WorkPatterns(ctx context.Context, employeeID string) ([]WorkPattern, error)
	Holidays(ctx context.Context, employeeID string) ([]Holiday, error)
	DailyStandardHours(ctx context.Context, employeeID string) (Amount, error)
	Absences(ctx context.Context, employeeID string) ([]AbsenceRecord, error)
}
