/*
Package sqlite provides a SQLite-backed implementation of the collaborator
ports.

PURPOSE:
  Implements timesheet.TimesheetAPI and timesheet.ProfileAPI on SQLite so
  the server can run self-contained. In production the same patterns apply
  to a remote business-object API - only the transport differs.

KEY TABLES:
  employees:       Employee records with daily standard hours
  timesheets:      One header row per employee and period
  task_items:      One row per sub-item, identity fields flattened
  work_patterns:   JSON-encoded weekday patterns (see factory package)
  holidays:        Public holiday dates, queried sorted
  absences:        Approved absence records
  absence_splits:  Per-day hour splits of an absence

FIELD MAPPING:
  task_items rows are read back as loosely-typed field bundles and run
  through the versioned field mapping (timesheet/mapping.go), so malformed
  rows degrade exactly like malformed backend records: logged and skipped,
  never fatal.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - timesheet/backend.go: Port definitions
  - timesheet/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/logging"
	"github.com/warp/timesheet-engine/timesheet"
)

// Store implements the collaborator ports using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	log *logging.Logger
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db, log: log.WithComponent(logging.ComponentStorage)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Reset wipes all data, keeping the schema. Used by demo scenario loading.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{
		"absence_splits", "absences", "holidays", "work_patterns",
		"task_items", "timesheets", "employees",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		daily_std_hours TEXT NOT NULL DEFAULT '8'
	);

	CREATE TABLE IF NOT EXISTS timesheets (
		employee_id    TEXT NOT NULL,
		period_start   TEXT NOT NULL,
		period_end     TEXT NOT NULL,
		type           TEXT NOT NULL DEFAULT '',
		status_id      TEXT NOT NULL DEFAULT 'open',
		status_label   TEXT NOT NULL DEFAULT 'Open',
		remark         TEXT NOT NULL DEFAULT '',
		total_time     TEXT NOT NULL DEFAULT '0',
		billable_time  TEXT NOT NULL DEFAULT '0',
		total_overtime TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (employee_id, period_start)
	);

	CREATE TABLE IF NOT EXISTS task_items (
		id              TEXT NOT NULL,
		employee_id     TEXT NOT NULL,
		period_start    TEXT NOT NULL,
		customer_id     TEXT NOT NULL DEFAULT '',
		customer_name   TEXT NOT NULL DEFAULT '',
		project_id      TEXT NOT NULL DEFAULT '',
		project_name    TEXT NOT NULL DEFAULT '',
		task_id         TEXT NOT NULL DEFAULT '',
		task_name       TEXT NOT NULL DEFAULT '',
		department_id   TEXT NOT NULL DEFAULT '',
		department_name TEXT NOT NULL DEFAULT '',
		time_type_id    TEXT NOT NULL DEFAULT '',
		time_type_name  TEXT NOT NULL DEFAULT '',
		billable        INTEGER NOT NULL DEFAULT 0,
		productive      INTEGER NOT NULL DEFAULT 0,
		date            TEXT NOT NULL,
		actual_time     TEXT NOT NULL DEFAULT '0',
		billable_time   TEXT NOT NULL DEFAULT '0',
		quantity        TEXT NOT NULL DEFAULT '',
		quantity_unit   TEXT NOT NULL DEFAULT '',
		remark          TEXT NOT NULL DEFAULT '',
		status_id       TEXT NOT NULL DEFAULT '',
		status_label    TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (id, employee_id, period_start)
	);
	CREATE INDEX IF NOT EXISTS idx_task_items_sheet
		ON task_items(employee_id, period_start);

	CREATE TABLE IF NOT EXISTS work_patterns (
		employee_id  TEXT NOT NULL,
		id           TEXT NOT NULL,
		pattern_json TEXT NOT NULL,
		PRIMARY KEY (employee_id, id)
	);

	CREATE TABLE IF NOT EXISTS holidays (
		employee_id TEXT NOT NULL,
		date        TEXT NOT NULL,
		name        TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS absences (
		id          TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		reason      TEXT NOT NULL DEFAULT '',
		type_name   TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_absences_employee
		ON absences(employee_id, start_date);

	CREATE TABLE IF NOT EXISTS absence_splits (
		absence_id TEXT NOT NULL,
		date       TEXT NOT NULL,
		hours      TEXT NOT NULL,
		PRIMARY KEY (absence_id, date)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// =============================================================================
// SEEDING
// =============================================================================

// UpsertEmployee registers an employee and its daily standard hours.
func (s *Store) UpsertEmployee(ctx context.Context, id, name string, dailyStdHours timesheet.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, daily_std_hours) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, daily_std_hours = excluded.daily_std_hours`,
		id, name, dailyStdHours.Value.String())
	return err
}

// PutWorkPattern stores a JSON work-pattern definition for an employee.
// The JSON is validated eagerly so a bad pattern fails at write time.
func (s *Store) PutWorkPattern(ctx context.Context, employeeID, patternJSON string) error {
	pattern, err := factory.ParseWorkPattern(patternJSON)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO work_patterns (employee_id, id, pattern_json) VALUES (?, ?, ?)
		ON CONFLICT(employee_id, id) DO UPDATE SET pattern_json = excluded.pattern_json`,
		employeeID, pattern.ID, patternJSON)
	return err
}

// PutHoliday stores one holiday date on an employee's calendar.
func (s *Store) PutHoliday(ctx context.Context, employeeID string, h timesheet.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (employee_id, date, name) VALUES (?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET name = excluded.name`,
		employeeID, h.Date.String(), h.Name)
	return err
}

// PutAbsence stores an absence record with its per-day splits.
func (s *Store) PutAbsence(ctx context.Context, employeeID string, rec timesheet.AbsenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO absences (id, employee_id, start_date, end_date, reason, type_name)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, employeeID, rec.Start.String(), rec.End.String(), rec.Reason, rec.TypeName); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM absence_splits WHERE absence_id = ?`, rec.ID); err != nil {
		return err
	}
	for _, split := range rec.Splits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO absence_splits (absence_id, date, hours) VALUES (?, ?, ?)`,
			rec.ID, split.Date.String(), split.Hours.Value.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// TIMESHEET API
// =============================================================================

// Fetch loads the timesheet document for one employee and period. A period
// that was never saved is an empty open sheet, not an error.
func (s *Store) Fetch(ctx context.Context, employeeID string, period timesheet.Period) (timesheet.TimesheetDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := timesheet.TimesheetDocument{
		EmployeeID: employeeID,
		Period:     period,
		Status:     timesheet.Status{ID: "open", Label: "Open"},
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT type, status_id, status_label, remark, total_time, billable_time, total_overtime
		FROM timesheets WHERE employee_id = ? AND period_start = ?`,
		employeeID, period.Start.String())

	var totalTime, billableTime, totalOvertime string
	err := row.Scan(&doc.Type, &doc.Status.ID, &doc.Status.Label, &doc.Remark,
		&totalTime, &billableTime, &totalOvertime)
	switch {
	case err == sql.ErrNoRows:
		return doc, nil
	case err != nil:
		return timesheet.TimesheetDocument{}, fmt.Errorf("fetch timesheet header: %w", err)
	}
	doc.TotalTime = scanHours(totalTime)
	doc.BillableTime = scanHours(billableTime)
	doc.TotalOvertime = scanHours(totalOvertime)

	tasks, err := s.loadTasks(ctx, employeeID, period)
	if err != nil {
		return timesheet.TimesheetDocument{}, err
	}
	doc.Tasks = tasks
	return doc, nil
}

// loadTasks reads item rows back as raw field bundles and routes them
// through the versioned field mapping. Groups keep insertion order.
func (s *Store) loadTasks(ctx context.Context, employeeID string, period timesheet.Period) ([]timesheet.TaskGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, customer_name, project_id, project_name,
		       task_id, task_name, department_id, department_name,
		       time_type_id, time_type_name, billable, productive,
		       date, actual_time, billable_time, quantity, quantity_unit,
		       remark, status_id, status_label
		FROM task_items
		WHERE employee_id = ? AND period_start = ?
		ORDER BY rowid`,
		employeeID, period.Start.String())
	if err != nil {
		return nil, fmt.Errorf("load task items: %w", err)
	}
	defer rows.Close()

	groups := make(map[timesheet.GroupKey]*timesheet.RawGroup)
	var order []timesheet.GroupKey

	for rows.Next() {
		var id, date, actual, billableTime, qty, qtyUnit, remark, statusID, statusLabel string
		var billable, productive int
		var customerID, customerName, projectID, projectName, taskID, taskName string
		var departmentID, departmentName, timeTypeID, timeTypeName string

		if err := rows.Scan(&id, &customerID, &customerName, &projectID, &projectName,
			&taskID, &taskName, &departmentID, &departmentName,
			&timeTypeID, &timeTypeName, &billable, &productive,
			&date, &actual, &billableTime, &qty, &qtyUnit,
			&remark, &statusID, &statusLabel); err != nil {
			return nil, fmt.Errorf("scan task item: %w", err)
		}

		gk := timesheet.TaskIdentity{
			CustomerID: customerID, ProjectID: projectID, TaskID: taskID,
			DepartmentID: departmentID, TimeTypeID: timeTypeID,
		}.Key()
		group, ok := groups[gk]
		if !ok {
			fields := timesheet.RawRecord{
				timesheet.FieldCustomerID:     customerID,
				timesheet.FieldCustomerName:   customerName,
				timesheet.FieldProjectID:      projectID,
				timesheet.FieldProjectName:    projectName,
				timesheet.FieldTaskID:         taskID,
				timesheet.FieldTaskName:       taskName,
				timesheet.FieldDepartmentID:   departmentID,
				timesheet.FieldDepartmentName: departmentName,
				timesheet.FieldTimeTypeID:     timeTypeID,
				timesheet.FieldTimeTypeName:   timeTypeName,
			}
			if billable != 0 {
				fields[timesheet.FieldBillable] = "true"
			}
			if productive != 0 {
				fields[timesheet.FieldProductive] = "true"
			}
			group = &timesheet.RawGroup{Fields: fields}
			groups[gk] = group
			order = append(order, gk)
		}
		group.Items = append(group.Items, timesheet.RawRecord{
			timesheet.FieldItemID:       id,
			timesheet.FieldItemDate:     date,
			timesheet.FieldItemActual:   actual,
			timesheet.FieldItemBillable: billableTime,
			timesheet.FieldItemQty:      qty,
			timesheet.FieldItemQtyUnit:  qtyUnit,
			timesheet.FieldItemRemark:   remark,
			timesheet.FieldItemStatus:   statusID,
			timesheet.FieldItemStatusLb: statusLabel,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks := make([]timesheet.TaskGroup, 0, len(order))
	for _, gk := range order {
		group, warnings := timesheet.DecodeTaskGroup(*groups[gk])
		for _, w := range warnings {
			s.log.Warn("task item field dropped",
				logging.FieldEmployee, employeeID,
				"field", w.Field, "reason", w.Reason)
		}
		tasks = append(tasks, group)
	}
	return tasks, nil
}

// Save persists a partial update in a single transaction. The period's
// item rows are replaced wholesale; header fields update in place.
func (s *Store) Save(ctx context.Context, employeeID string, period timesheet.Period, update timesheet.PartialUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO timesheets (employee_id, period_start, period_end, total_time, billable_time, total_overtime)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, period_start) DO UPDATE SET
			total_time = excluded.total_time,
			billable_time = excluded.billable_time,
			total_overtime = excluded.total_overtime`,
		employeeID, period.Start.String(), period.End.String(),
		update.TotalTime.Value.String(), update.BillableTime.Value.String(),
		update.TotalOvertime.Value.String()); err != nil {
		return fmt.Errorf("save timesheet header: %w", err)
	}
	if update.Remark != nil {
		if _, err := tx.ExecContext(ctx, `
			UPDATE timesheets SET remark = ? WHERE employee_id = ? AND period_start = ?`,
			*update.Remark, employeeID, period.Start.String()); err != nil {
			return fmt.Errorf("save timesheet remark: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM task_items WHERE employee_id = ? AND period_start = ?`,
		employeeID, period.Start.String()); err != nil {
		return fmt.Errorf("clear task items: %w", err)
	}
	for _, group := range update.Tasks {
		for _, sub := range group.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO task_items (
					id, employee_id, period_start,
					customer_id, customer_name, project_id, project_name,
					task_id, task_name, department_id, department_name,
					time_type_id, time_type_name, billable, productive,
					date, actual_time, billable_time, quantity, quantity_unit,
					remark, status_id, status_label)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				sub.ID, employeeID, period.Start.String(),
				group.Identity.CustomerID, group.CustomerName,
				group.Identity.ProjectID, group.ProjectName,
				group.Identity.TaskID, group.TaskName,
				group.Identity.DepartmentID, group.DepartmentName,
				group.Identity.TimeTypeID, group.TimeTypeName,
				boolToInt(group.Billable), boolToInt(group.Productive),
				sub.Date.String(), sub.Actual.Value.String(), sub.Billable.Value.String(),
				quantityValue(sub.Quantity), sub.Quantity.Unit,
				sub.Remark, sub.Status.ID, sub.Status.Label); err != nil {
				return fmt.Errorf("save task item %s: %w", sub.ID, err)
			}
		}
	}
	return tx.Commit()
}

// =============================================================================
// PROFILE API
// =============================================================================

// WorkPatterns returns the employee's stored work patterns.
func (s *Store) WorkPatterns(ctx context.Context, employeeID string) ([]timesheet.WorkPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern_json FROM work_patterns WHERE employee_id = ? ORDER BY id`,
		employeeID)
	if err != nil {
		return nil, fmt.Errorf("load work patterns: %w", err)
	}
	defer rows.Close()

	var patterns []timesheet.WorkPattern
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		pattern, err := factory.ParseWorkPattern(raw)
		if err != nil {
			// Validated on write; a bad row here means manual tampering.
			s.log.Warn("skipping unparseable work pattern",
				logging.FieldEmployee, employeeID,
				logging.FieldError, err.Error())
			continue
		}
		patterns = append(patterns, pattern)
	}
	return patterns, rows.Err()
}

// Holidays returns the employee's holiday calendar sorted by date.
func (s *Store) Holidays(ctx context.Context, employeeID string) ([]timesheet.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, name FROM holidays WHERE employee_id = ? ORDER BY date`,
		employeeID)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	defer rows.Close()

	var holidays []timesheet.Holiday
	for rows.Next() {
		var date, name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, err
		}
		day, err := timesheet.ParseDayKey(timesheet.DayKey(date))
		if err != nil {
			continue
		}
		holidays = append(holidays, timesheet.Holiday{Date: day, Name: name})
	}
	return holidays, rows.Err()
}

// DailyStandardHours returns the employee's contracted hours per working
// day, defaulting to 8 for unknown employees.
func (s *Store) DailyStandardHours(ctx context.Context, employeeID string) (timesheet.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hours string
	err := s.db.QueryRowContext(ctx,
		`SELECT daily_std_hours FROM employees WHERE id = ?`, employeeID).Scan(&hours)
	if err == sql.ErrNoRows {
		return timesheet.Hours(8), nil
	}
	if err != nil {
		return timesheet.Amount{}, fmt.Errorf("load daily standard hours: %w", err)
	}
	return scanHours(hours), nil
}

// Absences returns the employee's absence records sorted by start date,
// each with its per-day splits.
func (s *Store) Absences(ctx context.Context, employeeID string) ([]timesheet.AbsenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_date, end_date, reason, type_name
		FROM absences WHERE employee_id = ? ORDER BY start_date`,
		employeeID)
	if err != nil {
		return nil, fmt.Errorf("load absences: %w", err)
	}
	defer rows.Close()

	var records []timesheet.AbsenceRecord
	for rows.Next() {
		var rec timesheet.AbsenceRecord
		var start, end string
		if err := rows.Scan(&rec.ID, &start, &end, &rec.Reason, &rec.TypeName); err != nil {
			return nil, err
		}
		if rec.Start, err = timesheet.ParseDayKey(timesheet.DayKey(start)); err != nil {
			continue
		}
		if rec.End, err = timesheet.ParseDayKey(timesheet.DayKey(end)); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		splits, err := s.loadSplits(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Splits = splits
	}
	return records, nil
}

func (s *Store) loadSplits(ctx context.Context, absenceID string) ([]timesheet.AbsenceSplit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, hours FROM absence_splits WHERE absence_id = ? ORDER BY date`,
		absenceID)
	if err != nil {
		return nil, fmt.Errorf("load absence splits: %w", err)
	}
	defer rows.Close()

	var splits []timesheet.AbsenceSplit
	for rows.Next() {
		var date, hours string
		if err := rows.Scan(&date, &hours); err != nil {
			return nil, err
		}
		day, err := timesheet.ParseDayKey(timesheet.DayKey(date))
		if err != nil {
			continue
		}
		splits = append(splits, timesheet.AbsenceSplit{Date: day, Hours: scanHours(hours)})
	}
	return splits, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func scanHours(v string) timesheet.Amount {
	a, _ := timesheet.ParseHours(v)
	return a
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func quantityValue(q timesheet.Quantity) string {
	if q.IsZero() {
		return ""
	}
	return q.Value.String()
}
