/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Hours cross
  the wire as formatted strings so clients never see float artifacts.

NAMING CONVENTION:
  - *Request:  Request body types from clients
  - *Response: Response types returned to clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ItemRequest creates or updates one work item.
type ItemRequest struct {
	ID   string `json:"id,omitempty"`
	Date string `json:"date"` // ISO day, e.g. 2026-03-02

	CustomerID   string `json:"customer_id,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
	TaskID       string `json:"task_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	TimeTypeID   string `json:"time_type_id,omitempty"`

	CustomerName   string `json:"customer_name,omitempty"`
	ProjectName    string `json:"project_name,omitempty"`
	TaskName       string `json:"task_name,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
	TimeTypeName   string `json:"time_type_name,omitempty"`

	Billable   bool `json:"billable"`
	Productive bool `json:"productive"`

	ActualHours   float64 `json:"actual_hours"`
	BillableHours float64 `json:"billable_hours,omitempty"`
	Remark        string  `json:"remark,omitempty"`
}

// RemarkRequest updates the sheet-level remark.
type RemarkRequest struct {
	Remark string `json:"remark"`
}

// LoadScenarioRequest selects a demo scenario by name.
type LoadScenarioRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ItemResponse is one work item as clients see it.
type ItemResponse struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	GroupKey string `json:"group_key"`
	RowLabel string `json:"row_label"`

	CustomerID   string `json:"customer_id,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
	TaskID       string `json:"task_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	TimeTypeID   string `json:"time_type_id,omitempty"`

	Billable   bool `json:"billable"`
	Productive bool `json:"productive"`
	Overtime   bool `json:"overtime"`

	ActualHours   string `json:"actual_hours"`
	BillableHours string `json:"billable_hours"`
	Remark        string `json:"remark,omitempty"`
	Dirty         bool   `json:"dirty"`
}

// DayResponse is one visible date with its items and calendar overlay.
type DayResponse struct {
	Date         string         `json:"date"`
	Weekday      string         `json:"weekday"`
	Items        []ItemResponse `json:"items"`
	IsWeekend    bool           `json:"is_weekend"`
	IsHoliday    bool           `json:"is_holiday"`
	HolidayName  string         `json:"holiday_name,omitempty"`
	IsAbsence    bool           `json:"is_absence"`
	AbsenceHours string         `json:"absence_hours,omitempty"`
	TotalHours   string         `json:"total_hours"`
}

// TotalsResponse carries the sheet-level aggregates.
type TotalsResponse struct {
	TotalWorkTime      string `json:"total_work_time"`
	TimesheetTotalTime string `json:"timesheet_total_time"`
	BillableTime       string `json:"billable_time"`
	OverTime           string `json:"overtime"`
}

// SheetResponse is the full editing view of one period.
type SheetResponse struct {
	EmployeeID   string         `json:"employee_id"`
	PeriodStart  string         `json:"period_start"`
	PeriodEnd    string         `json:"period_end"`
	State        string         `json:"state"`
	SelectedDate string         `json:"selected_date"`
	Remark       string         `json:"remark,omitempty"`
	Unsaved      bool           `json:"unsaved"`
	Days         []DayResponse  `json:"days"`
	Totals       TotalsResponse `json:"totals"`
}

// PivotResponse is the cross-tab rendered as display strings. Each row is
// (label, cells..., row total); the last row holds column totals.
type PivotResponse struct {
	Grid [][]string `json:"grid"`
}

// ScenarioResponse describes one loadable demo scenario.
type ScenarioResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// DOMAIN TO DTO MAPPING
// =============================================================================

func toItemResponse(item timesheet.WorkItem) ItemResponse {
	return ItemResponse{
		ID:            item.ID,
		Date:          item.Date.String(),
		GroupKey:      string(item.GroupKey()),
		RowLabel:      item.RowLabel(),
		CustomerID:    item.Identity.CustomerID,
		ProjectID:     item.Identity.ProjectID,
		TaskID:        item.Identity.TaskID,
		DepartmentID:  item.Identity.DepartmentID,
		TimeTypeID:    item.Identity.TimeTypeID,
		Billable:      item.Billable,
		Productive:    item.Productive,
		Overtime:      item.Identity.IsOvertime(),
		ActualHours:   item.ActualTime.FormatHours(),
		BillableHours: item.BillableTime.FormatHours(),
		Remark:        item.Remark,
		Dirty:         item.IsDirty,
	}
}

func toSheetResponse(employeeID string, s *timesheet.Session) SheetResponse {
	period := s.Period()
	totals := s.Aggregates()

	resp := SheetResponse{
		EmployeeID:   employeeID,
		PeriodStart:  period.Start.String(),
		PeriodEnd:    period.End.String(),
		State:        string(s.State()),
		SelectedDate: s.SelectedDate().String(),
		Remark:       s.Remark(),
		Unsaved:      s.HasUnsavedChanges(),
		Totals: TotalsResponse{
			TotalWorkTime:      totals.TotalWorkTime.FormatHours(),
			TimesheetTotalTime: totals.TimesheetTotalTime.FormatHours(),
			BillableTime:       totals.BillableTime.FormatHours(),
			OverTime:           totals.OverTime.FormatHours(),
		},
	}

	for _, date := range s.VisibleDates() {
		day := DayResponse{
			Date:    date.String(),
			Weekday: date.Weekday().String(),
			Items:   []ItemResponse{},
		}
		for _, item := range s.DayItems(date) {
			day.Items = append(day.Items, toItemResponse(item))
		}
		if overlay, ok := s.OverlayDay(date); ok {
			day.IsWeekend = overlay.IsWeekend
			day.IsHoliday = overlay.IsHoliday
			day.HolidayName = overlay.HolidayName
			day.IsAbsence = overlay.IsAbsence
			if overlay.IsAbsence {
				day.AbsenceHours = overlay.AbsenceHours.FormatHours()
			}
		}
		if total, ok := totals.PerDayTotal[date.Key()]; ok {
			day.TotalHours = total.FormatHours()
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}
