/*
mapping.go - Versioned backend field mapping

PURPOSE:
  The backend ships task records as loosely-typed key-value bundles. This
  file pins down the explicit, versioned mapping from backend field name to
  struct field, validated at the transform boundary. Unknown fields are
  reported, malformed values fall back to zero values, and a sub-item with a
  malformed or missing date is dropped with a warning (fail-soft: one bad
  record must not block the rest of the sheet).

VERSIONING:
  MappingVersion is bumped whenever a backend field is renamed or retyped.
  Decoded groups remember the version they were decoded with so a future
  migration can tell old snapshots apart.
*/
package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

// MappingVersion identifies the backend field layout this package decodes.
const MappingVersion = 1

// Backend field names, version 1.
const (
	FieldCustomerID     = "CUSTOMER_ID"
	FieldCustomerName   = "CUSTOMER_NAME"
	FieldProjectID      = "PROJECT_ID"
	FieldProjectName    = "PROJECT_NAME"
	FieldTaskID         = "TASK_ID"
	FieldTaskName       = "TASK_NAME"
	FieldDepartmentID   = "DEPARTMENT_ID"
	FieldDepartmentName = "DEPARTMENT_NAME"
	FieldTimeTypeID     = "TIME_TYPE_EXT_ID"
	FieldTimeTypeName   = "TIME_TYPE_NAME"
	FieldBillable       = "BILLABLE"
	FieldProductive     = "PRODUCTIVE"

	FieldItemID       = "ID"
	FieldItemDate     = "DATE"
	FieldItemStart    = "START"
	FieldItemEnd      = "END"
	FieldItemActual   = "ACTUAL_TIME"
	FieldItemBillable = "BILLABLE_TIME"
	FieldItemQty      = "QUANTITY"
	FieldItemQtyUnit  = "QUANTITY_UNIT"
	FieldItemRemark   = "REMARK"
	FieldItemStatus   = "STATUS_ID"
	FieldItemStatusLb = "STATUS_LABEL"
)

// RawRecord is one loosely-typed backend record.
type RawRecord map[string]string

// RawGroup is one backend task group: identity fields plus sub-item records.
type RawGroup struct {
	Fields RawRecord
	Items  []RawRecord
}

// DecodeWarning describes a value that could not be mapped.
type DecodeWarning struct {
	Field  string
	Value  string
	Reason string
}

// DecodeTaskGroup maps a raw backend bundle into a typed TaskGroup.
// Sub-items with a malformed or missing date are dropped and reported.
func DecodeTaskGroup(raw RawGroup) (TaskGroup, []DecodeWarning) {
	var warnings []DecodeWarning
	f := raw.Fields

	group := TaskGroup{
		Identity: TaskIdentity{
			CustomerID:   f[FieldCustomerID],
			ProjectID:    f[FieldProjectID],
			TaskID:       f[FieldTaskID],
			DepartmentID: f[FieldDepartmentID],
			TimeTypeID:   f[FieldTimeTypeID],
		},
		CustomerName:   f[FieldCustomerName],
		ProjectName:    f[FieldProjectName],
		TaskName:       f[FieldTaskName],
		DepartmentName: f[FieldDepartmentName],
		TimeTypeName:   f[FieldTimeTypeName],
		Billable:       f[FieldBillable] == "true",
		Productive:     f[FieldProductive] == "true",
	}

	for _, item := range raw.Items {
		sub, ws := decodeSubItem(item)
		warnings = append(warnings, ws...)
		if sub == nil {
			continue
		}
		group.Items = append(group.Items, *sub)
	}
	return group, warnings
}

func decodeSubItem(r RawRecord) (*SubItem, []DecodeWarning) {
	var warnings []DecodeWarning

	date, ok := decodeDate(r[FieldItemDate])
	if !ok {
		warnings = append(warnings, DecodeWarning{
			Field:  FieldItemDate,
			Value:  r[FieldItemDate],
			Reason: "malformed or missing date, sub-item dropped",
		})
		return nil, warnings
	}

	sub := &SubItem{
		ID:     r[FieldItemID],
		Date:   date,
		Remark: r[FieldItemRemark],
		Status: Status{ID: r[FieldItemStatus], Label: r[FieldItemStatusLb]},
	}

	if start, ok := decodeDate(r[FieldItemStart]); ok {
		sub.Start = start
	}
	if end, ok := decodeDate(r[FieldItemEnd]); ok {
		sub.End = end
	}

	sub.Actual, warnings = decodeHours(r, FieldItemActual, warnings)
	sub.Billable, warnings = decodeHours(r, FieldItemBillable, warnings)

	if qty := r[FieldItemQty]; qty != "" {
		v, err := decimal.NewFromString(qty)
		if err != nil {
			warnings = append(warnings, DecodeWarning{Field: FieldItemQty, Value: qty, Reason: "not a number"})
		} else {
			sub.Quantity = Quantity{Value: v, Unit: r[FieldItemQtyUnit]}
		}
	}
	return sub, warnings
}

// decodeDate accepts ISO day keys and full RFC3339 timestamps; timestamps
// are truncated to day precision.
func decodeDate(s string) (TimePoint, bool) {
	if s == "" {
		return TimePoint{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return TruncateToDay(t), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return TruncateToDay(t), true
	}
	return TimePoint{}, false
}

func decodeHours(r RawRecord, field string, warnings []DecodeWarning) (Amount, []DecodeWarning) {
	s := r[field]
	if s == "" {
		return ZeroHours(), warnings
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroHours(), append(warnings, DecodeWarning{Field: field, Value: s, Reason: "not a number"})
	}
	return Amount{Value: v, Unit: UnitHours}, warnings
}
