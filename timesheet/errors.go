/*
errors.go - Centralized error types for the timesheet engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch with errors.Is / errors.As; structured errors carry the
  offending key material.

ERROR CATEGORIES:
  1. Validation errors - Business rule violations; state is left unchanged
  2. Busy errors - Mutation attempted while a save/load is outstanding
  3. Session errors - Gating of destructive actions over unsaved state

Transform warnings are NOT errors: a malformed backend sub-item is logged and
skipped so one bad record cannot block viewing the rest of the sheet.

SEE ALSO:
  - engine.go: Raises validation errors
  - session.go: Raises busy/unsaved-changes errors
*/
package timesheet

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateItem is returned when a different item already occupies the
	// same (date, group key) slot.
	ErrDuplicateItem = errors.New("duplicate item for date and group key")

	// ErrDateOutsidePeriod is returned when an item's date falls outside the
	// open period.
	ErrDateOutsidePeriod = errors.New("item date outside open period")

	// ErrMissingIdentity is returned when an item carries no task dimensions
	// at all and therefore cannot be keyed.
	ErrMissingIdentity = errors.New("item missing required identity fields")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrBusy is returned when a mutation is attempted while a save or load
	// is outstanding. At most one network operation runs per session.
	ErrBusy = errors.New("session busy with outstanding save or load")

	// ErrUnsavedChanges is returned when a destructive action (period
	// navigation, reload) is attempted over unsaved state without explicit
	// confirmation.
	ErrUnsavedChanges = errors.New("unsaved changes require confirmation")

	// ErrSessionClosed is returned when operating on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateItemError reports which existing item blocks an insert.
type DuplicateItemError struct {
	Date       TimePoint
	GroupKey   GroupKey
	ExistingID string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("duplicate item on %s for group %q (existing: %s)",
		e.Date, e.GroupKey, e.ExistingID)
}

func (e *DuplicateItemError) Unwrap() error { return ErrDuplicateItem }

// BusyError reports which operation holds the session busy.
type BusyError struct {
	Operation string // "save" or "load"
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("session busy: %s in progress", e.Operation)
}

func (e *BusyError) Unwrap() error { return ErrBusy }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateItem) ||
		errors.Is(err, ErrDateOutsidePeriod) ||
		errors.Is(err, ErrMissingIdentity) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnsavedChanges)
}

// IsBusy returns true if the error indicates an outstanding network operation.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}
