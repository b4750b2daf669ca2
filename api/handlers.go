/*
handlers.go - HTTP API handlers for the timesheet engine

PURPOSE:
  Exposes timesheet editing sessions via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Timesheet:
    GET    /api/employees/{id}/timesheet           Current period view
    PUT    /api/employees/{id}/timesheet/items     Create or update an item
    DELETE /api/employees/{id}/timesheet/items     Delete an item
    PUT    /api/employees/{id}/timesheet/remark    Update sheet remark
    PUT    /api/employees/{id}/timesheet/selection Move the selected date
    GET    /api/employees/{id}/timesheet/pivot     Cross-tab view
    POST   /api/employees/{id}/timesheet/save      Persist changes
    POST   /api/employees/{id}/timesheet/discard   Revert to snapshot

  Navigation:
    POST   /api/employees/{id}/timesheet/period/previous  Page back
    POST   /api/employees/{id}/timesheet/period/next      Page forward
    POST   /api/employees/{id}/timesheet/period/reload    Refetch period

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario

SESSIONS:
  One editing session per employee, opened lazily on first access and
  cached. Sessions carry the dirty state, so stateless clients can poll
  GET and see unsaved flags survive across requests.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 409: Conflict (busy session, unsaved changes, occupied slot)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/timesheet-engine/logging"
	"github.com/warp/timesheet-engine/timesheet"
)

// Backend bundles the collaborator ports a session needs.
type Backend interface {
	timesheet.TimesheetAPI
	timesheet.ProfileAPI
}

// sessionEntry tracks when a cached session was last touched so the
// janitor can evict idle ones.
type sessionEntry struct {
	session  *timesheet.Session
	lastUsed time.Time
}

// Handler holds all API dependencies.
type Handler struct {
	backend  Backend
	schedule timesheet.Schedule
	log      *logging.Logger

	scenarios *ScenarioManager

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewHandler creates a new API handler.
func NewHandler(backend Backend, schedule timesheet.Schedule, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{
		backend:  backend,
		schedule: schedule,
		log:      log.WithComponent(logging.ComponentHTTP),
		sessions: make(map[string]*sessionEntry),
	}
}

// WithScenarios enables the demo scenario endpoints.
func (h *Handler) WithScenarios(m *ScenarioManager) *Handler {
	h.scenarios = m
	return h
}

// =============================================================================
// SESSION CACHE
// =============================================================================

// session returns the cached session for an employee, opening one for the
// period containing at (or today when zero) on first access.
func (h *Handler) session(r *http.Request, employeeID string, at timesheet.TimePoint) (*timesheet.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry, ok := h.sessions[employeeID]; ok {
		entry.lastUsed = time.Now()
		return entry.session, nil
	}

	sess, err := timesheet.OpenSession(r.Context(), timesheet.SessionConfig{
		EmployeeID: employeeID,
		Schedule:   h.schedule,
		At:         at,
		API:        h.backend,
		Profile:    h.backend,
		Logger:     h.log,
	})
	if err != nil {
		return nil, err
	}
	h.sessions[employeeID] = &sessionEntry{session: sess, lastUsed: time.Now()}
	return sess, nil
}

// dropSessions empties the session cache, e.g. after a scenario load
// rewrites the underlying data.
func (h *Handler) dropSessions() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = make(map[string]*sessionEntry)
}

// evictIdleSessions removes clean sessions untouched for longer than
// maxIdle. Dirty sessions are never evicted; losing unsaved edits to a
// cache policy would break the gating contract.
func (h *Handler) evictIdleSessions(maxIdle time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	evicted := 0
	cutoff := time.Now().Add(-maxIdle)
	for id, entry := range h.sessions {
		if entry.lastUsed.After(cutoff) || entry.session.HasUnsavedChanges() {
			continue
		}
		delete(h.sessions, id)
		evicted++
	}
	return evicted
}

// =============================================================================
// TIMESHEET HANDLERS
// =============================================================================

// GetTimesheet returns the open period view for an employee. The optional
// ?at=2026-03-02 query selects the period to open on first access.
func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var at timesheet.TimePoint
	if q := r.URL.Query().Get("at"); q != "" {
		parsed, err := timesheet.ParseDayKey(timesheet.DayKey(q))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "bad_date", "at must be an ISO date")
			return
		}
		at = parsed
	}

	sess, err := h.session(r, employeeID, at)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSheetResponse(employeeID, sess))
}

// UpsertItem creates or updates one work item on the open period.
func (h *Handler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	date, err := timesheet.ParseDayKey(timesheet.DayKey(req.Date))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_date", "date must be an ISO date")
		return
	}

	sess, err := h.session(r, employeeID, date)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	item := timesheet.WorkItem{
		ID:   req.ID,
		Date: date,
		Identity: timesheet.TaskIdentity{
			CustomerID:   req.CustomerID,
			ProjectID:    req.ProjectID,
			TaskID:       req.TaskID,
			DepartmentID: req.DepartmentID,
			TimeTypeID:   req.TimeTypeID,
		},
		CustomerName:   req.CustomerName,
		ProjectName:    req.ProjectName,
		TaskName:       req.TaskName,
		DepartmentName: req.DepartmentName,
		TimeTypeName:   req.TimeTypeName,
		Billable:       req.Billable,
		Productive:     req.Productive,
		ActualTime:     timesheet.Hours(req.ActualHours),
		BillableTime:   timesheet.Hours(req.BillableHours),
		Remark:         req.Remark,
	}
	if err := sess.CreateOrUpdateItem(item); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSheetResponse(employeeID, sess))
}

// DeleteItem removes the item at ?date=...&group_key=... from the open
// period. A missing item is a no-op, matching the engine contract.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	date, err := timesheet.ParseDayKey(timesheet.DayKey(r.URL.Query().Get("date")))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_date", "date must be an ISO date")
		return
	}
	gk := timesheet.GroupKey(r.URL.Query().Get("group_key"))
	if gk == "" {
		h.writeError(w, http.StatusBadRequest, "bad_group_key", "group_key is required")
		return
	}

	sess, err := h.session(r, employeeID, date)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := sess.DeleteItem(date, gk); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSheetResponse(employeeID, sess))
}

// UpdateRemark edits the sheet-level remark.
func (h *Handler) UpdateRemark(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req RemarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	sess, err := h.session(r, employeeID, timesheet.TimePoint{})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := sess.SetRemark(req.Remark); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSheetResponse(employeeID, sess))
}

// SelectDate moves the selected date within the open period.
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	date, err := timesheet.ParseDayKey(timesheet.DayKey(req.Date))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_date", "date must be an ISO date")
		return
	}

	sess, err := h.session(r, employeeID, date)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	sess.SelectDate(date)
	h.writeJSON(w, http.StatusOK, toSheetResponse(employeeID, sess))
}

// GetPivot returns the period cross-tab as display strings.
func (h *Handler) GetPivot(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	sess, err := h.session(r, employeeID, timesheet.TimePoint{})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, PivotResponse{Grid: sess.Pivot().Formatted()})
}

// SaveTimesheet persists the working set to the backend.
func (h *Handler) SaveTimesheet(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	sess, err := h.session(r, employeeID, timesheet.TimePoint{})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := sess.Save(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSheetResponse(employeeID, sess))
}

// DiscardChanges reverts the working set to the last loaded snapshot.
func (h *Handler) DiscardChanges(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	sess, err := h.session(r, employeeID, timesheet.TimePoint{})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := sess.Discard(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSheetResponse(employeeID, sess))
}

// =============================================================================
// NAVIGATION HANDLERS
// =============================================================================

// PreviousPeriod pages back one period. Unsaved changes require
// ?confirm=true, otherwise the request fails with 409.
func (h *Handler) PreviousPeriod(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(s *timesheet.Session, confirm bool) error {
		return s.PreviousPeriod(r.Context(), confirm)
	})
}

// NextPeriod pages forward one period, gated like PreviousPeriod.
func (h *Handler) NextPeriod(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(s *timesheet.Session, confirm bool) error {
		return s.NextPeriod(r.Context(), confirm)
	})
}

// ReloadPeriod refetches the open period, gated like PreviousPeriod.
func (h *Handler) ReloadPeriod(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(s *timesheet.Session, confirm bool) error {
		return s.Reload(r.Context(), confirm)
	})
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, move func(*timesheet.Session, bool) error) {
	employeeID := chi.URLParam(r, "id")
	confirm := r.URL.Query().Get("confirm") == "true"

	sess, err := h.session(r, employeeID, timesheet.TimePoint{})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := move(sess, confirm); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSheetResponse(employeeID, sess))
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	if h.scenarios == nil {
		h.writeError(w, http.StatusNotFound, "no_scenarios", "scenarios are not enabled")
		return
	}
	var out []ScenarioResponse
	for _, sc := range h.scenarios.List() {
		out = append(out, ScenarioResponse{Name: sc.Name, Description: sc.Description})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// LoadScenario wipes the store, seeds the named scenario and drops all
// cached sessions so the next GET sees the fresh data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if h.scenarios == nil {
		h.writeError(w, http.StatusNotFound, "no_scenarios", "scenarios are not enabled")
		return
	}
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	if err := h.scenarios.Load(r.Context(), req.Name); err != nil {
		if errors.Is(err, ErrUnknownScenario) {
			h.writeError(w, http.StatusNotFound, "unknown_scenario", err.Error())
			return
		}
		h.writeDomainError(w, err)
		return
	}
	h.dropSessions()
	h.writeJSON(w, http.StatusOK, map[string]string{"loaded": req.Name})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response", logging.FieldError, err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timesheet.ErrUnsavedChanges):
		h.writeError(w, http.StatusConflict, "unsaved_changes", err.Error())
	case timesheet.IsBusy(err):
		h.writeError(w, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, timesheet.ErrDuplicateItem):
		h.writeError(w, http.StatusConflict, "duplicate_item", err.Error())
	case timesheet.IsClientError(err):
		h.writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		h.log.Error("internal error", logging.FieldError, err.Error())
		h.writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
