/*
handlers.go - HTTP API handlers for the planning engine

PURPOSE:
  Exposes the import pipeline and the coverage read path via REST. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Import:
    POST   /api/admin/import           Upload a roster workbook

  Cycles:
    GET    /api/cycles                 List cycles
    POST   /api/admin/cycles           Bootstrap a cycle + its 4 weeks
    POST   /api/admin/cycles/{id}/activate

  Weeks:
    GET    /api/weeks/{id}             Week with needs + assignments
    GET    /api/weeks/{id}/coverage    Reconciled coverage rows

  Needs:
    POST   /api/admin/needs/bulk       Upsert need slots

  Employees:
    GET    /api/employees              List employees

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input (bad dates, missing fields)
  - 404: Unknown cycle/week
  - 422: Recognized request, unusable workbook (no layout, no assignments)
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/planning-engine/importer"
	"github.com/warp/planning-engine/planning"
)

// maxWorkbookBytes caps uploaded workbook size.
const maxWorkbookBytes = 20 << 20

// Handler holds the API dependencies.
type Handler struct {
	store    planning.Store
	importer *importer.Importer
}

func NewHandler(store planning.Store) *Handler {
	return &Handler{store: store, importer: importer.New(store)}
}

// =============================================================================
// IMPORT TRIGGER
// =============================================================================

// ImportWorkbook accepts a multipart upload with the workbook in the "file"
// field plus the target-period fields: cycle_number, year, and either
// monday (YYYY-MM-DD) or iso_week. Optional: team_id.
func (h *Handler) ImportWorkbook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxWorkbookBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("missing workbook file field 'file'"))
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxWorkbookBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	period, err := periodFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	summary, err := h.importer.Import(r.Context(), payload, period)
	if err != nil {
		status := http.StatusInternalServerError
		if planning.IsClientError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// periodFromForm resolves the target-period descriptor. The Monday is
// supplied directly or derived from an ISO week number plus the year.
func periodFromForm(r *http.Request) (importer.Period, error) {
	cycleNumber, err := strconv.Atoi(r.FormValue("cycle_number"))
	if err != nil {
		return importer.Period{}, errors.New("invalid or missing cycle_number")
	}
	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil {
		return importer.Period{}, errors.New("invalid or missing year")
	}

	var monday time.Time
	switch {
	case r.FormValue("monday") != "":
		parsed, err := time.Parse("2006-01-02", r.FormValue("monday"))
		if err != nil {
			return importer.Period{}, fmt.Errorf("invalid monday date: %w", err)
		}
		monday = planning.Monday(parsed)
	case r.FormValue("iso_week") != "":
		isoWeek, err := strconv.Atoi(r.FormValue("iso_week"))
		if err != nil || isoWeek < 1 || isoWeek > 53 {
			return importer.Period{}, errors.New("invalid iso_week")
		}
		monday = planning.MondayOfISOWeek(year, isoWeek)
	default:
		return importer.Period{}, errors.New("either monday or iso_week is required")
	}

	return importer.Period{
		Monday:      monday,
		CycleNumber: cycleNumber,
		Year:        year,
		TeamID:      r.FormValue("team_id"),
	}, nil
}

// =============================================================================
// CYCLES
// =============================================================================

func (h *Handler) ListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.store.ListCycles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]CycleDTO, 0, len(cycles))
	for _, c := range cycles {
		dtos = append(dtos, toCycleDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// BootstrapCycle creates a cycle and derives its 4 weeks, without importing
// any assignments.
func (h *Handler) BootstrapCycle(w http.ResponseWriter, r *http.Request) {
	var req BootstrapCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	monday, err := time.Parse("2006-01-02", req.Monday)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid monday date: %w", err))
		return
	}
	if !planning.IsMonday(monday) {
		writeError(w, http.StatusBadRequest, planning.ErrNotMonday)
		return
	}

	ctx := r.Context()
	cycle, err := h.store.UpsertCycle(ctx, planning.Cycle{
		Year:      req.Year,
		Number:    req.CycleNumber,
		StartDate: monday,
		EndDate:   planning.CycleEnd(monday),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := h.store.UpsertWeeks(ctx, planning.CycleWeeks(cycle.ID, monday)); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	weeks, err := h.store.WeeksByCycle(ctx, cycle.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	weekDTOs := make([]WeekDTO, 0, len(weeks))
	for _, wk := range weeks {
		weekDTOs = append(weekDTOs, toWeekDTO(wk))
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"cycle": toCycleDTO(cycle),
		"weeks": weekDTOs,
	})
}

func (h *Handler) ActivateCycle(w http.ResponseWriter, r *http.Request) {
	id := planning.CycleID(chi.URLParam(r, "id"))
	if err := h.store.ActivateCycle(r.Context(), id); err != nil {
		if errors.Is(err, planning.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active", "cycle_id": string(id)})
}

// =============================================================================
// COVERAGE READ PATH
// =============================================================================

// GetWeek returns the full set of need and assignment rows for a week.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	week, needs, assignments, ok := h.loadWeek(w, r)
	if !ok {
		return
	}

	detail := WeekDetailDTO{
		Week:        toWeekDTO(week),
		Needs:       make([]NeedSlotDTO, 0, len(needs)),
		Assignments: make([]AssignmentDTO, 0, len(assignments)),
	}
	for _, n := range needs {
		detail.Needs = append(detail.Needs, toNeedSlotDTO(n))
	}
	for _, a := range assignments {
		detail.Assignments = append(detail.Assignments, toAssignmentDTO(a))
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetWeekCoverage reconciles needs against assignments for a week.
func (h *Handler) GetWeekCoverage(w http.ResponseWriter, r *http.Request) {
	week, needs, assignments, ok := h.loadWeek(w, r)
	if !ok {
		return
	}

	rows, err := planning.BuildCoverage(week, needs, assignments)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]CoverageRowDTO, 0, len(rows))
	for _, row := range rows {
		dto := CoverageRowDTO{Start: row.Start, End: row.End}
		for _, category := range planning.Categories() {
			cov, ok := row.ByCategory[category]
			if !ok {
				continue
			}
			dto.ByCategory = append(dto.ByCategory, CoverageCellDTO{
				Category: string(category),
				Required: cov.Required,
				Assigned: cov.Assigned,
				Gap:      cov.Gap,
			})
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) loadWeek(w http.ResponseWriter, r *http.Request) (planning.Week, []planning.NeedSlot, []planning.Assignment, bool) {
	ctx := r.Context()
	id := planning.WeekID(chi.URLParam(r, "id"))

	week, err := h.store.GetWeek(ctx, id)
	if err != nil {
		if errors.Is(err, planning.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return planning.Week{}, nil, nil, false
	}

	needs, err := h.store.NeedSlotsByWeek(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return planning.Week{}, nil, nil, false
	}
	assignments, err := h.store.AssignmentsByWeek(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return planning.Week{}, nil, nil, false
	}
	return week, needs, assignments, true
}

// =============================================================================
// NEEDS
// =============================================================================

func (h *Handler) BulkUpsertNeeds(w http.ResponseWriter, r *http.Request) {
	var req NeedsBulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	needs := make([]planning.NeedSlot, 0, len(req.Needs))
	for _, n := range req.Needs {
		category := planning.Category(n.Category)
		if !category.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown category %q", n.Category))
			return
		}
		if !planning.ValidDay(n.Day) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid day_of_week %d", n.Day))
			return
		}
		if n.Required < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("negative required_count for %s %s", n.Start, n.Category))
			return
		}
		needs = append(needs, planning.NeedSlot{
			WeekID:   planning.WeekID(n.WeekID),
			Day:      n.Day,
			Start:    n.Start,
			End:      n.End,
			Category: category,
			Required: n.Required,
		})
	}

	if err := h.store.UpsertNeedSlots(r.Context(), needs); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"upserted": len(needs)})
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	employees, err := h.store.ListEmployees(r.Context(), includeInactive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
