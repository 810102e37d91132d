/*
handlers.go - HTTP API handlers for the payroll report engine

PURPOSE:
  Exposes shift storage and report generation via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the payroll engine.

ENDPOINTS:
  Shifts:
    GET    /api/shifts[?month=YYYY-MM]   List shifts (optionally one period)
    POST   /api/shifts                   Create shift
    GET    /api/shifts/{id}              Get shift
    PUT    /api/shifts/{id}              Replace date/start/end/notes
    DELETE /api/shifts/{id}              Delete shift
    PUT    /api/shifts/{id}/overrides    Set or clear one override field
    POST   /api/shifts/import            Bulk text import

  Reports:
    GET    /api/report?month=YYYY-MM                 Report as JSON
    GET    /api/report/export?month=&format=csv|xlsx Report as a spreadsheet
    GET    /api/period?month=|date=                  Resolve a payroll period

  Scenarios:
    GET    /api/scenarios              List demo data sets
    POST   /api/scenarios/load         Load a demo data set

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: shift persistence
  - Engine: report generation under one rule set
  The engine is pure; every report reads a fresh snapshot from the store.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Bad dates/times/selectors, unknown override fields, bad input
  - 404: Shift not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication. Intended for a single user on a trusted network.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data sets
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/importer"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      payroll.ShiftStore
	Engine     *payroll.Engine
	ImportYear int

	mu              sync.Mutex
	currentScenario string

	// importMu makes list-dedupe-save one step across concurrent imports.
	importMu sync.Mutex
}

// NewHandler creates a handler using the default rules.
func NewHandler(store payroll.ShiftStore) *Handler {
	return &Handler{
		Store:      store,
		Engine:     payroll.DefaultEngine(),
		ImportYear: importer.DefaultYear,
	}
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns all shifts, or those of one period when ?month= is set.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	var (
		shifts []payroll.ShiftRecord
		err    error
	)
	if month := r.URL.Query().Get("month"); month != "" {
		period, perr := h.Engine.Rules.Period.PeriodForSelector(month)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid month", perr)
			return
		}
		shifts, err = h.Store.ListRange(r.Context(), period.Start, period.End)
	} else {
		shifts, err = h.Store.List(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	writeJSON(w, http.StatusOK, toShiftDTOs(shifts))
}

// GetShift returns a single shift.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Store.Get(r.Context(), shiftID(r))
	if err != nil {
		handleError(w, "Failed to get shift", err)
		return
	}

	writeJSON(w, http.StatusOK, toShiftDTO(shift))
}

// CreateShift stores a new shift under a generated ID.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := req.toRecord(payroll.ShiftID(uuid.NewString()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}

	if err := h.Store.Save(r.Context(), shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create shift", err)
		return
	}

	log.WithFields(log.Fields{"id": shift.ID, "date": shift.Date.String()}).Info("Shift created")
	writeJSON(w, http.StatusCreated, toShiftDTO(shift))
}

// UpdateShift replaces a shift's date, times and notes. Overrides are kept.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	existing, err := h.Store.Get(r.Context(), shiftID(r))
	if err != nil {
		handleError(w, "Failed to get shift", err)
		return
	}

	shift, err := req.toRecord(existing.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}
	shift.Overrides = existing.Overrides

	if err := h.Store.Save(r.Context(), shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update shift", err)
		return
	}

	writeJSON(w, http.StatusOK, toShiftDTO(shift))
}

// DeleteShift removes a shift.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), shiftID(r)); err != nil {
		handleError(w, "Failed to delete shift", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetOverride sets one override field of a shift, or clears it when the
// value is null.
func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := h.Store.Get(r.Context(), shiftID(r))
	if err != nil {
		handleError(w, "Failed to get shift", err)
		return
	}

	overrides := shift.Overrides.Clone()
	if overrides == nil {
		overrides = &payroll.Overrides{}
	}

	value := bytes.TrimSpace(req.Value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		err = overrides.Clear(req.Field)
	} else {
		var v any
		if err = json.Unmarshal(value, &v); err == nil {
			err = overrides.Set(req.Field, v)
		}
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid override", err)
		return
	}

	if overrides.IsEmpty() {
		overrides = nil
	}
	shift.Overrides = overrides

	if err := h.Store.Save(r.Context(), shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save override", err)
		return
	}

	writeJSON(w, http.StatusOK, toShiftDTO(shift))
}

// ImportShifts parses a bulk text paste and stores the shifts that are not
// already present.
func (h *Handler) ImportShifts(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Import text is required", nil)
		return
	}

	year := req.Year
	if year == 0 {
		year = h.ImportYear
	}
	parsed := importer.NewParser(year).Parse(req.Text)

	h.importMu.Lock()
	defer h.importMu.Unlock()

	existing, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	fresh, duplicates := importer.Dedupe(existing, parsed.Shifts)

	if len(fresh) > 0 {
		if err := h.Store.SaveBatch(r.Context(), fresh); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save shifts", err)
			return
		}
	}

	resp := ImportResponse{
		Imported:   len(fresh),
		Duplicates: duplicates,
		Skipped:    toSkippedDTOs(parsed.Skipped),
		Shifts:     toShiftDTOs(fresh),
	}
	if sel, ok := importer.SuggestSelector(h.Engine.Rules.Period, fresh); ok {
		resp.SuggestedSelector = sel
	}

	log.WithFields(log.Fields{
		"imported":   resp.Imported,
		"duplicates": resp.Duplicates,
		"skipped":    len(resp.Skipped),
	}).Info("Bulk import finished")
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetReport computes the report for ?month= (default: the current period).
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.buildReport(r)
	if err != nil {
		handleError(w, "Failed to generate report", err)
		return
	}

	writeJSON(w, http.StatusOK, NewReportDTO(report))
}

// ExportReport streams the report as CSV or XLSX.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err)
		return
	}

	report, err := h.buildReport(r)
	if err != nil {
		handleError(w, "Failed to generate report", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, report); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export report", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(report.Selector)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetPeriod resolves ?month=YYYY-MM to its date range, or ?date=YYYY-MM-DD
// to the period containing it.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	pc := h.Engine.Rules.Period
	q := r.URL.Query()

	selector := q.Get("month")
	if d := q.Get("date"); selector == "" && d != "" {
		date, err := generic.ParseDate(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		selector = pc.SelectorFor(date)
	}
	if selector == "" {
		selector = pc.SelectorFor(generic.Today())
	}

	period, err := pc.PeriodForSelector(selector)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	writeJSON(w, http.StatusOK, toPeriodDTO(selector, period))
}

func (h *Handler) buildReport(r *http.Request) (*payroll.Report, error) {
	selector := r.URL.Query().Get("month")
	if selector == "" {
		selector = h.Engine.Rules.Period.SelectorFor(generic.Today())
	}
	period, err := h.Engine.Rules.Period.PeriodForSelector(selector)
	if err != nil {
		return nil, err
	}

	shifts, err := h.Store.ListRange(r.Context(), period.Start, period.End)
	if err != nil {
		return nil, err
	}
	return h.Engine.GenerateReport(shifts, selector)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func shiftID(r *http.Request) payroll.ShiftID {
	return payroll.ShiftID(chi.URLParam(r, "id"))
}

func (req ShiftRequest) toRecord(id payroll.ShiftID) (payroll.ShiftRecord, error) {
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		return payroll.ShiftRecord{}, err
	}
	start, err := importer.NormalizeTime(req.Start)
	if err != nil {
		return payroll.ShiftRecord{}, err
	}
	end, err := importer.NormalizeTime(req.End)
	if err != nil {
		return payroll.ShiftRecord{}, err
	}
	return payroll.ShiftRecord{
		ID:    id,
		Date:  date,
		Start: start,
		End:   end,
		Notes: req.Notes,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// handleError picks the status from the error category.
func handleError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Shift not found", err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
