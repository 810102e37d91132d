/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Shift CRUD and 404 handling
- Override set/clear
- Bulk import with duplicate detection
- Report JSON, CSV and XLSX export
- Period resolution
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/payroll-engine/store/memory"
)

// =============================================================================
// HELPERS
// =============================================================================

func setupTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	h := NewHandler(memory.NewMemory())
	return h, NewRouter(h)
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createShift(t *testing.T, srv http.Handler, date, start, end string) ShiftDTO {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/shifts", ShiftRequest{Date: date, Start: start, End: end})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ShiftDTO](t, rec)
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestShifts_CreateGetUpdateDelete(t *testing.T) {
	_, srv := setupTestServer(t)

	created := createShift(t, srv, "2025-11-03", "8:00", "16:30")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "08:00", created.Start, "times are normalized")
	assert.InDelta(t, 8.5, created.Duration, 1e-9)

	rec := do(t, srv, http.MethodGet, "/api/shifts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-11-03", decode[ShiftDTO](t, rec).Date)

	rec = do(t, srv, http.MethodPut, "/api/shifts/"+created.ID,
		ShiftRequest{Date: "2025-11-04", Start: "09:00", End: "17:00", Notes: "swapped"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[ShiftDTO](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "2025-11-04", updated.Date)
	assert.Equal(t, "swapped", updated.Notes)

	rec = do(t, srv, http.MethodDelete, "/api/shifts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/shifts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, http.MethodDelete, "/api/shifts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShifts_CreateRejectsBadInput(t *testing.T) {
	_, srv := setupTestServer(t)

	tests := []struct {
		name string
		req  ShiftRequest
	}{
		{"bad date", ShiftRequest{Date: "03/11/2025", Start: "08:00", End: "16:00"}},
		{"bad start", ShiftRequest{Date: "2025-11-03", Start: "8h", End: "16:00"}},
		{"bad end", ShiftRequest{Date: "2025-11-03", Start: "08:00", End: "25:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/shifts", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Details)
		})
	}
}

func TestShifts_ListByMonth(t *testing.T) {
	_, srv := setupTestServer(t)
	createShift(t, srv, "2025-10-19", "08:00", "16:00")
	createShift(t, srv, "2025-10-20", "08:00", "16:00")
	createShift(t, srv, "2025-11-20", "08:00", "16:00")

	rec := do(t, srv, http.MethodGet, "/api/shifts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ShiftDTO](t, rec), 3)

	rec = do(t, srv, http.MethodGet, "/api/shifts?month=2025-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	shifts := decode[[]ShiftDTO](t, rec)
	require.Len(t, shifts, 1)
	assert.Equal(t, "2025-10-20", shifts[0].Date)

	rec = do(t, srv, http.MethodGet, "/api/shifts?month=2025-13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// OVERRIDES
// =============================================================================

func TestOverrides_SetAndClear(t *testing.T) {
	// GIVEN: A stored shift
	// WHEN: Setting then clearing a regular-hours override
	// THEN: The report shows the override, then the computed value again

	_, srv := setupTestServer(t)
	shift := createShift(t, srv, "2025-11-03", "08:00", "16:00")
	path := "/api/shifts/" + shift.ID + "/overrides"

	rec := do(t, srv, http.MethodPut, path, map[string]any{"field": "regular", "value": 7.5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[ShiftDTO](t, rec)
	require.NotNil(t, got.Overrides)
	assert.Equal(t, 7.5, *got.Overrides.Regular)

	rec = do(t, srv, http.MethodPut, path, map[string]any{"field": "quotaDisplay", "value": "manual"})
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[ReportDTO](t, do(t, srv, http.MethodGet, "/api/report?month=2025-11", nil))
	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.Equal(t, 8.0, row.Breakdown.Regular)
	assert.Equal(t, 7.5, row.Effective.Regular)
	assert.Equal(t, "manual", row.Effective.QuotaDisplay)
	assert.Equal(t, []string{"regular", "quotaDisplay"}, row.Effective.Overridden)
	assert.Equal(t, "7.50", report.Totals.Regular)

	rec = do(t, srv, http.MethodPut, path, map[string]any{"field": "regular", "value": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodPut, path, map[string]any{"field": "quotaDisplay", "value": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[ShiftDTO](t, rec).Overrides)

	report = decode[ReportDTO](t, do(t, srv, http.MethodGet, "/api/report?month=2025-11", nil))
	assert.Equal(t, 8.0, report.Rows[0].Effective.Regular)
	assert.Empty(t, report.Rows[0].Effective.Overridden)
}

func TestOverrides_RejectsUnknownFieldAndBadValue(t *testing.T) {
	_, srv := setupTestServer(t)
	shift := createShift(t, srv, "2025-11-03", "08:00", "16:00")
	path := "/api/shifts/" + shift.ID + "/overrides"

	rec := do(t, srv, http.MethodPut, path, map[string]any{"field": "bonus", "value": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, path, map[string]any{"field": "deduction", "value": "lots"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, v := range []any{"NaN", "Inf", "+Inf", "1e400", -2} {
		rec = do(t, srv, http.MethodPut, path, map[string]any{"field": "regular", "value": v})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%v", v)
		assert.NotEmpty(t, decode[ErrorResponse](t, rec).Details)
	}

	// Nothing was stored, so the report still builds.
	rec = do(t, srv, http.MethodGet, "/api/report?month=2025-11", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[ReportDTO](t, rec).Rows[0].Effective.Overridden)

	rec = do(t, srv, http.MethodPut, "/api/shifts/missing/overrides", map[string]any{"field": "regular", "value": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImport_DedupesAndReportsSkippedLines(t *testing.T) {
	_, srv := setupTestServer(t)

	text := "26.10 (השכמה) 6:30-8:00\n27.10- 08:00-16:30, 18:00-20:00\nnot a shift\n"
	rec := do(t, srv, http.MethodPost, "/api/shifts/import", ImportRequest{Text: text, Year: 2025})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[ImportResponse](t, rec)
	assert.Equal(t, 3, first.Imported)
	assert.Equal(t, 0, first.Duplicates)
	require.Len(t, first.Skipped, 1)
	assert.Equal(t, 3, first.Skipped[0].Line)
	assert.Equal(t, "2025-11", first.SuggestedSelector)

	// Pasting the same text again stores nothing new.
	rec = do(t, srv, http.MethodPost, "/api/shifts/import", ImportRequest{Text: text, Year: 2025})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[ImportResponse](t, rec)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 3, second.Duplicates)
	assert.Empty(t, second.SuggestedSelector)

	assert.Len(t, decode[[]ShiftDTO](t, do(t, srv, http.MethodGet, "/api/shifts", nil)), 3)
}

func TestImport_ConcurrentSameTextStoredOnce(t *testing.T) {
	// GIVEN: The same paste submitted by several clients at once
	// WHEN: All imports finish
	// THEN: Each shift is stored once and the imported counts add up to it

	h, srv := setupTestServer(t)
	body, err := json.Marshal(ImportRequest{Text: "26.10 06:30-08:00\n27.10 08:00-16:30\n28.10 09:00-17:00\n", Year: 2025})
	require.NoError(t, err)

	const clients = 8
	imported := make([]int, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/shifts/import", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code == http.StatusOK {
				var resp ImportResponse
				if json.Unmarshal(rec.Body.Bytes(), &resp) == nil {
					imported[i] = resp.Imported
				}
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range imported {
		total += n
	}
	assert.Equal(t, 3, total)

	shifts, err := h.Store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, shifts, 3)
}

func TestImport_RequiresText(t *testing.T) {
	_, srv := setupTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/shifts/import", ImportRequest{Text: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// REPORT
// =============================================================================

func TestReport_WeeklyDeduction(t *testing.T) {
	// GIVEN: One wake-up and two full shifts in a week inside the period
	// WHEN: Generating the report
	// THEN: 18.5 hours are earned and 11.5 is deducted on the last row

	_, srv := setupTestServer(t)
	createShift(t, srv, "2025-10-26", "06:30", "08:00")
	createShift(t, srv, "2025-10-27", "08:00", "16:30")
	createShift(t, srv, "2025-10-28", "09:00", "17:00")

	rec := do(t, srv, http.MethodGet, "/api/report?month=2025-11", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[ReportDTO](t, rec)

	assert.Equal(t, PeriodDTO{Selector: "2025-11", Start: "2025-10-20", End: "2025-11-19"}, report.Period)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, "Sunday", report.Rows[0].Weekday)
	assert.Equal(t, "1.50", report.Rows[0].Breakdown.QuotaDisplay)
	assert.Equal(t, "8.50", report.Rows[1].Breakdown.QuotaDisplay)
	assert.Equal(t, 11.5, report.Rows[2].Breakdown.Deduction)

	require.Len(t, report.Weeks, 1)
	assert.Equal(t, 18.5, report.Weeks[0].EarnedQuota)
	assert.False(t, report.Weeks[0].IsPartial)
	assert.Equal(t, 3, report.Totals.Shifts)
	assert.Equal(t, "11.50", report.Totals.Deduction)
	assert.Equal(t, "18.00", report.Totals.Hours)
}

func TestReport_InvalidMonth(t *testing.T) {
	_, srv := setupTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/report?month=November", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport_InvalidStoredShift(t *testing.T) {
	// A record written straight to the store with a bad time fails the
	// whole report as a client error.
	h, srv := setupTestServer(t)
	createShift(t, srv, "2025-11-03", "08:00", "16:00")
	shifts, err := h.Store.List(context.Background())
	require.NoError(t, err)
	bad := shifts[0]
	bad.End = "16:75"
	require.NoError(t, h.Store.Save(context.Background(), bad))

	rec := do(t, srv, http.MethodGet, "/api/report?month=2025-11", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport_ExportCSV(t *testing.T) {
	_, srv := setupTestServer(t)
	createShift(t, srv, "2025-11-03", "08:00", "16:00")

	rec := do(t, srv, http.MethodGet, "/api/report/export?month=2025-11&format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="payroll-2025-11.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Date,Day,Start,End"))
	assert.True(t, strings.HasPrefix(lines[1], "2025-11-03,"))
	assert.True(t, strings.HasPrefix(lines[2], "Total,"))
}

func TestReport_ExportXLSX(t *testing.T) {
	_, srv := setupTestServer(t)
	createShift(t, srv, "2025-11-03", "08:00", "16:00")

	rec := do(t, srv, http.MethodGet, "/api/report/export?month=2025-11&format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="payroll-2025-11.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	cell, err := f.GetCellValue("2025-11", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-03", cell)
}

func TestReport_ExportRejectsUnknownFormat(t *testing.T) {
	_, srv := setupTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/report/export?month=2025-11&format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PERIOD
// =============================================================================

func TestPeriod_Resolve(t *testing.T) {
	_, srv := setupTestServer(t)

	tests := []struct {
		query string
		want  PeriodDTO
	}{
		{"month=2025-11", PeriodDTO{Selector: "2025-11", Start: "2025-10-20", End: "2025-11-19"}},
		{"month=2026-01", PeriodDTO{Selector: "2026-01", Start: "2025-12-20", End: "2026-01-19"}},
		{"date=2025-11-19", PeriodDTO{Selector: "2025-11", Start: "2025-10-20", End: "2025-11-19"}},
		{"date=2025-11-20", PeriodDTO{Selector: "2025-12", Start: "2025-11-20", End: "2025-12-19"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/api/period?"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, decode[PeriodDTO](t, rec))
		})
	}

	rec := do(t, srv, http.MethodGet, "/api/period?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestReset_ClearsShifts(t *testing.T) {
	_, srv := setupTestServer(t)
	createShift(t, srv, "2025-11-03", "08:00", "16:00")

	rec := do(t, srv, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]ShiftDTO](t, do(t, srv, http.MethodGet, "/api/shifts", nil)))
}
