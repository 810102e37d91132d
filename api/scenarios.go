/*
scenarios.go - Demo data sets for testing and demonstrations

PURPOSE:

	Provides pre-built shift collections that show specific rules of the
	report engine. Each scenario is written in the bulk import format and
	goes through the same importer as a user paste.

AVAILABLE SCENARIOS:

	quota-deduction:  A short full week that ends with a quota deduction
	four-shift-week:  Four full shifts; the fourth earns no quota
	partial-week:     A week that starts before the period, noted not deducted
	overtime-day:     Continuous same-day work climbing all three tiers
	overnight:        A shift crossing midnight

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Parse the scenario text with the importer
 3. Store the shifts in one batch

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "quota-deduction"}

ADDING NEW SCENARIOS:
 1. Add an entry to 'scenarios' with its import text

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - importer/importer.go: Text format
  - handlers.go: ResetDatabase
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/importer"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	Year int
	Text string
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "quota-deduction",
			Name:        "Quota Deduction",
			Description: "One wake-up and two full shifts earn 18.50 of 30 hours; 11.50 is deducted",
			Selector:    "2025-11",
		},
		Year: 2025,
		Text: "26.10 06:30-08:00\n27.10 08:00-16:30\n28.10 09:00-17:00",
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "four-shift-week",
			Name:        "Four-Shift Week",
			Description: "Only three shifts a week earn quota; the fourth is marked Extra",
			Selector:    "2025-11",
		},
		Year: 2025,
		Text: "26.10 09:00-17:00\n27.10 09:00-17:00\n28.10 09:00-17:00\n29.10 09:00-17:00",
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "partial-week",
			Name:        "Partial Week",
			Description: "The period opens mid-week; the week is noted instead of deducted",
			Selector:    "2025-11",
		},
		Year: 2025,
		Text: "20.10 09:00-17:00",
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "overtime-day",
			Name:        "Overtime Day",
			Description: "Three shifts joined by short breaks reach the 125% and 150% tiers",
			Selector:    "2025-11",
		},
		Year: 2025,
		Text: "2.11 08:00-12:00, 13:30-19:30, 20:00-22:00",
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "overnight",
			Name:        "Overnight Shift",
			Description: "A 22:00-02:00 shift counts 4 hours on its start date",
			Selector:    "2025-11",
		},
		Year: 2025,
		Text: "5.11 22:00-2:00",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if s, ok := findScenario(current); ok {
		writeJSON(w, http.StatusOK, s.ScenarioDTO)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces all data with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := h.loadScenario(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": s.ID,
		"selector": s.Selector,
	})
}

func (h *Handler) loadScenario(ctx context.Context, s scenario) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	parsed := importer.NewParser(s.Year).Parse(s.Text)
	if len(parsed.Skipped) > 0 {
		return fmt.Errorf("scenario %s: line %d: %s", s.ID, parsed.Skipped[0].Line, parsed.Skipped[0].Reason)
	}
	if err := h.Store.SaveBatch(ctx, parsed.Shifts); err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = s.ID
	h.mu.Unlock()

	log.WithFields(log.Fields{"scenario": s.ID, "shifts": len(parsed.Shifts)}).Info("Scenario loaded")
	return nil
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}
