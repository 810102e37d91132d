/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the payroll model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Shifts:
    ShiftDTO, ShiftRequest, OverrideRequest

  Import:
    ImportRequest, ImportResponse, SkippedLineDTO

  Report:
    ReportDTO, ReportRowDTO, BreakdownDTO, WeekDTO, TotalsDTO, PeriodDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/types.go: Domain types
*/
package api

import (
	"encoding/json"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/importer"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftDTO represents a stored shift.
type ShiftDTO struct {
	ID        string             `json:"id"`
	Date      string             `json:"date"`
	Start     string             `json:"start"`
	End       string             `json:"end"`
	Duration  float64            `json:"duration"`
	Notes     string             `json:"notes,omitempty"`
	Overrides *payroll.Overrides `json:"overrides,omitempty"`
}

// ShiftRequest creates or replaces a shift. Date, start and end are required.
type ShiftRequest struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	Notes string `json:"notes"`
}

// OverrideRequest sets one override field; a null value clears it.
type OverrideRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportRequest is a bulk text paste.
type ImportRequest struct {
	Text string `json:"text"`
	Year int    `json:"year,omitempty"`
}

// ImportResponse reports what the import stored.
type ImportResponse struct {
	Imported          int              `json:"imported"`
	Duplicates        int              `json:"duplicates"`
	Skipped           []SkippedLineDTO `json:"skipped"`
	SuggestedSelector string           `json:"suggestedSelector,omitempty"`
	Shifts            []ShiftDTO       `json:"shifts"`
}

// SkippedLineDTO is an input line that produced no shift.
type SkippedLineDTO struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// =============================================================================
// REPORT
// =============================================================================

// PeriodDTO is a resolved month selector.
type PeriodDTO struct {
	Selector string `json:"selector"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// BreakdownDTO is the computed annotation of a shift.
type BreakdownDTO struct {
	Regular         float64 `json:"regular"`
	Extra125        float64 `json:"extra125"`
	Extra150        float64 `json:"extra150"`
	PotentialWakeup float64 `json:"potentialWakeup"`
	PotentialShift  float64 `json:"potentialShift"`
	QuotaShift      float64 `json:"quotaShift"`
	QuotaWakeup     float64 `json:"quotaWakeup"`
	QuotaDisplay    string  `json:"quotaDisplay"`
	Deduction       float64 `json:"deduction"`
	Notes           string  `json:"notes,omitempty"`
}

// EffectiveDTO holds the values a client displays: overrides where set,
// computed values otherwise.
type EffectiveDTO struct {
	Regular      float64  `json:"regular"`
	Extra125     float64  `json:"extra125"`
	Extra150     float64  `json:"extra150"`
	QuotaDisplay string   `json:"quotaDisplay"`
	Deduction    float64  `json:"deduction"`
	Overridden   []string `json:"overridden,omitempty"`
}

// ReportRowDTO is one shift of a report.
type ReportRowDTO struct {
	ShiftDTO
	Weekday   string       `json:"weekday"`
	Breakdown BreakdownDTO `json:"breakdown"`
	Effective EffectiveDTO `json:"effective"`
	IsExtra   bool         `json:"isExtra"`
}

// WeekDTO is the quota outcome of one Sunday-Saturday week.
type WeekDTO struct {
	Sunday        string  `json:"sunday"`
	Saturday      string  `json:"saturday"`
	FilledShifts  float64 `json:"filledShifts"`
	FilledWakeups float64 `json:"filledWakeups"`
	EarnedQuota   float64 `json:"earnedQuota"`
	Deficit       float64 `json:"deficit"`
	IsPartial     bool    `json:"isPartial"`
}

// TotalsDTO is the report footer, formatted to two decimals.
type TotalsDTO struct {
	Shifts    int    `json:"shifts"`
	Hours     string `json:"hours"`
	Regular   string `json:"regular"`
	Extra125  string `json:"extra125"`
	Extra150  string `json:"extra150"`
	Deduction string `json:"deduction"`
}

// ReportDTO is the full report response.
type ReportDTO struct {
	Period PeriodDTO      `json:"period"`
	Rows   []ReportRowDTO `json:"rows"`
	Weeks  []WeekDTO      `json:"weeks"`
	Totals TotalsDTO      `json:"totals"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Selector    string `json:"selector"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toShiftDTO(s payroll.ShiftRecord) ShiftDTO {
	d, _ := generic.Duration(s.Start, s.End)
	return ShiftDTO{
		ID:        string(s.ID),
		Date:      s.Date.String(),
		Start:     s.Start,
		End:       s.End,
		Duration:  d,
		Notes:     s.Notes,
		Overrides: s.Overrides,
	}
}

func toShiftDTOs(shifts []payroll.ShiftRecord) []ShiftDTO {
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	return dtos
}

func toPeriodDTO(selector string, p generic.Period) PeriodDTO {
	return PeriodDTO{Selector: selector, Start: p.Start.String(), End: p.End.String()}
}

// NewReportDTO converts a report to its JSON form.
func NewReportDTO(report *payroll.Report) ReportDTO {
	rows := make([]ReportRowDTO, len(report.Rows))
	for i, row := range report.Rows {
		shift := toShiftDTO(row.Shift)
		shift.Duration = row.Duration
		b := row.Breakdown
		rows[i] = ReportRowDTO{
			ShiftDTO: shift,
			Weekday:  row.Shift.Date.Weekday().String(),
			Breakdown: BreakdownDTO{
				Regular:         b.Regular,
				Extra125:        b.Extra125,
				Extra150:        b.Extra150,
				PotentialWakeup: b.PotentialWakeup,
				PotentialShift:  b.PotentialShift,
				QuotaShift:      b.QuotaShift,
				QuotaWakeup:     b.QuotaWakeup,
				QuotaDisplay:    b.QuotaDisplay,
				Deduction:       b.Deduction,
				Notes:           b.Notes,
			},
			Effective: EffectiveDTO{
				Regular:      row.EffectiveRegular(),
				Extra125:     row.EffectiveExtra125(),
				Extra150:     row.EffectiveExtra150(),
				QuotaDisplay: row.EffectiveQuotaDisplay(),
				Deduction:    row.EffectiveDeduction(),
				Overridden:   overriddenFields(row),
			},
			IsExtra: row.IsExtra,
		}
	}

	weeks := make([]WeekDTO, len(report.Weeks))
	for i, w := range report.Weeks {
		weeks[i] = WeekDTO{
			Sunday:        w.Sunday.String(),
			Saturday:      w.Saturday.String(),
			FilledShifts:  w.FilledShifts,
			FilledWakeups: w.FilledWakeups,
			EarnedQuota:   w.EarnedQuota,
			Deficit:       w.Deficit,
			IsPartial:     w.IsPartial,
		}
	}

	t := payroll.Summarize(report.Rows)
	return ReportDTO{
		Period: toPeriodDTO(report.Selector, report.Period),
		Rows:   rows,
		Weeks:  weeks,
		Totals: TotalsDTO{
			Shifts:    t.Shifts,
			Hours:     t.Hours.Format(),
			Regular:   t.Regular.Format(),
			Extra125:  t.Extra125.Format(),
			Extra150:  t.Extra150.Format(),
			Deduction: t.Deduction.Format(),
		},
	}
}

func overriddenFields(row payroll.ReportRow) []string {
	var fields []string
	for _, f := range payroll.OverrideFields {
		if row.IsOverridden(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func toSkippedDTOs(skipped []importer.SkippedLine) []SkippedLineDTO {
	dtos := make([]SkippedLineDTO, len(skipped))
	for i, s := range skipped {
		dtos[i] = SkippedLineDTO{Line: s.Line, Text: s.Text, Reason: s.Reason}
	}
	return dtos
}
