// Package payroll turns raw work-shift records into a payroll report.
// It uses the generic primitives with shift-specific overtime tiers,
// same-day continuity and the weekly attendance quota.
package payroll

import "github.com/warp/payroll-engine/generic"

// =============================================================================
// SHIFT RECORD - Caller-owned input
// =============================================================================

// ShiftID is assigned by the caller (import, API, CLI) and never by the engine.
type ShiftID string

// ShiftRecord is one worked shift. End may be earlier than Start to denote a
// shift running past midnight.
type ShiftRecord struct {
	ID        ShiftID
	Date      generic.TimePoint
	Start     string // "HH:MM"
	End       string // "HH:MM"
	Notes     string // free text, never interpreted
	Overrides *Overrides
}

// Overrides replaces computed numbers for display only. A nil field falls
// back to the engine value; the engine itself never reads these.
type Overrides struct {
	Regular      *float64 `json:"regular,omitempty"`
	Extra125     *float64 `json:"extra125,omitempty"`
	Extra150     *float64 `json:"extra150,omitempty"`
	QuotaDisplay *string  `json:"quotaDisplay,omitempty"`
	Deduction    *float64 `json:"deduction,omitempty"`
}

// =============================================================================
// BREAKDOWN - Derived per-shift numbers
// =============================================================================

// Breakdown is the engine's annotation of one shift.
type Breakdown struct {
	// Pay bands; they sum to the shift duration.
	Regular  float64
	Extra125 float64
	Extra150 float64

	// Set by the daily pass, consumed by the weekly pass.
	PotentialWakeup float64
	PotentialShift  float64

	// Set by the weekly pass.
	QuotaShift   float64 // 0 or Rules.ShiftCredit
	QuotaWakeup  float64 // 0 or the wake-up overlap
	QuotaDisplay string  // "8.50", "10.00" or Rules.ExtraLabel
	Deduction    float64 // only on the last shift of a full, under-quota week
	Notes        string  // engine annotation, e.g. the partial-week marker
}

// ReportRow is a shift together with its computed breakdown.
type ReportRow struct {
	Shift     ShiftRecord
	Duration  float64
	Breakdown Breakdown
	IsExtra   bool // no quota credit earned by this shift
}

// Week is the rows whose dates share a Sunday-to-Saturday span.
type Week struct {
	Sunday generic.TimePoint
	Rows   []ReportRow
}

// WeekSummary is the outcome of quota allocation for one week.
type WeekSummary struct {
	Sunday        generic.TimePoint
	Saturday      generic.TimePoint
	FilledShifts  float64
	FilledWakeups float64
	EarnedQuota   float64
	Deficit       float64
	IsPartial     bool
}

// Report is the flat, chronologically ordered result for one period.
type Report struct {
	Selector string
	Period   generic.Period
	Rows     []ReportRow
	Weeks    []WeekSummary
}
