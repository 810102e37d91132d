/*
Package factory provides JSON to Go rule-set conversion.

PURPOSE:
  Converts a JSON rule file into payroll.Rules. Every field is optional:
  anything left out keeps its payroll.DefaultRules value, so a file only
  lists what differs from the standard rules.

JSON SCHEMA:
  {
    "period": {"type": "payroll", "start_day": 20},
    "continuity_gap_hours": 1.5,
    "overtime": {"regular_limit": 8, "extra125_limit": 10},
    "wakeup":   {"start": "06:30", "end": "08:00", "unit_hours": 1.5, "max": 3},
    "shifts":   {"credit_hours": 8.5, "threshold_hours": 8, "max": 3},
    "weekly_target_hours": 30,
    "labels":   {"extra": "Extra", "partial_week": "Partial week"}
  }

KEY FEATURES:
  - Unknown fields are rejected
  - Wake-up bounds are clock times ("HH:MM")
  - The merged rule set is validated

USAGE:
  f := factory.NewRulesFactory()
  rules, err := f.ParseRules(jsonString)
  engine, err := payroll.NewEngine(rules)

SEE ALSO:
  - payroll/rules.go: Rules type definition
  - cmd/server, cmd/payroll: --rules flag
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RulesJSON is the JSON representation of a rule set.
type RulesJSON struct {
	Period            *PeriodJSON   `json:"period,omitempty"`
	ContinuityGap     *float64      `json:"continuity_gap_hours,omitempty"`
	Overtime          *OvertimeJSON `json:"overtime,omitempty"`
	Wakeup            *WakeupJSON   `json:"wakeup,omitempty"`
	Shifts            *ShiftsJSON   `json:"shifts,omitempty"`
	WeeklyTargetHours *float64      `json:"weekly_target_hours,omitempty"`
	Labels            *LabelsJSON   `json:"labels,omitempty"`
}

// PeriodJSON selects how month selectors map to date ranges.
type PeriodJSON struct {
	Type     string `json:"type"` // payroll, calendar_month
	StartDay int    `json:"start_day,omitempty"`
}

// OvertimeJSON holds the tier boundaries in hours.
type OvertimeJSON struct {
	RegularLimit  *float64 `json:"regular_limit,omitempty"`
	Extra125Limit *float64 `json:"extra125_limit,omitempty"`
}

// WakeupJSON describes the wake-up window.
type WakeupJSON struct {
	Start     string   `json:"start,omitempty"`
	End       string   `json:"end,omitempty"`
	UnitHours *float64 `json:"unit_hours,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// ShiftsJSON describes full-shift quota credit.
type ShiftsJSON struct {
	CreditHours    *float64 `json:"credit_hours,omitempty"`
	ThresholdHours *float64 `json:"threshold_hours,omitempty"`
	Max            *float64 `json:"max,omitempty"`
}

// LabelsJSON holds report labels.
type LabelsJSON struct {
	Extra       string `json:"extra,omitempty"`
	PartialWeek string `json:"partial_week,omitempty"`
}

// =============================================================================
// RULES FACTORY
// =============================================================================

// RulesFactory converts JSON rule sets to payroll.Rules.
type RulesFactory struct {
	base payroll.Rules
}

// NewRulesFactory creates a factory that overlays JSON on payroll.DefaultRules.
func NewRulesFactory() *RulesFactory {
	return &RulesFactory{base: payroll.DefaultRules()}
}

// ParseRules parses a JSON string into a validated rule set.
func (f *RulesFactory) ParseRules(jsonStr string) (payroll.Rules, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(jsonStr)))
	dec.DisallowUnknownFields()

	var rj RulesJSON
	if err := dec.Decode(&rj); err != nil {
		return payroll.Rules{}, fmt.Errorf("%w: failed to parse rules JSON: %v", generic.ErrInvalidRules, err)
	}
	return f.FromJSON(rj)
}

// LoadFile reads a rule file. An empty path yields the default rules.
func (f *RulesFactory) LoadFile(path string) (payroll.Rules, error) {
	if path == "" {
		return f.base, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return payroll.Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	return f.ParseRules(string(b))
}

// FromJSON overlays rj on the factory's base rules and validates the result.
func (f *RulesFactory) FromJSON(rj RulesJSON) (payroll.Rules, error) {
	r := f.base

	if rj.Period != nil {
		pc, err := parsePeriodConfig(*rj.Period)
		if err != nil {
			return payroll.Rules{}, err
		}
		r.Period = pc
	}
	setFloat(&r.ContinuityGap, rj.ContinuityGap)
	setFloat(&r.WeeklyTarget, rj.WeeklyTargetHours)

	if o := rj.Overtime; o != nil {
		setFloat(&r.RegularLimit, o.RegularLimit)
		setFloat(&r.Extra125Limit, o.Extra125Limit)
	}

	if w := rj.Wakeup; w != nil {
		if err := setClock(&r.WakeupStart, "wakeup.start", w.Start); err != nil {
			return payroll.Rules{}, err
		}
		if err := setClock(&r.WakeupEnd, "wakeup.end", w.End); err != nil {
			return payroll.Rules{}, err
		}
		setFloat(&r.WakeupUnit, w.UnitHours)
		setFloat(&r.MaxWakeups, w.Max)
	}

	if s := rj.Shifts; s != nil {
		setFloat(&r.ShiftCredit, s.CreditHours)
		setFloat(&r.ShiftThreshold, s.ThresholdHours)
		setFloat(&r.MaxShifts, s.Max)
	}

	if l := rj.Labels; l != nil {
		if l.Extra != "" {
			r.ExtraLabel = l.Extra
		}
		if l.PartialWeek != "" {
			r.PartialWeekLabel = l.PartialWeek
		}
	}

	if err := r.Validate(); err != nil {
		return payroll.Rules{}, err
	}
	return r, nil
}

// ToJSON converts a rule set to its JSON form.
func (f *RulesFactory) ToJSON(r payroll.Rules) RulesJSON {
	return RulesJSON{
		Period:        &PeriodJSON{Type: string(r.Period.Type), StartDay: r.Period.StartDay},
		ContinuityGap: ptr(r.ContinuityGap),
		Overtime: &OvertimeJSON{
			RegularLimit:  ptr(r.RegularLimit),
			Extra125Limit: ptr(r.Extra125Limit),
		},
		Wakeup: &WakeupJSON{
			Start:     generic.FormatClock(r.WakeupStart),
			End:       generic.FormatClock(r.WakeupEnd),
			UnitHours: ptr(r.WakeupUnit),
			Max:       ptr(r.MaxWakeups),
		},
		Shifts: &ShiftsJSON{
			CreditHours:    ptr(r.ShiftCredit),
			ThresholdHours: ptr(r.ShiftThreshold),
			Max:            ptr(r.MaxShifts),
		},
		WeeklyTargetHours: ptr(r.WeeklyTarget),
		Labels:            &LabelsJSON{Extra: r.ExtraLabel, PartialWeek: r.PartialWeekLabel},
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parsePeriodConfig(pj PeriodJSON) (generic.PeriodConfig, error) {
	pc := generic.DefaultPeriodConfig()
	switch pj.Type {
	case "", string(generic.PeriodPayroll):
		pc.Type = generic.PeriodPayroll
	case string(generic.PeriodCalendarMonth):
		pc.Type = generic.PeriodCalendarMonth
	default:
		return generic.PeriodConfig{}, fmt.Errorf("%w: unknown period type %q", generic.ErrInvalidRules, pj.Type)
	}
	if pj.StartDay != 0 {
		if pj.StartDay < 2 || pj.StartDay > 28 {
			return generic.PeriodConfig{}, fmt.Errorf("%w: period start_day must be within 2-28", generic.ErrInvalidRules)
		}
		pc.StartDay = pj.StartDay
	}
	return pc, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setClock(dst *float64, field, v string) error {
	if v == "" {
		return nil
	}
	h, err := generic.ToDecimalHours(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", generic.ErrInvalidRules, field, err)
	}
	*dst = h
	return nil
}

func ptr(v float64) *float64 { return &v }
