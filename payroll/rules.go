package payroll

import (
	"fmt"
	"math"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// RULES - The numbers the engine works with
// =============================================================================

// Rules holds every constant of the payroll computation. DefaultRules is the
// rule set the product ships with; factory.ParseRules builds custom ones.
type Rules struct {
	Period generic.PeriodConfig

	// Continuity: a gap of at most ContinuityGap hours (plus GapTolerance)
	// keeps the day's overtime ladder going.
	ContinuityGap float64
	GapTolerance  float64

	// Overtime tiers over continuous same-day hours:
	// [0, RegularLimit) regular, [RegularLimit, Extra125Limit) 125%, beyond 150%.
	RegularLimit  float64
	Extra125Limit float64

	// Wake-up window in decimal hours, [WakeupStart, WakeupEnd).
	WakeupStart float64
	WakeupEnd   float64

	// Weekly quota.
	ShiftCredit    float64 // credited per qualifying shift
	ShiftThreshold float64 // hours left after the wake-up slice needed to qualify
	MaxShifts      float64
	WakeupUnit     float64 // hours that make one full wake-up
	MaxWakeups     float64
	WeeklyTarget   float64

	// Labels written into the report.
	ExtraLabel       string
	PartialWeekLabel string
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		Period:           generic.DefaultPeriodConfig(),
		ContinuityGap:    1.5,
		GapTolerance:     0.001,
		RegularLimit:     8.0,
		Extra125Limit:    10.0,
		WakeupStart:      6.5,
		WakeupEnd:        8.0,
		ShiftCredit:      8.5,
		ShiftThreshold:   8.0,
		MaxShifts:        3,
		WakeupUnit:       1.5,
		MaxWakeups:       3,
		WeeklyTarget:     30,
		ExtraLabel:       "Extra",
		PartialWeekLabel: "Partial week",
	}
}

// Validate reports inconsistent rule sets.
func (r Rules) Validate() error {
	switch {
	case r.ContinuityGap < 0 || r.GapTolerance < 0:
		return fmt.Errorf("%w: continuity gap must be non-negative", generic.ErrInvalidRules)
	case r.RegularLimit <= 0 || r.Extra125Limit < r.RegularLimit:
		return fmt.Errorf("%w: overtime tiers must be increasing", generic.ErrInvalidRules)
	case r.WakeupEnd <= r.WakeupStart:
		return fmt.Errorf("%w: wake-up window end must follow its start", generic.ErrInvalidRules)
	case r.WakeupUnit <= 0:
		return fmt.Errorf("%w: wake-up unit must be positive", generic.ErrInvalidRules)
	case r.ShiftCredit < 0 || r.ShiftThreshold < 0 || r.MaxShifts < 0 || r.MaxWakeups < 0 || r.WeeklyTarget < 0:
		return fmt.Errorf("%w: quota values must be non-negative", generic.ErrInvalidRules)
	case r.ExtraLabel == "":
		return fmt.Errorf("%w: extra label is required", generic.ErrInvalidRules)
	}
	return nil
}

// tiers returns the three pay bands as [lo, hi) ranges.
func (r Rules) tiers() [3][2]float64 {
	return [3][2]float64{
		{0, r.RegularLimit},
		{r.RegularLimit, r.Extra125Limit},
		{r.Extra125Limit, math.Inf(1)},
	}
}
