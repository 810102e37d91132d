package generic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - The window a payroll report is computed for
// =============================================================================

// Period is an inclusive date range [Start, End].
//
// Examples:
//   - Payroll month 2025-11: Oct 20 - Nov 19
//   - Calendar month 2025-11: Nov 1 - Nov 30
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// ContainsWeek reports whether the whole Sunday-Saturday week starting at
// sunday lies inside the period.
func (p Period) ContainsWeek(sunday TimePoint) bool {
	return !sunday.Before(p.Start) && !sunday.AddDays(6).After(p.End)
}

// Validate rejects a period whose end precedes its start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType defines how periods are calculated
type PeriodType string

const (
	PeriodPayroll       PeriodType = "payroll"        // StartDay of previous month - StartDay-1 of selected month
	PeriodCalendarMonth PeriodType = "calendar_month" // 1st - last day of selected month
)

// DefaultPayrollStartDay is the day of the previous month a payroll period opens on.
const DefaultPayrollStartDay = 20

// PeriodConfig defines how to turn a month selector into a period.
type PeriodConfig struct {
	Type PeriodType

	// For payroll periods: day of the previous month the period starts on (2-28).
	StartDay int
}

// DefaultPeriodConfig is the 20th-to-19th payroll window.
func DefaultPeriodConfig() PeriodConfig {
	return PeriodConfig{Type: PeriodPayroll, StartDay: DefaultPayrollStartDay}
}

// =============================================================================
// SELECTORS - "YYYY-MM"
// =============================================================================

// ParseSelector splits a "YYYY-MM" selector.
func ParseSelector(selector string) (int, time.Month, error) {
	s := strings.TrimSpace(selector)
	y, m, ok := strings.Cut(s, "-")
	if !ok || len(y) != 4 || len(m) != 2 {
		return 0, 0, &FormatError{Field: "month", Value: selector, Expected: "YYYY-MM"}
	}
	year, err := strconv.Atoi(y)
	if err != nil || year < 1 {
		return 0, 0, &FormatError{Field: "month", Value: selector, Expected: "YYYY-MM"}
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, &FormatError{Field: "month", Value: selector, Expected: "YYYY-MM"}
	}
	return year, time.Month(month), nil
}

// FormatSelector builds a "YYYY-MM" selector.
func FormatSelector(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// PayrollPeriod resolves a selector with the default payroll configuration.
func PayrollPeriod(selector string) (Period, error) {
	return DefaultPeriodConfig().PeriodForSelector(selector)
}

// =============================================================================
// PERIOD CALCULATOR
// =============================================================================

// PeriodForSelector returns the period named by a "YYYY-MM" selector.
func (pc PeriodConfig) PeriodForSelector(selector string) (Period, error) {
	year, month, err := ParseSelector(selector)
	if err != nil {
		return Period{}, err
	}
	return pc.PeriodFor(year, month), nil
}

// PeriodFor returns the period of the given month.
func (pc PeriodConfig) PeriodFor(year int, month time.Month) Period {
	switch pc.Type {
	case PeriodCalendarMonth:
		return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
	default:
		day := pc.startDay()
		// time.Date normalizes month 0 to December of the previous year.
		return Period{
			Start: NewTimePoint(year, month-1, day),
			End:   NewTimePoint(year, month, day-1),
		}
	}
}

// SelectorFor returns the selector whose period contains date. For payroll
// periods a date on or after the start day belongs to the next month.
func (pc PeriodConfig) SelectorFor(date TimePoint) string {
	if pc.Type == PeriodCalendarMonth || date.Day() < pc.startDay() {
		return FormatSelector(date.Year(), date.Month())
	}
	next := StartOfMonth(date.Year(), date.Month()).AddMonths(1)
	return FormatSelector(next.Year(), next.Month())
}

func (pc PeriodConfig) startDay() int {
	if pc.StartDay < 2 || pc.StartDay > 28 {
		return DefaultPayrollStartDay
	}
	return pc.StartDay
}
