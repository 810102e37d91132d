package payroll

import (
	"sort"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// REPORT GENERATION
// =============================================================================

// Engine generates reports under one rule set. The zero Engine is not
// usable; use NewEngine or DefaultEngine.
type Engine struct {
	Rules Rules
}

func NewEngine(rules Rules) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Engine{Rules: rules}, nil
}

func DefaultEngine() *Engine {
	return &Engine{Rules: DefaultRules()}
}

// GenerateReport runs the default engine.
func GenerateReport(shifts []ShiftRecord, selector string) (*Report, error) {
	return DefaultEngine().GenerateReport(shifts, selector)
}

// GenerateReport computes the report for the period named by selector:
//  1. Resolve the period and keep the shifts dated inside it
//  2. Group by date, sort each day by start and run the daily pass
//  3. Bucket the rows into Sunday-start weeks and allocate the weekly quota
//  4. Flatten the weeks back into one ordered slice
//
// Any malformed record fails the whole report; shifts is never modified.
func (e *Engine) GenerateReport(shifts []ShiftRecord, selector string) (*Report, error) {
	period, err := e.Rules.Period.PeriodForSelector(selector)
	if err != nil {
		return nil, &ReportError{Selector: selector, Err: err}
	}
	if err := validateShifts(selector, shifts); err != nil {
		return nil, err
	}

	byDate := make(map[string][]ShiftRecord)
	var dates []generic.TimePoint
	for _, s := range shifts {
		if !period.Contains(s.Date) {
			continue
		}
		key := s.Date.String()
		if _, ok := byDate[key]; !ok {
			dates = append(dates, s.Date)
		}
		byDate[key] = append(byDate[key], s)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var daily []ReportRow
	for _, date := range dates {
		day := byDate[date.String()]
		SortByStart(day)
		rows, err := e.Rules.ProcessDay(day)
		if err != nil {
			return nil, &ReportError{Selector: selector, Err: err}
		}
		daily = append(daily, rows...)
	}

	report := &Report{Selector: selector, Period: period, Rows: make([]ReportRow, 0, len(daily))}
	for _, week := range BucketWeeks(daily) {
		report.Weeks = append(report.Weeks, e.Rules.AllocateWeek(&week, period))
		report.Rows = append(report.Rows, week.Rows...)
	}
	return report, nil
}

// ReportError is the generic report error, re-exported for callers of this package.
type ReportError = generic.ReportError

func validateShifts(selector string, shifts []ShiftRecord) error {
	for _, s := range shifts {
		if s.Date.IsZero() {
			return &ReportError{Selector: selector, ShiftID: string(s.ID), Err: &generic.FormatError{Field: "date", Value: "", Expected: "YYYY-MM-DD"}}
		}
		if _, err := generic.ToDecimalHours(s.Start); err != nil {
			return &ReportError{Selector: selector, ShiftID: string(s.ID), Err: err}
		}
		if _, err := generic.ToDecimalHours(s.End); err != nil {
			return &ReportError{Selector: selector, ShiftID: string(s.ID), Err: err}
		}
		if err := s.Overrides.Validate(); err != nil {
			return &ReportError{Selector: selector, ShiftID: string(s.ID), Err: err}
		}
	}
	return nil
}
