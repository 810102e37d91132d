/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine never catches and degrades: every failure is returned to the
  caller, wrapped with enough context to present it.

ERROR CATEGORIES:
  1. Format errors - A date, time or month selector cannot be parsed
  2. Report errors - The report cannot be produced from the given input
  3. Store errors  - Missing shift records

USAGE:
  report, err := payroll.GenerateReport(shifts, "2025-11")
  if errors.Is(err, generic.ErrInvalidFormat) {
      // bad date/time on one of the records
  }

SEE ALSO:
  - payroll/report.go: Wraps validation failures in ReportError
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidFormat is returned when a time, date or month string cannot be parsed.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrReportGeneration is returned when the report input is malformed.
	// No partial report accompanies it.
	ErrReportGeneration = errors.New("report generation failed")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrShiftNotFound is returned when a referenced shift record doesn't exist.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrUnknownOverride is returned for an override field the report does not expose.
	ErrUnknownOverride = errors.New("unknown override field")

	// ErrInvalidRules is returned when a rule set is internally inconsistent.
	ErrInvalidRules = errors.New("invalid rules")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FormatError describes a value that failed to parse.
type FormatError struct {
	Field    string // "time", "date", "month", ...
	Value    string
	Expected string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q, expected %s", e.Field, e.Value, e.Expected)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

// ReportError wraps the cause of a failed report.
// Both ErrReportGeneration and the cause match with errors.Is.
type ReportError struct {
	Selector string
	ShiftID  string // empty when the failure is not tied to one record
	Err      error
}

func (e *ReportError) Error() string {
	if e.ShiftID != "" {
		return fmt.Sprintf("report %s: shift %s: %v", e.Selector, e.ShiftID, e.Err)
	}
	return fmt.Sprintf("report %s: %v", e.Selector, e.Err)
}

func (e *ReportError) Unwrap() []error {
	return []error{ErrReportGeneration, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrReportGeneration) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnknownOverride) ||
		errors.Is(err, ErrInvalidRules)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound)
}
