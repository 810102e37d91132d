package generic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// CLOCK TIME - "HH:MM" as decimal hours
// =============================================================================

// HoursPerDay is added to an end time that falls before its start time.
const HoursPerDay = 24.0

// ToDecimalHours converts "HH:MM" (or "H:MM") into hours, e.g. "08:30" -> 8.5.
func ToDecimalHours(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	h, m, ok := strings.Cut(trimmed, ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 || !IsDigits(h) || !IsDigits(m) {
		return 0, &FormatError{Field: "time", Value: s, Expected: "HH:MM"}
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 24 {
		return 0, &FormatError{Field: "time", Value: s, Expected: "HH:MM"}
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 || (hours == 24 && minutes != 0) {
		return 0, &FormatError{Field: "time", Value: s, Expected: "HH:MM"}
	}
	return float64(hours) + float64(minutes)/60, nil
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
// strconv.Atoi alone would also accept a leading sign.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock converts decimal hours back into "HH:MM", rounding to the
// nearest minute.
func FormatClock(hours float64) string {
	total := int(math.Round(hours * 60))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Duration returns the hours elapsed from start to end. An end earlier than
// start is an overnight shift and wraps past midnight.
func Duration(start, end string) (float64, error) {
	s, err := ToDecimalHours(start)
	if err != nil {
		return 0, err
	}
	e, err := ToDecimalHours(end)
	if err != nil {
		return 0, err
	}
	return SpanHours(s, e), nil
}

// SpanHours is Duration over already-parsed decimal hours.
func SpanHours(start, end float64) float64 {
	d := end - start
	if d < 0 {
		d += HoursPerDay
	}
	return math.Max(0, d)
}

// Overlap returns the length of [start, end) ∩ [lo, hi).
func Overlap(start, end, lo, hi float64) float64 {
	return math.Max(0, math.Min(end, hi)-math.Max(start, lo))
}
