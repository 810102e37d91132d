/*
Package importer parses the bulk-text shift format into payroll records.

GRAMMAR:
  One day per line:

    DD.MM<dash-or-space><start>-<end>[, <start>-<end> ...]

  e.g.

    20.11- 6:30-8:00, 13:30-22:00
    21.11 (השכמה) 06:30-08:00

  Hebrew letters and parentheses are stripped before matching, so inline
  annotations such as "(השכמה רביעית)" are ignored. The year is not part of
  the line; the Parser supplies it. Times may be "H", "H:MM" or "HH:MM" and
  are normalized to "HH:MM".

DUPLICATES:
  Dedupe drops parsed shifts whose date, start and end match a shift that
  already exists (or one accepted earlier in the same batch).

SEE ALSO:
  - payroll/types.go: ShiftRecord
  - api/handlers.go: ImportShifts endpoint
  - cmd/payroll: report command reading an import file
*/
package importer

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// DefaultYear is the year assigned to imported lines.
const DefaultYear = 2025

var (
	annotations = regexp.MustCompile(`[()\x{05D0}-\x{05EA}]`)
	dayLine     = regexp.MustCompile(`^(\d{1,2}\.\d{1,2})[-|\s]+(.+)$`)
)

// Parser converts bulk text into shift records.
type Parser struct {
	Year  int
	NewID func() payroll.ShiftID
}

// NewParser returns a parser for the given year; year <= 0 means DefaultYear.
func NewParser(year int) *Parser {
	if year <= 0 {
		year = DefaultYear
	}
	return &Parser{
		Year:  year,
		NewID: func() payroll.ShiftID { return payroll.ShiftID(uuid.NewString()) },
	}
}

// Result is the outcome of parsing one text.
type Result struct {
	Shifts  []payroll.ShiftRecord
	Skipped []SkippedLine
}

// SkippedLine is input that produced no shift.
type SkippedLine struct {
	Line   int // 1-based
	Text   string
	Reason string
}

// Parse reads every non-blank line. Lines that don't match the grammar are
// reported in Result.Skipped rather than failing the whole import.
func (p *Parser) Parse(text string) Result {
	var res Result
	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		shifts, skipped := p.parseLine(lineNo, raw)
		res.Shifts = append(res.Shifts, shifts...)
		res.Skipped = append(res.Skipped, skipped...)
	}
	return res
}

func (p *Parser) parseLine(lineNo int, raw string) ([]payroll.ShiftRecord, []SkippedLine) {
	cleaned := strings.TrimSpace(annotations.ReplaceAllString(raw, ""))
	m := dayLine.FindStringSubmatch(cleaned)
	if m == nil {
		return nil, []SkippedLine{{Line: lineNo, Text: raw, Reason: "expected DD.MM followed by time ranges"}}
	}

	date, err := p.parseDay(m[1])
	if err != nil {
		return nil, []SkippedLine{{Line: lineNo, Text: raw, Reason: err.Error()}}
	}

	var (
		shifts  []payroll.ShiftRecord
		skipped []SkippedLine
	)
	for _, rng := range strings.Split(m[2], ",") {
		rng = strings.TrimSpace(rng)
		parts := strings.Split(rng, "-")
		if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			skipped = append(skipped, SkippedLine{Line: lineNo, Text: rng, Reason: "expected start-end"})
			continue
		}
		start, err := NormalizeTime(parts[0])
		if err != nil {
			skipped = append(skipped, SkippedLine{Line: lineNo, Text: rng, Reason: err.Error()})
			continue
		}
		end, err := NormalizeTime(parts[1])
		if err != nil {
			skipped = append(skipped, SkippedLine{Line: lineNo, Text: rng, Reason: err.Error()})
			continue
		}
		shifts = append(shifts, payroll.ShiftRecord{
			ID:    p.NewID(),
			Date:  date,
			Start: start,
			End:   end,
		})
	}
	return shifts, skipped
}

// parseDay turns "20.11" into a date in the parser's year.
func (p *Parser) parseDay(s string) (generic.TimePoint, error) {
	d, m, _ := strings.Cut(s, ".")
	return generic.ParseDate(fmt.Sprintf("%04d-%s-%s", p.Year, pad2(m), pad2(d)))
}

func pad2(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// NormalizeTime accepts "8", "6:30" or "06:30" and returns "HH:MM".
func NormalizeTime(s string) (string, error) {
	t := strings.TrimSpace(s)
	if !strings.Contains(t, ":") {
		h, err := strconv.Atoi(t)
		if err != nil || !generic.IsDigits(t) {
			return "", &generic.FormatError{Field: "time", Value: s, Expected: "HH:MM"}
		}
		t = fmt.Sprintf("%d:00", h)
	}
	hours, err := generic.ToDecimalHours(t)
	if err != nil {
		return "", err
	}
	return generic.FormatClock(hours), nil
}

// =============================================================================
// DUPLICATES
// =============================================================================

// Dedupe returns the parsed shifts that don't repeat an existing slot, and
// how many were dropped.
func Dedupe(existing, parsed []payroll.ShiftRecord) ([]payroll.ShiftRecord, int) {
	seen := make(map[string]struct{}, len(existing)+len(parsed))
	for _, s := range existing {
		seen[slotKey(s)] = struct{}{}
	}

	fresh := make([]payroll.ShiftRecord, 0, len(parsed))
	duplicates := 0
	for _, s := range parsed {
		k := slotKey(s)
		if _, ok := seen[k]; ok {
			duplicates++
			continue
		}
		seen[k] = struct{}{}
		fresh = append(fresh, s)
	}
	return fresh, duplicates
}

// slotKey compares times by value so "6:30" and "06:30" collide.
func slotKey(s payroll.ShiftRecord) string {
	return s.Date.String() + "|" + canonical(s.Start) + "|" + canonical(s.End)
}

func canonical(t string) string {
	if n, err := NormalizeTime(t); err == nil {
		return n
	}
	return t
}

// SuggestSelector returns the payroll month an import most likely belongs to:
// the period of its first shift.
func SuggestSelector(cfg generic.PeriodConfig, shifts []payroll.ShiftRecord) (string, bool) {
	if len(shifts) == 0 {
		return "", false
	}
	return cfg.SelectorFor(shifts[0].Date), true
}
