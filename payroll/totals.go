package payroll

import "github.com/warp/payroll-engine/generic"

// Totals is the footer of a report. Pay bands and deductions use the
// effective (possibly overridden) values; Hours is always the worked time.
type Totals struct {
	Shifts    int
	Hours     generic.Amount
	Regular   generic.Amount
	Extra125  generic.Amount
	Extra150  generic.Amount
	Deduction generic.Amount
}

// Summarize adds up the report rows.
func Summarize(rows []ReportRow) Totals {
	zero := generic.Hours(0)
	t := Totals{Hours: zero, Regular: zero, Extra125: zero, Extra150: zero, Deduction: zero}
	for _, row := range rows {
		t.Shifts++
		t.Hours = t.Hours.Add(generic.Hours(row.Duration))
		t.Regular = t.Regular.Add(generic.Hours(row.EffectiveRegular()))
		t.Extra125 = t.Extra125.Add(generic.Hours(row.EffectiveExtra125()))
		t.Extra150 = t.Extra150.Add(generic.Hours(row.EffectiveExtra150()))
		t.Deduction = t.Deduction.Add(generic.Hours(row.EffectiveDeduction()))
	}
	return t
}
