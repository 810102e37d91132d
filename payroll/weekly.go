package payroll

import (
	"math"
	"sort"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// WEEK BUCKETING - Sunday-start weeks
// =============================================================================

// BucketWeeks groups day-processed rows by the Sunday of their date. Weeks are
// returned in ascending order and rows keep their incoming order, which the
// caller guarantees is chronological.
func BucketWeeks(rows []ReportRow) []Week {
	index := make(map[string]int)
	var weeks []Week

	for _, row := range rows {
		sunday := row.Shift.Date.StartOfWeek()
		i, ok := index[sunday.String()]
		if !ok {
			i = len(weeks)
			index[sunday.String()] = i
			weeks = append(weeks, Week{Sunday: sunday})
		}
		weeks[i].Rows = append(weeks[i].Rows, row)
	}

	sort.SliceStable(weeks, func(i, j int) bool {
		return weeks[i].Sunday.Before(weeks[j].Sunday)
	})
	return weeks
}

// =============================================================================
// WEEKLY QUOTA - "3 shifts + 3 wake-ups = 30 hours"
// =============================================================================

// AllocateWeek credits quota units to the week's rows in order and attaches
// the shortfall to the last row. Rows are modified in place.
//
// Allocation is a single greedy pass with no backtracking:
//  1. A row overlapping the wake-up window is credited its overlap while
//     fewer than MaxWakeups units are filled. Units fill fractionally:
//     a 0.75h overlap fills half a unit.
//  2. If at least ShiftThreshold hours remain after the wake-up credit and
//     fewer than MaxShifts are filled, the row is credited a full ShiftCredit.
//
// A week not fully inside the period gets the partial-week label instead of a
// deduction, whatever its deficit.
func (r Rules) AllocateWeek(week *Week, period generic.Period) WeekSummary {
	summary := WeekSummary{
		Sunday:    week.Sunday,
		Saturday:  week.Sunday.AddDays(6),
		IsPartial: !period.ContainsWeek(week.Sunday),
	}

	for i := range week.Rows {
		row := &week.Rows[i]
		b := &row.Breakdown

		var quotaWakeup, quotaShift float64
		if b.PotentialWakeup > 0 && summary.FilledWakeups < r.MaxWakeups {
			quotaWakeup = b.PotentialWakeup
			summary.FilledWakeups += quotaWakeup / r.WakeupUnit
		}

		remaining := row.Duration - quotaWakeup
		if summary.FilledShifts < r.MaxShifts && remaining >= r.ShiftThreshold {
			quotaShift = r.ShiftCredit
			summary.FilledShifts++
		}

		b.QuotaShift = quotaShift
		b.QuotaWakeup = quotaWakeup
		if credit := quotaShift + quotaWakeup; credit > 0 {
			b.QuotaDisplay = generic.FormatHours(credit)
			row.IsExtra = false
		} else {
			b.QuotaDisplay = r.ExtraLabel
			row.IsExtra = true
		}
	}

	summary.EarnedQuota = math.Min(summary.FilledShifts, r.MaxShifts)*r.ShiftCredit +
		math.Min(summary.FilledWakeups, r.MaxWakeups)*r.WakeupUnit
	summary.Deficit = math.Max(0, r.WeeklyTarget-summary.EarnedQuota)

	if len(week.Rows) == 0 {
		return summary
	}
	last := &week.Rows[len(week.Rows)-1].Breakdown
	switch {
	case summary.IsPartial:
		last.Notes = r.PartialWeekLabel
	case summary.Deficit > 0:
		last.Deduction = summary.Deficit
	}
	return summary
}
