package payroll

import (
	"sort"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// DAILY CONTINUITY - Overtime tiers over continuous same-day work
// =============================================================================

// SortByStart orders one day's shifts by start time, keeping list order for
// equal starts. Unparsable starts sort first; the daily pass rejects them.
func SortByStart(shifts []ShiftRecord) {
	sort.SliceStable(shifts, func(i, j int) bool {
		a, _ := generic.ToDecimalHours(shifts[i].Start)
		b, _ := generic.ToDecimalHours(shifts[j].Start)
		return a < b
	})
}

// SortChronological orders shifts by date, then start time, keeping list
// order for ties.
func SortChronological(shifts []ShiftRecord) {
	sort.SliceStable(shifts, func(i, j int) bool {
		if !shifts[i].Date.Equal(shifts[j].Date) {
			return shifts[i].Date.Before(shifts[j].Date)
		}
		a, _ := generic.ToDecimalHours(shifts[i].Start)
		b, _ := generic.ToDecimalHours(shifts[j].Start)
		return a < b
	})
}

// ProcessDay computes the pay bands of one calendar day's shifts, which must
// already be sorted by start time.
//
// Shifts separated by a gap of at most r.ContinuityGap are one continuous
// block: the second shift's hours are placed on the ladder after the hours
// already worked in the block, so a 6h shift following a 4h shift yields
// 4h regular and 2h at 125%. A longer gap starts a fresh block.
func (r Rules) ProcessDay(shifts []ShiftRecord) ([]ReportRow, error) {
	rows := make([]ReportRow, 0, len(shifts))

	var (
		accumulated float64 // hours in the current continuous block
		lastEnd     float64
		hasLast     bool
	)

	for _, shift := range shifts {
		start, err := generic.ToDecimalHours(shift.Start)
		if err != nil {
			return nil, err
		}
		end, err := generic.ToDecimalHours(shift.End)
		if err != nil {
			return nil, err
		}
		duration := generic.SpanHours(start, end)

		if hasLast {
			gap := start - lastEnd
			if gap < 0 || gap > r.ContinuityGap+r.GapTolerance {
				accumulated = 0
			}
		}

		before := accumulated
		after := before + duration

		tiers := r.tiers()
		var bands [3]float64
		for i, tier := range tiers {
			bands[i] = generic.Overlap(before, after, tier[0], tier[1])
		}

		// Measured on the raw clock values: an overnight shift whose end
		// wraps below its start has no wake-up slice.
		wakeup := generic.Overlap(start, end, r.WakeupStart, r.WakeupEnd)

		accumulated = after
		lastEnd = end
		hasLast = true

		rows = append(rows, ReportRow{
			Shift:    shift,
			Duration: duration,
			Breakdown: Breakdown{
				Regular:         bands[0],
				Extra125:        bands[1],
				Extra150:        bands[2],
				PotentialWakeup: wakeup,
				PotentialShift:  duration - wakeup,
			},
		})
	}

	return rows, nil
}
