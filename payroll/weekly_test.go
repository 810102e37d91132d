package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

func dayRows(t *testing.T, shifts ...payroll.ShiftRecord) []payroll.ReportRow {
	t.Helper()
	var rows []payroll.ReportRow
	for _, s := range shifts {
		r, err := payroll.DefaultRules().ProcessDay([]payroll.ShiftRecord{s})
		require.NoError(t, err)
		rows = append(rows, r...)
	}
	return rows
}

// =============================================================================
// BUCKETING
// =============================================================================

func TestBucketWeeks_SundayStart(t *testing.T) {
	// GIVEN: Saturday Nov 1, Sunday Nov 2 and Saturday Nov 8
	// WHEN: Bucketing
	// THEN: Nov 1 belongs to the week of Oct 26; Nov 2 and Nov 8 share a week

	weeks := payroll.BucketWeeks(dayRows(t,
		shift("2025-11-01", "09:00", "10:00"),
		shift("2025-11-02", "09:00", "10:00"),
		shift("2025-11-08", "09:00", "10:00"),
	))

	require.Len(t, weeks, 2)
	assert.Equal(t, "2025-10-26", weeks[0].Sunday.String())
	assert.Len(t, weeks[0].Rows, 1)
	assert.Equal(t, "2025-11-02", weeks[1].Sunday.String())
	assert.Len(t, weeks[1].Rows, 2)
}

// =============================================================================
// QUOTA ALLOCATION
// =============================================================================

func TestAllocateWeek_ShortWeek_DeductionOnLastRow(t *testing.T) {
	// GIVEN: Sun 06:30-08:00, Mon 08:00-16:30, Tue 09:00-17:00
	// WHEN: Allocating the quota
	// THEN: 1 wake-up + 2 shifts = 18.50 earned, 11.50 deducted on Tuesday

	weeks := payroll.BucketWeeks(dayRows(t,
		shift("2025-10-26", "06:30", "08:00"),
		shift("2025-10-27", "08:00", "16:30"),
		shift("2025-10-28", "09:00", "17:00"),
	))
	require.Len(t, weeks, 1)

	summary := payroll.DefaultRules().AllocateWeek(&weeks[0], period("2025-10-20", "2025-11-19"))
	rows := weeks[0].Rows

	assert.False(t, summary.IsPartial)
	assert.InDelta(t, 1.0, summary.FilledWakeups, eps)
	assert.InDelta(t, 2.0, summary.FilledShifts, eps)
	assert.InDelta(t, 18.5, summary.EarnedQuota, eps)
	assert.InDelta(t, 11.5, summary.Deficit, eps)

	assert.Equal(t, "1.50", rows[0].Breakdown.QuotaDisplay)
	assert.Equal(t, "8.50", rows[1].Breakdown.QuotaDisplay)
	assert.Equal(t, "8.50", rows[2].Breakdown.QuotaDisplay)

	assert.InDelta(t, 0.0, rows[0].Breakdown.Deduction, eps)
	assert.InDelta(t, 0.0, rows[1].Breakdown.Deduction, eps)
	assert.InDelta(t, 11.5, rows[2].Breakdown.Deduction, eps)
}

func TestAllocateWeek_FourthShift_IsExtra(t *testing.T) {
	// GIVEN: Four 8h shifts Sun-Wed
	// WHEN: Allocating the quota
	// THEN: Three earn 8.50, the fourth is Extra, deficit 4.50

	weeks := payroll.BucketWeeks(dayRows(t,
		shift("2025-10-26", "09:00", "17:00"),
		shift("2025-10-27", "09:00", "17:00"),
		shift("2025-10-28", "09:00", "17:00"),
		shift("2025-10-29", "09:00", "17:00"),
	))
	require.Len(t, weeks, 1)

	summary := payroll.DefaultRules().AllocateWeek(&weeks[0], period("2025-10-20", "2025-11-19"))
	rows := weeks[0].Rows

	for i := 0; i < 3; i++ {
		assert.Equal(t, "8.50", rows[i].Breakdown.QuotaDisplay)
		assert.False(t, rows[i].IsExtra)
	}
	assert.Equal(t, "Extra", rows[3].Breakdown.QuotaDisplay)
	assert.True(t, rows[3].IsExtra)
	assert.InDelta(t, 25.5, summary.EarnedQuota, eps)
	assert.InDelta(t, 4.5, rows[3].Breakdown.Deduction, eps)
}

func TestAllocateWeek_WakeupPlusShift_SameRow(t *testing.T) {
	// GIVEN: A 06:30-16:00 shift (1.5h wake-up, 8h remaining)
	// WHEN: Allocating the quota
	// THEN: The row earns both: 1.50 + 8.50 = 10.00

	weeks := payroll.BucketWeeks(dayRows(t, shift("2025-10-27", "06:30", "16:00")))
	payroll.DefaultRules().AllocateWeek(&weeks[0], period("2025-10-20", "2025-11-19"))

	b := weeks[0].Rows[0].Breakdown
	assert.InDelta(t, 1.5, b.QuotaWakeup, eps)
	assert.InDelta(t, 8.5, b.QuotaShift, eps)
	assert.Equal(t, "10.00", b.QuotaDisplay)
}

func TestAllocateWeek_PartialWakeup_FillsFraction(t *testing.T) {
	// GIVEN: A 07:15-08:00 shift (0.75h wake-up overlap)
	// WHEN: Allocating the quota
	// THEN: Half a wake-up unit is filled and 0.75h credited

	weeks := payroll.BucketWeeks(dayRows(t, shift("2025-10-27", "07:15", "08:00")))
	summary := payroll.DefaultRules().AllocateWeek(&weeks[0], period("2025-10-20", "2025-11-19"))

	assert.InDelta(t, 0.5, summary.FilledWakeups, eps)
	assert.Equal(t, "0.75", weeks[0].Rows[0].Breakdown.QuotaDisplay)
}

func TestAllocateWeek_FullQuota_NoDeduction(t *testing.T) {
	// GIVEN: Three wake-ups and three full shifts
	// WHEN: Allocating the quota
	// THEN: 30 earned, no deduction anywhere

	weeks := payroll.BucketWeeks(dayRows(t,
		shift("2025-10-26", "06:30", "08:00"),
		shift("2025-10-27", "06:30", "08:00"),
		shift("2025-10-28", "06:30", "08:00"),
		shift("2025-10-29", "09:00", "17:00"),
		shift("2025-10-30", "09:00", "17:00"),
		shift("2025-10-31", "09:00", "17:00"),
	))
	summary := payroll.DefaultRules().AllocateWeek(&weeks[0], period("2025-10-20", "2025-11-19"))

	assert.InDelta(t, 30.0, summary.EarnedQuota, eps)
	assert.InDelta(t, 0.0, summary.Deficit, eps)
	for _, row := range weeks[0].Rows {
		assert.InDelta(t, 0.0, row.Breakdown.Deduction, eps)
	}
}

func TestAllocateWeek_PartialWeek_NoteInsteadOfDeduction(t *testing.T) {
	// GIVEN: A single shift on Mon Oct 20, whose week starts Sun Oct 19
	// WHEN: Allocating within the 2025-11 period (starts Oct 20)
	// THEN: The week is partial: note set, no deduction

	weeks := payroll.BucketWeeks(dayRows(t, shift("2025-10-20", "09:00", "17:00")))
	summary := payroll.DefaultRules().AllocateWeek(&weeks[0], period("2025-10-20", "2025-11-19"))

	assert.True(t, summary.IsPartial)
	assert.Positive(t, summary.Deficit)
	b := weeks[0].Rows[0].Breakdown
	assert.Equal(t, "Partial week", b.Notes)
	assert.InDelta(t, 0.0, b.Deduction, eps)
}

func TestAllocateWeek_CustomLabels(t *testing.T) {
	rules := payroll.DefaultRules()
	rules.ExtraLabel = "נוסף"
	rules.PartialWeekLabel = "שבוע חלקי"

	weeks := payroll.BucketWeeks(dayRows(t, shift("2025-11-17", "12:00", "13:00")))
	rules.AllocateWeek(&weeks[0], generic.Period{
		Start: generic.MustParseDate("2025-10-20"),
		End:   generic.MustParseDate("2025-11-19"),
	})

	b := weeks[0].Rows[0].Breakdown
	assert.Equal(t, "נוסף", b.QuotaDisplay)
	assert.Equal(t, "שבוע חלקי", b.Notes)
}
