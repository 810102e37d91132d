package payroll_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

func TestOverrides_SetAndClear(t *testing.T) {
	o := &payroll.Overrides{}

	require.NoError(t, o.Set(payroll.FieldRegular, 7.5))
	require.NoError(t, o.Set(payroll.FieldExtra125, "1.25"))
	require.NoError(t, o.Set(payroll.FieldDeduction, 3))
	require.NoError(t, o.Set(payroll.FieldQuotaDisplay, "manual"))

	assert.Equal(t, 7.5, *o.Regular)
	assert.Equal(t, 1.25, *o.Extra125)
	assert.Equal(t, 3.0, *o.Deduction)
	assert.Equal(t, "manual", *o.QuotaDisplay)
	assert.False(t, o.IsEmpty())

	for _, f := range payroll.OverrideFields {
		require.NoError(t, o.Clear(f))
	}
	assert.True(t, o.IsEmpty())
}

func TestOverrides_Errors(t *testing.T) {
	o := &payroll.Overrides{}

	assert.ErrorIs(t, o.Set("bonus", 1), generic.ErrUnknownOverride)
	assert.ErrorIs(t, o.Clear("bonus"), generic.ErrUnknownOverride)
	assert.ErrorIs(t, o.Set(payroll.FieldRegular, "lots"), generic.ErrInvalidFormat)
	assert.ErrorIs(t, o.Set(payroll.FieldRegular, true), generic.ErrInvalidFormat)
}

func TestOverrides_RejectNonFiniteAndNegative(t *testing.T) {
	// GIVEN: Values a decimal total cannot hold, or negative hours
	// WHEN: Setting them on every numeric field
	// THEN: Each is a format error and nothing is stored

	bad := []any{"NaN", "Inf", "+Inf", "-Inf", "1e400", math.NaN(), math.Inf(1), -1.5, "-2", -3}
	for _, field := range []string{payroll.FieldRegular, payroll.FieldExtra125, payroll.FieldExtra150, payroll.FieldDeduction} {
		for _, v := range bad {
			o := &payroll.Overrides{}
			err := o.Set(field, v)
			assert.ErrorIs(t, err, generic.ErrInvalidFormat, "%s=%v", field, v)
			assert.True(t, o.IsEmpty(), "%s=%v", field, v)
		}
	}

	o := &payroll.Overrides{}
	require.NoError(t, o.Set(payroll.FieldDeduction, 0))
	assert.Equal(t, 0.0, *o.Deduction)
}

func TestOverrides_CloneIsDeep(t *testing.T) {
	o := &payroll.Overrides{Regular: ptr(1.0), QuotaDisplay: ptr("x")}
	c := o.Clone()
	*c.Regular = 2

	assert.Equal(t, 1.0, *o.Regular)
	assert.Nil(t, (*payroll.Overrides)(nil).Clone())
}

func TestReportRow_EffectiveValues(t *testing.T) {
	// GIVEN: A row whose regular and deduction are overridden
	// WHEN: Reading effective values
	// THEN: Overridden fields win, others fall back to the breakdown

	s := shift("2025-11-03", "08:00", "17:00")
	s.Overrides = &payroll.Overrides{Regular: ptr(7.0), Deduction: ptr(0.0)}
	row := payroll.ReportRow{
		Shift:    s,
		Duration: 9,
		Breakdown: payroll.Breakdown{
			Regular: 8, Extra125: 1, QuotaDisplay: "8.50", Deduction: 11.5,
		},
	}

	assert.Equal(t, 7.0, row.EffectiveRegular())
	assert.Equal(t, 1.0, row.EffectiveExtra125())
	assert.Equal(t, 0.0, row.EffectiveExtra150())
	assert.Equal(t, 0.0, row.EffectiveDeduction())
	assert.Equal(t, "8.50", row.EffectiveQuotaDisplay())
	assert.True(t, row.IsOverridden(payroll.FieldDeduction))
	assert.False(t, row.IsOverridden(payroll.FieldExtra125))
}

func TestGenerateReport_IgnoresOverrides(t *testing.T) {
	// GIVEN: A shift carrying overrides
	// WHEN: Generating the report
	// THEN: The breakdown is the computed value; overrides only show in Effective*

	s := shift("2025-11-03", "08:00", "17:00")
	s.Overrides = &payroll.Overrides{Regular: ptr(1.0)}

	report, err := payroll.GenerateReport([]payroll.ShiftRecord{s}, "2025-11")
	require.NoError(t, err)

	row := report.Rows[0]
	assert.InDelta(t, 8.0, row.Breakdown.Regular, eps)
	assert.Equal(t, 1.0, row.EffectiveRegular())
}

func TestSummarize_UsesEffectiveValues(t *testing.T) {
	a := shift("2025-10-26", "06:30", "08:00")
	b := shift("2025-10-27", "08:00", "16:30")
	c := shift("2025-10-28", "09:00", "17:00")
	c.Overrides = &payroll.Overrides{Deduction: ptr(10.0)}

	report, err := payroll.GenerateReport([]payroll.ShiftRecord{a, b, c}, "2025-11")
	require.NoError(t, err)

	totals := payroll.Summarize(report.Rows)
	assert.Equal(t, 3, totals.Shifts)
	assert.Equal(t, "18.00", totals.Hours.Format())
	assert.Equal(t, "17.50", totals.Regular.Format())
	assert.Equal(t, "0.50", totals.Extra125.Format())
	assert.Equal(t, "10.00", totals.Deduction.Format())
}
