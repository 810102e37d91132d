package payroll

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// OVERRIDES - Manual corrections layered over computed values
// =============================================================================

// Override field names, as used by the API and storage.
const (
	FieldRegular      = "regular"
	FieldExtra125     = "extra125"
	FieldExtra150     = "extra150"
	FieldQuotaDisplay = "quotaDisplay"
	FieldDeduction    = "deduction"
)

// OverrideFields lists the overridable fields in report column order.
var OverrideFields = []string{FieldRegular, FieldExtra125, FieldExtra150, FieldQuotaDisplay, FieldDeduction}

// Set stores value for field. Numeric fields accept a number or a numeric
// string; quotaDisplay accepts any string.
func (o *Overrides) Set(field string, value any) error {
	if field == FieldQuotaDisplay {
		s := fmt.Sprint(value)
		o.QuotaDisplay = &s
		return nil
	}
	target, err := o.numeric(field)
	if err != nil {
		return err
	}
	f, err := toFloat(value)
	if err != nil {
		return &generic.FormatError{Field: field, Value: fmt.Sprint(value), Expected: "a non-negative number"}
	}
	*target = &f
	return nil
}

// Clear drops the override for field.
func (o *Overrides) Clear(field string) error {
	if field == FieldQuotaDisplay {
		o.QuotaDisplay = nil
		return nil
	}
	target, err := o.numeric(field)
	if err != nil {
		return err
	}
	*target = nil
	return nil
}

// Clone returns a deep copy; nil stays nil.
func (o *Overrides) Clone() *Overrides {
	if o == nil {
		return nil
	}
	c := &Overrides{}
	if o.Regular != nil {
		v := *o.Regular
		c.Regular = &v
	}
	if o.Extra125 != nil {
		v := *o.Extra125
		c.Extra125 = &v
	}
	if o.Extra150 != nil {
		v := *o.Extra150
		c.Extra150 = &v
	}
	if o.QuotaDisplay != nil {
		v := *o.QuotaDisplay
		c.QuotaDisplay = &v
	}
	if o.Deduction != nil {
		v := *o.Deduction
		c.Deduction = &v
	}
	return c
}

// Validate checks overrides that did not come through Set, e.g. decoded
// from a file.
func (o *Overrides) Validate() error {
	if o == nil {
		return nil
	}
	for _, field := range []string{FieldRegular, FieldExtra125, FieldExtra150, FieldDeduction} {
		target, _ := o.numeric(field)
		if *target == nil {
			continue
		}
		if _, err := toFloat(**target); err != nil {
			return &generic.FormatError{Field: field, Value: fmt.Sprint(**target), Expected: "a non-negative number"}
		}
	}
	return nil
}

// IsEmpty reports whether no field is overridden.
func (o *Overrides) IsEmpty() bool {
	return o == nil || (o.Regular == nil && o.Extra125 == nil && o.Extra150 == nil &&
		o.QuotaDisplay == nil && o.Deduction == nil)
}

func (o *Overrides) numeric(field string) (**float64, error) {
	switch field {
	case FieldRegular:
		return &o.Regular, nil
	case FieldExtra125:
		return &o.Extra125, nil
	case FieldExtra150:
		return &o.Extra150, nil
	case FieldDeduction:
		return &o.Deduction, nil
	}
	return nil, fmt.Errorf("%w: %q", generic.ErrUnknownOverride, field)
}

// toFloat accepts finite, non-negative numbers only.
func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported value %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", f)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative value %v", f)
	}
	return f, nil
}

// =============================================================================
// EFFECTIVE VALUES - What a rendering layer shows
// =============================================================================

func (row ReportRow) EffectiveRegular() float64 {
	return pick(row.overrides().Regular, row.Breakdown.Regular)
}

func (row ReportRow) EffectiveExtra125() float64 {
	return pick(row.overrides().Extra125, row.Breakdown.Extra125)
}

func (row ReportRow) EffectiveExtra150() float64 {
	return pick(row.overrides().Extra150, row.Breakdown.Extra150)
}

func (row ReportRow) EffectiveDeduction() float64 {
	return pick(row.overrides().Deduction, row.Breakdown.Deduction)
}

func (row ReportRow) EffectiveQuotaDisplay() string {
	if o := row.overrides(); o.QuotaDisplay != nil {
		return *o.QuotaDisplay
	}
	return row.Breakdown.QuotaDisplay
}

// IsOverridden reports whether field carries a manual value on this row.
func (row ReportRow) IsOverridden(field string) bool {
	o := row.overrides()
	switch field {
	case FieldRegular:
		return o.Regular != nil
	case FieldExtra125:
		return o.Extra125 != nil
	case FieldExtra150:
		return o.Extra150 != nil
	case FieldQuotaDisplay:
		return o.QuotaDisplay != nil
	case FieldDeduction:
		return o.Deduction != nil
	}
	return false
}

func (row ReportRow) overrides() *Overrides {
	if row.Shift.Overrides == nil {
		return &Overrides{}
	}
	return row.Shift.Overrides
}

func pick(override *float64, computed float64) float64 {
	if override != nil {
		return *override
	}
	return computed
}
