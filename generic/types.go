/*
Package generic provides the date, clock and quantity primitives the payroll
engine is built on.

PURPOSE:
  This package contains domain-agnostic types for reasoning about work time:
  calendar dates, Sunday-start weeks, "HH:MM" clock values, payroll periods
  and hour quantities. The payroll package layers shift-specific rules on
  top of these.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 8.5 hours)

DESIGN PRINCIPLES:
  1. Purity: Nothing here holds process-wide state
  2. Precision: Aggregates use decimal.Decimal to avoid floating-point drift
  3. Explicit errors: Parsing never silently defaults, see errors.go

USAGE:
  total := generic.NewAmount(0, generic.UnitHours)
  total = total.Add(generic.NewAmount(8.5, generic.UnitHours))
  fmt.Println(total.Format()) // "8.50"

SEE ALSO:
  - clock.go: "HH:MM" arithmetic
  - period.go: Payroll periods
  - time.go: Calendar dates and weeks
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
)

// DisplayPlaces is the number of decimals shown for hour quantities.
const DisplayPlaces = 2

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func Hours(value float64) Amount { return NewAmount(value, UnitHours) }

func (a Amount) Zero() Amount              { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }

// Float64 returns the amount as a float, dropping the exactness flag.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

// Format renders the amount with two decimals, e.g. "11.50".
func (a Amount) Format() string {
	return a.Value.StringFixed(DisplayPlaces)
}

// FormatHours renders a float hour quantity the way reports display it.
func FormatHours(h float64) string {
	return Hours(h).Format()
}
