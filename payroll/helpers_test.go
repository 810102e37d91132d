package payroll_test

import (
	"fmt"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const eps = 1e-9

var seq int

func shift(date, start, end string) payroll.ShiftRecord {
	seq++
	return payroll.ShiftRecord{
		ID:    payroll.ShiftID(fmt.Sprintf("s-%d", seq)),
		Date:  generic.MustParseDate(date),
		Start: start,
		End:   end,
	}
}

func ptr[T any](v T) *T { return &v }

func period(start, end string) generic.Period {
	return generic.Period{Start: generic.MustParseDate(start), End: generic.MustParseDate(end)}
}
