// Package storetest holds the behaviour every payroll.ShiftStore must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// Run exercises a store created fresh for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) payroll.ShiftStore) {
	t.Run("SaveAndGet", func(t *testing.T) { testSaveAndGet(t, newStore(t)) })
	t.Run("SaveReplaces", func(t *testing.T) { testSaveReplaces(t, newStore(t)) })
	t.Run("ListOrder", func(t *testing.T) { testListOrder(t, newStore(t)) })
	t.Run("ListRange", func(t *testing.T) { testListRange(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("Reset", func(t *testing.T) { testReset(t, newStore(t)) })
	t.Run("OverridesPersist", func(t *testing.T) { testOverridesPersist(t, newStore(t)) })
}

func rec(id, date, start, end string) payroll.ShiftRecord {
	return payroll.ShiftRecord{
		ID:    payroll.ShiftID(id),
		Date:  generic.MustParseDate(date),
		Start: start,
		End:   end,
	}
}

func ids(shifts []payroll.ShiftRecord) []payroll.ShiftID {
	out := make([]payroll.ShiftID, len(shifts))
	for i, s := range shifts {
		out[i] = s.ID
	}
	return out
}

func testSaveAndGet(t *testing.T, store payroll.ShiftStore) {
	ctx := context.Background()
	s := rec("a", "2025-11-03", "08:00", "16:00")
	s.Notes = "note"
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, s.Date.String(), got.Date.String())
	assert.Equal(t, "08:00", got.Start)
	assert.Equal(t, "16:00", got.End)
	assert.Equal(t, "note", got.Notes)
	assert.Nil(t, got.Overrides)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrShiftNotFound)
}

func testSaveReplaces(t *testing.T, store payroll.ShiftStore) {
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, rec("a", "2025-11-03", "08:00", "16:00")))
	require.NoError(t, store.Save(ctx, rec("a", "2025-11-04", "09:00", "17:00")))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2025-11-04", all[0].Date.String())
}

func testListOrder(t *testing.T, store payroll.ShiftStore) {
	// "9:00" must sort before "13:00" even though it is longer as text
	ctx := context.Background()
	require.NoError(t, store.SaveBatch(ctx, []payroll.ShiftRecord{
		rec("c", "2025-11-04", "08:00", "12:00"),
		rec("b", "2025-11-03", "13:00", "15:00"),
		rec("a", "2025-11-03", "9:00", "12:00"),
	}))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []payroll.ShiftID{"a", "b", "c"}, ids(all))
}

func testListRange(t *testing.T, store payroll.ShiftStore) {
	ctx := context.Background()
	require.NoError(t, store.SaveBatch(ctx, []payroll.ShiftRecord{
		rec("before", "2025-10-19", "08:00", "12:00"),
		rec("first", "2025-10-20", "08:00", "12:00"),
		rec("last", "2025-11-19", "08:00", "12:00"),
		rec("after", "2025-11-20", "08:00", "12:00"),
	}))

	p, err := generic.PayrollPeriod("2025-11")
	require.NoError(t, err)
	got, err := store.ListRange(ctx, p.Start, p.End)
	require.NoError(t, err)
	assert.Equal(t, []payroll.ShiftID{"first", "last"}, ids(got))

	_, err = store.ListRange(ctx, p.End, p.Start)
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

func testDelete(t *testing.T, store payroll.ShiftStore) {
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, rec("a", "2025-11-03", "08:00", "16:00")))

	require.NoError(t, store.Delete(ctx, "a"))
	assert.ErrorIs(t, store.Delete(ctx, "a"), generic.ErrShiftNotFound)

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, generic.ErrShiftNotFound)
}

func testReset(t *testing.T, store payroll.ShiftStore) {
	ctx := context.Background()
	require.NoError(t, store.SaveBatch(ctx, []payroll.ShiftRecord{
		rec("a", "2025-11-03", "08:00", "16:00"),
		rec("b", "2025-11-04", "08:00", "16:00"),
	}))
	require.NoError(t, store.Reset(ctx))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testOverridesPersist(t *testing.T, store payroll.ShiftStore) {
	ctx := context.Background()
	s := rec("a", "2025-11-03", "08:00", "16:00")
	regular, label := 7.25, "manual"
	s.Overrides = &payroll.Overrides{Regular: &regular, QuotaDisplay: &label}
	require.NoError(t, store.Save(ctx, s))

	// mutating the caller's copy must not leak into the store
	regular = 1

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got.Overrides)
	assert.Equal(t, 7.25, *got.Overrides.Regular)
	assert.Equal(t, "manual", *got.Overrides.QuotaDisplay)
	assert.Nil(t, got.Overrides.Deduction)
}
