// Package memory provides an in-process payroll.ShiftStore.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	shifts map[payroll.ShiftID]payroll.ShiftRecord
}

var _ payroll.ShiftStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{shifts: make(map[payroll.ShiftID]payroll.ShiftRecord)}
}

// Save inserts or replaces a single shift.
func (m *Memory) Save(_ context.Context, shift payroll.ShiftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveLocked(shift)
	return nil
}

// SaveBatch inserts or replaces several shifts under one lock.
func (m *Memory) SaveBatch(_ context.Context, shifts []payroll.ShiftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range shifts {
		m.saveLocked(s)
	}
	return nil
}

func (m *Memory) saveLocked(shift payroll.ShiftRecord) {
	shift.Overrides = shift.Overrides.Clone()
	m.shifts[shift.ID] = shift
}

func (m *Memory) Get(_ context.Context, id payroll.ShiftID) (payroll.ShiftRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shifts[id]
	if !ok {
		return payroll.ShiftRecord{}, generic.ErrShiftNotFound
	}
	s.Overrides = s.Overrides.Clone()
	return s, nil
}

func (m *Memory) List(_ context.Context) ([]payroll.ShiftRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collectLocked(func(payroll.ShiftRecord) bool { return true }), nil
}

func (m *Memory) ListRange(_ context.Context, from, to generic.TimePoint) ([]payroll.ShiftRecord, error) {
	if err := (generic.Period{Start: from, End: to}).Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collectLocked(func(s payroll.ShiftRecord) bool {
		return from.BeforeOrEqual(s.Date) && s.Date.BeforeOrEqual(to)
	}), nil
}

func (m *Memory) Delete(_ context.Context, id payroll.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.shifts[id]; !ok {
		return generic.ErrShiftNotFound
	}
	delete(m.shifts, id)
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts = make(map[payroll.ShiftID]payroll.ShiftRecord)
	return nil
}

func (m *Memory) collectLocked(keep func(payroll.ShiftRecord) bool) []payroll.ShiftRecord {
	result := make([]payroll.ShiftRecord, 0, len(m.shifts))
	for _, s := range m.shifts {
		if keep(s) {
			s.Overrides = s.Overrides.Clone()
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	payroll.SortChronological(result)
	return result
}
