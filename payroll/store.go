package payroll

import (
	"context"

	"github.com/warp/payroll-engine/generic"
)

// ShiftStore persists the caller-owned shift collection. The engine never
// talks to a store; callers load a snapshot and pass it to GenerateReport.
//
// IMPLEMENTATIONS:
//   - store/sqlite: SQLite file or :memory:
//   - store/memory: in-process, for tests and the CLI
type ShiftStore interface {
	// Save inserts or replaces a shift by ID.
	Save(ctx context.Context, shift ShiftRecord) error

	// SaveBatch inserts or replaces shifts atomically.
	SaveBatch(ctx context.Context, shifts []ShiftRecord) error

	// Get returns generic.ErrShiftNotFound for unknown IDs.
	Get(ctx context.Context, id ShiftID) (ShiftRecord, error)

	// List returns every shift ordered by date then start.
	List(ctx context.Context) ([]ShiftRecord, error)

	// ListRange returns shifts dated within [from, to].
	ListRange(ctx context.Context, from, to generic.TimePoint) ([]ShiftRecord, error)

	// Delete returns generic.ErrShiftNotFound for unknown IDs.
	Delete(ctx context.Context, id ShiftID) error

	// Reset removes every shift.
	Reset(ctx context.Context) error
}
