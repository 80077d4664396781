package station

import (
	"context"

	"github.com/andrescamacho/kanban-go/internal/domain/production"
)

// Pool is the capacity-bounded station registry used by workers
type Pool interface {
	// ResolveWorkerType maps a worker type name to its stored identifier.
	// Unknown names fail with shared.ErrUnknownWorkerType.
	ResolveWorkerType(ctx context.Context, workerType production.WorkerType) (int, error)

	// LeaseStationSlot atomically claims the next free slot of the type for owner.
	// Calling it again with the same owner returns the slot already held.
	// An identifier with no stations yields Exhausted; an identifier that does
	// not exist yields an error wrapping shared.ErrUnknownWorkerType.
	LeaseStationSlot(ctx context.Context, workerTypeID int, owner string) (LeaseResult, error)

	// ReleaseStationSlot returns a slot held by owner to the pool
	ReleaseStationSlot(ctx context.Context, slotID int, owner string) error

	// ReportUnit records one completed unit; a repeated unit ID is ignored
	ReportUnit(ctx context.Context, unit production.Unit) error
}

// Replenisher performs the global maintenance tick
type Replenisher interface {
	// ApplyReplenishment refills low bins; a repeated tickID is ignored
	ApplyReplenishment(ctx context.Context, tickID string) error
}

// Admin covers the administrative station operations
type Admin interface {
	AddStations(ctx context.Context, workerType production.WorkerType, count int, partsOnHand int) ([]int, error)
	ListStations(ctx context.Context) ([]Slot, error)
	ReleaseByID(ctx context.Context, slotID int) error
	ReleaseByOwner(ctx context.Context, owner string) (int, error)
	ReleaseAll(ctx context.Context) (int, error)
}
