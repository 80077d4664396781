package allocation

import (
	"context"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/adapters/metrics"
	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

// Allocation is the non-fatal result of the protocol.
// Fatal conditions are returned as errors instead.
type Allocation struct {
	Outcome      station.Outcome
	SlotID       int
	WorkerTypeID int
}

// Leased reports whether a slot was obtained
func (a Allocation) Leased() bool {
	return a.Outcome == station.OutcomeLeased
}

// Exhausted reports whether the pool had no free slot of the type
func (a Allocation) Exhausted() bool {
	return a.Outcome == station.OutcomeExhausted
}

// Protocol obtains an exclusive station for a starting worker, or determines
// that none is free. It never inspects capacity itself; the pool's atomic
// lease is the only decision point.
type Protocol struct {
	pool station.Pool
}

// NewProtocol creates an allocation protocol over a station pool
func NewProtocol(pool station.Pool) *Protocol {
	return &Protocol{pool: pool}
}

// Allocate resolves the worker type and leases one slot for owner.
//
// Returns a Leased or Exhausted allocation, or an error for every fatal case:
// invalid or unknown worker type, store failure, or a lease result that
// violates the pool contract.
func (p *Protocol) Allocate(ctx context.Context, workerType production.WorkerType, owner string) (Allocation, error) {
	logger := common.LoggerFromContext(ctx)

	if !workerType.IsValid() {
		return Allocation{}, shared.NewValidationError("worker_type", fmt.Sprintf("%q is not a worker type", workerType))
	}

	typeID, err := p.pool.ResolveWorkerType(ctx, workerType)
	if err != nil {
		metrics.RecordAllocation(string(workerType), "fatal")
		return Allocation{}, fmt.Errorf("resolve worker type %s: %w", workerType, err)
	}

	result, err := p.pool.LeaseStationSlot(ctx, typeID, owner)
	if err != nil {
		metrics.RecordAllocation(string(workerType), "fatal")
		return Allocation{}, fmt.Errorf("lease station for %s: %w", workerType, err)
	}

	switch {
	case result.IsLeased():
		metrics.RecordAllocation(string(workerType), result.Outcome.String())
		logger.Log(common.LevelInfo, "Station leased", map[string]interface{}{
			"worker_type": string(workerType),
			"station_id":  result.SlotID,
		})
		return Allocation{Outcome: station.OutcomeLeased, SlotID: result.SlotID, WorkerTypeID: typeID}, nil

	case result.IsExhausted():
		metrics.RecordAllocation(string(workerType), result.Outcome.String())
		logger.Log(common.LevelWarn, "No station available", map[string]interface{}{
			"worker_type": string(workerType),
		})
		return Allocation{Outcome: station.OutcomeExhausted, WorkerTypeID: typeID}, nil

	default:
		metrics.RecordAllocation(string(workerType), "fatal")
		return Allocation{}, shared.NewStoreError("lease station", fmt.Errorf("invalid lease result %s", result))
	}
}
