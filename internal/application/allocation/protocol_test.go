package allocation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/kanban-go/internal/application/allocation"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
	"github.com/andrescamacho/kanban-go/test/helpers"
)

func TestAllocate_LeasesFreeSlot(t *testing.T) {
	// Arrange
	pool := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 2})
	protocol := allocation.NewProtocol(pool)

	// Act
	result, err := protocol.Allocate(context.Background(), production.WorkerTypeNormal, "proc-1")

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Leased())
	assert.Greater(t, result.SlotID, 0)
	assert.Equal(t, 1, pool.LeasedCount(production.WorkerTypeNormal))
}

func TestAllocate_ExhaustedIsNotAnError(t *testing.T) {
	// Arrange
	pool := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeExperienced: 0})
	protocol := allocation.NewProtocol(pool)

	// Act
	result, err := protocol.Allocate(context.Background(), production.WorkerTypeExperienced, "proc-1")

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Exhausted())
	assert.Zero(t, result.SlotID)
}

func TestAllocate_CapacityIsNeverOversubscribed(t *testing.T) {
	// Arrange
	pool := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNew: 3})
	protocol := allocation.NewProtocol(pool)
	ctx := context.Background()

	// Act
	var leased, exhausted int
	for _, owner := range []string{"a", "b", "c", "d"} {
		result, err := protocol.Allocate(ctx, production.WorkerTypeNew, owner)
		require.NoError(t, err)
		if result.Leased() {
			leased++
		}
		if result.Exhausted() {
			exhausted++
		}
	}

	// Assert
	assert.Equal(t, 3, leased)
	assert.Equal(t, 1, exhausted)
}

func TestAllocate_UnknownTypeIsFatal(t *testing.T) {
	// Arrange: the store knows no "new" worker type
	pool := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	protocol := allocation.NewProtocol(pool)

	// Act
	_, err := protocol.Allocate(context.Background(), production.WorkerTypeNew, "proc-1")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUnknownWorkerType)
}

func TestAllocate_InvalidTypeIsValidationError(t *testing.T) {
	pool := helpers.NewFakeStore(nil)
	protocol := allocation.NewProtocol(pool)

	_, err := protocol.Allocate(context.Background(), production.WorkerType("rookie"), "proc-1")

	var validationErr *shared.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, pool.Calls("resolve"))
}

func TestAllocate_StoreFailureIsFatal(t *testing.T) {
	// Arrange
	pool := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	pool.FailWith("lease", shared.NewConnectivityError("lease station", errors.New("connection refused")))
	protocol := allocation.NewProtocol(pool)

	// Act
	result, err := protocol.Allocate(context.Background(), production.WorkerTypeNormal, "proc-1")

	// Assert
	require.Error(t, err)
	assert.False(t, result.Exhausted())
	var storeErr *shared.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestAllocate_RejectsLeaseWithoutSlotID(t *testing.T) {
	// Arrange
	pool := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	pool.LeaseOverride = &station.LeaseResult{Outcome: station.OutcomeLeased, SlotID: 0}
	protocol := allocation.NewProtocol(pool)

	// Act
	_, err := protocol.Allocate(context.Background(), production.WorkerTypeNormal, "proc-1")

	// Assert
	require.Error(t, err)
}
