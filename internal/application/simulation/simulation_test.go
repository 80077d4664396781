package simulation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/andrescamacho/kanban-go/internal/application/simulation"
	"github.com/andrescamacho/kanban-go/internal/application/workstation"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/test/helpers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSimulation(store *helpers.FakeStore, clock *shared.MockClock) *simulation.Simulation {
	return simulation.NewSimulation(store, nil, clock, simulation.Config{
		Worker: workstation.WorkerConfig{
			Baseline:      time.Minute,
			Seed:          42,
			ShutdownGrace: time.Second,
		},
	}, nil)
}

func TestSimulation_ExhaustedWorkersDoNotStopTheRest(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{
		production.WorkerTypeNew:    1,
		production.WorkerTypeNormal: 2,
	})
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(int, time.Duration) {
		if len(store.Units()) >= 3 {
			cancel()
		}
	}
	sim := newSimulation(store, clock)

	// Act
	result, err := sim.Run(ctx, simulation.Plan{Workers: map[production.WorkerType]int{
		production.WorkerTypeNew:    2,
		production.WorkerTypeNormal: 1,
	}})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result.Runner)
	assert.Equal(t, shared.LifecycleStatusStopped, result.Runner.Status())
	require.Len(t, result.Workers, 3)
	assert.Equal(t, 1, result.Count(shared.LifecycleStatusExhausted))
	assert.Equal(t, 2, result.Count(shared.LifecycleStatusStopped))
	assert.NotEmpty(t, store.Units())
	assert.Len(t, store.Released(), 2)
}

func TestSimulation_FatalRunnerCancelsWorkers(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeExperienced: 2})
	boom := shared.NewStoreError("apply replenishment", errors.New("relation does not exist"))
	store.FailWith("replenish", boom)
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sim := newSimulation(store, clock)

	// Act
	result, err := sim.Run(context.Background(), simulation.Plan{Workers: map[production.WorkerType]int{
		production.WorkerTypeExperienced: 2,
	}})

	// Assert
	require.ErrorIs(t, err, boom)
	assert.Equal(t, shared.LifecycleStatusFailed, result.Runner.Status())
	assert.Equal(t, 2, result.Count(shared.LifecycleStatusStopped))
	assert.Equal(t, 0, store.LeasedCount(production.WorkerTypeExperienced))
}

func TestSimulation_EmptyPlanIsRejected(t *testing.T) {
	sim := newSimulation(helpers.NewFakeStore(nil), shared.NewMockClock(time.Time{}))

	_, err := sim.Run(context.Background(), simulation.Plan{SkipRunner: true})

	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)
}
