package workstation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/andrescamacho/kanban-go/internal/adapters/persistence"
	"github.com/andrescamacho/kanban-go/internal/application/workstation"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/test/helpers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// cancelAfter cancels the worker context on the nth sleep, so the nth unit is never reported
func cancelAfter(clock *shared.MockClock, n int, cancel context.CancelFunc) {
	clock.OnSleep = func(count int, _ time.Duration) {
		if count == n {
			cancel()
		}
	}
}

func newWorker(store *helpers.FakeStore, clock *shared.MockClock, cfg workstation.WorkerConfig) *workstation.Worker {
	if cfg.Baseline == 0 {
		cfg.Baseline = production.DefaultBaseline
	}
	return workstation.NewWorker(store, store, nil, clock, cfg)
}

func TestWorker_NormalAtTimeScaleOne(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	clock := shared.NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(clock, 4, cancel)
	worker := newWorker(store, clock, workstation.WorkerConfig{Seed: 7})

	// Act
	proc, err := worker.Run(ctx, production.WorkerTypeNormal, "worker-normal-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, shared.LifecycleStatusStopped, proc.Status())
	assert.Equal(t, 3, proc.Cycles())
	assert.Len(t, store.Units(), 3)
	for _, d := range clock.Sleeps() {
		assert.Contains(t, []time.Duration{54 * time.Second, 66 * time.Second}, d)
	}
}

func TestWorker_NewAtTimeScaleTen(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNew: 1})
	store.SetSetting(settings.TimeScale, 10)
	clock := shared.NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(clock, 20, cancel)
	worker := newWorker(store, clock, workstation.WorkerConfig{Seed: 99})

	// Act
	_, err := worker.Run(ctx, production.WorkerTypeNew, "worker-new-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, clock.Sleeps(), 20)
	for _, d := range clock.Sleeps() {
		assert.Contains(t, []time.Duration{8100 * time.Millisecond, 9900 * time.Millisecond}, d)
	}
}

func TestWorker_RereadsTimeScaleEveryUnit(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	clock := shared.NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(n int, _ time.Duration) {
		switch n {
		case 1:
			store.SetSetting(settings.TimeScale, 10)
		case 2:
			cancel()
		}
	}
	worker := newWorker(store, clock, workstation.WorkerConfig{Seed: 1})

	// Act
	_, err := worker.Run(ctx, production.WorkerTypeNormal, "worker-normal-1")

	// Assert
	require.NoError(t, err)
	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 2)
	assert.GreaterOrEqual(t, sleeps[0], 54*time.Second)
	assert.LessOrEqual(t, sleeps[1], 6600*time.Millisecond)
	assert.Equal(t, 2, store.Calls("read"))
}

func TestWorker_ExhaustedProducesNothing(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeExperienced: 0})
	clock := shared.NewMockClock(time.Time{})
	worker := newWorker(store, clock, workstation.WorkerConfig{})

	// Act
	proc, err := worker.Run(context.Background(), production.WorkerTypeExperienced, "worker-experienced-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, shared.LifecycleStatusExhausted, proc.Status())
	require.NotNil(t, proc.ExitCode())
	assert.Equal(t, process.ExitExhausted, *proc.ExitCode())
	assert.Empty(t, clock.Sleeps())
	assert.Empty(t, store.Units())
	assert.Zero(t, store.Calls("release"))
}

func TestWorker_UnknownWorkerTypeIsFatal(t *testing.T) {
	// Arrange: the store has no experienced worker type row at all
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	worker := newWorker(store, shared.NewMockClock(time.Time{}), workstation.WorkerConfig{})

	// Act
	proc, err := worker.Run(context.Background(), production.WorkerTypeExperienced, "worker-experienced-1")

	// Assert
	require.ErrorIs(t, err, shared.ErrUnknownWorkerType)
	assert.Equal(t, shared.LifecycleStatusFailed, proc.Status())
	assert.Equal(t, process.ExitFatal, *proc.ExitCode())
}

func TestWorker_ReportFailureIsFatal(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	store.FailWith("report", shared.NewStoreError("report unit", errors.New("constraint violated")))
	clock := shared.NewMockClock(time.Time{})
	worker := newWorker(store, clock, workstation.WorkerConfig{})

	// Act
	proc, err := worker.Run(context.Background(), production.WorkerTypeNormal, "worker-normal-1")

	// Assert
	var storeErr *shared.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, shared.LifecycleStatusFailed, proc.Status())
	assert.Len(t, clock.Sleeps(), 1)
	assert.Zero(t, proc.Cycles())
	assert.Equal(t, []int{proc.StationID()}, store.Released())
}

func TestWorker_NonPositiveTimeScaleIsConfigurationError(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	store.SetSetting(settings.TimeScale, 0)
	clock := shared.NewMockClock(time.Time{})
	worker := newWorker(store, clock, workstation.WorkerConfig{})

	// Act
	_, err := worker.Run(context.Background(), production.WorkerTypeNormal, "worker-normal-1")

	// Assert
	var cfgErr *shared.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, settings.TimeScale, cfgErr.Setting)
	assert.Empty(t, clock.Sleeps())
}

func TestWorker_MissingTimeScaleIsFatal(t *testing.T) {
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	store.DeleteSetting(settings.TimeScale)
	worker := newWorker(store, shared.NewMockClock(time.Time{}), workstation.WorkerConfig{})

	_, err := worker.Run(context.Background(), production.WorkerTypeNormal, "worker-normal-1")

	assert.ErrorIs(t, err, shared.ErrSettingNotFound)
}

func TestWorker_ReleasesStationOnStop(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	clock := shared.NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(clock, 1, cancel)
	worker := newWorker(store, clock, workstation.WorkerConfig{})

	// Act
	proc, err := worker.Run(ctx, production.WorkerTypeNormal, "worker-normal-1")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, store.Units(), "a cancelled build must not be reported")
	assert.Equal(t, []int{proc.StationID()}, store.Released())
	assert.Zero(t, store.LeasedCount(production.WorkerTypeNormal))
}

func TestWorker_KeepsStationWhenConfigured(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	clock := shared.NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(clock, 2, cancel)
	worker := newWorker(store, clock, workstation.WorkerConfig{KeepStationOnExit: true})

	// Act
	_, err := worker.Run(ctx, production.WorkerTypeNormal, "worker-normal-1")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, store.Released())
	assert.Equal(t, 1, store.LeasedCount(production.WorkerTypeNormal))
}

func TestWorker_SameSeedSamePacing(t *testing.T) {
	run := func() []time.Duration {
		store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeExperienced: 1})
		clock := shared.NewMockClock(time.Time{})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		cancelAfter(clock, 10, cancel)
		_, err := newWorker(store, clock, workstation.WorkerConfig{Seed: 2024}).
			Run(ctx, production.WorkerTypeExperienced, "worker-experienced-1")
		require.NoError(t, err)
		return clock.Sleeps()
	}

	assert.Equal(t, run(), run())
}

func TestWorker_RecordsProcessLifecycle(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	processes := persistence.NewGormProcessRepository(db)
	store := helpers.NewFakeStore(map[production.WorkerType]int{production.WorkerTypeNormal: 1})
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(clock, 3, cancel)
	worker := workstation.NewWorker(store, store, processes, clock, workstation.WorkerConfig{})

	// Act
	_, err := worker.Run(ctx, production.WorkerTypeNormal, "worker-normal-abc")
	require.NoError(t, err)

	// Assert
	saved, err := processes.Get(context.Background(), "worker-normal-abc")
	require.NoError(t, err)
	assert.Equal(t, shared.LifecycleStatusStopped, saved.Status)
	assert.Equal(t, process.KindWorker, saved.Kind)
	assert.Equal(t, 2, saved.Cycles)
	assert.Greater(t, saved.StationID, 0)
	require.NotNil(t, saved.ExitCode)
	assert.Equal(t, process.ExitOK, *saved.ExitCode)
}
