package replenishment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/andrescamacho/kanban-go/internal/application/replenishment"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/test/helpers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRunner(store *helpers.FakeStore, clock shared.Clock) *replenishment.Runner {
	return replenishment.NewRunner(store, store, nil, clock, replenishment.ReferenceInterval, time.Second)
}

func TestInterval(t *testing.T) {
	tests := []struct {
		timeScale int
		expected  time.Duration
	}{
		{1, 300 * time.Second},
		{10, 30 * time.Second},
		{300, time.Second},
		{7, 300 * time.Second / 7},
		{600, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		got, err := replenishment.Interval(replenishment.ReferenceInterval, tt.timeScale)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "time-scale %d", tt.timeScale)
	}
}

func TestInterval_RejectsNonPositiveTimeScale(t *testing.T) {
	for _, ts := range []int{0, -1} {
		_, err := replenishment.Interval(replenishment.ReferenceInterval, ts)

		var cfgErr *shared.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	}
}

func TestRunner_SleepsFiveMinutesAtTimeScaleOne(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(nil)
	clock := shared.NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(n int, _ time.Duration) {
		if n == 3 {
			cancel()
		}
	}

	// Act
	proc, err := newRunner(store, clock).Run(ctx, "runner-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{300000 * time.Millisecond, 300000 * time.Millisecond, 300000 * time.Millisecond}, clock.Sleeps())
	assert.Len(t, store.Ticks(), 2)
	assert.Equal(t, 2, proc.Cycles())
	assert.Equal(t, shared.LifecycleStatusStopped, proc.Status())
}

func TestRunner_RereadsTimeScaleEachCycle(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(nil)
	clock := shared.NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(n int, _ time.Duration) {
		switch n {
		case 1:
			store.SetSetting(settings.TimeScale, 60)
		case 2:
			store.SetSetting(settings.TimeScale, 300)
		case 3:
			cancel()
		}
	}

	// Act
	_, err := newRunner(store, clock).Run(ctx, "runner-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{300 * time.Second, 5 * time.Second, time.Second}, clock.Sleeps())
}

func TestRunner_TickFailureIsFatal(t *testing.T) {
	// Arrange
	store := helpers.NewFakeStore(nil)
	store.FailWith("replenish", shared.NewConnectivityError("apply replenishment", errors.New("connection reset")))
	clock := shared.NewMockClock(time.Time{})

	// Act
	proc, err := newRunner(store, clock).Run(context.Background(), "runner-1")

	// Assert
	require.Error(t, err)
	assert.True(t, shared.IsTransient(err))
	assert.Equal(t, shared.LifecycleStatusFailed, proc.Status())
	assert.Len(t, clock.Sleeps(), 1)
}

func TestRunner_ZeroTimeScaleIsFatalBeforeSleeping(t *testing.T) {
	store := helpers.NewFakeStore(nil)
	store.SetSetting(settings.TimeScale, 0)
	clock := shared.NewMockClock(time.Time{})

	_, err := newRunner(store, clock).Run(context.Background(), "runner-1")

	var cfgErr *shared.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, clock.Sleeps())
	assert.Empty(t, store.Ticks())
}

func TestRunner_CancelledSleepAppliesNoTick(t *testing.T) {
	store := helpers.NewFakeStore(nil)
	clock := shared.NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc, err := newRunner(store, clock).Run(ctx, "runner-1")

	require.NoError(t, err)
	assert.Equal(t, shared.LifecycleStatusStopped, proc.Status())
	assert.Zero(t, store.Calls("replenish"))
}

func TestRunner_RealClockCancellation(t *testing.T) {
	// Arrange: a real clock with a reference long enough that only cancellation ends the sleep
	store := helpers.NewFakeStore(nil)
	runner := replenishment.NewRunner(store, store, nil, shared.NewRealClock(), time.Hour, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Act
	start := time.Now()
	_, err := runner.Run(ctx, "runner-1")

	// Assert: deadline is not a cancellation, so it surfaces as an error without a tick
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Empty(t, store.Ticks())
}
