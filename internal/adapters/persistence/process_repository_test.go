package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/kanban-go/internal/adapters/persistence"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/test/helpers"
)

func TestProcessRepository_SaveIsUpsert(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormProcessRepository(helpers.NewTestDB(t))
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	proc := process.NewWorkerProcess("worker-normal-1", production.WorkerTypeNormal, clock)
	require.NoError(t, proc.Start())
	require.NoError(t, repo.Save(ctx, proc.Snapshot()))

	// Act
	require.NoError(t, proc.AssignStation(3))
	require.NoError(t, proc.IncrementCycles())
	require.NoError(t, proc.Stop())
	require.NoError(t, repo.Save(ctx, proc.Snapshot()))

	// Assert
	saved, err := repo.Get(ctx, "worker-normal-1")
	require.NoError(t, err)
	assert.Equal(t, process.KindWorker, saved.Kind)
	assert.Equal(t, production.WorkerTypeNormal, saved.WorkerType)
	assert.Equal(t, 3, saved.StationID)
	assert.Equal(t, 1, saved.Cycles)
	assert.Equal(t, shared.LifecycleStatusStopped, saved.Status)
	require.NotNil(t, saved.ExitCode)
	assert.Equal(t, process.ExitOK, *saved.ExitCode)

	all, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProcessRepository_GetUnknown(t *testing.T) {
	repo := persistence.NewGormProcessRepository(helpers.NewTestDB(t))

	_, err := repo.Get(context.Background(), "worker-missing")

	assert.ErrorIs(t, err, shared.ErrProcessNotFound)
}

func TestProcessRepository_ListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewGormProcessRepository(helpers.NewTestDB(t))
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	running := process.NewRunnerProcess("runner-1", clock)
	require.NoError(t, running.Start())
	require.NoError(t, repo.Save(ctx, running.Snapshot()))

	exhausted := process.NewWorkerProcess("worker-new-1", production.WorkerTypeNew, clock)
	require.NoError(t, exhausted.Start())
	require.NoError(t, exhausted.Exhaust())
	require.NoError(t, repo.Save(ctx, exhausted.Snapshot()))

	list, err := repo.List(ctx, string(shared.LifecycleStatusExhausted), 10)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "worker-new-1", list[0].ID)
}

func TestProcessLogRepository_DropsRepeatsWithinWindow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	repo := persistence.NewGormProcessLogRepository(helpers.NewTestDB(t), clock)

	// Act
	require.NoError(t, repo.Log(ctx, "worker-a", "WARN", "Failed to release station", map[string]interface{}{"station_id": 2}))
	clock.Advance(10 * time.Second)
	require.NoError(t, repo.Log(ctx, "worker-a", "WARN", "Failed to release station", nil))
	require.NoError(t, repo.Log(ctx, "worker-b", "WARN", "Failed to release station", nil))
	clock.Advance(2 * time.Minute)
	require.NoError(t, repo.Log(ctx, "worker-a", "WARN", "Failed to release station", nil))

	// Assert
	entries, err := repo.GetLogs(ctx, "worker-a", 10, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, float64(2), entries[1].Metadata["station_id"])

	all, err := repo.GetLogs(ctx, "", 0, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProcessLogRepository_FiltersByLevel(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewGormProcessLogRepository(helpers.NewTestDB(t), nil)
	require.NoError(t, repo.Log(ctx, "runner-1", "INFO", "Runner started", nil))
	require.NoError(t, repo.Log(ctx, "runner-1", "ERROR", "Runner failed", nil))

	level := "ERROR"
	entries, err := repo.GetLogs(ctx, "runner-1", 10, &level)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Runner failed", entries[0].Message)
}
