package process_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

func clock() *shared.MockClock {
	return shared.NewMockClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
}

func TestWorkerProcess_ProducesOnOneStation(t *testing.T) {
	proc := process.NewWorkerProcess("worker-normal-1", production.WorkerTypeNormal, clock())
	require.NoError(t, proc.Start())

	require.NoError(t, proc.AssignStation(4))
	require.NoError(t, proc.IncrementCycles())
	require.NoError(t, proc.IncrementCycles())
	require.NoError(t, proc.Stop())

	snap := proc.Snapshot()
	assert.Equal(t, 4, snap.StationID)
	assert.Equal(t, 2, snap.Cycles)
	assert.Equal(t, shared.LifecycleStatusStopped, snap.Status)
	require.NotNil(t, snap.ExitCode)
	assert.Equal(t, process.ExitOK, *snap.ExitCode)
}

func TestWorkerProcess_StationIsAssignedOnce(t *testing.T) {
	proc := process.NewWorkerProcess("worker-new-1", production.WorkerTypeNew, clock())
	require.NoError(t, proc.Start())
	require.NoError(t, proc.AssignStation(1))

	assert.Error(t, proc.AssignStation(2))
	assert.Equal(t, 1, proc.StationID())
}

func TestWorkerProcess_ExhaustedExitCode(t *testing.T) {
	proc := process.NewWorkerProcess("worker-experienced-1", production.WorkerTypeExperienced, clock())
	require.NoError(t, proc.Start())

	require.NoError(t, proc.Exhaust())

	require.NotNil(t, proc.ExitCode())
	assert.Equal(t, process.ExitExhausted, *proc.ExitCode())
	assert.Zero(t, proc.StationID())
}

func TestProcess_FailRecordsReason(t *testing.T) {
	proc := process.NewRunnerProcess("runner-1", clock())
	require.NoError(t, proc.Start())

	require.NoError(t, proc.Fail(errors.New("connection refused")))

	assert.Equal(t, process.ExitFatal, *proc.ExitCode())
	assert.Equal(t, "connection refused", proc.ExitReason())
	assert.Equal(t, process.KindRunner, proc.Kind())
}

func TestProcess_CyclesOnlyWhileRunning(t *testing.T) {
	proc := process.NewRunnerProcess("runner-1", clock())

	assert.Error(t, proc.IncrementCycles())

	require.NoError(t, proc.Start())
	require.NoError(t, proc.Stop())
	assert.Error(t, proc.IncrementCycles())
	assert.Zero(t, proc.Cycles())
}
