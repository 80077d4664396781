package workstation

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/kanban-go/internal/adapters/metrics"
	"github.com/andrescamacho/kanban-go/internal/application/allocation"
	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
	"github.com/andrescamacho/kanban-go/pkg/utils"
)

// WorkerConfig tunes one production worker
type WorkerConfig struct {
	// Baseline is the nominal build time before jitter, multiplier and compression
	Baseline time.Duration

	// Seed drives the jitter; 0 derives one from the clock
	Seed int64

	// KeepStationOnExit leaves the slot leased when the loop ends
	KeepStationOnExit bool

	// ShutdownGrace bounds the final report and the slot release after cancellation
	ShutdownGrace time.Duration
}

// Worker simulates one workstation: it allocates a station once, then builds
// and reports units until its context is cancelled or a fatal error occurs.
// At most one unit is outstanding at any time.
type Worker struct {
	pool      station.Pool
	settings  settings.Reader
	processes process.Repository
	protocol  *allocation.Protocol
	clock     shared.Clock
	cfg       WorkerConfig
	newUnitID func() string
}

// NewWorker creates a worker. processes may be nil to skip the process registry.
// If clock is nil, uses RealClock (production behavior)
func NewWorker(
	pool station.Pool,
	settingsReader settings.Reader,
	processes process.Repository,
	clock shared.Clock,
	cfg WorkerConfig,
) *Worker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	return &Worker{
		pool:      pool,
		settings:  settingsReader,
		processes: processes,
		protocol:  allocation.NewProtocol(pool),
		clock:     clock,
		cfg:       cfg,
		newUnitID: utils.NewEventID,
	}
}

// Run executes the worker state machine for processID.
//
// The returned process carries the terminal status and exit code:
// EXHAUSTED when no station was free, STOPPED after cancellation,
// FAILED together with a non-nil error on any fatal condition.
func (w *Worker) Run(ctx context.Context, workerType production.WorkerType, processID string) (*process.SimulationProcess, error) {
	ctx = common.WithProcessID(ctx, processID)
	logger := common.LoggerFromContext(ctx)

	proc := process.NewWorkerProcess(processID, workerType, w.clock)
	if err := proc.Start(); err != nil {
		return proc, err
	}
	common.SaveProcess(ctx, w.processes, proc)
	defer func() {
		metrics.RecordProcessFinished(string(proc.Kind()), string(proc.Status()), proc.RuntimeDuration())
	}()

	alloc, err := w.protocol.Allocate(ctx, workerType, processID)
	if err != nil {
		if ctx.Err() != nil {
			return w.stop(ctx, proc), nil
		}
		return w.fail(ctx, proc, err)
	}
	if alloc.Exhausted() {
		_ = proc.Exhaust()
		common.SaveProcess(ctx, w.processes, proc)
		return proc, nil
	}

	if err := proc.AssignStation(alloc.SlotID); err != nil {
		return w.fail(ctx, proc, err)
	}
	common.SaveProcess(ctx, w.processes, proc)
	if !w.cfg.KeepStationOnExit {
		defer w.release(ctx, proc)
	}

	logger.Log(common.LevelInfo, "Production started", map[string]interface{}{
		"worker_type": string(workerType),
		"station_id":  alloc.SlotID,
	})

	seed := w.cfg.Seed
	if seed == 0 {
		seed = production.DeriveSeed(w.clock.Now(), processID)
	}
	pacing := production.NewPacingModel(workerType, w.cfg.Baseline, seed)

	for {
		if err := w.produceOne(ctx, proc, pacing); err != nil {
			if common.IsShutdown(ctx, err) {
				return w.stop(ctx, proc), nil
			}
			return w.fail(ctx, proc, err)
		}
	}
}

// produceOne runs a single cycle: read the time-scale, sleep, report.
// A cancelled sleep returns before anything is reported. Once the sleep has
// completed the report runs on a detached context so the unit is not lost.
func (w *Worker) produceOne(ctx context.Context, proc *process.SimulationProcess, pacing *production.PacingModel) error {
	timeScale, err := w.settings.ReadSetting(ctx, settings.TimeScale)
	if err != nil {
		return fmt.Errorf("read time-scale: %w", err)
	}

	buildTime, err := pacing.NextUnitDuration(timeScale)
	if err != nil {
		return err
	}

	unit := production.Unit{
		ID:         w.newUnitID(),
		StationID:  proc.StationID(),
		ProcessID:  proc.ID(),
		WorkerType: proc.WorkerType(),
		BuildTime:  buildTime,
	}

	if err := w.clock.Sleep(ctx, buildTime); err != nil {
		return err
	}

	unit.ProducedAt = w.clock.Now()
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.ShutdownGrace)
	defer cancel()
	if err := w.pool.ReportUnit(reportCtx, unit); err != nil {
		return fmt.Errorf("report unit for station %d: %w", unit.StationID, err)
	}

	if err := proc.IncrementCycles(); err != nil {
		return err
	}
	metrics.RecordUnit(string(unit.WorkerType), buildTime)
	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Unit produced", map[string]interface{}{
		"station_id": unit.StationID,
		"unit_id":    unit.ID,
		"build_time": buildTime.String(),
		"time_scale": timeScale,
		"units":      proc.Cycles(),
	})
	common.SaveProcess(ctx, w.processes, proc)
	return nil
}

func (w *Worker) release(ctx context.Context, proc *process.SimulationProcess) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.ShutdownGrace)
	defer cancel()

	logger := common.LoggerFromContext(ctx)
	if err := w.pool.ReleaseStationSlot(releaseCtx, proc.StationID(), proc.ID()); err != nil {
		logger.Log(common.LevelWarn, "Failed to release station", map[string]interface{}{
			"station_id": proc.StationID(),
			"error":      err.Error(),
		})
		return
	}
	logger.Log(common.LevelInfo, "Station released", map[string]interface{}{
		"station_id": proc.StationID(),
	})
}

func (w *Worker) stop(ctx context.Context, proc *process.SimulationProcess) *process.SimulationProcess {
	_ = proc.Stop()
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Production stopped", map[string]interface{}{
		"units": proc.Cycles(),
	})
	common.SaveProcess(ctx, w.processes, proc)
	return proc
}

func (w *Worker) fail(ctx context.Context, proc *process.SimulationProcess, err error) (*process.SimulationProcess, error) {
	_ = proc.Fail(err)
	common.LoggerFromContext(ctx).Log(common.LevelError, "Worker failed", map[string]interface{}{
		"error": err.Error(),
		"units": proc.Cycles(),
	})
	common.SaveProcess(ctx, w.processes, proc)
	return proc, err
}
