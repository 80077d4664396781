package replenishment

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/kanban-go/internal/adapters/metrics"
	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
	"github.com/andrescamacho/kanban-go/pkg/utils"
)

// ReferenceInterval is the simulated time between two replenishment ticks
const ReferenceInterval = 300 * time.Second

// Interval compresses the reference interval by the time-scale
func Interval(reference time.Duration, timeScale int) (time.Duration, error) {
	if err := production.ValidateTimeScale(timeScale); err != nil {
		return 0, err
	}
	return reference / time.Duration(timeScale), nil
}

// Runner is the single periodic replenishment process. It holds no
// station and does no capacity bookkeeping.
type Runner struct {
	replenisher station.Replenisher
	settings    settings.Reader
	processes   process.Repository
	clock       shared.Clock
	reference   time.Duration
	grace       time.Duration
	newTickID   func() string
}

// NewRunner creates a runner. A non-positive reference falls back to
// ReferenceInterval; processes may be nil.
// If clock is nil, uses RealClock (production behavior)
func NewRunner(
	replenisher station.Replenisher,
	settingsReader settings.Reader,
	processes process.Repository,
	clock shared.Clock,
	reference time.Duration,
	grace time.Duration,
) *Runner {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if reference <= 0 {
		reference = ReferenceInterval
	}
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Runner{
		replenisher: replenisher,
		settings:    settingsReader,
		processes:   processes,
		clock:       clock,
		reference:   reference,
		grace:       grace,
		newTickID:   utils.NewEventID,
	}
}

// Run ticks until ctx is cancelled (STOPPED, nil error) or a tick fails
// (FAILED, non-nil error).
func (r *Runner) Run(ctx context.Context, processID string) (*process.SimulationProcess, error) {
	ctx = common.WithProcessID(ctx, processID)
	logger := common.LoggerFromContext(ctx)

	proc := process.NewRunnerProcess(processID, r.clock)
	if err := proc.Start(); err != nil {
		return proc, err
	}
	common.SaveProcess(ctx, r.processes, proc)
	defer func() {
		metrics.RecordProcessFinished(string(proc.Kind()), string(proc.Status()), proc.RuntimeDuration())
	}()

	logger.Log(common.LevelInfo, "Runner started", map[string]interface{}{
		"reference_interval": r.reference.String(),
	})

	for {
		if err := r.tick(ctx, proc); err != nil {
			if common.IsShutdown(ctx, err) {
				_ = proc.Stop()
				logger.Log(common.LevelInfo, "Runner stopped", map[string]interface{}{"ticks": proc.Cycles()})
				common.SaveProcess(ctx, r.processes, proc)
				return proc, nil
			}
			_ = proc.Fail(err)
			logger.Log(common.LevelError, "Runner failed", map[string]interface{}{
				"error": err.Error(),
				"ticks": proc.Cycles(),
			})
			common.SaveProcess(ctx, r.processes, proc)
			return proc, err
		}
	}
}

// tick runs one cycle: fresh time-scale read, one sleep, one replenishment.
// The tick id is drawn before the call so a retried call stays idempotent.
func (r *Runner) tick(ctx context.Context, proc *process.SimulationProcess) error {
	timeScale, err := r.settings.ReadSetting(ctx, settings.TimeScale)
	if err != nil {
		return fmt.Errorf("read time-scale: %w", err)
	}

	interval, err := Interval(r.reference, timeScale)
	if err != nil {
		return err
	}

	if err := r.clock.Sleep(ctx, interval); err != nil {
		return err
	}

	tickID := r.newTickID()
	tickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.grace)
	defer cancel()
	if err := r.replenisher.ApplyReplenishment(tickCtx, tickID); err != nil {
		return fmt.Errorf("apply replenishment: %w", err)
	}

	if err := proc.IncrementCycles(); err != nil {
		return err
	}
	metrics.RecordReplenishment(interval)
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Replenishment applied", map[string]interface{}{
		"tick_id":    tickID,
		"interval":   interval.String(),
		"time_scale": timeScale,
	})
	common.SaveProcess(ctx, r.processes, proc)
	return nil
}
