// Package simulation runs the replenishment runner and a set of production
// workers as goroutines of one process, all sharing one store.
package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/application/replenishment"
	"github.com/andrescamacho/kanban-go/internal/application/workstation"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
	"github.com/andrescamacho/kanban-go/pkg/utils"
)

// Store is what the runner and the workers share
type Store interface {
	settings.Reader
	station.Pool
	station.Replenisher
}

// LoggerFactory builds the logger of one process
type LoggerFactory func(processID string) common.ProcessLogger

// Plan says how many workers of each type to start
type Plan struct {
	Workers    map[production.WorkerType]int
	SkipRunner bool
}

// Total returns the number of workers in the plan
func (p Plan) Total() int {
	n := 0
	for _, count := range p.Workers {
		n += count
	}
	return n
}

// Config tunes the simulation
type Config struct {
	Worker         workstation.WorkerConfig
	RunnerInterval time.Duration
}

// Simulation coordinates the goroutines. The first fatal error cancels
// every other process.
type Simulation struct {
	store     Store
	processes process.Repository
	clock     shared.Clock
	cfg       Config
	loggers   LoggerFactory
}

// NewSimulation creates a simulation. processes and loggers may be nil.
// If clock is nil, uses RealClock (production behavior)
func NewSimulation(store Store, processes process.Repository, clock shared.Clock, cfg Config, loggers LoggerFactory) *Simulation {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Simulation{
		store:     store,
		processes: processes,
		clock:     clock,
		cfg:       cfg,
		loggers:   loggers,
	}
}

// Result holds the final state of every process that was started
type Result struct {
	Runner  *process.SimulationProcess
	Workers []*process.SimulationProcess
}

// Count returns how many workers finished in status
func (r *Result) Count(status shared.LifecycleStatus) int {
	n := 0
	for _, w := range r.Workers {
		if w != nil && w.Status() == status {
			n++
		}
	}
	return n
}

// Run blocks until ctx is cancelled or a process fails
func (s *Simulation) Run(ctx context.Context, plan Plan) (*Result, error) {
	if plan.Total() == 0 && plan.SkipRunner {
		return nil, shared.NewValidationError("plan", "nothing to run")
	}
	for wt := range plan.Workers {
		if !wt.IsValid() {
			return nil, shared.NewValidationError("worker_type", fmt.Sprintf("%q is not a worker type", wt))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	result := &Result{}
	var mu sync.Mutex

	if !plan.SkipRunner {
		runner := replenishment.NewRunner(s.store, s.store, s.processes, s.clock, s.cfg.RunnerInterval, s.cfg.Worker.ShutdownGrace)
		id := utils.GenerateProcessID("runner", "")
		g.Go(func() error {
			proc, err := runner.Run(s.withLogger(gctx, id), id)
			mu.Lock()
			result.Runner = proc
			mu.Unlock()
			return err
		})
	}

	i := 0
	for _, wt := range production.AllWorkerTypes() {
		for n := 0; n < plan.Workers[wt]; n++ {
			cfg := s.cfg.Worker
			if cfg.Seed != 0 {
				cfg.Seed += int64(i)
			}
			worker := workstation.NewWorker(s.store, s.store, s.processes, s.clock, cfg)
			id := utils.GenerateProcessID("worker", string(wt))
			wt := wt
			g.Go(func() error {
				proc, err := worker.Run(s.withLogger(gctx, id), wt, id)
				mu.Lock()
				result.Workers = append(result.Workers, proc)
				mu.Unlock()
				return err
			})
			i++
		}
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Simulation started", map[string]interface{}{
		"workers": plan.Total(),
		"runner":  !plan.SkipRunner,
	})
	err := g.Wait()
	return result, err
}

func (s *Simulation) withLogger(ctx context.Context, processID string) context.Context {
	if s.loggers == nil {
		return ctx
	}
	return common.WithLogger(ctx, s.loggers(processID))
}
