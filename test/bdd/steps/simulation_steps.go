package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/kanban-go/internal/adapters/persistence"
	"github.com/andrescamacho/kanban-go/internal/application/replenishment"
	"github.com/andrescamacho/kanban-go/internal/application/workstation"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/test/helpers"
)

type simulationContext struct {
	store     *persistence.GormStore
	processes *persistence.GormProcessRepository
	clock     *shared.MockClock

	proc   *process.SimulationProcess
	runErr error
}

func (sc *simulationContext) reset() {
	sc.store = persistence.NewGormStore(helpers.SharedTestDB, nil)
	sc.processes = persistence.NewGormProcessRepository(helpers.SharedTestDB)
	sc.clock = shared.NewMockClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	sc.proc = nil
	sc.runErr = nil
}

// InitializeSimulationScenario registers the workstation and runner steps
func InitializeSimulationScenario(ctx *godog.ScenarioContext) {
	sc := &simulationContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	ctx.Step(`^a clean coordination store$`, sc.aCleanCoordinationStore)
	ctx.Step(`^the time-scale is (\d+)$`, sc.theTimeScaleIs)
	ctx.Step(`^(\d+) "([^"]*)" stations? with (\d+) parts$`, sc.stationsWithParts)

	ctx.Step(`^an? "([^"]*)" worker builds (\d+) units$`, sc.aWorkerBuildsUnits)
	ctx.Step(`^an? "([^"]*)" worker starts$`, sc.aWorkerStarts)
	ctx.Step(`^the runner completes (\d+) ticks$`, sc.theRunnerCompletesTicks)

	ctx.Step(`^the (?:worker|runner) should be stopped with exit code (\d+)$`, sc.shouldBeStoppedWithExitCode)
	ctx.Step(`^the worker should be exhausted with exit code (\d+)$`, sc.shouldBeExhaustedWithExitCode)
	ctx.Step(`^every build should take (\d+) or (\d+) milliseconds$`, sc.everyBuildShouldTake)
	ctx.Step(`^every runner sleep should last (\d+) milliseconds$`, sc.everyRunnerSleepShouldLast)
	ctx.Step(`^the worker should not have slept$`, sc.theWorkerShouldNotHaveSlept)
	ctx.Step(`^the stations should have (\d+) units recorded$`, sc.theStationsShouldHaveUnitsRecorded)
	ctx.Step(`^no units should be recorded$`, sc.noUnitsShouldBeRecorded)
	ctx.Step(`^no station should be leased$`, sc.noStationShouldBeLeased)
	ctx.Step(`^the "([^"]*)" station should hold (\d+) parts$`, sc.theStationShouldHoldParts)
}

func (sc *simulationContext) aCleanCoordinationStore() error {
	slots, err := sc.store.ListStations(context.Background())
	if err != nil {
		return err
	}
	if len(slots) != 0 {
		return fmt.Errorf("expected no stations, found %d", len(slots))
	}
	return nil
}

func (sc *simulationContext) theTimeScaleIs(value int) error {
	return sc.store.ChangeSetting(context.Background(), settings.TimeScale, value)
}

func (sc *simulationContext) stationsWithParts(count int, workerType string, parts int) error {
	_, err := sc.store.AddStations(context.Background(), production.WorkerType(workerType), count, parts)
	return err
}

// runUntil cancels the loop on the sleep after the n-th one, so exactly n
// cycles complete.
func (sc *simulationContext) runUntil(n int, run func(ctx context.Context) (*process.SimulationProcess, error)) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sc.clock.OnSleep = func(count int, _ time.Duration) {
		if count > n {
			cancel()
		}
	}
	sc.proc, sc.runErr = run(ctx)
	return nil
}

func (sc *simulationContext) newWorker() *workstation.Worker {
	return workstation.NewWorker(sc.store, sc.store, sc.processes, sc.clock, workstation.WorkerConfig{
		Baseline:      production.DefaultBaseline,
		Seed:          7,
		ShutdownGrace: time.Second,
	})
}

func (sc *simulationContext) aWorkerBuildsUnits(workerType string, units int) error {
	worker := sc.newWorker()
	return sc.runUntil(units, func(ctx context.Context) (*process.SimulationProcess, error) {
		return worker.Run(ctx, production.WorkerType(workerType), "worker-"+workerType+"-bdd")
	})
}

func (sc *simulationContext) aWorkerStarts(workerType string) error {
	worker := sc.newWorker()
	sc.proc, sc.runErr = worker.Run(context.Background(), production.WorkerType(workerType), "worker-"+workerType+"-bdd")
	return nil
}

func (sc *simulationContext) theRunnerCompletesTicks(ticks int) error {
	runner := replenishment.NewRunner(sc.store, sc.store, sc.processes, sc.clock, 0, time.Second)
	return sc.runUntil(ticks, func(ctx context.Context) (*process.SimulationProcess, error) {
		return runner.Run(ctx, "runner-bdd")
	})
}

func (sc *simulationContext) checkTerminal(status shared.LifecycleStatus, code int) error {
	if sc.runErr != nil {
		return fmt.Errorf("unexpected error: %w", sc.runErr)
	}
	if sc.proc == nil {
		return fmt.Errorf("process did not run")
	}
	if sc.proc.Status() != status {
		return fmt.Errorf("expected status %s, got %s", status, sc.proc.Status())
	}
	if sc.proc.ExitCode() == nil || *sc.proc.ExitCode() != code {
		return fmt.Errorf("expected exit code %d, got %v", code, sc.proc.ExitCode())
	}

	saved, err := sc.processes.Get(context.Background(), sc.proc.ID())
	if err != nil {
		return fmt.Errorf("process was not recorded: %w", err)
	}
	if saved.Status != status {
		return fmt.Errorf("recorded status %s, expected %s", saved.Status, status)
	}
	return nil
}

func (sc *simulationContext) shouldBeStoppedWithExitCode(code int) error {
	return sc.checkTerminal(shared.LifecycleStatusStopped, code)
}

func (sc *simulationContext) shouldBeExhaustedWithExitCode(code int) error {
	return sc.checkTerminal(shared.LifecycleStatusExhausted, code)
}

// completedSleeps drops the final sleep, which was cancelled before any work
func (sc *simulationContext) completedSleeps() []time.Duration {
	sleeps := sc.clock.Sleeps()
	if len(sleeps) == 0 {
		return nil
	}
	return sleeps[:len(sleeps)-1]
}

func (sc *simulationContext) everyBuildShouldTake(fastMs, slowMs int) error {
	fast := time.Duration(fastMs) * time.Millisecond
	slow := time.Duration(slowMs) * time.Millisecond
	sleeps := sc.clock.Sleeps()
	if len(sleeps) == 0 {
		return fmt.Errorf("worker never slept")
	}
	for i, d := range sleeps {
		if d != fast && d != slow {
			return fmt.Errorf("build %d took %s, expected %s or %s", i+1, d, fast, slow)
		}
	}
	return nil
}

func (sc *simulationContext) everyRunnerSleepShouldLast(ms int) error {
	want := time.Duration(ms) * time.Millisecond
	sleeps := sc.completedSleeps()
	if len(sleeps) == 0 {
		return fmt.Errorf("runner never completed a tick")
	}
	for i, d := range sleeps {
		if d != want {
			return fmt.Errorf("sleep before tick %d lasted %s, expected %s", i+1, d, want)
		}
	}
	if sc.proc.Cycles() != len(sleeps) {
		return fmt.Errorf("expected %d ticks, runner counted %d", len(sleeps), sc.proc.Cycles())
	}
	return nil
}

func (sc *simulationContext) theWorkerShouldNotHaveSlept() error {
	if n := len(sc.clock.Sleeps()); n != 0 {
		return fmt.Errorf("worker slept %d times", n)
	}
	return nil
}

func (sc *simulationContext) unitsProduced() (int, error) {
	slots, err := sc.store.ListStations(context.Background())
	if err != nil {
		return 0, err
	}
	total := 0
	for _, slot := range slots {
		total += slot.UnitsProduced
	}
	return total, nil
}

func (sc *simulationContext) theStationsShouldHaveUnitsRecorded(units int) error {
	total, err := sc.unitsProduced()
	if err != nil {
		return err
	}
	if total != units {
		return fmt.Errorf("expected %d units, stations recorded %d", units, total)
	}
	if sc.proc.Cycles() != units {
		return fmt.Errorf("expected %d units, worker counted %d", units, sc.proc.Cycles())
	}
	return nil
}

func (sc *simulationContext) noUnitsShouldBeRecorded() error {
	return sc.theStationsShouldHaveUnitsRecorded(0)
}

func (sc *simulationContext) noStationShouldBeLeased() error {
	slots, err := sc.store.ListStations(context.Background())
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if slot.IsLeased() {
			return fmt.Errorf("station %d is still leased by %s", slot.ID, slot.LeasedBy)
		}
	}
	return nil
}

func (sc *simulationContext) theStationShouldHoldParts(workerType string, parts int) error {
	slots, err := sc.store.ListStations(context.Background())
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if slot.WorkerType != production.WorkerType(workerType) {
			continue
		}
		if slot.PartsOnHand != parts {
			return fmt.Errorf("%s station %d holds %d parts, expected %d", workerType, slot.ID, slot.PartsOnHand, parts)
		}
		return nil
	}
	return fmt.Errorf("no %s station", workerType)
}
