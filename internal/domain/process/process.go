package process

import (
	"fmt"
	"time"

	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// Kind identifies which loop a process runs
type Kind string

const (
	KindWorker Kind = "WORKER"
	KindRunner Kind = "RUNNER"
)

// Exit codes shared by every binary.
const (
	ExitOK        = 0
	ExitFatal     = 1
	ExitUsage     = 2
	ExitExhausted = 3
)

// SimulationProcess is the run-time entity wrapping a worker or the runner.
// A worker owns at most one station for its lifetime.
//
// Invariants:
// - Cycles only advance while RUNNING
// - StationID is set once
type SimulationProcess struct {
	id         string
	kind       Kind
	workerType production.WorkerType
	stationID  int
	cycles     int
	exitCode   *int
	exitReason string
	lifecycle  *shared.LifecycleStateMachine
}

// NewWorkerProcess creates a PENDING worker process
func NewWorkerProcess(id string, workerType production.WorkerType, clock shared.Clock) *SimulationProcess {
	return &SimulationProcess{
		id:         id,
		kind:       KindWorker,
		workerType: workerType,
		lifecycle:  shared.NewLifecycleStateMachine(clock),
	}
}

// NewRunnerProcess creates a PENDING runner process
func NewRunnerProcess(id string, clock shared.Clock) *SimulationProcess {
	return &SimulationProcess{
		id:        id,
		kind:      KindRunner,
		lifecycle: shared.NewLifecycleStateMachine(clock),
	}
}

func (p *SimulationProcess) ID() string                        { return p.id }
func (p *SimulationProcess) Kind() Kind                        { return p.kind }
func (p *SimulationProcess) WorkerType() production.WorkerType { return p.workerType }
func (p *SimulationProcess) StationID() int                    { return p.stationID }
func (p *SimulationProcess) Cycles() int                       { return p.cycles }
func (p *SimulationProcess) ExitCode() *int                    { return p.exitCode }
func (p *SimulationProcess) ExitReason() string                { return p.exitReason }
func (p *SimulationProcess) Status() shared.LifecycleStatus    { return p.lifecycle.Status() }
func (p *SimulationProcess) CreatedAt() time.Time              { return p.lifecycle.CreatedAt() }
func (p *SimulationProcess) UpdatedAt() time.Time              { return p.lifecycle.UpdatedAt() }
func (p *SimulationProcess) StartedAt() *time.Time             { return p.lifecycle.StartedAt() }
func (p *SimulationProcess) StoppedAt() *time.Time             { return p.lifecycle.StoppedAt() }
func (p *SimulationProcess) LastError() error                  { return p.lifecycle.LastError() }
func (p *SimulationProcess) IsRunning() bool                   { return p.lifecycle.IsRunning() }
func (p *SimulationProcess) IsFinished() bool                  { return p.lifecycle.IsFinished() }
func (p *SimulationProcess) RuntimeDuration() time.Duration    { return p.lifecycle.RuntimeDuration() }

// Start transitions the process to RUNNING
func (p *SimulationProcess) Start() error {
	return p.lifecycle.Start()
}

// AssignStation records the leased slot
func (p *SimulationProcess) AssignStation(slotID int) error {
	if p.kind != KindWorker {
		return fmt.Errorf("process %s is a %s and cannot own a station", p.id, p.kind)
	}
	if p.stationID != 0 {
		return fmt.Errorf("process %s already owns station %d", p.id, p.stationID)
	}
	if slotID <= 0 {
		return fmt.Errorf("invalid station id %d", slotID)
	}
	p.stationID = slotID
	p.lifecycle.UpdateTimestamp()
	return nil
}

// IncrementCycles counts one produced unit or one replenishment tick
func (p *SimulationProcess) IncrementCycles() error {
	if !p.lifecycle.IsRunning() {
		return fmt.Errorf("cannot count cycle in %s state", p.lifecycle.Status())
	}
	p.cycles++
	p.lifecycle.UpdateTimestamp()
	return nil
}

// Exhaust ends a worker that found no free station
func (p *SimulationProcess) Exhaust() error {
	if err := p.lifecycle.Exhaust(); err != nil {
		return err
	}
	p.setExit(ExitExhausted, "no station available")
	return nil
}

// Stop ends the process after an external signal
func (p *SimulationProcess) Stop() error {
	if err := p.lifecycle.Stop(); err != nil {
		return err
	}
	p.setExit(ExitOK, "stopped")
	return nil
}

// Complete ends the process normally
func (p *SimulationProcess) Complete() error {
	if err := p.lifecycle.Complete(); err != nil {
		return err
	}
	p.setExit(ExitOK, "completed")
	return nil
}

// Fail ends the process on a fatal error
func (p *SimulationProcess) Fail(err error) error {
	if ferr := p.lifecycle.Fail(err); ferr != nil {
		return ferr
	}
	reason := "failed"
	if err != nil {
		reason = err.Error()
	}
	p.setExit(ExitFatal, reason)
	return nil
}

func (p *SimulationProcess) setExit(code int, reason string) {
	p.exitCode = &code
	p.exitReason = reason
}

func (p *SimulationProcess) String() string {
	if p.kind == KindWorker {
		return fmt.Sprintf("Process[%s, worker=%s, station=%d, status=%s, units=%d]",
			p.id, p.workerType, p.stationID, p.Status(), p.cycles)
	}
	return fmt.Sprintf("Process[%s, runner, status=%s, ticks=%d]", p.id, p.Status(), p.cycles)
}

// Snapshot is the persisted view of a process
type Snapshot struct {
	ID         string
	Kind       Kind
	WorkerType production.WorkerType
	StationID  int
	Status     shared.LifecycleStatus
	Cycles     int
	StartedAt  *time.Time
	StoppedAt  *time.Time
	ExitCode   *int
	ExitReason string
	UpdatedAt  time.Time
}

// Snapshot captures the current state for persistence
func (p *SimulationProcess) Snapshot() Snapshot {
	return Snapshot{
		ID:         p.id,
		Kind:       p.kind,
		WorkerType: p.workerType,
		StationID:  p.stationID,
		Status:     p.Status(),
		Cycles:     p.cycles,
		StartedAt:  p.StartedAt(),
		StoppedAt:  p.StoppedAt(),
		ExitCode:   p.exitCode,
		ExitReason: p.exitReason,
		UpdatedAt:  p.UpdatedAt(),
	}
}
