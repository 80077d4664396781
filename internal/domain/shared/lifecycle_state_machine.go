package shared

import (
	"fmt"
	"time"
)

// LifecycleStatus represents the state of a simulation process in its lifecycle
type LifecycleStatus string

const (
	// LifecycleStatusPending indicates the process is registered but not started
	LifecycleStatusPending LifecycleStatus = "PENDING"

	// LifecycleStatusRunning indicates the process loop is executing
	LifecycleStatusRunning LifecycleStatus = "RUNNING"

	// LifecycleStatusCompleted indicates the loop ended without error
	LifecycleStatusCompleted LifecycleStatus = "COMPLETED"

	// LifecycleStatusFailed indicates the loop ended on a fatal error
	LifecycleStatusFailed LifecycleStatus = "FAILED"

	// LifecycleStatusStopped indicates the process was stopped by a signal
	LifecycleStatusStopped LifecycleStatus = "STOPPED"

	// LifecycleStatusExhausted indicates a worker found no free station
	LifecycleStatusExhausted LifecycleStatus = "EXHAUSTED"
)

// LifecycleStateMachine manages the lifecycle transitions shared by worker
// and runner processes:
//
//	PENDING → RUNNING → COMPLETED | FAILED | STOPPED | EXHAUSTED
//
// Invariants:
// - Terminal states are never left
// - Timestamps come from the injected clock
type LifecycleStateMachine struct {
	status    LifecycleStatus
	createdAt time.Time
	updatedAt time.Time
	startedAt *time.Time
	stoppedAt *time.Time
	lastError error
	clock     Clock
}

// NewLifecycleStateMachine creates a new lifecycle state machine in PENDING state
func NewLifecycleStateMachine(clock Clock) *LifecycleStateMachine {
	if clock == nil {
		clock = NewRealClock()
	}

	now := clock.Now()
	return &LifecycleStateMachine{
		status:    LifecycleStatusPending,
		createdAt: now,
		updatedAt: now,
		clock:     clock,
	}
}

func (sm *LifecycleStateMachine) Status() LifecycleStatus { return sm.status }
func (sm *LifecycleStateMachine) CreatedAt() time.Time    { return sm.createdAt }
func (sm *LifecycleStateMachine) UpdatedAt() time.Time    { return sm.updatedAt }
func (sm *LifecycleStateMachine) StartedAt() *time.Time   { return sm.startedAt }
func (sm *LifecycleStateMachine) StoppedAt() *time.Time   { return sm.stoppedAt }
func (sm *LifecycleStateMachine) LastError() error        { return sm.lastError }

// Start transitions from PENDING to RUNNING
func (sm *LifecycleStateMachine) Start() error {
	if sm.status != LifecycleStatusPending {
		return fmt.Errorf("cannot start from %s state", sm.status)
	}

	now := sm.clock.Now()
	sm.status = LifecycleStatusRunning
	sm.startedAt = &now
	sm.updatedAt = now
	return nil
}

// Complete transitions from RUNNING to COMPLETED
func (sm *LifecycleStateMachine) Complete() error {
	if sm.status != LifecycleStatusRunning {
		return fmt.Errorf("cannot complete from %s state", sm.status)
	}
	sm.finish(LifecycleStatusCompleted)
	return nil
}

// Exhaust transitions from RUNNING to EXHAUSTED
func (sm *LifecycleStateMachine) Exhaust() error {
	if sm.status != LifecycleStatusRunning {
		return fmt.Errorf("cannot exhaust from %s state", sm.status)
	}
	sm.finish(LifecycleStatusExhausted)
	return nil
}

// Fail transitions to FAILED from any non-terminal state
func (sm *LifecycleStateMachine) Fail(err error) error {
	if sm.IsFinished() {
		return fmt.Errorf("cannot fail from %s state", sm.status)
	}
	sm.lastError = err
	sm.finish(LifecycleStatusFailed)
	return nil
}

// Stop transitions to STOPPED from any non-terminal state
func (sm *LifecycleStateMachine) Stop() error {
	if sm.IsFinished() {
		return fmt.Errorf("cannot stop from %s state", sm.status)
	}
	sm.finish(LifecycleStatusStopped)
	return nil
}

func (sm *LifecycleStateMachine) finish(status LifecycleStatus) {
	now := sm.clock.Now()
	sm.status = status
	sm.stoppedAt = &now
	sm.updatedAt = now
}

// IsRunning returns true if the process loop is executing
func (sm *LifecycleStateMachine) IsRunning() bool {
	return sm.status == LifecycleStatusRunning
}

// IsFinished returns true once a terminal state has been reached
func (sm *LifecycleStateMachine) IsFinished() bool {
	switch sm.status {
	case LifecycleStatusCompleted, LifecycleStatusFailed, LifecycleStatusStopped, LifecycleStatusExhausted:
		return true
	}
	return false
}

// RuntimeDuration calculates how long the process has been/was running.
// Returns 0 if not started yet.
func (sm *LifecycleStateMachine) RuntimeDuration() time.Duration {
	if sm.startedAt == nil {
		return 0
	}

	endTime := sm.clock.Now()
	if sm.stoppedAt != nil {
		endTime = *sm.stoppedAt
	}

	return endTime.Sub(*sm.startedAt)
}

// UpdateTimestamp updates the updatedAt timestamp
func (sm *LifecycleStateMachine) UpdateTimestamp() {
	sm.updatedAt = sm.clock.Now()
}
