package station

import (
	"fmt"
	"time"

	"github.com/andrescamacho/kanban-go/internal/domain/production"
)

// Slot is one unit of finite production capacity, typed by worker category
// and leased to at most one running worker.
type Slot struct {
	ID            int
	WorkerTypeID  int
	WorkerType    production.WorkerType
	LeasedBy      string
	LeasedAt      *time.Time
	PartsOnHand   int
	UnitsProduced int
	Shortages     int
}

// IsLeased reports whether a process currently owns the slot
func (s Slot) IsLeased() bool {
	return s.LeasedBy != ""
}

// Outcome distinguishes a successful lease from capacity exhaustion.
// Fatal outcomes are reported as errors, never as an Outcome.
type Outcome int

const (
	OutcomeLeased Outcome = iota + 1
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLeased:
		return "leased"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// LeaseResult is the non-error result of a lease request
type LeaseResult struct {
	Outcome Outcome
	SlotID  int
}

// Leased builds a successful result; slotID must be positive
func Leased(slotID int) LeaseResult {
	return LeaseResult{Outcome: OutcomeLeased, SlotID: slotID}
}

// Exhausted builds the no-free-slot result
func Exhausted() LeaseResult {
	return LeaseResult{Outcome: OutcomeExhausted}
}

func (r LeaseResult) IsLeased() bool    { return r.Outcome == OutcomeLeased && r.SlotID > 0 }
func (r LeaseResult) IsExhausted() bool { return r.Outcome == OutcomeExhausted }

func (r LeaseResult) String() string {
	if r.IsLeased() {
		return fmt.Sprintf("leased(%d)", r.SlotID)
	}
	return r.Outcome.String()
}
