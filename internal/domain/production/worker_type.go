package production

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// WorkerType classifies a workstation operator by experience.
// It fixes the production-rate multiplier applied to every unit.
type WorkerType string

const (
	WorkerTypeNew         WorkerType = "new"
	WorkerTypeNormal      WorkerType = "normal"
	WorkerTypeExperienced WorkerType = "experienced"
)

// AllWorkerTypes lists the closed set of worker types in display order
func AllWorkerTypes() []WorkerType {
	return []WorkerType{WorkerTypeNew, WorkerTypeNormal, WorkerTypeExperienced}
}

// ParseWorkerType validates a command-line argument against the closed set.
// Matching is exact; "New" is rejected the same way as "rookie".
func ParseWorkerType(s string) (WorkerType, error) {
	wt := WorkerType(s)
	if wt.IsValid() {
		return wt, nil
	}
	names := make([]string, 0, 3)
	for _, t := range AllWorkerTypes() {
		names = append(names, string(t))
	}
	return "", shared.NewValidationError("worker_type",
		fmt.Sprintf("%q is not one of %s", s, strings.Join(names, "|")))
}

// IsValid reports whether wt belongs to the closed set
func (wt WorkerType) IsValid() bool {
	switch wt {
	case WorkerTypeNew, WorkerTypeNormal, WorkerTypeExperienced:
		return true
	}
	return false
}

func (wt WorkerType) String() string {
	return string(wt)
}

// ApplyMultiplier adjusts a jittered build time in milliseconds.
// new takes 50% longer, experienced 15% shorter; the adjustment is truncated
// to whole milliseconds before it is applied.
func (wt WorkerType) ApplyMultiplier(ms int) int {
	switch wt {
	case WorkerTypeNew:
		return ms + int(float64(ms)*0.5)
	case WorkerTypeExperienced:
		return ms - int(float64(ms)*0.15)
	default:
		return ms
	}
}
