package production

import (
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

const (
	// DefaultBaseline is the nominal time to build one unit at 100% efficiency
	DefaultBaseline = 60 * time.Second

	// JitterPercent is the fixed magnitude of per-unit variance
	JitterPercent = 10
)

// PacingModel computes how long a worker spends on each unit.
//
// Each PacingModel owns one random source; it is not safe for concurrent use
// and is meant to belong to exactly one worker.
type PacingModel struct {
	baselineMs int
	workerType WorkerType
	rng        *rand.Rand
}

// NewPacingModel creates a pacing model seeded deterministically.
// A zero or negative baseline falls back to DefaultBaseline.
func NewPacingModel(workerType WorkerType, baseline time.Duration, seed int64) *PacingModel {
	if baseline <= 0 {
		baseline = DefaultBaseline
	}
	return &PacingModel{
		baselineMs: int(baseline / time.Millisecond),
		workerType: workerType,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// DeriveSeed mixes the start time with the process id, so workers started in
// the same instant still draw different jitter sequences
func DeriveSeed(now time.Time, processID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(processID))
	return now.UnixNano() ^ int64(h.Sum64())
}

// WorkerType returns the worker type the model paces
func (p *PacingModel) WorkerType() WorkerType {
	return p.workerType
}

// NextUnitMillis draws the jitter sign and returns the simulated build time
// in milliseconds before time-scale compression.
func (p *PacingModel) NextUnitMillis() int {
	return UnitMillis(p.baselineMs, p.rng.Intn(2) == 0, p.workerType)
}

// NextUnitDuration returns the real-time suspension for the next unit under
// the given time-scale.
func (p *PacingModel) NextUnitDuration(timeScale int) (time.Duration, error) {
	return Compress(p.NextUnitMillis(), timeScale)
}

// UnitMillis applies the jitter and the worker-type multiplier to a baseline.
// slower selects the +10% branch; otherwise 10% is subtracted.
func UnitMillis(baselineMs int, slower bool, workerType WorkerType) int {
	jitter := int(float64(baselineMs) * JitterPercent / 100)
	ms := baselineMs - jitter
	if slower {
		ms = baselineMs + jitter
	}
	return workerType.ApplyMultiplier(ms)
}

// Compress divides a simulated duration in milliseconds by the time-scale.
// A time-scale below 1 is a ConfigurationError, never a division fault.
func Compress(ms int, timeScale int) (time.Duration, error) {
	if err := ValidateTimeScale(timeScale); err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond / time.Duration(timeScale), nil
}

// ValidateTimeScale guards every division by the shared time-scale
func ValidateTimeScale(timeScale int) error {
	if timeScale < 1 {
		return shared.NewConfigurationError(settings.TimeScale, timeScale, "time-scale must be a positive integer")
	}
	return nil
}
