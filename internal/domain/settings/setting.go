package settings

import (
	"context"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// Names of the settings the simulation reads.
const (
	// TimeScale is the integer divisor compressing simulated time
	TimeScale = "TimeScale"

	// RefillThreshold is the bin level at or below which a tick refills a station
	RefillThreshold = "RefillThreshold"

	// RefillQuantity is the number of parts a tick adds to a low bin
	RefillQuantity = "RefillQuantity"

	// PartsPerUnit is the number of parts one finished unit consumes
	PartsPerUnit = "PartsPerUnit"
)

// Setting is a named numeric value with an inclusive range and a stored default
type Setting struct {
	Name    string
	Value   int
	Min     int
	Max     int
	Default int
}

// Validate checks that value lies within [Min, Max]
func (s Setting) Validate(value int) error {
	if value < s.Min || value > s.Max {
		return fmt.Errorf("%w: %s=%d not in [%d, %d]", shared.ErrSettingOutOfRange, s.Name, value, s.Min, s.Max)
	}
	return nil
}

// IsDefault reports whether the current value equals the stored default
func (s Setting) IsDefault() bool {
	return s.Value == s.Default
}

// Defaults returns the settings seeded into a fresh store
func Defaults() []Setting {
	return []Setting{
		{Name: TimeScale, Value: 1, Min: 1, Max: 1000, Default: 1},
		{Name: RefillThreshold, Value: 5, Min: 0, Max: 100, Default: 5},
		{Name: RefillQuantity, Value: 25, Min: 1, Max: 500, Default: 25},
		{Name: PartsPerUnit, Value: 1, Min: 1, Max: 10, Default: 1},
	}
}

// Reader is the narrow read side used by simulation loops.
// Implementations never cache; every call reaches the store.
type Reader interface {
	ReadSetting(ctx context.Context, name string) (int, error)
}

// Repository is the configuration provider
type Repository interface {
	Reader

	// ListSettings returns every setting ordered by name
	ListSettings(ctx context.Context) ([]Setting, error)

	// ChangeSetting updates one value, rejecting values outside its range
	ChangeSetting(ctx context.Context, name string, value int) error

	// ResetDefaults restores every setting to its default in one transaction
	ResetDefaults(ctx context.Context) error
}
