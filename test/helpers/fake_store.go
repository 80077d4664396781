package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

type fakeSlot struct {
	id     int
	typeID int
	owner  string
}

// FakeStore is an in-memory settings repository, station pool and replenisher.
// All methods are safe for concurrent use.
type FakeStore struct {
	mu       sync.Mutex
	typeIDs  map[production.WorkerType]int
	slots    []*fakeSlot
	settings map[string]settings.Setting
	units    []production.Unit
	unitIDs  map[string]bool
	ticks    []string
	tickIDs  map[string]bool
	released []int
	calls    map[string]int
	failures map[string][]error
	always   map[string]error

	// LeaseOverride, when set, is returned by every successful lease
	LeaseOverride *station.LeaseResult
}

// NewFakeStore creates a store whose known worker types are the keys of
// capacity, each with the given number of free stations. TimeScale is 1.
func NewFakeStore(capacity map[production.WorkerType]int) *FakeStore {
	s := &FakeStore{
		typeIDs:  make(map[production.WorkerType]int),
		settings: make(map[string]settings.Setting),
		unitIDs:  make(map[string]bool),
		tickIDs:  make(map[string]bool),
		calls:    make(map[string]int),
		failures: make(map[string][]error),
		always:   make(map[string]error),
	}
	for _, d := range settings.Defaults() {
		s.settings[d.Name] = d
	}

	nextSlot := 1
	for i, wt := range production.AllWorkerTypes() {
		n, ok := capacity[wt]
		if !ok {
			continue
		}
		s.typeIDs[wt] = i + 1
		for j := 0; j < n; j++ {
			s.slots = append(s.slots, &fakeSlot{id: nextSlot, typeID: i + 1})
			nextSlot++
		}
	}
	return s
}

// FailWith makes every call of op fail with err.
// Ops: resolve, lease, release, report, replenish, read.
func (s *FakeStore) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.always[op] = err
}

// FailTimes makes the next n calls of op fail with err
func (s *FakeStore) FailTimes(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.failures[op] = append(s.failures[op], err)
	}
}

// SetSetting overwrites a setting value without range checks
func (s *FakeStore) SetSetting(name string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setting := s.settings[name]
	setting.Name = name
	setting.Value = value
	s.settings[name] = setting
}

// DeleteSetting removes a setting entirely
func (s *FakeStore) DeleteSetting(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, name)
}

// Calls returns how many times op was invoked
func (s *FakeStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Units returns the distinct units recorded
func (s *FakeStore) Units() []production.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]production.Unit, len(s.units))
	copy(out, s.units)
	return out
}

// Ticks returns the distinct tick ids applied
func (s *FakeStore) Ticks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ticks))
	copy(out, s.ticks)
	return out
}

// Released returns the slot ids released by their owners
func (s *FakeStore) Released() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.released))
	copy(out, s.released)
	return out
}

// LeasedCount returns the number of leased slots of a worker type
func (s *FakeStore) LeasedCount(wt production.WorkerType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, slot := range s.slots {
		if slot.typeID == s.typeIDs[wt] && slot.owner != "" {
			n++
		}
	}
	return n
}

// must be called with mu held
func (s *FakeStore) enter(op string) error {
	s.calls[op]++
	if queue := s.failures[op]; len(queue) > 0 {
		s.failures[op] = queue[1:]
		return queue[0]
	}
	return s.always[op]
}

func (s *FakeStore) ResolveWorkerType(ctx context.Context, wt production.WorkerType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("resolve"); err != nil {
		return 0, err
	}
	id, ok := s.typeIDs[wt]
	if !ok {
		return 0, fmt.Errorf("%w: %s", shared.ErrUnknownWorkerType, wt)
	}
	return id, nil
}

func (s *FakeStore) LeaseStationSlot(ctx context.Context, workerTypeID int, owner string) (station.LeaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("lease"); err != nil {
		return station.LeaseResult{}, err
	}
	if s.LeaseOverride != nil {
		return *s.LeaseOverride, nil
	}

	known := false
	for _, id := range s.typeIDs {
		if id == workerTypeID {
			known = true
		}
	}
	if !known {
		return station.LeaseResult{}, fmt.Errorf("%w: id %d", shared.ErrUnknownWorkerType, workerTypeID)
	}

	for _, slot := range s.slots {
		if slot.typeID == workerTypeID && slot.owner == owner {
			return station.Leased(slot.id), nil
		}
	}
	for _, slot := range s.slots {
		if slot.typeID == workerTypeID && slot.owner == "" {
			slot.owner = owner
			return station.Leased(slot.id), nil
		}
	}
	return station.Exhausted(), nil
}

func (s *FakeStore) ReleaseStationSlot(ctx context.Context, slotID int, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("release"); err != nil {
		return err
	}
	for _, slot := range s.slots {
		if slot.id == slotID && slot.owner == owner {
			slot.owner = ""
			s.released = append(s.released, slotID)
			return nil
		}
	}
	return fmt.Errorf("%w: station %d", shared.ErrStationNotLeased, slotID)
}

func (s *FakeStore) ReportUnit(ctx context.Context, unit production.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("report"); err != nil {
		return err
	}
	if s.unitIDs[unit.ID] {
		return nil
	}
	s.unitIDs[unit.ID] = true
	s.units = append(s.units, unit)
	return nil
}

func (s *FakeStore) ApplyReplenishment(ctx context.Context, tickID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("replenish"); err != nil {
		return err
	}
	if s.tickIDs[tickID] {
		return nil
	}
	s.tickIDs[tickID] = true
	s.ticks = append(s.ticks, tickID)
	return nil
}

func (s *FakeStore) ReadSetting(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("read"); err != nil {
		return 0, err
	}
	setting, ok := s.settings[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", shared.ErrSettingNotFound, name)
	}
	return setting.Value, nil
}

func (s *FakeStore) ListSettings(ctx context.Context) ([]settings.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]settings.Setting, 0, len(s.settings))
	for _, setting := range s.settings {
		out = append(out, setting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FakeStore) ChangeSetting(ctx context.Context, name string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	setting, ok := s.settings[name]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrSettingNotFound, name)
	}
	if err := setting.Validate(value); err != nil {
		return err
	}
	setting.Value = value
	s.settings[name] = setting
	return nil
}

func (s *FakeStore) ResetDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, setting := range s.settings {
		setting.Value = setting.Default
		s.settings[name] = setting
	}
	return nil
}
