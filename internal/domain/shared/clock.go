package shared

import (
	"context"
	"sync"
	"time"
)

// Clock is an abstraction for time operations, allowing time to be mocked in tests.
//
// Sleep is the single suspension point of every simulation loop. It returns
// ctx.Err() when the context is cancelled before the duration elapses.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock implements Clock using the actual system time
type RealClock struct{}

// Now returns the current system time in UTC
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Sleep blocks for the given duration or until ctx is done
func (r *RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MockClock implements Clock with a controllable time for testing.
// Sleep never blocks; it records the requested duration and advances the clock.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	sleeps      []time.Duration

	// OnSleep, when set, is invoked after each recorded sleep with the
	// 1-based sleep count. Tests use it to cancel a loop after N cycles.
	OnSleep func(n int, d time.Duration)
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CurrentTime
}

// Sleep advances the mock clock without blocking (instant in tests)
func (m *MockClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.CurrentTime = m.CurrentTime.Add(d)
	m.sleeps = append(m.sleeps, d)
	n := len(m.sleeps)
	hook := m.OnSleep
	m.mu.Unlock()

	if hook != nil {
		hook(n, d)
	}
	return ctx.Err()
}

// Sleeps returns every duration passed to Sleep, in call order
func (m *MockClock) Sleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleeps))
	copy(out, m.sleeps)
	return out
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CurrentTime = m.CurrentTime.Add(d)
}

// SetTime sets the mock clock to a specific time
func (m *MockClock) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CurrentTime = t
}

// NewMockClock creates a MockClock starting at the given time
// If zero time is provided, starts at current time
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Now()
	}
	return &MockClock{CurrentTime: startTime}
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}
