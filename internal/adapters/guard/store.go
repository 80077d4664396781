// Package guard decorates a coordination store with client-side rate
// limiting and bounded retry of transient failures.
package guard

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/kanban-go/internal/adapters/metrics"
	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

// Backend is everything a simulation process needs from the store
type Backend interface {
	settings.Repository
	station.Pool
	station.Replenisher
}

// Options tunes the guard
type Options struct {
	// RequestsPerSecond and Burst configure the token bucket
	RequestsPerSecond int
	Burst             int

	// MaxAttempts is the total number of attempts per call; 1 disables retry
	MaxAttempts int

	// BackoffBase is doubled after every failed attempt, with jitter
	BackoffBase time.Duration
}

// Store retries only transient failures, and only for operations that are
// idempotent: reads, per-owner leases, and reports and ticks keyed by id.
type Store struct {
	backend     Backend
	limiter     *rate.Limiter
	clock       shared.Clock
	maxAttempts int
	backoffBase time.Duration
}

var _ Backend = (*Store)(nil)

// NewStore wraps backend. If clock is nil, uses RealClock (production behavior)
func NewStore(backend Backend, clock shared.Clock, opts Options) *Store {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 50
	}
	if opts.Burst <= 0 {
		opts.Burst = opts.RequestsPerSecond
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 200 * time.Millisecond
	}
	return &Store{
		backend:     backend,
		limiter:     rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		clock:       clock,
		maxAttempts: opts.MaxAttempts,
		backoffBase: opts.BackoffBase,
	}
}

// addJitter scales d by a random factor in [0.5, 1.5) to spread retries
func addJitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.5 + rand.Float64()))
}

// do runs call with rate limiting and exponential backoff retries
func (s *Store) do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		lastErr = call(ctx)
		if lastErr == nil || !shared.IsTransient(lastErr) {
			return lastErr
		}
		if attempt == s.maxAttempts-1 {
			break
		}

		delay := addJitter(s.backoffBase * time.Duration(1<<attempt))
		metrics.RecordStoreRetry(op)
		common.LoggerFromContext(ctx).Log(common.LevelWarn, "Retrying store call", map[string]interface{}{
			"op":      op,
			"attempt": attempt + 1,
			"delay":   delay.String(),
			"error":   lastErr.Error(),
		})
		if err := s.clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, s.maxAttempts, lastErr)
}

func (s *Store) ReadSetting(ctx context.Context, name string) (int, error) {
	var value int
	err := s.do(ctx, "read setting", func(ctx context.Context) error {
		var err error
		value, err = s.backend.ReadSetting(ctx, name)
		return err
	})
	return value, err
}

func (s *Store) ListSettings(ctx context.Context) ([]settings.Setting, error) {
	var out []settings.Setting
	err := s.do(ctx, "list settings", func(ctx context.Context) error {
		var err error
		out, err = s.backend.ListSettings(ctx)
		return err
	})
	return out, err
}

func (s *Store) ChangeSetting(ctx context.Context, name string, value int) error {
	return s.do(ctx, "change setting", func(ctx context.Context) error {
		return s.backend.ChangeSetting(ctx, name, value)
	})
}

func (s *Store) ResetDefaults(ctx context.Context) error {
	return s.do(ctx, "reset defaults", func(ctx context.Context) error {
		return s.backend.ResetDefaults(ctx)
	})
}

func (s *Store) ResolveWorkerType(ctx context.Context, workerType production.WorkerType) (int, error) {
	var id int
	err := s.do(ctx, "resolve worker type", func(ctx context.Context) error {
		var err error
		id, err = s.backend.ResolveWorkerType(ctx, workerType)
		return err
	})
	return id, err
}

func (s *Store) LeaseStationSlot(ctx context.Context, workerTypeID int, owner string) (station.LeaseResult, error) {
	var result station.LeaseResult
	err := s.do(ctx, "lease station", func(ctx context.Context) error {
		var err error
		result, err = s.backend.LeaseStationSlot(ctx, workerTypeID, owner)
		return err
	})
	return result, err
}

// ReleaseStationSlot treats "not leased" after a failed attempt as success:
// the earlier attempt released the slot before its response was lost.
func (s *Store) ReleaseStationSlot(ctx context.Context, slotID int, owner string) error {
	attempts := 0
	return s.do(ctx, "release station", func(ctx context.Context) error {
		attempts++
		err := s.backend.ReleaseStationSlot(ctx, slotID, owner)
		if attempts > 1 && errors.Is(err, shared.ErrStationNotLeased) {
			return nil
		}
		return err
	})
}

func (s *Store) ReportUnit(ctx context.Context, unit production.Unit) error {
	return s.do(ctx, "report unit", func(ctx context.Context) error {
		return s.backend.ReportUnit(ctx, unit)
	})
}

func (s *Store) ApplyReplenishment(ctx context.Context, tickID string) error {
	return s.do(ctx, "apply replenishment", func(ctx context.Context) error {
		return s.backend.ApplyReplenishment(ctx, tickID)
	})
}
