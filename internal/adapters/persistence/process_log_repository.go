package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/kanban-go/internal/adapters/storeerr"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// GormProcessLogRepository implements process.LogRepository using GORM.
// Identical messages from one process within the dedup window are dropped.
type GormProcessLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // key: processID|message
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormProcessLogRepository creates a new process log repository
// If clock is nil, uses RealClock (production behavior)
func NewGormProcessLogRepository(db *gorm.DB, clock shared.Clock) *GormProcessLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormProcessLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes a log entry with time-windowed deduplication
func (r *GormProcessLogRepository) Log(ctx context.Context, processID, level, message string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	if r.isDuplicate(processID+"|"+message, now) {
		return nil
	}

	var metadataJSON string
	if len(metadata) > 0 {
		if data, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(data)
		}
	}

	err := r.db.WithContext(ctx).Create(&ProcessLogModel{
		ProcessID: processID,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}).Error
	return storeerr.Classify("write process log", err)
}

func (r *GormProcessLogRepository) isDuplicate(key string, now time.Time) bool {
	r.dedupMu.Lock()
	defer r.dedupMu.Unlock()

	if last, ok := r.dedupCache[key]; ok && now.Sub(last) < r.dedupWindow {
		return true
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		cutoff := now.Add(-r.dedupWindow)
		for k, ts := range r.dedupCache {
			if ts.Before(cutoff) {
				delete(r.dedupCache, k)
			}
		}
	}
	r.dedupCache[key] = now
	return false
}

// GetLogs returns the newest entries of one process, optionally filtered by level.
// An empty processID returns entries of every process.
func (r *GormProcessLogRepository) GetLogs(ctx context.Context, processID string, limit int, level *string) ([]process.LogEntry, error) {
	query := r.db.WithContext(ctx).Order("timestamp DESC, id DESC")
	if processID != "" {
		query = query.Where("process_id = ?", processID)
	}
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []ProcessLogModel
	if err := query.Find(&models).Error; err != nil {
		return nil, storeerr.Classify("read process logs", err)
	}

	entries := make([]process.LogEntry, len(models))
	for i, m := range models {
		var metadata map[string]interface{}
		if m.Metadata != "" {
			_ = json.Unmarshal([]byte(m.Metadata), &metadata)
		}
		entries[i] = process.LogEntry{
			ID:        m.ID,
			ProcessID: m.ProcessID,
			Timestamp: m.Timestamp,
			Level:     m.Level,
			Message:   m.Message,
			Metadata:  metadata,
		}
	}
	return entries, nil
}
