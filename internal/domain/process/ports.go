package process

import (
	"context"
	"time"
)

// Repository persists process snapshots
type Repository interface {
	// Save inserts or updates the snapshot of a process
	Save(ctx context.Context, snapshot Snapshot) error

	// Get returns one process; unknown ids fail with shared.ErrProcessNotFound
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns processes, newest first, optionally filtered by status
	List(ctx context.Context, status string, limit int) ([]Snapshot, error)
}

// LogEntry is one persisted process log line
type LogEntry struct {
	ID        int
	ProcessID string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// LogRepository persists process log lines
type LogRepository interface {
	Log(ctx context.Context, processID, level, message string, metadata map[string]interface{}) error
	GetLogs(ctx context.Context, processID string, limit int, level *string) ([]LogEntry, error)
}
