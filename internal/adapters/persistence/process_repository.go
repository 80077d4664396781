package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/kanban-go/internal/adapters/storeerr"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// GormProcessRepository implements process.Repository using GORM
type GormProcessRepository struct {
	db *gorm.DB
}

// NewGormProcessRepository creates a new process repository
func NewGormProcessRepository(db *gorm.DB) *GormProcessRepository {
	return &GormProcessRepository{db: db}
}

// Save inserts or updates a process snapshot
func (r *GormProcessRepository) Save(ctx context.Context, snapshot process.Snapshot) error {
	model := &ProcessModel{
		ID:         snapshot.ID,
		Kind:       string(snapshot.Kind),
		WorkerType: string(snapshot.WorkerType),
		StationID:  snapshot.StationID,
		Status:     string(snapshot.Status),
		Cycles:     snapshot.Cycles,
		StartedAt:  snapshot.StartedAt,
		StoppedAt:  snapshot.StoppedAt,
		ExitCode:   snapshot.ExitCode,
		ExitReason: snapshot.ExitReason,
		UpdatedAt:  snapshot.UpdatedAt,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"station_id", "status", "cycles", "started_at", "stopped_at", "exit_code", "exit_reason", "updated_at"}),
	}).Create(model).Error
	return storeerr.Classify("save process", err)
}

// Get retrieves a process by id
func (r *GormProcessRepository) Get(ctx context.Context, id string) (*process.Snapshot, error) {
	var model ProcessModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", shared.ErrProcessNotFound, id)
	}
	if err != nil {
		return nil, storeerr.Classify("get process", err)
	}
	snapshot := snapshotFromModel(model)
	return &snapshot, nil
}

// List returns processes, most recently updated first
func (r *GormProcessRepository) List(ctx context.Context, status string, limit int) ([]process.Snapshot, error) {
	query := r.db.WithContext(ctx).Order("updated_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []ProcessModel
	if err := query.Find(&models).Error; err != nil {
		return nil, storeerr.Classify("list processes", err)
	}

	result := make([]process.Snapshot, len(models))
	for i, m := range models {
		result[i] = snapshotFromModel(m)
	}
	return result, nil
}

func snapshotFromModel(m ProcessModel) process.Snapshot {
	return process.Snapshot{
		ID:         m.ID,
		Kind:       process.Kind(m.Kind),
		WorkerType: production.WorkerType(m.WorkerType),
		StationID:  m.StationID,
		Status:     shared.LifecycleStatus(m.Status),
		Cycles:     m.Cycles,
		StartedAt:  m.StartedAt,
		StoppedAt:  m.StoppedAt,
		ExitCode:   m.ExitCode,
		ExitReason: m.ExitReason,
		UpdatedAt:  m.UpdatedAt,
	}
}
