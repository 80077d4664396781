package persistence

import (
	"gorm.io/gorm"

	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// GormStore bundles the repositories a simulation process talks to
type GormStore struct {
	*GormSettingsRepository
	*GormStationRepository
}

// NewGormStore creates the coordination store over one database handle
func NewGormStore(db *gorm.DB, clock shared.Clock) *GormStore {
	return &GormStore{
		GormSettingsRepository: NewGormSettingsRepository(db, clock),
		GormStationRepository:  NewGormStationRepository(db, clock),
	}
}
