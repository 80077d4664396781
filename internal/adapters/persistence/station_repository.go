package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/kanban-go/internal/adapters/storeerr"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

// leaseAttempts bounds how often a PostgreSQL lease re-picks after losing a
// free row to a concurrent transaction.
const leaseAttempts = 5

// leaseStatement claims the lowest free station of a type in one statement.
// PostgreSQL skips rows locked by concurrent leases; SQLite serialises writers.
const leaseStatement = `UPDATE stations SET leased_by = ?, leased_at = ?
WHERE id = (
	SELECT id FROM stations
	WHERE worker_type_id = ? AND leased_by IS NULL
	ORDER BY id LIMIT 1%s
)
RETURNING id`

// reportStatement consumes parts for one unit. Every SET expression sees the
// pre-update row, so the shortage test and the clamp agree.
const reportStatement = `UPDATE stations SET
	units_produced = units_produced + 1,
	shortages = shortages + CASE WHEN parts_on_hand < ? THEN 1 ELSE 0 END,
	parts_on_hand = CASE WHEN parts_on_hand < ? THEN 0 ELSE parts_on_hand - ? END
WHERE id = ? AND leased_by = ?`

// GormStationRepository implements station.Pool, station.Replenisher and
// station.Admin using GORM
type GormStationRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormStationRepository creates a new station repository
// If clock is nil, uses RealClock (production behavior)
func NewGormStationRepository(db *gorm.DB, clock shared.Clock) *GormStationRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormStationRepository{db: db, clock: clock}
}

// ResolveWorkerType maps a worker type to its stored identifier
func (r *GormStationRepository) ResolveWorkerType(ctx context.Context, workerType production.WorkerType) (int, error) {
	var model WorkerTypeModel
	err := r.db.WithContext(ctx).Where("description = ?", string(workerType)).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %s", shared.ErrUnknownWorkerType, workerType)
	}
	if err != nil {
		return 0, storeerr.Classify("resolve worker type", err)
	}
	return model.ID, nil
}

// LeaseStationSlot atomically claims the next free station of the type for owner
func (r *GormStationRepository) LeaseStationSlot(ctx context.Context, workerTypeID int, owner string) (station.LeaseResult, error) {
	if owner == "" {
		return station.LeaseResult{}, shared.NewValidationError("owner", "lease owner is required")
	}

	var result station.LeaseResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A retried lease returns the slot the owner already holds
		var held []int
		if err := tx.Model(&StationModel{}).
			Where("worker_type_id = ? AND leased_by = ?", workerTypeID, owner).
			Limit(1).
			Pluck("id", &held).Error; err != nil {
			return err
		}
		if len(held) > 0 {
			result = station.Leased(held[0])
			return nil
		}

		slotID, err := r.claimFree(tx, workerTypeID, owner)
		if err != nil {
			return err
		}
		if slotID > 0 {
			result = station.Leased(slotID)
			return nil
		}

		var types int64
		if err := tx.Model(&WorkerTypeModel{}).Where("id = ?", workerTypeID).Count(&types).Error; err != nil {
			return err
		}
		if types == 0 {
			return fmt.Errorf("%w: id %d", shared.ErrUnknownWorkerType, workerTypeID)
		}
		result = station.Exhausted()
		return nil
	})
	if err != nil {
		return station.LeaseResult{}, storeerr.Classify("lease station", err)
	}
	return result, nil
}

// claimFree runs the lease statement and returns the claimed id, or 0 when no
// free station exists. On PostgreSQL a skip-locked pick can come back empty
// while a free row is only locked by a refill; the claim then waits on that
// row instead of reporting exhaustion.
func (r *GormStationRepository) claimFree(tx *gorm.DB, workerTypeID int, owner string) (int, error) {
	if r.db.Dialector.Name() != "postgres" {
		return r.claimWith(tx, "", workerTypeID, owner)
	}

	for attempt := 0; attempt < leaseAttempts; attempt++ {
		id, err := r.claimWith(tx, " FOR UPDATE SKIP LOCKED", workerTypeID, owner)
		if err != nil || id > 0 {
			return id, err
		}

		var free int64
		if err := tx.Model(&StationModel{}).
			Where("worker_type_id = ? AND leased_by IS NULL", workerTypeID).
			Count(&free).Error; err != nil {
			return 0, err
		}
		if free == 0 {
			return 0, nil
		}

		id, err = r.claimWith(tx, " FOR UPDATE", workerTypeID, owner)
		if err != nil || id > 0 {
			return id, err
		}
	}
	return 0, nil
}

func (r *GormStationRepository) claimWith(tx *gorm.DB, lock string, workerTypeID int, owner string) (int, error) {
	var leased []int
	if err := tx.Raw(fmt.Sprintf(leaseStatement, lock), owner, r.clock.Now(), workerTypeID).Scan(&leased).Error; err != nil {
		return 0, err
	}
	if len(leased) == 0 {
		return 0, nil
	}
	return leased[0], nil
}

// ReleaseStationSlot returns a slot held by owner to the pool
func (r *GormStationRepository) ReleaseStationSlot(ctx context.Context, slotID int, owner string) error {
	res := r.db.WithContext(ctx).Model(&StationModel{}).
		Where("id = ? AND leased_by = ?", slotID, owner).
		Updates(map[string]interface{}{
			"leased_by": nil,
			"leased_at": nil,
		})
	if res.Error != nil {
		return storeerr.Classify("release station", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: station %d, owner %s", shared.ErrStationNotLeased, slotID, owner)
	}
	return nil
}

// ReportUnit records one completed unit against its station.
// The unit id is the idempotence key: a repeated report changes nothing.
func (r *GormStationRepository) ReportUnit(ctx context.Context, unit production.Unit) error {
	if unit.ID == "" {
		return shared.NewValidationError("unit_id", "unit id is required")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ProductionUnitModel{
			ID:          unit.ID,
			StationID:   unit.StationID,
			ProcessID:   unit.ProcessID,
			WorkerType:  string(unit.WorkerType),
			BuildTimeMS: unit.BuildTime.Milliseconds(),
			ProducedAt:  unit.ProducedAt,
		})
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			return nil
		}

		partsPerUnit, err := settingValue(tx, settings.PartsPerUnit, 1)
		if err != nil {
			return err
		}

		res := tx.Exec(reportStatement, partsPerUnit, partsPerUnit, partsPerUnit, unit.StationID, unit.ProcessID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: station %d, owner %s", shared.ErrStationNotLeased, unit.StationID, unit.ProcessID)
		}
		return nil
	})
	return storeerr.Classify("report unit", err)
}

// ApplyReplenishment refills every bin at or below the refill threshold.
// The tick id is the idempotence key: a repeated tick changes nothing.
func (r *GormStationRepository) ApplyReplenishment(ctx context.Context, tickID string) error {
	if tickID == "" {
		return shared.NewValidationError("tick_id", "tick id is required")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tick := &ReplenishmentTickModel{ID: tickID, AppliedAt: r.clock.Now()}
		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(tick)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			return nil
		}

		threshold, err := settingValue(tx, settings.RefillThreshold, 0)
		if err != nil {
			return err
		}
		quantity, err := settingValue(tx, settings.RefillQuantity, 0)
		if err != nil {
			return err
		}

		res := tx.Model(&StationModel{}).
			Where("parts_on_hand <= ?", threshold).
			Update("parts_on_hand", gorm.Expr("parts_on_hand + ?", quantity))
		if res.Error != nil {
			return res.Error
		}

		return tx.Model(&ReplenishmentTickModel{}).
			Where("id = ?", tickID).
			Updates(map[string]interface{}{
				"stations_refilled": res.RowsAffected,
				"parts_added":       res.RowsAffected * int64(quantity),
			}).Error
	})
	return storeerr.Classify("apply replenishment", err)
}

// AddStations creates count free stations for a worker type
func (r *GormStationRepository) AddStations(ctx context.Context, workerType production.WorkerType, count int, partsOnHand int) ([]int, error) {
	if count < 1 {
		return nil, shared.NewValidationError("count", "must be at least 1")
	}
	if partsOnHand < 0 {
		return nil, shared.NewValidationError("parts", "must not be negative")
	}
	typeID, err := r.ResolveWorkerType(ctx, workerType)
	if err != nil {
		return nil, err
	}

	models := make([]StationModel, count)
	for i := range models {
		models[i] = StationModel{WorkerTypeID: typeID, PartsOnHand: partsOnHand}
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return nil, storeerr.Classify("add stations", err)
	}

	ids := make([]int, count)
	for i, m := range models {
		ids[i] = m.ID
	}
	return ids, nil
}

// ListStations returns every station with its worker type
func (r *GormStationRepository) ListStations(ctx context.Context) ([]station.Slot, error) {
	var models []StationModel
	if err := r.db.WithContext(ctx).Preload("WorkerType").Order("id").Find(&models).Error; err != nil {
		return nil, storeerr.Classify("list stations", err)
	}

	slots := make([]station.Slot, len(models))
	for i, m := range models {
		slots[i] = slotFromModel(m)
	}
	return slots, nil
}

// ReleaseByID frees one station regardless of owner
func (r *GormStationRepository) ReleaseByID(ctx context.Context, slotID int) error {
	res := r.db.WithContext(ctx).Model(&StationModel{}).
		Where("id = ? AND leased_by IS NOT NULL", slotID).
		Updates(map[string]interface{}{"leased_by": nil, "leased_at": nil})
	if res.Error != nil {
		return storeerr.Classify("release station", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: station %d", shared.ErrStationNotLeased, slotID)
	}
	return nil
}

// ReleaseByOwner frees every station held by one process
func (r *GormStationRepository) ReleaseByOwner(ctx context.Context, owner string) (int, error) {
	res := r.db.WithContext(ctx).Model(&StationModel{}).
		Where("leased_by = ?", owner).
		Updates(map[string]interface{}{"leased_by": nil, "leased_at": nil})
	if res.Error != nil {
		return 0, storeerr.Classify("release stations", res.Error)
	}
	return int(res.RowsAffected), nil
}

// ReleaseAll frees every leased station, used to clear leases left by killed workers
func (r *GormStationRepository) ReleaseAll(ctx context.Context) (int, error) {
	res := r.db.WithContext(ctx).Model(&StationModel{}).
		Where("leased_by IS NOT NULL").
		Updates(map[string]interface{}{"leased_by": nil, "leased_at": nil})
	if res.Error != nil {
		return 0, storeerr.Classify("release stations", res.Error)
	}
	return int(res.RowsAffected), nil
}

// SeedWorkerTypes inserts the closed worker type set if missing
func (r *GormStationRepository) SeedWorkerTypes(ctx context.Context) error {
	for _, wt := range production.AllWorkerTypes() {
		model := WorkerTypeModel{Description: string(wt)}
		if err := r.db.WithContext(ctx).Where(WorkerTypeModel{Description: string(wt)}).FirstOrCreate(&model).Error; err != nil {
			return storeerr.Classify("seed worker types", err)
		}
	}
	return nil
}

// settingValue reads a setting inside a transaction, falling back when absent
func settingValue(tx *gorm.DB, name string, fallback int) (int, error) {
	model, err := findSetting(tx, name)
	if errors.Is(err, shared.ErrSettingNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	return model.Value, nil
}

func slotFromModel(m StationModel) station.Slot {
	slot := station.Slot{
		ID:            m.ID,
		WorkerTypeID:  m.WorkerTypeID,
		LeasedAt:      m.LeasedAt,
		PartsOnHand:   m.PartsOnHand,
		UnitsProduced: m.UnitsProduced,
		Shortages:     m.Shortages,
	}
	if m.LeasedBy != nil {
		slot.LeasedBy = *m.LeasedBy
	}
	if m.WorkerType != nil {
		slot.WorkerType = production.WorkerType(m.WorkerType.Description)
	}
	return slot
}
