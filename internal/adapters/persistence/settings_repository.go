package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/kanban-go/internal/adapters/storeerr"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSettingsRepository creates a new settings repository
// If clock is nil, uses RealClock (production behavior)
func NewGormSettingsRepository(db *gorm.DB, clock shared.Clock) *GormSettingsRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSettingsRepository{db: db, clock: clock}
}

// ReadSetting returns the current value of a setting
func (r *GormSettingsRepository) ReadSetting(ctx context.Context, name string) (int, error) {
	model, err := findSetting(r.db.WithContext(ctx), name)
	if err != nil {
		return 0, storeerr.Classify("read setting", err)
	}
	return model.Value, nil
}

// ListSettings returns every setting ordered by name
func (r *GormSettingsRepository) ListSettings(ctx context.Context) ([]settings.Setting, error) {
	var models []SettingModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, storeerr.Classify("list settings", err)
	}

	result := make([]settings.Setting, len(models))
	for i, m := range models {
		result[i] = settingFromModel(m)
	}
	return result, nil
}

// ChangeSetting validates the value against the stored range and updates it
func (r *GormSettingsRepository) ChangeSetting(ctx context.Context, name string, value int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, err := findSetting(tx, name)
		if err != nil {
			return err
		}
		if err := settingFromModel(*model).Validate(value); err != nil {
			return err
		}
		return tx.Model(&SettingModel{}).
			Where("name = ?", name).
			Updates(map[string]interface{}{
				"value":      value,
				"updated_at": r.clock.Now(),
			}).Error
	})
	return storeerr.Classify("change setting", err)
}

// ResetDefaults restores every setting to its default value in one statement
func (r *GormSettingsRepository) ResetDefaults(ctx context.Context) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&SettingModel{}).
			Where("1 = 1").
			Updates(map[string]interface{}{
				"value":      gorm.Expr("default_value"),
				"updated_at": r.clock.Now(),
			}).Error
	})
	return storeerr.Classify("reset defaults", err)
}

// SeedSettings inserts missing settings without touching existing values
func (r *GormSettingsRepository) SeedSettings(ctx context.Context, defaults []settings.Setting) error {
	now := r.clock.Now()
	for _, s := range defaults {
		model := SettingModel{
			Name:         s.Name,
			Value:        s.Value,
			MinValue:     s.Min,
			MaxValue:     s.Max,
			DefaultValue: s.Default,
			UpdatedAt:    now,
		}
		if err := r.db.WithContext(ctx).Where(SettingModel{Name: s.Name}).FirstOrCreate(&model).Error; err != nil {
			return storeerr.Classify("seed settings", err)
		}
	}
	return nil
}

func findSetting(db *gorm.DB, name string) (*SettingModel, error) {
	var model SettingModel
	err := db.Where("name = ?", name).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSettingNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func settingFromModel(m SettingModel) settings.Setting {
	return settings.Setting{
		Name:    m.Name,
		Value:   m.Value,
		Min:     m.MinValue,
		Max:     m.MaxValue,
		Default: m.DefaultValue,
	}
}
