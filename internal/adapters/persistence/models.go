package persistence

import "time"

// SettingModel represents the settings table
type SettingModel struct {
	Name         string    `gorm:"column:name;primaryKey;not null"`
	Value        int       `gorm:"column:value;not null"`
	MinValue     int       `gorm:"column:min_value;not null"`
	MaxValue     int       `gorm:"column:max_value;not null"`
	DefaultValue int       `gorm:"column:default_value;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (SettingModel) TableName() string {
	return "settings"
}

// WorkerTypeModel represents the worker_types table
type WorkerTypeModel struct {
	ID          int    `gorm:"column:id;primaryKey;autoIncrement"`
	Description string `gorm:"column:description;uniqueIndex;not null"`
}

func (WorkerTypeModel) TableName() string {
	return "worker_types"
}

// StationModel represents the stations table.
// A NULL leased_by marks a free slot.
type StationModel struct {
	ID            int              `gorm:"column:id;primaryKey;autoIncrement"`
	WorkerTypeID  int              `gorm:"column:worker_type_id;not null;index:idx_stations_free,priority:1"`
	WorkerType    *WorkerTypeModel `gorm:"foreignKey:WorkerTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	LeasedBy      *string          `gorm:"column:leased_by;index:idx_stations_free,priority:2"`
	LeasedAt      *time.Time       `gorm:"column:leased_at"`
	PartsOnHand   int              `gorm:"column:parts_on_hand;not null;default:0"`
	UnitsProduced int              `gorm:"column:units_produced;not null;default:0"`
	Shortages     int              `gorm:"column:shortages;not null;default:0"`
}

func (StationModel) TableName() string {
	return "stations"
}

// ProductionUnitModel represents the production_units table
type ProductionUnitModel struct {
	ID          string    `gorm:"column:id;primaryKey;not null"`
	StationID   int       `gorm:"column:station_id;not null;index"`
	ProcessID   string    `gorm:"column:process_id;index"`
	WorkerType  string    `gorm:"column:worker_type"`
	BuildTimeMS int64     `gorm:"column:build_time_ms"`
	ProducedAt  time.Time `gorm:"column:produced_at;not null"`
}

func (ProductionUnitModel) TableName() string {
	return "production_units"
}

// ReplenishmentTickModel represents the replenishment_ticks table
type ReplenishmentTickModel struct {
	ID               string    `gorm:"column:id;primaryKey;not null"`
	AppliedAt        time.Time `gorm:"column:applied_at;not null"`
	StationsRefilled int       `gorm:"column:stations_refilled;not null;default:0"`
	PartsAdded       int       `gorm:"column:parts_added;not null;default:0"`
}

func (ReplenishmentTickModel) TableName() string {
	return "replenishment_ticks"
}

// ProcessModel represents the processes table
type ProcessModel struct {
	ID         string     `gorm:"column:id;primaryKey;not null"`
	Kind       string     `gorm:"column:kind;not null"`
	WorkerType string     `gorm:"column:worker_type"`
	StationID  int        `gorm:"column:station_id"`
	Status     string     `gorm:"column:status;not null;index"`
	Cycles     int        `gorm:"column:cycles;not null;default:0"`
	StartedAt  *time.Time `gorm:"column:started_at"`
	StoppedAt  *time.Time `gorm:"column:stopped_at"`
	ExitCode   *int       `gorm:"column:exit_code"`
	ExitReason string     `gorm:"column:exit_reason"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null"`
}

func (ProcessModel) TableName() string {
	return "processes"
}

// ProcessLogModel represents the process_logs table
type ProcessLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	ProcessID string    `gorm:"column:process_id;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"`
}

func (ProcessLogModel) TableName() string {
	return "process_logs"
}

// AllModels lists every table managed by AutoMigrate, parents first
func AllModels() []interface{} {
	return []interface{}{
		&SettingModel{},
		&WorkerTypeModel{},
		&StationModel{},
		&ProductionUnitModel{},
		&ReplenishmentTickModel{},
		&ProcessModel{},
		&ProcessLogModel{},
	}
}
