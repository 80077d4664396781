package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrescamacho/kanban-go/internal/adapters/persistence"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/config"
)

// NewConnection opens the coordination database described by cfg
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(PostgresDSN(cfg))

	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.Path))

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}

	if cfg.Type == "postgres" {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpen)
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdle)
		sqlDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	} else {
		// One connection serialises writers inside the process and keeps an
		// in-memory database alive across calls.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	return db, nil
}

// PostgresDSN returns the URL if set, otherwise builds a key/value DSN
func PostgresDSN(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// sqliteDSN enables foreign keys and a busy timeout so concurrent worker
// processes wait for the write lock instead of failing at once. Transactions
// take the write lock at BEGIN, so a lease never upgrades a stale read.
func sqliteDSN(path string) string {
	if path == "" {
		path = ":memory:"
	}
	if strings.Contains(path, "?") {
		return path
	}
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
}

// NewTestConnection creates a migrated and seeded in-memory SQLite database
func NewTestConnection() (*gorm.DB, error) {
	cfg := &config.DatabaseConfig{
		Type: "sqlite",
		Path: ":memory:",
	}

	db, err := NewConnection(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate test database: %w", err)
	}
	if err := Seed(context.Background(), db); err != nil {
		return nil, fmt.Errorf("failed to seed test database: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(persistence.AllModels()...)
}

// Seed inserts the worker types and default settings that are missing
func Seed(ctx context.Context, db *gorm.DB) error {
	if err := persistence.NewGormStationRepository(db, nil).SeedWorkerTypes(ctx); err != nil {
		return err
	}
	return persistence.NewGormSettingsRepository(db, nil).SeedSettings(ctx, settings.Defaults())
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
