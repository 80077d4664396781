package helpers

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/kanban-go/internal/infrastructure/database"
)

// SharedTestDB is the database instance shared by the BDD scenarios
var SharedTestDB *gorm.DB

// InitializeSharedTestDB creates, migrates and seeds the shared test database.
// Called once in TestMain before running any scenario.
func InitializeSharedTestDB() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to open shared test database: %w", err)
	}
	SharedTestDB = db
	return nil
}

// ResetSharedTestDB clears the shared database and restores the seed rows.
// Called before each scenario to isolate it from the previous one.
func ResetSharedTestDB() error {
	if SharedTestDB == nil {
		return fmt.Errorf("shared test database not initialized")
	}
	if err := TruncateAllTables(SharedTestDB); err != nil {
		return err
	}
	return database.Seed(context.Background(), SharedTestDB)
}

// TruncateAllTables deletes every row, children before parents
func TruncateAllTables(db *gorm.DB) error {
	tables := []string{
		"process_logs",
		"processes",
		"replenishment_ticks",
		"production_units",
		"stations",
		"worker_types",
		"settings",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// CloseSharedTestDB releases the shared database
func CloseSharedTestDB() error {
	if SharedTestDB == nil {
		return nil
	}
	return database.Close(SharedTestDB)
}
