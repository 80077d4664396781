package helpers

import (
	"context"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/andrescamacho/kanban-go/internal/infrastructure/config"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/database"
)

// PostgresURLEnv names the variable that enables PostgreSQL-only tests
const PostgresURLEnv = "KANBAN_TEST_POSTGRES_URL"

// PostgresURL returns the test database URL or skips the test
func PostgresURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv(PostgresURLEnv)
	if url == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}
	return url
}

// NewPostgresTestDB opens, migrates and seeds the PostgreSQL test database,
// clearing stations, units and ticks and restoring default settings.
func NewPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	url := PostgresURL(t)

	db, err := database.NewConnection(&config.DatabaseConfig{
		Type: "postgres",
		URL:  url,
		Pool: config.PoolConfig{MaxOpen: 10, MaxIdle: 2},
	})
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate postgres: %v", err)
	}
	if err := TruncateAllTables(db); err != nil {
		t.Fatalf("failed to reset postgres: %v", err)
	}
	if err := database.Seed(context.Background(), db); err != nil {
		t.Fatalf("failed to seed postgres: %v", err)
	}
	return db
}
