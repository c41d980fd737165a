// Package testutil provides a SQLite-backed GORM database and fixtures for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/kakpu/IT-onboarding/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a fresh migrated SQLite database in t.TempDir() with
// foreign keys enforced, so cascades behave as they do on PostgreSQL.
// A single connection keeps writes from background workers serialized.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	gcfg := database.GormConfig()
	gcfg.Logger = logger.Default.LogMode(logger.Silent)

	path := filepath.Join(t.TempDir(), "onboarding.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_foreign_keys=on"), gcfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
