package testutil

import (
	"path/filepath"
	"testing"

	"questionbank/config"
	"questionbank/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated sqlite database in a temp dir owned by t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := config.InitDB(&config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "questions.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return db
}
