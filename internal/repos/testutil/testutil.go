// Package testutil provides an in-memory sqlite database wired with the
// same schema the postgres service migrates, so repo and service tests
// run without external infrastructure.
package testutil

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

// DB opens a fresh shared in-memory sqlite database named after the
// test and migrates the full schema. A single connection serializes
// access so concurrent test goroutines never hit SQLITE_BUSY.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", tb.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&domain.StagedSource{},
		&domain.StagedExtraction{},
		&domain.Pattern{},
		&domain.Material{},
		&domain.PatternMaterial{},
		&domain.PatternResource{},
		&domain.PatternSource{},
	); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_material_name_ci ON material (LOWER(name))`,
	).Error; err != nil {
		tb.Fatalf("create ux_material_name_ci: %v", err)
	}

	return db
}

// Logger returns a development-mode logger for test wiring.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("development")
	if err != nil {
		tb.Fatalf("logger: %v", err)
	}
	return log
}
