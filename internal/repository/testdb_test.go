package repository

import (
	"testing"

	"stockroom/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB migrates the full schema into an in-memory sqlite database.
// A single connection keeps every query on the same memory instance.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.StorageRoom{},
		&model.ProductCategory{},
		&model.Product{},
		&model.RecipeComponent{},
		&model.MovementReason{},
		&model.ActionRequest{},
		&model.StatisticsRecord{},
		&model.AuditLog{},
	))

	return db
}
