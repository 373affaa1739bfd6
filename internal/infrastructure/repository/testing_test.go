package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"procdesk/internal/infrastructure/database"
	"procdesk/internal/shared/logger"
)

// setupTestDB opens an in-memory database through the custom driver so the
// Unicode-aware upper() is available to queries under test.
func setupTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: database.DriverName,
		DSN:        ":memory:",
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}
	return db
}

func testLogger() logger.Interface {
	return logger.NewLogger()
}
