package bootstrap

import (
	"context"
	"testing"

	"talents/internal/config"
	"talents/internal/database"
	"talents/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses production", func(t *testing.T) {
		db := setupTestDB(t)
		err := seedDemo(ctx, &config.Config{Env: "production"}, db)
		assert.Error(t, err)
	})

	t.Run("seeds an empty database", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, seedDemo(ctx, &config.Config{Env: "development"}, db))

		var users int64
		require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
		assert.Positive(t, users)
	})

	t.Run("leaves existing data alone", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, db.Create(&models.User{Username: "existing", Email: "e@example.com", Role: models.RoleTalent}).Error)

		require.NoError(t, seedDemo(ctx, &config.Config{Env: "development"}, db))

		var users int64
		require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
		assert.Equal(t, int64(1), users)
	})
}

func TestInitRuntime_NilConfig(t *testing.T) {
	_, err := InitRuntime(context.Background(), nil, Options{})
	assert.Error(t, err)
}

func TestRuntimeShutdownTracing_NoTracer(t *testing.T) {
	rt := &Runtime{}
	assert.NoError(t, rt.ShutdownTracing(context.Background()))
}
