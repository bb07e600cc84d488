package main

import (
	"context"
	"testing"
	"time"

	"talents/internal/database"
	"talents/internal/models"
	"talents/internal/repository"

	"github.com/golang-jwt/jwt/v5"
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

func TestSetRole(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()
	u := &models.User{Username: "casting", Email: "casting@example.com", Role: models.RoleProfessional}
	require.NoError(t, db.Create(u).Error)

	require.NoError(t, setRole(ctx, users, u.ID, "admin"))
	role, err := users.GetRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	assert.Error(t, setRole(ctx, users, u.ID, "superuser"))
	assert.Error(t, setRole(ctx, users, 999, "talent"))
}

func TestSetSubscription(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()
	company := &models.User{Username: "studio", Email: "studio@example.com", Role: models.RoleCompany}
	talent := &models.User{Username: "actor", Email: "actor@example.com", Role: models.RoleTalent}
	require.NoError(t, db.Create(company).Error)
	require.NoError(t, db.Create(talent).Error)

	require.NoError(t, setSubscription(ctx, users, company.ID, "trialing", "monthly"))
	status, err := users.GetSubscriptionStatus(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionTrial, status)

	require.NoError(t, setSubscription(ctx, users, company.ID, "active", "yearly"))
	status, err = users.GetSubscriptionStatus(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, status)

	assert.Error(t, setSubscription(ctx, users, company.ID, "gold", ""))
	assert.Error(t, setSubscription(ctx, users, talent.ID, "active", ""))
}

func TestMintToken(t *testing.T) {
	const secret = "test-secret-key-12345678901234567890123456789012"
	signed, err := mintToken(secret, 42, time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}
