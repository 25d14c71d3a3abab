package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/miaout11/forum-express-grading/internal/config"
	"github.com/miaout11/forum-express-grading/internal/database"
	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/repositories"
	"github.com/miaout11/forum-express-grading/internal/services"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{Driver: "sqlite", DSN: database.MemoryDSN()})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSeed_Idempotent(t *testing.T) {
	db := setupDB(t)
	cfg := config.Config{AdminEmail: "root@example.com", AdminPassword: "12345678"}
	ctx := context.Background()

	require.NoError(t, seed(ctx, db, cfg))
	require.NoError(t, seed(ctx, db, cfg))

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.EqualValues(t, len(defaultCategories), categories)

	var admins []models.User
	require.NoError(t, db.Where("email = ?", "root@example.com").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins[0].Password), []byte("12345678")))
}

func TestSeed_AdminEmailIsNormalized(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	cfg := config.Config{AdminEmail: "  Root@Example.COM ", AdminPassword: "12345678"}
	require.NoError(t, seed(ctx, db, cfg))
	require.NoError(t, seed(ctx, db, cfg))

	auth := services.NewAuthService(repositories.NewGORMUserRepository(db), "test_jwt_secret", time.Hour, nil, nil)
	_, admin, err := auth.Authenticate(ctx, "root@example.com", "12345678")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", admin.Email)
	assert.True(t, admin.IsAdmin)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)
}

func TestSeed_WithoutAdmin(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, seed(context.Background(), db, config.Config{}))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestHandleActivityEvent(t *testing.T) {
	body, err := json.Marshal(services.ActivityEvent{
		Type:       services.EventFollowingAdded,
		ActorID:    "u1",
		TargetID:   "u2",
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, handleActivityEvent(amqp.Delivery{Body: body}))

	err = handleActivityEvent(amqp.Delivery{Body: []byte("not json")})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "malformed activity event")
}
