package repository

import (
	"context"
	"fmt"
	"testing"

	"snapfeed/internal/database"
	"snapfeed/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an isolated in-memory sqlite database with the full
// schema. The pool is pinned to a single connection: each sqlite
// :memory: connection is its own database, and a single connection also
// serializes the transactions issued by concurrency tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hashed-password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, caption string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: userID, Caption: caption}
	require.NoError(t, db.Create(post).Error)
	return post
}

func createTestLike(t *testing.T, db *gorm.DB, userID, postID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Like{UserID: userID, PostID: postID}).Error)
}

var testCtx = context.Background()
