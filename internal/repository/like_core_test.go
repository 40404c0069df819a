package repository

import (
	"errors"
	"sync"
	"testing"

	"snapfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_Toggle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)

	author := createTestUser(t, db, "henry")
	viewer := createTestUser(t, db, "iris")
	post := createTestPost(t, db, author.ID, "toggle me")

	liked, err := repo.Toggle(testCtx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	isLiked, err := repo.IsLiked(testCtx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, isLiked)

	liked, err = repo.Toggle(testCtx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	isLiked, err = repo.IsLiked(testCtx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, isLiked)
}

func TestLikeRepository_Toggle_PostNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)

	viewer := createTestUser(t, db, "jane")

	_, err := repo.Toggle(testCtx, viewer.ID, 4242)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestLikeRepository_Toggle_DistinctViewersAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)

	author := createTestUser(t, db, "kim")
	a := createTestUser(t, db, "lou")
	b := createTestUser(t, db, "mel")
	post := createTestPost(t, db, author.ID, "popular")

	_, err := repo.Toggle(testCtx, a.ID, post.ID)
	require.NoError(t, err)
	_, err = repo.Toggle(testCtx, b.ID, post.ID)
	require.NoError(t, err)

	// a unliking must not touch b's like
	liked, err := repo.Toggle(testCtx, a.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	isLiked, err := repo.IsLiked(testCtx, b.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, isLiked)

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLikeRepository_Toggle_ConcurrentTogglesNeverError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)

	author := createTestUser(t, db, "nora")
	viewer := createTestUser(t, db, "omar")
	post := createTestPost(t, db, author.ID, "racy")

	const togglers = 8
	var wg sync.WaitGroup
	errs := make([]error, togglers)
	for i := 0; i < togglers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Toggle(testCtx, viewer.ID, post.ID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "toggler %d", i)
	}

	// Whatever the interleaving, the end state is a single row or none,
	// never duplicates.
	var count int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", viewer.ID, post.ID).
		Count(&count).Error)
	assert.LessOrEqual(t, count, int64(1))
}
