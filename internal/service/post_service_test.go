package service

import (
	"context"
	"strings"
	"testing"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("caption only", func(t *testing.T) {
		repo := noopPostRepo()
		var created *models.Post
		repo.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 11
			created = p
			return nil
		}
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, Caption: created.Caption}, nil
		}

		svc := NewPostService(repo, noopLikeRepo())
		post, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Caption: "  morning walk  "})
		require.NoError(t, err)
		assert.Equal(t, "morning walk", post.Caption)
	})

	t.Run("empty caption and no images is valid", func(t *testing.T) {
		svc := NewPostService(noopPostRepo(), noopLikeRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1})
		assert.NoError(t, err)
	})

	t.Run("initial images appended in order", func(t *testing.T) {
		repo := noopPostRepo()
		var appended []string
		repo.appendImageFn = func(_ context.Context, postID uint, url string) (*models.PostImage, error) {
			appended = append(appended, url)
			return &models.PostImage{PostID: postID, ImageURL: url, DisplayOrder: len(appended) - 1}, nil
		}

		svc := NewPostService(repo, noopLikeRepo())
		urls := []string{"https://img.example/a.jpg", "https://img.example/b.jpg"}
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, ImageURLs: urls})
		require.NoError(t, err)
		assert.Equal(t, urls, appended)
	})

	t.Run("too many initial images", func(t *testing.T) {
		urls := make([]string, models.MaxImagesPerPost+1)
		for i := range urls {
			urls[i] = "https://img.example/x.jpg"
		}
		svc := NewPostService(noopPostRepo(), noopLikeRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, ImageURLs: urls})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("caption too long", func(t *testing.T) {
		svc := NewPostService(noopPostRepo(), noopLikeRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Caption: strings.Repeat("x", 2201)})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("bad image url", func(t *testing.T) {
		svc := NewPostService(noopPostRepo(), noopLikeRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, ImageURLs: []string{"not-a-url"}})
		assertAppErrorCode(t, err, models.CodeValidation)
	})
}

func TestPostService_AddImage(t *testing.T) {
	ctx := context.Background()

	t.Run("author appends", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		}
		svc := NewPostService(repo, noopLikeRepo())

		img, err := svc.AddImage(ctx, AddImageInput{UserID: 1, PostID: 5, ImageURL: "https://img.example/a.jpg"})
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/a.jpg", img.ImageURL)
	})

	t.Run("non-author rejected", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 99}, nil
		}
		svc := NewPostService(repo, noopLikeRepo())

		_, err := svc.AddImage(ctx, AddImageInput{UserID: 1, PostID: 5, ImageURL: "https://img.example/a.jpg"})
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("capacity error passes through", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		}
		repo.appendImageFn = func(_ context.Context, postID uint, _ string) (*models.PostImage, error) {
			return nil, models.NewCapacityExceededError(postID)
		}
		svc := NewPostService(repo, noopLikeRepo())

		_, err := svc.AddImage(ctx, AddImageInput{UserID: 1, PostID: 5, ImageURL: "https://img.example/a.jpg"})
		assertAppErrorCode(t, err, models.CodeCapacityExceeded)
	})

	t.Run("blank url rejected before any lookup", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			t.Fatal("lookup should not run for invalid input")
			return nil, nil
		}
		svc := NewPostService(repo, noopLikeRepo())

		_, err := svc.AddImage(ctx, AddImageInput{UserID: 1, PostID: 5, ImageURL: "  "})
		assertAppErrorCode(t, err, models.CodeValidation)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("author deletes", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		}
		deleted := uint(0)
		repo.deleteFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}
		svc := NewPostService(repo, noopLikeRepo())

		require.NoError(t, svc.DeletePost(ctx, DeletePostInput{UserID: 1, PostID: 5}))
		assert.EqualValues(t, 5, deleted)
	})

	t.Run("non-author rejected", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 2}, nil
		}
		svc := NewPostService(repo, noopLikeRepo())

		err := svc.DeletePost(ctx, DeletePostInput{UserID: 1, PostID: 5})
		assertAppErrorCode(t, err, models.CodeForbidden)
	})
}

func TestPostService_ToggleLike(t *testing.T) {
	ctx := context.Background()

	t.Run("returns re-aggregated count", func(t *testing.T) {
		likeRepo := noopLikeRepo()
		likeRepo.toggleFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }

		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, LikesCount: 7, Liked: true}, nil
		}

		svc := NewPostService(postRepo, likeRepo)
		state, err := svc.ToggleLike(ctx, 1, 5)
		require.NoError(t, err)
		assert.True(t, state.Liked)
		assert.Equal(t, 7, state.LikesCount)
	})

	t.Run("missing post", func(t *testing.T) {
		likeRepo := noopLikeRepo()
		likeRepo.toggleFn = func(_ context.Context, _, postID uint) (bool, error) {
			return false, models.NewNotFoundError("Post", postID)
		}
		svc := NewPostService(noopPostRepo(), likeRepo)

		_, err := svc.ToggleLike(ctx, 1, 404)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestPostService_GetPost_AnonymousCached(t *testing.T) {
	mr := withCacheBackend(t)
	ctx := context.Background()

	calls := 0
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, viewerID uint) (*models.Post, error) {
		calls++
		assert.EqualValues(t, 0, viewerID)
		return &models.Post{ID: id, Caption: "cached", LikesCount: 2}, nil
	}
	svc := NewPostService(repo, noopLikeRepo())

	first, err := svc.GetPost(ctx, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(cache.PostKey(7)))

	second, err := svc.GetPost(ctx, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second anonymous read should come from cache")
	assert.Equal(t, first.Caption, second.Caption)
	assert.Equal(t, first.LikesCount, second.LikesCount)

	cache.InvalidatePost(ctx, 7, 1)
	_, err = svc.GetPost(ctx, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPostService_GetPost_ViewerBypassesCache(t *testing.T) {
	withCacheBackend(t)
	ctx := context.Background()

	calls := 0
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, viewerID uint) (*models.Post, error) {
		calls++
		assert.EqualValues(t, 5, viewerID)
		return &models.Post{ID: id, Liked: true}, nil
	}
	svc := NewPostService(repo, noopLikeRepo())

	for i := 0; i < 2; i++ {
		post, err := svc.GetPost(ctx, 7, 5)
		require.NoError(t, err)
		assert.True(t, post.Liked)
	}
	assert.Equal(t, 2, calls, "viewer-scoped reads are never cached")
}
