package repository

import (
	"context"
	"errors"

	"snapfeed/internal/cache"
	"snapfeed/internal/middleware"
	"snapfeed/internal/models"
	"snapfeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	ListFeed(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	AppendImage(ctx context.Context, postID uint, imageURL string) (*models.PostImage, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID, post.UserID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListFeed(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("list_feed", "posts")()

	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("list_by_author", "posts")()

	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("user_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch counts and liked status in a
// single query. Counts are never stored on the post row; every read
// aggregates them here so a response can never carry a stale counter.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", viewerID)
	}

	return db.Select(selectQuery + ", 0 as liked")
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id, post.UserID)
	return nil
}

// AppendImage attaches one more image to the post, assigning the next
// display_order. The post row is locked for the duration of the
// transaction so concurrent appends serialize; the assigned order is
// always the current image count, which keeps orders contiguous from 0
// with no application-side sequencing.
func (r *postRepository) AppendImage(ctx context.Context, postID uint, imageURL string) (*models.PostImage, error) {
	var image *models.PostImage

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		q := tx.Model(&models.Post{})
		// sqlite has no row locks; its writes serialize on the
		// connection instead.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewInternalError(err)
		}

		var count int64
		if err := tx.Model(&models.PostImage{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		if count >= models.MaxImagesPerPost {
			return models.NewCapacityExceededError(postID)
		}

		image = &models.PostImage{
			PostID:       postID,
			ImageURL:     imageURL,
			DisplayOrder: int(count),
		}
		if err := tx.Create(image).Error; err != nil {
			if isUniqueViolation(err) {
				// Only reachable if the row lock was bypassed, so this is
				// a store-layer defect, not an expected outcome.
				middleware.Logger.ErrorContext(ctx, "duplicate display_order insert, append lock bypassed",
					"post_id", postID, "display_order", image.DisplayOrder)
				return models.NewConflictError("concurrent image append detected", err)
			}
			return models.NewInternalError(err)
		}

		cache.InvalidatePost(ctx, postID, post.UserID)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return image, nil
}
