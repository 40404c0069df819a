package repository

import (
	"context"
	"errors"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for post likes.
type LikeRepository interface {
	Toggle(ctx context.Context, userID, postID uint) (liked bool, err error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle flips the viewer's like on a post and returns the resulting
// state. The row's existence is the state: delete removes it, insert
// creates it, and the unique index on (user_id, post_id) arbitrates
// racing inserts. When two toggles race, both requests converge on
// liked=true instead of one failing.
func (r *likeRepository) Toggle(ctx context.Context, userID, postID uint) (bool, error) {
	var liked bool
	var authorID uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "user_id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewInternalError(err)
		}
		authorID = post.UserID

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}

		// ON CONFLICT DO NOTHING instead of a bare insert: a unique
		// violation would abort the whole transaction, and a racing
		// toggle that won the insert is not an error here. Zero rows
		// affected means the like already exists, which is the state
		// this request wanted anyway.
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{UserID: userID, PostID: postID})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			observability.LikeToggles.WithLabelValues("converged").Inc()
		}
		liked = true
		return nil
	})

	if err != nil {
		return false, err
	}

	if liked {
		observability.LikeToggles.WithLabelValues("liked").Inc()
	} else {
		observability.LikeToggles.WithLabelValues("unliked").Inc()
	}
	cache.InvalidatePost(ctx, postID, authorID)
	return liked, nil
}

func (r *likeRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
