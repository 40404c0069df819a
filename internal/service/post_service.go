// Package service holds the application's business logic, sitting between
// the HTTP handlers and the repositories.
package service

import (
	"context"
	"errors"
	"strings"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/observability"
	"snapfeed/internal/repository"
	"snapfeed/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	likeRepo repository.LikeRepository
}

type CreatePostInput struct {
	UserID    uint
	Caption   string
	ImageURLs []string
}

type AddImageInput struct {
	UserID   uint
	PostID   uint
	ImageURL string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// LikeState is what the like endpoints return: the viewer's state plus
// the post's current aggregate count, both read after the toggle.
type LikeState struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

func NewPostService(postRepo repository.PostRepository, likeRepo repository.LikeRepository) *PostService {
	return &PostService{postRepo: postRepo, likeRepo: likeRepo}
}

// CreatePost publishes a post with an optional caption and any initial
// images, in the order given. Images may also arrive later through
// AddImage; a zero-image post is valid.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidateCaption(in.Caption); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(in.ImageURLs) > models.MaxImagesPerPost {
		return nil, models.NewValidationError("a post cannot have more than 6 images")
	}
	for _, raw := range in.ImageURLs {
		if err := validation.ValidateImageURL(raw); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	post := &models.Post{
		UserID:  in.UserID,
		Caption: strings.TrimSpace(in.Caption),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	for _, raw := range in.ImageURLs {
		if _, err := s.postRepo.AppendImage(ctx, post.ID, strings.TrimSpace(raw)); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost returns one post with its images and read-time counts. The
// anonymous view carries no viewer state, so it is the only one safe to
// serve cache-aside; write paths invalidate the key.
func (s *PostService) GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	if viewerID == 0 {
		var post *models.Post
		err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
			fetched, fetchErr := s.postRepo.GetByID(ctx, id, 0)
			if fetchErr != nil {
				return fetchErr
			}
			post = fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return post, nil
	}
	return s.postRepo.GetByID(ctx, id, viewerID)
}

// AddImage appends one image to an existing post. Only the post's author
// may append, and the store enforces the capacity cap.
func (s *PostService) AddImage(ctx context.Context, in AddImageInput) (*models.PostImage, error) {
	if err := validation.ValidateImageURL(in.ImageURL); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("only the author can add images to a post")
	}

	image, err := s.postRepo.AppendImage(ctx, in.PostID, strings.TrimSpace(in.ImageURL))
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeCapacityExceeded {
			observability.AttachmentRejections.WithLabelValues("capacity").Inc()
		}
		return nil, err
	}
	return image, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewForbiddenError("only the author can delete a post")
	}
	return s.postRepo.Delete(ctx, in.PostID)
}

// ToggleLike flips the viewer's like and returns the resulting state with
// the count re-aggregated from the ledger, never derived from the
// viewer's request.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*LikeState, error) {
	liked, err := s.likeRepo.Toggle(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, LikesCount: post.LikesCount}, nil
}

func (s *PostService) GetLikeState(ctx context.Context, userID, postID uint) (*LikeState, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, LikesCount: post.LikesCount}, nil
}
