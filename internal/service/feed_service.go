package service

import (
	"context"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/observability"
	"snapfeed/internal/repository"
)

const (
	// DefaultFeedLimit is the page size when the caller does not pass one.
	DefaultFeedLimit = 20
	// MaxFeedLimit caps the page size a caller can request.
	MaxFeedLimit = 50
)

// FeedService assembles viewer-scoped feed pages from the post store.
type FeedService struct {
	postRepo repository.PostRepository
}

type FeedInput struct {
	Limit    int
	Offset   int
	ViewerID uint
}

func NewFeedService(postRepo repository.PostRepository) *FeedService {
	return &FeedService{postRepo: postRepo}
}

func clampFeedLimit(limit int) int {
	if limit <= 0 {
		return DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		return MaxFeedLimit
	}
	return limit
}

// GetFeed returns the global reverse-chronological feed. Entries carry
// counts aggregated at read time and the viewer's own like state;
// anonymous viewers get ViewerHasLiked=false everywhere. The anonymous
// first page is the hottest read in the system and is served cache-aside.
func (s *FeedService) GetFeed(ctx context.Context, in FeedInput) ([]models.FeedEntry, error) {
	limit := clampFeedLimit(in.Limit)
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	var entries []models.FeedEntry

	if in.ViewerID == 0 && offset == 0 && limit == DefaultFeedLimit {
		err := cache.Aside(ctx, cache.FeedFirstPageKey, &entries, cache.FeedTTL, func() error {
			posts, fetchErr := s.postRepo.ListFeed(ctx, limit, offset, 0)
			if fetchErr != nil {
				return fetchErr
			}
			entries = assembleFeed(posts)
			return nil
		})
		if err != nil {
			return nil, err
		}
		observability.FeedPageSize.Observe(float64(len(entries)))
		return entries, nil
	}

	posts, err := s.postRepo.ListFeed(ctx, limit, offset, in.ViewerID)
	if err != nil {
		return nil, err
	}
	entries = assembleFeed(posts)
	observability.FeedPageSize.Observe(float64(len(entries)))
	return entries, nil
}

// GetUserFeed returns one author's posts in the same shape as the global
// feed. The anonymous first page is cached per author; any write to one
// of the author's posts drops the key.
func (s *FeedService) GetUserFeed(ctx context.Context, authorID uint, in FeedInput) ([]models.FeedEntry, error) {
	limit := clampFeedLimit(in.Limit)
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	if in.ViewerID == 0 && offset == 0 && limit == DefaultFeedLimit {
		var entries []models.FeedEntry
		err := cache.Aside(ctx, cache.AuthorPostsKey(authorID), &entries, cache.AuthorPostsTTL, func() error {
			posts, fetchErr := s.postRepo.ListByAuthor(ctx, authorID, limit, offset, 0)
			if fetchErr != nil {
				return fetchErr
			}
			entries = assembleFeed(posts)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return entries, nil
	}

	posts, err := s.postRepo.ListByAuthor(ctx, authorID, limit, offset, in.ViewerID)
	if err != nil {
		return nil, err
	}
	return assembleFeed(posts), nil
}

func assembleFeed(posts []*models.Post) []models.FeedEntry {
	entries := make([]models.FeedEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, models.FeedEntry{
			PostID:    p.ID,
			Caption:   p.Caption,
			CreatedAt: p.CreatedAt,
			Author: models.AuthorSummary{
				ID:     p.User.ID,
				Name:   p.User.Name,
				Avatar: p.User.Avatar,
			},
			Media:          models.MediaFromImages(p.Images),
			LikesCount:     p.LikesCount,
			CommentsCount:  p.CommentsCount,
			ViewerHasLiked: p.Liked,
		})
	}
	return entries
}
