package server

import (
	"snapfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed. Anonymous viewers get the same entries
// with ViewerHasLiked false everywhere.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultFeedLimit)

	entries, err := s.feedService.GetFeed(c.Context(), service.FeedInput{
		Limit:    p.Limit,
		Offset:   p.Offset,
		ViewerID: viewerID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// 404 for an unknown author instead of an empty page
	if _, err := s.userService.GetUserByID(c.Context(), authorID); err != nil {
		return respondServiceError(c, err)
	}

	p := parsePagination(c, service.DefaultFeedLimit)
	entries, err := s.feedService.GetUserFeed(c.Context(), authorID, service.FeedInput{
		Limit:    p.Limit,
		Offset:   p.Offset,
		ViewerID: viewerID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}
