package server

import (
	"snapfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profiles/:userId. A user without a profile
// row yields {"profile": null}, distinct from an unknown user (404).
func (s *Server) GetProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

// SaveMyProfile handles PUT /api/profiles/me
func (s *Server) SaveMyProfile(c *fiber.Ctx) error {
	var req struct {
		Bio      string `json:"bio"`
		Location string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.userService.SaveProfile(c.Context(), currentUserID(c), req.Bio, req.Location)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}
