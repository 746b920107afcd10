package server

import (
	"kumatter/internal/models"
	"kumatter/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	UserName string `json:"userName"`
	Bio      string `json:"userBio"`
}

// SuggestUsers handles GET /api/users/suggest
// @Summary Suggest users
// @Description Case-insensitive search on login id and display name, at most 10 results. Queries under two characters return an empty list.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param query query string true "Search text"
// @Success 200 {array} models.UserSuggestion
// @Router /users/suggest [get]
func (s *Server) SuggestUsers(c *fiber.Ctx) error {
	viewer, err := s.viewer(c)
	if err != nil {
		return respondErr(c, err)
	}
	suggestions, err := s.userService.SuggestUsers(c.UserContext(), c.Query("query"), viewer)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(suggestions)
}

// GetUserProfile handles GET /api/users/:userId
// @Summary User profile
// @Tags users
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	viewer, err := s.optionalViewer(c)
	if err != nil {
		return respondErr(c, err)
	}
	profile, err := s.userService.GetProfile(c.UserContext(), userID, viewer)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateProfileRequest true "Profile"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   c.Locals("userID").(uint),
		UserName: req.UserName,
		Bio:      req.Bio,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}
