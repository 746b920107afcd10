package server

import (
	"errors"
	"strings"
	"unicode"

	"kumatter/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "userId" -> "Invalid user ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "postId" -> "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// respondErr writes err with the status mapped from its AppError code.
func respondErr(c *fiber.Ctx, err error) error {
	return models.RespondWithAppError(c, err)
}

// viewer loads the authenticated user. AuthRequired must run first.
// A token whose user has since been deleted is treated as unauthenticated.
func (s *Server) viewer(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return nil, models.NewUnauthorizedError("Authorization required")
	}
	user, err := s.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewUnauthorizedError("Authorization required")
		}
		return nil, err
	}
	return user, nil
}

// optionalViewer returns the authenticated user if a valid token was sent,
// or nil for anonymous requests.
func (s *Server) optionalViewer(c *fiber.Ctx) (*models.User, error) {
	userID, ok := s.optionalUserID(c)
	if !ok {
		return nil, nil
	}
	user, err := s.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
