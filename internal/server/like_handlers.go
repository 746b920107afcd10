package server

import (
	"encoding/json"

	"kumatter/internal/models"

	"github.com/gofiber/fiber/v2"
)

type likeRequest struct {
	PostID json.Number `json:"postId"`
}

// parsePostID reads {"postId": n} from the body. Strings holding digits are accepted.
func parsePostID(c *fiber.Ctx) (uint, error) {
	var req likeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return 0, models.NewValidationError("Invalid post ID")
	}
	id, err := req.PostID.Int64()
	if err != nil || id <= 0 || id > int64(^uint32(0)) {
		return 0, models.NewValidationError("Invalid post ID")
	}
	return uint(id), nil
}

func (s *Server) toggleLike(c *fiber.Ctx, want bool) error {
	postID, err := parsePostID(c)
	if err != nil {
		return respondErr(c, err)
	}
	viewer, err := s.viewer(c)
	if err != nil {
		return respondErr(c, err)
	}

	count, changed, err := s.likeService.ToggleLike(c.UserContext(), viewer, postID, want)
	if err != nil {
		return respondErr(c, err)
	}

	if changed {
		s.publishBroadcastEvent(EventLikeUpdated, fiber.Map{
			"postId":    postID,
			"likeCount": count,
		})
	}
	return c.JSON(models.LikeState{Liked: want, LikeCount: count})
}

// GetLikeStatus handles GET /api/posts/:postId/likes
// @Summary Like status of a post
// @Description liked is always false for anonymous callers.
// @Tags likes
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} models.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/likes [get]
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	state, err := s.likeService.LikeStatus(c.UserContext(), viewerID, postID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(state)
}

// AddLike handles POST /api/likes/add
// @Summary Like a post
// @Description Idempotent. Returns the post's current like count.
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{postId=int} true "Post"
// @Success 200 {object} models.LikeState
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /likes/add [post]
func (s *Server) AddLike(c *fiber.Ctx) error {
	return s.toggleLike(c, true)
}

// RemoveLike handles POST /api/likes/remove
// @Summary Unlike a post
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{postId=int} true "Post"
// @Success 200 {object} models.LikeState
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /likes/remove [post]
func (s *Server) RemoveLike(c *fiber.Ctx) error {
	return s.toggleLike(c, false)
}
