package server

import (
	"kumatter/internal/models"
	"kumatter/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Content string `json:"content"`
}

// GetTimeline handles GET /api/posts/timeline
// @Summary Timeline
// @Description Posts for the viewer. scope=followed (default) covers the viewer and everyone they follow; scope=all covers every author.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param scope query string false "followed or all"
// @Success 200 {array} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/timeline [get]
func (s *Server) GetTimeline(c *fiber.Ctx) error {
	scope, err := service.ParseScope(c.Query("scope"))
	if err != nil {
		return respondErr(c, err)
	}
	viewer, err := s.viewer(c)
	if err != nil {
		return respondErr(c, err)
	}

	views, err := s.timeline.ProjectTimeline(c.UserContext(), viewer, scope)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(views)
}

// GetAllPosts handles GET /api/posts/all
// @Summary All posts
// @Description Every post, newest first. Like state is filled in when a token is sent.
// @Tags posts
// @Produce json
// @Success 200 {array} models.PostView
// @Router /posts/all [get]
func (s *Server) GetAllPosts(c *fiber.Ctx) error {
	viewer, err := s.optionalViewer(c)
	if err != nil {
		return respondErr(c, err)
	}
	views, err := s.timeline.ProjectTimeline(c.UserContext(), viewer, service.ScopeAll)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(views)
}

// GetUserPosts handles GET /api/posts/user/:userId
// @Summary Posts by user
// @Tags posts
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} models.PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/user/{userId} [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	viewer, err := s.optionalViewer(c)
	if err != nil {
		return respondErr(c, err)
	}
	views, err := s.timeline.ProjectUserPosts(c.UserContext(), viewer, authorID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(views)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "Post"
// @Success 201 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	author, err := s.viewer(c)
	if err != nil {
		return respondErr(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), author, req.Content)
	if err != nil {
		return respondErr(c, err)
	}

	view := models.PostView{
		PostID:        post.ID,
		Content:       post.Content,
		RelativeAge:   service.RelativeAge(post.CreatedAt, post.CreatedAt),
		AuthorID:      author.ID,
		AuthorName:    author.UserName,
		AuthorLoginID: author.LoginID,
	}
	s.publishBroadcastEvent(EventPostCreated, view)
	return c.Status(fiber.StatusCreated).JSON(view)
}
