package server

import (
	"github.com/gofiber/fiber/v2"
)

type followState struct {
	Following      bool  `json:"following"`
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`
}

func (s *Server) setFollow(c *fiber.Ctx, want bool) error {
	followeeID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	viewer, err := s.viewer(c)
	if err != nil {
		return respondErr(c, err)
	}

	changed, err := s.followService.ToggleFollow(c.UserContext(), viewer.ID, followeeID, want)
	if err != nil {
		return respondErr(c, err)
	}

	following, followers, err := s.followService.FollowCounts(c.UserContext(), followeeID)
	if err != nil {
		return respondErr(c, err)
	}
	state := followState{Following: want, FollowerCount: followers, FollowingCount: following}

	if changed {
		s.publishUserEvent(followeeID, EventFollowUpdated, fiber.Map{
			"followerId":    viewer.ID,
			"followeeId":    followeeID,
			"following":     want,
			"followerCount": followers,
		})
	}
	return c.JSON(state)
}

// FollowUser handles POST /api/follows/:userId
// @Summary Follow a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} followState
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /follows/{userId} [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	return s.setFollow(c, true)
}

// UnfollowUser handles DELETE /api/follows/:userId
// @Summary Unfollow a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} followState
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /follows/{userId} [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	return s.setFollow(c, false)
}

// GetFollowStatus handles GET /api/follows/:userId/status
// @Summary Follow status
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} followState
// @Router /follows/{userId}/status [get]
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	viewer, err := s.viewer(c)
	if err != nil {
		return respondErr(c, err)
	}

	if _, err := s.userService.GetUserByID(c.UserContext(), targetID); err != nil {
		return respondErr(c, err)
	}
	following, err := s.followService.IsFollowing(c.UserContext(), viewer.ID, targetID)
	if err != nil {
		return respondErr(c, err)
	}
	followingCnt, followers, err := s.followService.FollowCounts(c.UserContext(), targetID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(followState{Following: following, FollowerCount: followers, FollowingCount: followingCnt})
}
