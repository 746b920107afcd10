package service

import (
	"context"

	"kumatter/internal/models"
	"kumatter/internal/observability"
	"kumatter/internal/repository"
)

// FollowService applies follow toggles. Self-follow is refused here; the
// follow repository itself stores any edge it is given.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// ToggleFollow brings the follower -> followee edge to wantFollowing and
// reports whether the edge changed.
func (s *FollowService) ToggleFollow(ctx context.Context, followerID, followeeID uint, wantFollowing bool) (bool, error) {
	if followerID == followeeID {
		return false, models.NewInvalidOperationError("cannot follow self")
	}
	if _, err := s.userRepo.GetByID(ctx, followerID); err != nil {
		return false, err
	}
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return false, err
	}

	var (
		changed bool
		err     error
	)
	if wantFollowing {
		changed, err = s.followRepo.Follow(ctx, followerID, followeeID)
	} else {
		changed, err = s.followRepo.Unfollow(ctx, followerID, followeeID)
	}
	if err != nil {
		return false, err
	}
	observability.AnnotateToggle(ctx, "follow", changed)
	return changed, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followeeID)
}

// FollowCounts returns how many users userID follows and is followed by.
func (s *FollowService) FollowCounts(ctx context.Context, userID uint) (following, followers int64, err error) {
	if following, err = s.followRepo.CountFollowing(ctx, userID); err != nil {
		return 0, 0, err
	}
	if followers, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return 0, 0, err
	}
	return following, followers, nil
}
