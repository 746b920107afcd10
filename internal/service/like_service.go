package service

import (
	"context"

	"kumatter/internal/models"
	"kumatter/internal/observability"
	"kumatter/internal/repository"
)

// LikeService applies like toggles.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

// NewLikeService returns a new LikeService.
func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository, userRepo repository.UserRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo, userRepo: userRepo}
}

// ToggleLike brings the viewer's like on postID to wantLiked. It returns the
// post's like count afterwards and whether the call changed anything;
// repeating a toggle is a no-op.
func (s *LikeService) ToggleLike(ctx context.Context, viewer *models.User, postID uint, wantLiked bool) (int64, bool, error) {
	if viewer == nil {
		return 0, false, models.NewUnauthorizedError("Login required")
	}
	if _, err := s.userRepo.GetByID(ctx, viewer.ID); err != nil {
		return 0, false, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return 0, false, err
	}

	var (
		changed bool
		err     error
	)
	if wantLiked {
		changed, err = s.likeRepo.Add(ctx, viewer.ID, postID)
	} else {
		changed, err = s.likeRepo.Remove(ctx, viewer.ID, postID)
	}
	if err != nil {
		return 0, false, err
	}
	observability.AnnotateToggle(ctx, "like", changed)

	count, err := s.likeRepo.Count(ctx, postID)
	if err != nil {
		return 0, false, err
	}
	return count, changed, nil
}

// LikeStatus returns whether viewerID has liked postID and the post's like count.
// Unknown posts are NotFound; a zero viewerID is never liked.
func (s *LikeService) LikeStatus(ctx context.Context, viewerID, postID uint) (models.LikeState, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return models.LikeState{}, err
	}
	var state models.LikeState
	if viewerID != 0 {
		liked, err := s.IsLiked(ctx, viewerID, postID)
		if err != nil {
			return state, err
		}
		state.Liked = liked
	}
	count, err := s.likeRepo.Count(ctx, postID)
	if err != nil {
		return state, err
	}
	state.LikeCount = count
	return state, nil
}

// IsLiked reports whether userID has liked postID.
func (s *LikeService) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeRepo.Exists(ctx, userID, postID)
}
