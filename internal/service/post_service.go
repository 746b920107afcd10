package service

import (
	"context"
	"strings"
	"time"

	"kumatter/internal/models"
	"kumatter/internal/repository"
	"kumatter/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo, now: time.Now}
}

// WithClock replaces the clock used to stamp new posts.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// CreatePost publishes a normal post for author.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, content string) (*models.Post, error) {
	if author == nil {
		return nil, models.NewUnauthorizedError("Login required")
	}
	content = strings.TrimSpace(content)
	if err := validation.ValidatePostContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := models.NewPost(author.ID, content, s.now())
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	post.User = *author
	return post, nil
}
