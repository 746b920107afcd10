package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kumatter/internal/models"
	"kumatter/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	postsByAuthorsFn func(context.Context, []uint) ([]*models.Post, error)
	allAuthorIDsFn   func(context.Context) ([]uint, error)
	countByAuthorFn  func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) PostsByAuthors(ctx context.Context, ids []uint) ([]*models.Post, error) {
	return s.postsByAuthorsFn(ctx, ids)
}
func (s *postRepoStub) AllAuthorIDs(ctx context.Context) ([]uint, error) {
	return s.allAuthorIDsFn(ctx)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, userID uint) (int64, error) {
	return s.countByAuthorFn(ctx, userID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:         func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:        func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		postsByAuthorsFn: func(_ context.Context, _ []uint) ([]*models.Post, error) { return []*models.Post{}, nil },
		allAuthorIDsFn:   func(_ context.Context) ([]uint, error) { return []uint{}, nil },
		countByAuthorFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	countsByPostsFn func(context.Context, []uint) (map[uint]int64, error)
	likedPostIDsFn  func(context.Context, uint) (repository.IDSet, error)
	addFn           func(context.Context, uint, uint) (bool, error)
	removeFn        func(context.Context, uint, uint) (bool, error)
	countFn         func(context.Context, uint) (int64, error)
}

func (s *likeRepoStub) CountsByPosts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return s.countsByPostsFn(ctx, ids)
}
func (s *likeRepoStub) LikedPostIDs(ctx context.Context, userID uint) (repository.IDSet, error) {
	return s.likedPostIDsFn(ctx, userID)
}
func (s *likeRepoStub) Add(ctx context.Context, userID, postID uint) (bool, error) {
	return s.addFn(ctx, userID, postID)
}
func (s *likeRepoStub) Remove(ctx context.Context, userID, postID uint) (bool, error) {
	return s.removeFn(ctx, userID, postID)
}
func (s *likeRepoStub) Count(ctx context.Context, postID uint) (int64, error) {
	return s.countFn(ctx, postID)
}
func (s *likeRepoStub) Exists(context.Context, uint, uint) (bool, error) { return false, nil }
func (s *likeRepoStub) CountByUser(context.Context, uint) (int64, error) { return 0, nil }

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		countsByPostsFn: func(_ context.Context, _ []uint) (map[uint]int64, error) { return map[uint]int64{}, nil },
		likedPostIDsFn:  func(_ context.Context, _ uint) (repository.IDSet, error) { return repository.IDSet{}, nil },
		addFn:           func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		removeFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		countFn:         func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

var errStoreDown = errors.New("store unavailable: connection refused")

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
