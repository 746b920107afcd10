package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"kumatter/internal/models"
	"kumatter/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePost(t *testing.T) {
	db := testutil.NewMemDB()
	ctx := context.Background()
	svc := NewPostService(db.Posts()).WithClock(func() time.Time { return t0 })
	author := db.AddUser("author")

	post, err := svc.CreatePost(ctx, author, "  hello bears  ")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "hello bears", post.Content)
	assert.Equal(t, models.PostTypeNormal, post.PostType)
	assert.True(t, t0.Equal(post.CreatedAt))
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
	assert.Equal(t, "author", post.User.LoginID)

	stored, err := db.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello bears", stored.Content)
}

func TestPostService_CreatePost_Invalid(t *testing.T) {
	db := testutil.NewMemDB()
	ctx := context.Background()
	svc := NewPostService(db.Posts())
	author := db.AddUser("author")

	_, err := svc.CreatePost(ctx, author, " \n ")
	assertAppError(t, err, models.CodeValidation)

	_, err = svc.CreatePost(ctx, author, strings.Repeat("x", 281))
	assertAppError(t, err, models.CodeValidation)

	_, err = svc.CreatePost(ctx, nil, "hi")
	assertAppError(t, err, models.CodeUnauthorized)

	_, err = svc.CreatePost(ctx, &models.User{ID: 99}, "ghost")
	assertAppError(t, err, models.CodeNotFound)
}

func TestPostService_StoreErrorPropagates(t *testing.T) {
	posts := noopPostRepo()
	posts.createFn = func(context.Context, *models.Post) error { return errStoreDown }

	_, err := NewPostService(posts).CreatePost(context.Background(), &models.User{ID: 1}, "hi")
	assert.ErrorIs(t, err, errStoreDown)
}
