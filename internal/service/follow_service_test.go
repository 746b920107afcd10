package service

import (
	"context"
	"testing"

	"kumatter/internal/models"
	"kumatter/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_ToggleFollow(t *testing.T) {
	db := testutil.NewMemDB()
	ctx := context.Background()
	svc := NewFollowService(db.Follows(), db.Users())
	a := db.AddUser("a")
	b := db.AddUser("b")

	before, _, err := svc.FollowCounts(ctx, a.ID)
	require.NoError(t, err)

	changed, err := svc.ToggleFollow(ctx, a.ID, b.ID, true)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.ToggleFollow(ctx, a.ID, b.ID, true)
	require.NoError(t, err)
	assert.False(t, changed)

	following, err := svc.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	after, _, err := svc.FollowCounts(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	_, followers, err := svc.FollowCounts(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, followers)

	t.Run("unfollow twice", func(t *testing.T) {
		changed, err := svc.ToggleFollow(ctx, a.ID, b.ID, false)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = svc.ToggleFollow(ctx, a.ID, b.ID, false)
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestFollowService_ToggleFollow_Errors(t *testing.T) {
	db := testutil.NewMemDB()
	ctx := context.Background()
	svc := NewFollowService(db.Follows(), db.Users())
	a := db.AddUser("a")

	t.Run("self follow", func(t *testing.T) {
		_, err := svc.ToggleFollow(ctx, a.ID, a.ID, true)
		assertAppError(t, err, models.CodeInvalidOperation)

		n, _, err := svc.FollowCounts(ctx, a.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("self unfollow", func(t *testing.T) {
		_, err := svc.ToggleFollow(ctx, a.ID, a.ID, false)
		assertAppError(t, err, models.CodeInvalidOperation)
	})

	t.Run("unknown followee", func(t *testing.T) {
		_, err := svc.ToggleFollow(ctx, a.ID, 404, true)
		assertAppError(t, err, models.CodeNotFound)
	})

	t.Run("unknown follower", func(t *testing.T) {
		_, err := svc.ToggleFollow(ctx, 404, a.ID, false)
		assertAppError(t, err, models.CodeNotFound)
	})
}
