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
	"golang.org/x/crypto/bcrypt"
)

func newMemUserService(db *testutil.MemDB) *UserService {
	return NewUserService(db.Users(), db.Posts(), db.Likes(), db.Follows()).
		WithHashCost(bcrypt.MinCost).
		WithClock(func() time.Time { return t0 })
}

func TestUserService_Register(t *testing.T) {
	db := testutil.NewMemDB()
	ctx := context.Background()
	svc := newMemUserService(db)

	user, err := svc.Register(ctx, RegisterInput{
		Email:           "Kuma.Taro@Example.com",
		UserName:        "Kuma Taro",
		Password:        "honey123",
		PasswordConfirm: "honey123",
		Bio:             "forest dweller",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "kumataro", user.LoginID)
	assert.Equal(t, "kuma.taro@example.com", user.Email)
	assert.NotEqual(t, "honey123", user.Password)
	assert.True(t, t0.Equal(user.CreatedAt))
	assert.True(t, t0.Equal(user.UpdatedAt))

	tests := []struct {
		name string
		in   RegisterInput
		code string
	}{
		{
			name: "duplicate email",
			in:   RegisterInput{Email: "kuma.taro@example.com", LoginID: "other", UserName: "x", Password: "secret", PasswordConfirm: "secret"},
			code: models.CodeConflict,
		},
		{
			name: "duplicate derived login id",
			in:   RegisterInput{Email: "kumataro@other.org", UserName: "x", Password: "secret", PasswordConfirm: "secret"},
			code: models.CodeConflict,
		},
		{
			name: "password mismatch",
			in:   RegisterInput{Email: "new@example.com", UserName: "x", Password: "secret", PasswordConfirm: "secreT"},
			code: models.CodeValidation,
		},
		{
			name: "short password",
			in:   RegisterInput{Email: "new@example.com", UserName: "x", Password: "abc", PasswordConfirm: "abc"},
			code: models.CodeValidation,
		},
		{
			name: "long user name",
			in:   RegisterInput{Email: "new@example.com", UserName: strings.Repeat("n", 21), Password: "secret", PasswordConfirm: "secret"},
			code: models.CodeValidation,
		},
		{
			name: "unusable email local part",
			in:   RegisterInput{Email: "...@example.com", UserName: "x", Password: "secret", PasswordConfirm: "secret"},
			code: models.CodeValidation,
		},
		{
			name: "invalid explicit login id",
			in:   RegisterInput{Email: "new@example.com", LoginID: "has space", UserName: "x", Password: "secret", PasswordConfirm: "secret"},
			code: models.CodeValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			assertAppError(t, err, tt.code)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	db := testutil.NewMemDB()
	ctx := context.Background()
	svc := newMemUserService(db)

	_, err := svc.Register(ctx, RegisterInput{
		Email: "bear@example.com", UserName: "Bear", Password: "honey123", PasswordConfirm: "honey123",
	})
	require.NoError(t, err)

	for _, ident := range []string{"bear", "BEAR@example.com"} {
		u, err := svc.Authenticate(ctx, ident, "honey123")
		require.NoError(t, err, ident)
		assert.Equal(t, "bear", u.LoginID)
	}

	_, err = svc.Authenticate(ctx, "bear", "wrong-pass")
	assertAppError(t, err, models.CodeUnauthorized)

	_, err = svc.Authenticate(ctx, "ghost", "honey123")
	assertAppError(t, err, models.CodeUnauthorized)

	_, err = svc.Authenticate(ctx, "", "")
	assertAppError(t, err, models.CodeValidation)
}

func TestUserService_SuggestUsers(t *testing.T) {
	db := testutil.NewMemDB()
	ctx := context.Background()
	svc := newMemUserService(db)

	me := db.AddUser("kuma")
	friend := db.AddUser("kumako")
	fan := db.AddUser("kumaji")
	db.AddUser("bear")
	_, err := db.Follows().Follow(ctx, me.ID, friend.ID)
	require.NoError(t, err)
	_, err = db.Follows().Follow(ctx, fan.ID, me.ID)
	require.NoError(t, err)

	got, err := svc.SuggestUsers(ctx, "  kuma ", me)
	require.NoError(t, err)
	require.Len(t, got, 3)

	byLogin := map[string]models.UserSuggestion{}
	for _, s := range got {
		byLogin[s.LoginID] = s
	}
	assert.True(t, byLogin["kuma"].IsSelf)
	assert.True(t, byLogin["kumako"].FollowedByLoginUser)
	assert.False(t, byLogin["kumako"].FollowingLoginUser)
	assert.True(t, byLogin["kumaji"].FollowingLoginUser)
	assert.False(t, byLogin["kumaji"].FollowedByLoginUser)

	t.Run("short query", func(t *testing.T) {
		got, err := svc.SuggestUsers(ctx, " k ", me)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("anonymous viewer", func(t *testing.T) {
		got, err := svc.SuggestUsers(ctx, "bear", nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.False(t, got[0].IsSelf)
		assert.False(t, got[0].FollowedByLoginUser)
	})
}

func TestUserService_GetProfile(t *testing.T) {
	db := testutil.NewMemDB()
	ctx := context.Background()
	svc := newMemUserService(db)

	owner := db.AddUser("owner")
	visitor := db.AddUser("visitor")
	p1 := db.AddPost(owner.ID, "1", t0)
	db.AddPost(owner.ID, "2", t0)
	other := db.AddPost(visitor.ID, "v", t0)

	_, err := db.Follows().Follow(ctx, visitor.ID, owner.ID)
	require.NoError(t, err)
	_, err = db.Likes().Add(ctx, owner.ID, other.ID)
	require.NoError(t, err)
	_, err = db.Likes().Add(ctx, owner.ID, p1.ID)
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, owner.ID, visitor)
	require.NoError(t, err)
	assert.Equal(t, &models.UserProfile{
		UserID:              owner.ID,
		UserName:            "Owner",
		LoginID:             "owner",
		PostCount:           2,
		FollowingCount:      0,
		FollowerCount:       1,
		LikedPostCount:      2,
		FollowedByLoginUser: true,
		IsSelf:              false,
	}, profile)

	self, err := svc.GetProfile(ctx, owner.ID, owner)
	require.NoError(t, err)
	assert.True(t, self.IsSelf)
	assert.False(t, self.FollowedByLoginUser)

	_, err = svc.GetProfile(ctx, 404, nil)
	assertAppError(t, err, models.CodeNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	db := testutil.NewMemDB()
	ctx := context.Background()
	later := t0.Add(time.Hour)
	svc := newMemUserService(db).WithClock(func() time.Time { return later })
	u := db.AddUser("editor")

	updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: u.ID, Bio: "new bio"})
	require.NoError(t, err)
	assert.Equal(t, "Editor", updated.UserName, "empty name keeps the current one")
	assert.Equal(t, "new bio", updated.Bio)
	assert.True(t, later.Equal(updated.UpdatedAt))

	stored, err := db.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new bio", stored.Bio)

	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: u.ID, UserName: strings.Repeat("x", 21)})
	assertAppError(t, err, models.CodeValidation)

	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 404, UserName: "x"})
	assertAppError(t, err, models.CodeNotFound)
}
