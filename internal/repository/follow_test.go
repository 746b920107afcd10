package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"kumatter/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Integration(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")
	c := seedUser(t, db, "c")

	t.Run("Follow is idempotent", func(t *testing.T) {
		created, err := repo.Follow(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.Follow(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, created)

		_, err = repo.Follow(ctx, a.ID, c.ID)
		require.NoError(t, err)
		_, err = repo.Follow(ctx, c.ID, b.ID)
		require.NoError(t, err)
	})

	t.Run("edges are directed", func(t *testing.T) {
		following, err := repo.IsFollowing(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, following)

		following, err = repo.IsFollowing(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.False(t, following)
	})

	t.Run("neighbours and counts", func(t *testing.T) {
		followees, err := repo.FolloweeIDs(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{b.ID, c.ID}, followees)

		followers, err := repo.FollowerIDs(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{a.ID, c.ID}, followers)

		n, err := repo.CountFollowing(ctx, a.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = repo.CountFollowers(ctx, b.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("Unfollow", func(t *testing.T) {
		removed, err := repo.Unfollow(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Unfollow(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		followees, err := repo.FolloweeIDs(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{c.ID}, followees)
	})

	t.Run("unknown followee", func(t *testing.T) {
		_, err := repo.Follow(ctx, a.ID, 999)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("no followees yields empty slice", func(t *testing.T) {
		followees, err := repo.FolloweeIDs(ctx, b.ID)
		require.NoError(t, err)
		assert.NotNil(t, followees)
		assert.Empty(t, followees)
	})
}

func TestFollowRepository_IsFollowing_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "follows" WHERE follower_id = $1 AND followee_id = $2`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	following, err := repo.IsFollowing(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_StoreFailureIsInternal(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "followee_id" FROM "follows"`)).
		WillReturnError(assert.AnError)

	_, err := repo.FolloweeIDs(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestFollowRepository_FollowUniqueViolationIsAlreadyFollowing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE id = $1`)).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "follows"`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	created, err := repo.Follow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_ConcurrentFollow(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")

	const writers = 8
	results := make([]bool, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.Follow(ctx, a.ID, b.ID)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i] {
			created++
		}
	}
	assert.Equal(t, 1, created)

	followers, err := repo.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, followers)
}
