package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"kumatter/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateAndGetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	post := models.NewPost(author.ID, "hello", baseTime)
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, models.PostTypeNormal, got.PostType)
	assert.Equal(t, "alice", got.User.LoginID)
	assert.True(t, baseTime.Equal(got.CreatedAt))

	_, err = repo.GetByID(ctx, 9999)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_CreateUnknownAuthor(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)

	err := repo.Create(context.Background(), models.NewPost(42, "orphan", baseTime))
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_PostsByAuthors(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")
	c := seedUser(t, db, "c")

	older := seedPost(t, db, a.ID, "older", baseTime)
	tieFirst := seedPost(t, db, b.ID, "tie-1", baseTime.Add(time.Hour))
	tieSecond := seedPost(t, db, a.ID, "tie-2", baseTime.Add(time.Hour))
	seedPost(t, db, c.ID, "not requested", baseTime.Add(2*time.Hour))

	posts, err := repo.PostsByAuthors(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, tieFirst.ID, posts[0].ID, "equal timestamps keep insertion order")
	assert.Equal(t, tieSecond.ID, posts[1].ID)
	assert.Equal(t, older.ID, posts[2].ID)
	assert.Equal(t, "b", posts[0].User.LoginID)

	t.Run("empty author set", func(t *testing.T) {
		posts, err := repo.PostsByAuthors(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})
}

func TestPostRepository_AllAuthorIDsAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")
	seedUser(t, db, "silent")
	seedPost(t, db, b.ID, "1", baseTime)
	seedPost(t, db, b.ID, "2", baseTime)
	seedPost(t, db, a.ID, "3", baseTime)

	ids, err := repo.AllAuthorIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, ids)

	n, err := repo.CountByAuthor(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestPostRepository_PostsByAuthors_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE posts\.user_id IN \(\$1,\$2\) ORDER BY posts\.created_at DESC,\s*posts\.id ASC`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content"}).AddRow(5, 1, "hi"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "login_id"}).AddRow(1, "alice"))

	posts, err := repo.PostsByAuthors(context.Background(), []uint{1, 2})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "alice", posts[0].User.LoginID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
