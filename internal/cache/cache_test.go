package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(c)
	t.Cleanup(func() {
		SetClient(nil)
		_ = c.Close()
	})
	return mr
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:7", UserKey(7))
	assert.Equal(t, "ws_ticket:abc", WSTicketKey("abc"))
	assert.Equal(t, "blacklist:j1", BlacklistKey("j1"))
}

func TestNilClientIsNoop(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	found, err := GetJSON(ctx, "k", &cachedUser{})
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(ctx, "k", cachedUser{ID: 1}, time.Minute))
	Invalidate(ctx, "k")

	calls := 0
	var u cachedUser
	require.NoError(t, Aside(ctx, "k", &u, time.Minute, func() error {
		calls++
		u = cachedUser{ID: 1, Name: "kuma"}
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "kuma", u.Name)
}

func TestAside_CachesOnMiss(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			calls++
			*dest = cachedUser{ID: 3, Name: "Alice"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(3), &first, UserTTL, fetch(&first)))
	assert.True(t, mr.Exists(UserKey(3)))
	assert.Equal(t, UserTTL, mr.TTL(UserKey(3)))

	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(3), &second, UserTTL, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	InvalidateUser(ctx, 3)
	assert.False(t, mr.Exists(UserKey(3)))
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := useMiniredis(t)
	boom := errors.New("boom")

	var u cachedUser
	err := Aside(context.Background(), "k", &u, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestGetJSON_CorruptValue(t *testing.T) {
	mr := useMiniredis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	found, err := GetJSON(context.Background(), "k", &cachedUser{})
	assert.Error(t, err)
	assert.False(t, found)
}

func TestInitRedis(t *testing.T) {
	t.Cleanup(func() { SetClient(nil) })

	mr := miniredis.RunT(t)
	c := InitRedis("redis://" + mr.Addr() + "/0")
	require.NotNil(t, c)
	assert.Same(t, c, GetClient())
	_ = c.Close()

	assert.Nil(t, InitRedis("127.0.0.1:1"))
	assert.Nil(t, GetClient())

	assert.Nil(t, InitRedis("redis://%zz"))
}
