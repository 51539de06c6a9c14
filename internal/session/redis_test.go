package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "test:session:"

// newTestRedisStore runs an in-process redis for the duration of the test
func newTestRedisStore(t *testing.T, timeout time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(NewRedisClient(mr.Addr(), "", 0), testPrefix, timeout)
	require.NoError(t, err)
	require.NoError(t, store.Ping(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRedisStore_NilClient(t *testing.T) {
	_, err := NewRedisStore(nil, "", time.Minute)
	assert.Error(t, err)
}

func TestNewRedisStore_Defaults(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(NewRedisClient(mr.Addr(), "", 0), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Put(context.Background(), entryFor("U1", "iphone", 1)))
	assert.True(t, mr.Exists(DefaultKeyPrefix+"U1"))
	assert.Equal(t, DefaultTimeout, mr.TTL(DefaultKeyPrefix+"U1"))
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t, time.Minute)

	_, ok, err := s.Get(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, entryFor("U1", "iphone", 1, 2, 3)))

	got, ok, err := s.Get(ctx, "U1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "iphone", got.Query)
	require.Len(t, got.Results, 3)
	assert.Equal(t, 2, got.Results[1].ID)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Delete(ctx, "U1"))
	_, ok, err = s.Get(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t, time.Minute)

	require.NoError(t, s.Put(ctx, entryFor("U1", "iphone", 1, 2)))
	require.NoError(t, s.Put(ctx, entryFor("U1", "ipad", 3)))

	got, ok, err := s.Get(ctx, "U1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ipad", got.Query)
	require.Len(t, got.Results, 1)
	assert.Equal(t, 3, got.Results[0].ID)
}

func TestRedisStore_ReadsExtendTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Minute)
	key := testPrefix + "U1"

	require.NoError(t, s.Put(ctx, entryFor("U1", "iphone", 1)))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(40 * time.Second)
	_, ok, err := s.Get(ctx, "U1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL(key), "a read restarts the timeout")

	// 80s after the write, alive only because of the read at 40s
	mr.FastForward(40 * time.Second)
	_, ok, err = s.Get(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(61 * time.Second)
	_, ok, err = s.Get(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_LenCountsOnlyPrefixedKeys(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Minute)

	for _, user := range []string{"U1", "U2", "U3"} {
		require.NoError(t, s.Put(ctx, entryFor(user, "iphone", 1)))
	}
	require.NoError(t, mr.Set("other:key", "x"))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mr.FastForward(2 * time.Minute)
	n, err = s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	require.NoError(t, mr.Set(testPrefix+"U1", "{not json"))

	_, ok, err := s.Get(context.Background(), "U1")
	assert.Error(t, err)
	assert.False(t, ok)
}
