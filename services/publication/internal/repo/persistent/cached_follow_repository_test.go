package persistent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"socialnet/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFollowRepository struct {
	inner FollowRepository
	calls int
}

func (r *countingFollowRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	r.calls++
	return r.inner.FollowingIDs(ctx, userID)
}

func newCachedFixture(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *MemoryStore, *countingFollowRepository, FollowRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewMemoryStore()
	counting := &countingFollowRepository{inner: store}
	return mr, store, counting, NewCachedFollowRepository(counting, client, ttl, logger.New())
}

func TestCachedFollowRepository_MissFillsThenHits(t *testing.T) {
	mr, store, counting, repo := newCachedFixture(t, 30*time.Second)
	ctx := context.Background()
	store.Follow("u1", "a")
	store.Follow("u1", "b")

	ids, err := repo.FollowingIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, 1, counting.calls)

	cached, err := mr.Get("follows:u1")
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, cached)
	assert.Equal(t, 30*time.Second, mr.TTL("follows:u1"))

	store.Follow("u1", "c")
	ids, err = repo.FollowingIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, 1, counting.calls)
}

func TestCachedFollowRepository_ExpiryReloads(t *testing.T) {
	mr, store, counting, repo := newCachedFixture(t, 30*time.Second)
	ctx := context.Background()
	store.Follow("u1", "a")

	_, err := repo.FollowingIDs(ctx, "u1")
	require.NoError(t, err)

	store.Follow("u1", "b")
	mr.FastForward(31 * time.Second)

	ids, err := repo.FollowingIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, 2, counting.calls)
}

func TestCachedFollowRepository_CachesEmptyFollowSet(t *testing.T) {
	mr, _, counting, repo := newCachedFixture(t, time.Minute)

	ids, err := repo.FollowingIDs(context.Background(), "lonely")
	require.NoError(t, err)
	assert.Empty(t, ids)

	cached, err := mr.Get("follows:lonely")
	require.NoError(t, err)
	assert.Equal(t, "[]", cached)

	_, err = repo.FollowingIDs(context.Background(), "lonely")
	require.NoError(t, err)
	assert.Equal(t, 1, counting.calls)
}

func TestCachedFollowRepository_MalformedEntryFallsBack(t *testing.T) {
	mr, store, counting, repo := newCachedFixture(t, time.Minute)
	store.Follow("u1", "a")
	require.NoError(t, mr.Set("follows:u1", "not json"))

	ids, err := repo.FollowingIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
	assert.Equal(t, 1, counting.calls)

	cached, err := mr.Get("follows:u1")
	require.NoError(t, err)
	var stored []string
	require.NoError(t, json.Unmarshal([]byte(cached), &stored))
	assert.Equal(t, []string{"a"}, stored)
}

func TestCachedFollowRepository_RedisFailureFallsThrough(t *testing.T) {
	mr, store, counting, repo := newCachedFixture(t, time.Minute)
	store.Follow("u1", "a")
	mr.SetError("ERR cache unavailable")

	ids, err := repo.FollowingIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
	assert.Equal(t, 1, counting.calls)

	mr.SetError("")
	assert.False(t, mr.Exists("follows:u1"))
}

func TestNewCachedFollowRepository_NonPositiveTTLReturnsInner(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewMemoryStore()
	assert.Same(t, store, NewCachedFollowRepository(store, client, 0, logger.New()))
}
