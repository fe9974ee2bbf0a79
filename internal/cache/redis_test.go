package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedOutput struct {
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore[cachedOutput]) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisStore[cachedOutput](client, "acdss:analysis:", 5*time.Minute)
}

func TestRedisStore_SetGet(t *testing.T) {
	ctx := context.Background()
	mr, store := setupTestRedis(t)

	_, err := store.Get(ctx, "acdss:analysis:p1:a1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "acdss:analysis:p1:a1", cachedOutput{Recommendation: "MAINTAIN", Confidence: 35}))

	got, err := store.Get(ctx, "acdss:analysis:p1:a1")
	require.NoError(t, err)
	assert.Equal(t, "MAINTAIN", got.Recommendation)
	assert.Equal(t, float64(35), got.Confidence)

	// Redis 侧也设置了 TTL
	assert.Equal(t, 5*time.Minute, mr.TTL("acdss:analysis:p1:a1"))
}

func TestRedisStore_StaleEntryDeleted(t *testing.T) {
	ctx := context.Background()
	mr, store := setupTestRedis(t)

	clock := newFakeClock()
	store.now = clock.Now

	require.NoError(t, store.Set(ctx, "acdss:analysis:p1:a1", cachedOutput{Confidence: 80}))
	clock.Advance(5 * time.Minute)

	_, err := store.Get(ctx, "acdss:analysis:p1:a1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.False(t, mr.Exists("acdss:analysis:p1:a1"))
}

func TestRedisStore_CorruptedEntry(t *testing.T) {
	ctx := context.Background()
	mr, store := setupTestRedis(t)

	require.NoError(t, mr.Set("acdss:analysis:p1:a1", "not-json"))

	_, err := store.Get(ctx, "acdss:analysis:p1:a1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Contains(t, err.Error(), "failed to unmarshal cache entry")
}

func TestRedisStore_ClearPrefixAndClear(t *testing.T) {
	ctx := context.Background()
	mr, store := setupTestRedis(t)

	require.NoError(t, store.Set(ctx, "acdss:analysis:p1:a1", cachedOutput{}))
	require.NoError(t, store.Set(ctx, "acdss:analysis:p1:a2", cachedOutput{}))
	require.NoError(t, store.Set(ctx, "acdss:analysis:p2:a1", cachedOutput{}))
	require.NoError(t, mr.Set("other:key", "x"))

	require.NoError(t, store.ClearPrefix(ctx, "acdss:analysis:p1:"))
	assert.False(t, mr.Exists("acdss:analysis:p1:a1"))
	assert.False(t, mr.Exists("acdss:analysis:p1:a2"))
	assert.True(t, mr.Exists("acdss:analysis:p2:a1"))

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("acdss:analysis:p2:a1"))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisStore_ClearPrefixMatchesLiterally(t *testing.T) {
	ctx := context.Background()
	mr, store := setupTestRedis(t)

	require.NoError(t, store.Set(ctx, "acdss:analysis:p[1]:a1", cachedOutput{}))
	require.NoError(t, store.Set(ctx, "acdss:analysis:p1:a1", cachedOutput{}))
	require.NoError(t, store.Set(ctx, "acdss:analysis:p*:a1", cachedOutput{}))
	require.NoError(t, store.Set(ctx, "acdss:analysis:px:a1", cachedOutput{}))
	require.NoError(t, store.Set(ctx, `acdss:analysis:p\q:a1`, cachedOutput{}))

	require.NoError(t, store.ClearPrefix(ctx, "acdss:analysis:p[1]:"))
	assert.False(t, mr.Exists("acdss:analysis:p[1]:a1"))
	assert.True(t, mr.Exists("acdss:analysis:p1:a1"))

	require.NoError(t, store.ClearPrefix(ctx, "acdss:analysis:p*:"))
	assert.False(t, mr.Exists("acdss:analysis:p*:a1"))
	assert.True(t, mr.Exists("acdss:analysis:px:a1"))

	require.NoError(t, store.ClearPrefix(ctx, `acdss:analysis:p\q:`))
	assert.False(t, mr.Exists(`acdss:analysis:p\q:a1`))
	assert.True(t, mr.Exists("acdss:analysis:p1:a1"))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `p\[1\]\*\?\\`, escapeGlob(`p[1]*?\`))
	assert.Equal(t, "acdss:analysis:p1:", escapeGlob("acdss:analysis:p1:"))
}

func TestRedisStore_BackendDown(t *testing.T) {
	ctx := context.Background()
	mr, store := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(ctx, "acdss:analysis:p1:a1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	assert.Error(t, store.Set(ctx, "acdss:analysis:p1:a1", cachedOutput{}))
}
