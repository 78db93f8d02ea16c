package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/quickbites/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client, 0)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testSession(key string) *domain.Session {
	s := domain.NewSession(key, time.Now())
	s.CurrentOrder.Add(domain.Item{ID: 1, Name: "Jollof Rice", BasePrice: decimal.NewFromInt(1200)})
	s.CurrentOrder.Add(domain.Item{ID: 1, Name: "Jollof Rice", BasePrice: decimal.NewFromInt(1200)})
	return s
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	key := "user123"

	sessionJSON, _ := json.Marshal(testSession(key))
	require.NoError(t, mr.Set(cacheKey(key), string(sessionJSON)))

	result, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key, result.Key)
	require.Len(t, result.CurrentOrder.Lines, 1)
	assert.Equal(t, 2, result.CurrentOrder.Lines[0].Quantity)
	assert.True(t, result.CurrentOrder.Total.Equal(decimal.NewFromInt(2400)))
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	key := "user123"
	sessionJSON, err := json.Marshal(testSession(key))
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey(key), string(sessionJSON[0:10])))

	_, cacheError := cache.Get(context.Background(), key)
	require.ErrorContains(t, cacheError, "unmarshal session failed")
}

func TestSet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	key := "user456"
	err := cache.Set(context.Background(), key, testSession(key))
	require.NoError(t, err)

	stored, err := mr.Get(cacheKey(key))
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	var storedSession domain.Session
	require.NoError(t, json.Unmarshal([]byte(stored), &storedSession))
	assert.Equal(t, key, storedSession.Key)
	assert.Len(t, storedSession.CurrentOrder.Lines, 1)
}

func TestSet_WithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	key := "user789"
	require.NoError(t, cache.Set(context.Background(), key, domain.NewSession(key, time.Now())))

	ttl := mr.TTL(cacheKey(key))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestDelete_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	key := "user999"
	sessionJSON, _ := json.Marshal(domain.NewSession(key, time.Now()))
	require.NoError(t, mr.Set(cacheKey(key), string(sessionJSON)))
	assert.True(t, mr.Exists(cacheKey(key)))

	require.NoError(t, cache.Delete(context.Background(), key))

	assert.False(t, mr.Exists(cacheKey(key)))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	assert.NoError(t, cache.Delete(context.Background(), "nonexistent"))
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "session:test123", cacheKey("test123"))
}
