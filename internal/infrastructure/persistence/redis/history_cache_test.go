package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-content-gateway/internal/domain/entity"
)

func setupCache(t *testing.T) (*HistoryCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	return NewHistoryCache(client, time.Minute), mr
}

func TestHistoryCacheMiss(t *testing.T) {
	cache, _ := setupCache(t)

	turns, ok, err := cache.GetHistory(context.Background(), "group-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, turns)
}

func TestHistoryCacheRoundTrip(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	want := []entity.Turn{
		{Role: entity.RoleUser, Content: "hi"},
		{Role: entity.RoleAssistant, Content: "hello"},
	}
	require.NoError(t, cache.SetHistory(ctx, "group-1", want))
	assert.True(t, mr.Exists("gateway:group:history:group-1"))

	got, ok, err := cache.GetHistory(ctx, "group-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	// 条目带 TTL
	assert.Greater(t, mr.TTL("gateway:group:history:group-1"), time.Duration(0))
}

func TestHistoryCacheDel(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetHistory(ctx, "group-1", []entity.Turn{{Role: entity.RoleUser, Content: "q"}}))
	require.NoError(t, cache.DelHistory(ctx, "group-1"))
	assert.False(t, mr.Exists("gateway:group:history:group-1"))
}

func TestHistoryCacheCorruptEntry(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("gateway:group:history:group-1", "{broken json"))

	// 损坏条目按未命中处理并被删除
	_, ok, err := cache.GetHistory(ctx, "group-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("gateway:group:history:group-1"))
}
