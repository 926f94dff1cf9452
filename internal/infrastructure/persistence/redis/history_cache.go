package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ai-content-gateway/internal/domain/entity"
)

var cacheTracer = otel.Tracer("redis.history_cache")

// HistoryCache 会话历史的读穿缓存。
// 数据库中的会话行是权威事实，缓存只用于省去热会话的行读。
type HistoryCache struct {
	client *Client
	ttl    time.Duration
}

// NewHistoryCache 创建会话历史缓存
func NewHistoryCache(client *Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &HistoryCache{client: client, ttl: ttl}
}

func historyKey(groupID string) string {
	return "gateway:group:history:" + groupID
}

// GetHistory 读取缓存的历史，未命中时 ok 为 false
func (c *HistoryCache) GetHistory(ctx context.Context, groupID string) ([]entity.Turn, bool, error) {
	ctx, span := cacheTracer.Start(ctx, "history_cache.Get",
		trace.WithAttributes(attribute.String("group.id", groupID)))
	defer span.End()

	raw, err := c.client.rdb.Get(ctx, historyKey(groupID)).Bytes()
	if err != nil {
		if IsNil(err) {
			span.SetAttributes(attribute.Bool("cache.hit", false))
			return nil, false, nil
		}
		span.RecordError(err)
		return nil, false, fmt.Errorf("failed to read history cache: %w", err)
	}

	var turns []entity.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		// 已损坏的条目按未命中处理并删除
		_ = c.client.rdb.Del(ctx, historyKey(groupID)).Err()
		return nil, false, nil
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	return turns, true, nil
}

// SetHistory 写入缓存的历史
func (c *HistoryCache) SetHistory(ctx context.Context, groupID string, turns []entity.Turn) error {
	ctx, span := cacheTracer.Start(ctx, "history_cache.Set",
		trace.WithAttributes(attribute.String("group.id", groupID)))
	defer span.End()

	raw, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := c.client.rdb.Set(ctx, historyKey(groupID), raw, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to write history cache: %w", err)
	}
	return nil
}

// DelHistory 追加后失效缓存
func (c *HistoryCache) DelHistory(ctx context.Context, groupID string) error {
	ctx, span := cacheTracer.Start(ctx, "history_cache.Del",
		trace.WithAttributes(attribute.String("group.id", groupID)))
	defer span.End()

	if err := c.client.rdb.Del(ctx, historyKey(groupID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to invalidate history cache: %w", err)
	}
	return nil
}
