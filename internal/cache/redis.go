package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore 基于 go-redis 的共享缓存
//
// 条目以 JSON 形式写入，同时设置 Redis TTL；读取时仍按条目时间戳检查
type RedisStore[T any] struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	now       func() time.Time
}

// NewRedisStore 创建 Redis 缓存
// namespace 为 Clear 使用的键前缀（如 "acdss:analysis:"）
func NewRedisStore[T any](client *redis.Client, namespace string, ttl time.Duration) *RedisStore[T] {
	return &RedisStore[T]{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Get 读取缓存
func (r *RedisStore[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return zero, ErrCacheMiss
		}
		return zero, fmt.Errorf("failed to get cache: %w", err)
	}

	var entry Entry[T]
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	if !entry.Fresh(r.now()) {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return zero, fmt.Errorf("failed to delete stale entry: %w", err)
		}
		return zero, ErrCacheMiss
	}
	return entry.Data, nil
}

// Set 写入缓存
func (r *RedisStore[T]) Set(ctx context.Context, key string, value T) error {
	entry := Entry[T]{
		Data:      value,
		Timestamp: r.now(),
		TTL:       r.ttl,
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, key, jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// ClearPrefix 扫描并删除指定前缀的键
func (r *RedisStore[T]) ClearPrefix(ctx context.Context, prefix string) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// Clear 删除命名空间下的所有键
func (r *RedisStore[T]) Clear(ctx context.Context) error {
	return r.ClearPrefix(ctx, r.namespace)
}

// globEscaper 转义 SCAN MATCH 的通配符，前缀按字面匹配
var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
