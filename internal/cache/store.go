// Package cache 提供带 TTL 的分析结果缓存
//
// TTL 在读取时惰性检查，过期条目在读取时删除；没有后台清理
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss 表示缓存不存在或已过期
var ErrCacheMiss = errors.New("cache miss")

// Entry 缓存条目
type Entry[T any] struct {
	Data      T             `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
	TTL       time.Duration `json:"ttl"`
}

// Fresh 条目在 now 时刻是否仍然有效（now - timestamp < ttl）
func (e Entry[T]) Fresh(now time.Time) bool {
	return now.Sub(e.Timestamp) < e.TTL
}

// Store 抽象的结果缓存（内存实现用于单进程，Redis 实现用于多实例共享）
type Store[T any] interface {
	Get(ctx context.Context, key string) (T, error)
	Set(ctx context.Context, key string, value T) error
	ClearPrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}
