package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore 进程内缓存
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore 创建内存缓存
func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{
		entries: make(map[string]Entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock 替换时钟（测试用）
func (m *MemoryStore[T]) WithClock(now func() time.Time) *MemoryStore[T] {
	m.now = now
	return m
}

// Get 读取缓存，过期条目在此删除
func (m *MemoryStore[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return zero, ErrCacheMiss
	}

	if !entry.Fresh(m.now()) {
		m.mu.Lock()
		// 重新检查，避免删除并发写入的新条目
		if cur, ok := m.entries[key]; ok && cur.Timestamp.Equal(entry.Timestamp) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return zero, ErrCacheMiss
	}
	return entry.Data, nil
}

// Set 写入缓存
func (m *MemoryStore[T]) Set(ctx context.Context, key string, value T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = Entry[T]{
		Data:      value,
		Timestamp: m.now(),
		TTL:       m.ttl,
	}
	return nil
}

// ClearPrefix 删除指定前缀的所有条目
func (m *MemoryStore[T]) ClearPrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Clear 清空缓存
func (m *MemoryStore[T]) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]Entry[T])
	return nil
}

// Len 当前条目数（包括尚未被读取淘汰的过期条目）
func (m *MemoryStore[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
