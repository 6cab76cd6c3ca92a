package redis

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"

	"shop_chat_server/pkg/errorx"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache 进程内缓存，redisConfig.enabled=false 时及测试中使用
// SubmitTask 直接同步执行
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryEntry
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]memoryEntry)}
}

// lookup 调用方需持有锁
func (m *MemoryCache) lookup(key string) (string, bool) {
	e, ok := m.data[key]
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(m.data, key)
		return "", false
	}
	return e.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, _ := m.lookup(key)
	return v, nil
}

func (m *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, _ := m.lookup(key)
	var n int64
	if v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, errorx.Wrapf(err, errorx.CodeCacheError, "cache key %s is not an integer", key)
		}
		n = parsed
	}
	n++
	e := m.data[key]
	e.value = strconv.FormatInt(n, 10)
	m.data[key] = e
	return n, nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
		}
	}
	return nil
}

func (m *MemoryCache) SubmitTask(action func()) {
	action()
}

var _ AsyncCacheService = (*MemoryCache)(nil)
