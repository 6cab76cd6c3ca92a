package testutil

import (
	"testing"

	myredis "shop_chat_server/internal/dao/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewRedisCache 启动一个 miniredis 实例并返回基于它的 RedisCache
// 测试结束时先停止 Worker 再关闭 miniredis
func NewRedisCache(t testing.TB) (*myredis.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := myredis.NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 2, 16)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}
