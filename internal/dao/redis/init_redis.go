package redis

import (
	"context"
	"net"
	"strconv"
	"time"

	"shop_chat_server/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init 按配置创建 Redis 客户端并探活，返回带 Worker Pool 的缓存服务
func Init(conf *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port)),
		Password:     conf.Password,
		DB:           conf.Db,
		PoolSize:     50,
		MinIdleConns: conf.WorkerNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	workers := conf.WorkerNum
	if workers <= 0 {
		workers = 15
	}
	size := conf.TaskChanSize
	if size <= 0 {
		size = 3000
	}
	return NewRedisCache(client, workers, size), nil
}
