package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop_chat_server/internal/config"
	dao "shop_chat_server/internal/dao/mysql"
	myredis "shop_chat_server/internal/dao/redis"
	"shop_chat_server/internal/gateway/websocket"
	"shop_chat_server/internal/handler"
	"shop_chat_server/internal/https_server"
	"shop_chat_server/internal/infrastructure/mq"
	"shop_chat_server/internal/service"
	"shop_chat_server/pkg/util/jwt"
	"shop_chat_server/pkg/util/snowflake"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 与 WebSocket 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = zap.L().Sync() }()
			return runServe(cfg)
		},
	}
}

// openCache Redis 未启用时退化为进程内缓存，返回的 closer 用于关闭时释放连接
func openCache(conf *config.RedisConfig) (myredis.AsyncCacheService, func(), error) {
	if !conf.Enabled {
		zap.L().Info("redis 未启用，使用进程内缓存")
		return myredis.NewMemoryCache(), func() {}, nil
	}
	cache, err := myredis.Init(conf)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis %s:%d: %w", conf.Host, conf.Port, err)
	}
	return cache, func() {
		if err := cache.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}, nil
}

func runServe(cfg *config.Config) error {
	// 1. 初始化 ID 生成器与 JWT
	snowflake.Init(cfg.SnowflakeConfig.MachineID)
	jwt.Init(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTokenExpiry, cfg.JWTConfig.RefreshTokenExpiry)

	// 2. 初始化数据库
	repos, _, err := dao.Init(&cfg.MysqlConfig)
	if err != nil {
		return err
	}
	zap.L().Info("数据库初始化成功")

	// 3. 初始化缓存
	cache, closeCache, err := openCache(&cfg.RedisConfig)
	if err != nil {
		return err
	}
	defer closeCache()

	// 4. 事件投递
	publisher := mq.NewPublisher(&cfg.KafkaConfig)
	defer func() {
		if err := publisher.Close(); err != nil {
			zap.L().Error("publisher close", zap.Error(err))
		}
	}()

	// 5. 初始化 Service 层
	svc := service.NewServices(service.Deps{
		Repos:     repos,
		Cache:     cache,
		Publisher: publisher,
		Chat:      cfg.ChatConfig,
		Redis:     cfg.RedisConfig,
	})
	defer svc.Close()

	if err := seedStaff(svc.Auth, &cfg.StaffConfig); err != nil {
		return err
	}
	if err := svc.Archiver.Start(cfg.ChatConfig.ArchiveSchedule); err != nil {
		return err
	}
	zap.L().Info("Service 层初始化成功")

	// 6. 初始化 HTTP 服务
	if err := handler.InitTrans(cfg.MainConfig.Locale); err != nil {
		return fmt.Errorf("init validator translator: %w", err)
	}
	wsOpts := websocket.DefaultOptions()
	if cfg.ChatConfig.SendBufferSize > 0 {
		wsOpts.SendBufferSize = cfg.ChatConfig.SendBufferSize
	}
	if cfg.ChatConfig.MaxMessageBytes > 0 {
		wsOpts.MaxMessageBytes = int64(cfg.ChatConfig.MaxMessageBytes)
	}
	engine := https_server.Init(cfg, handler.NewHandlers(svc, wsOpts))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.MainConfig.Host, cfg.MainConfig.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 7. 启动服务
	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zap.L().Info("关闭服务器...", zap.String("signal", sig.String()))
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server running fault: %w", err)
		}
	}

	// 先断开聊天连接，WebSocket 连接被劫持后不受 Shutdown 管理
	svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
	return nil
}
