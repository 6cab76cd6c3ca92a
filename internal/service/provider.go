// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"time"

	"shop_chat_server/internal/config"
	"shop_chat_server/internal/dao/mysql/repository"
	myredis "shop_chat_server/internal/dao/redis"
	"shop_chat_server/internal/infrastructure/mq"
	"shop_chat_server/internal/service/auth"
	"shop_chat_server/internal/service/chat"
	"shop_chat_server/internal/service/housekeeping"
	"shop_chat_server/internal/service/room"
)

// Deps Service 层的外部依赖
type Deps struct {
	Repos     *repository.Repositories
	Cache     myredis.AsyncCacheService
	Publisher mq.EventPublisher
	Chat      config.ChatConfig
	Redis     config.RedisConfig
}

// Services 聚合所有 Service 实例
// Hub 随 Services 创建，随服务关闭销毁
type Services struct {
	Hub      *chat.Hub
	Room     RoomService
	Auth     AuthService
	Archiver *housekeeping.Archiver
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 由缓存构造消息历史缓存
//  2. 创建 Hub，Room Service 通过 Hub 推送内部备注
//  3. 创建认证与归档服务
func NewServices(deps Deps) *Services {
	history := myredis.NewHistoryCache(deps.Cache, time.Duration(deps.Redis.HistoryTTL)*time.Minute)
	hub := chat.NewHub(chat.HubConfig{
		RoomRepo:      deps.Repos.Room,
		MessageRepo:   deps.Repos.Message,
		History:       history,
		Publisher:     deps.Publisher,
		PreviewLength: deps.Chat.PreviewLength,
	})
	return &Services{
		Hub:      hub,
		Room:     room.NewRoomService(deps.Repos, hub, history, deps.Publisher),
		Auth:     auth.NewAuthService(deps.Repos, deps.Cache),
		Archiver: housekeeping.NewArchiver(deps.Repos.Room, deps.Publisher, deps.Chat.ArchiveAfterDays),
	}
}

// Close 断开所有聊天连接并停止归档任务
func (s *Services) Close() {
	s.Archiver.Stop()
	s.Hub.Close()
}
