// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"shop_chat_server/internal/gateway/websocket"
	"shop_chat_server/internal/infrastructure/middleware"
	"shop_chat_server/internal/service"
)

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	Room      *RoomHandler
	AdminRoom *AdminRoomHandler
	Auth      *AuthHandler
	Ws        *WsHandler

	// Principal 供 JWT 中间件查询客服身份
	Principal middleware.PrincipalLookup
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, wsOpts websocket.Options) *Handlers {
	return &Handlers{
		Room:      NewRoomHandler(svc.Room),
		AdminRoom: NewAdminRoomHandler(svc.Room),
		Auth:      NewAuthHandler(svc.Auth),
		Ws:        NewWsHandler(svc.Hub, wsOpts),
		Principal: svc.Auth.Principal,
	}
}
