// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 路由
package router

import (
	"shop_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 路由
// 顾客匿名接入: ws://host:port/ws/chat
// 客服接入:     ws://host:port/ws/chat?token=<access token>
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/chat", middleware.OptionalJWT(rt.handlers.Principal), rt.handlers.Ws.Connect)
}
