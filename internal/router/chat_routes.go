// Package router 提供 HTTP 路由注册
// 本文件定义顾客侧的聊天房间路由，不需要登录
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes 注册顾客侧路由
func (rt *Router) RegisterChatRoutes(rg *gin.RouterGroup) {
	rooms := rg.Group("/chat/rooms")
	{
		rooms.POST("", rt.handlers.Room.CreateRoom)               // 发起咨询
		rooms.GET("/:roomId/messages", rt.handlers.Room.Messages) // 历史消息 ?sessionId=
		rooms.POST("/:roomId/read", rt.handlers.Room.MarkRead)    // 顾客已读 ?sessionId=
	}
}
