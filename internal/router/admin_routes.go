// Package router 提供 HTTP 路由注册
// 本文件定义客服相关的路由
package router

import (
	"shop_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册客服路由（需要认证）
func (rt *Router) RegisterAdminRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.AdminRoom
	adminGroup := rg.Group("/admin/chat", middleware.JWTAuth(rt.handlers.Principal))
	{
		adminGroup.GET("/online", h.Online) // 各房间在线人数

		rooms := adminGroup.Group("/rooms")
		{
			rooms.GET("", h.ListRooms)
			rooms.GET("/:roomId", h.GetRoom)
			rooms.GET("/:roomId/messages", h.Messages)    // 含内部备注
			rooms.POST("/:roomId/status", h.UpdateStatus) // 任意状态之间切换
			rooms.POST("/:roomId/priority", h.UpdatePriority)
			rooms.POST("/:roomId/assign", h.Assign) // staffId 为空时分配给自己
			rooms.POST("/:roomId/read", h.MarkRead)
			rooms.POST("/:roomId/notes", h.AddNote) // 内部备注
		}
	}
}
