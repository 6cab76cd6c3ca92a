// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"net/http"

	"shop_chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	rt.RegisterAuthRoutes(api)  // 客服登录与 Token 刷新
	rt.RegisterChatRoutes(api)  // 顾客侧房间接口
	rt.RegisterAdminRoutes(api) // 客服侧房间接口（需要认证）

	rt.RegisterWebSocketRoutes(r.Group("/ws"))
}
