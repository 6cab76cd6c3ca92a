// Package router 提供 HTTP 路由注册
// 本文件定义认证相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由
func (rt *Router) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", rt.handlers.Auth.Login)     // 账号密码登录
		authGroup.POST("/refresh", rt.handlers.Auth.Refresh) // 使用 Refresh Token 换发 Token
	}
}
