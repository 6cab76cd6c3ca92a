// Package handler 提供 HTTP 请求处理器
// 本文件处理客服认证相关的 API 请求
package handler

import (
	"shop_chat_server/internal/dto/request"
	"shop_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 客服认证接口
type AuthHandler struct {
	svc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login 客服账号密码登录
// POST /api/auth/login
// 响应: respond.LoginRespond，Access Token 用于客服接口和 WebSocket 升级
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Refresh 刷新 Token
// POST /api/auth/refresh
//
// 单点互踢:
//   - 登录和刷新都会在缓存中覆盖该客服的 Token ID
//   - 使用旧 Token ID 的 Refresh Token 会被拒绝
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
