// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接
package handler

import (
	"shop_chat_server/internal/gateway/websocket"
	"shop_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 接入
type WsHandler struct {
	hub  websocket.Hub
	opts websocket.Options
}

// NewWsHandler 创建 WsHandler
func NewWsHandler(hub websocket.Hub, opts websocket.Options) *WsHandler {
	return &WsHandler{hub: hub, opts: opts}
}

// Connect 升级为 WebSocket 并阻塞到连接关闭
// GET /ws/chat
// 携带有效 Access Token（Authorization 头或 token 参数）的连接以客服身份接入，否则为匿名顾客
func (h *WsHandler) Connect(c *gin.Context) {
	if err := websocket.ServeWS(h.hub, c.Writer, c.Request, middleware.Principal(c), h.opts); err != nil {
		// Upgrade 失败时已写入 400 响应
		zap.L().Warn("ws upgrade failed", zap.String("ip", c.ClientIP()), zap.Error(err))
	}
}
