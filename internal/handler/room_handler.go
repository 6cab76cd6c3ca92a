// Package handler 提供 HTTP 请求处理器
// 本文件处理顾客侧的聊天房间接口，顾客以 sessionId 证明对房间的归属
package handler

import (
	"shop_chat_server/internal/dto/request"
	"shop_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// RoomHandler 顾客侧房间接口
type RoomHandler struct {
	svc service.RoomService
}

// NewRoomHandler 创建 RoomHandler
func NewRoomHandler(svc service.RoomService) *RoomHandler {
	return &RoomHandler{svc: svc}
}

// CreateRoom 发起咨询
// POST /api/chat/rooms
// 请求体: request.CreateRoomRequest
// 响应: 完整房间信息，customerSessionId 需由前端保存，用于加入房间和查看历史
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req request.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	room, err := h.svc.CreateRoom(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, room)
}

// Messages 顾客查看历史消息，重连后用于补齐断线期间的消息
// GET /api/chat/rooms/:roomId/messages?sessionId=
func (h *RoomHandler) Messages(c *gin.Context) {
	var q request.CustomerRoomQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	msgs, err := h.svc.CustomerMessages(c.Request.Context(), c.Param("roomId"), q.SessionId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, msgs)
}

// MarkRead 顾客已读
// POST /api/chat/rooms/:roomId/read?sessionId=
func (h *RoomHandler) MarkRead(c *gin.Context) {
	var q request.CustomerRoomQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.svc.CustomerMarkRead(c.Request.Context(), c.Param("roomId"), q.SessionId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
