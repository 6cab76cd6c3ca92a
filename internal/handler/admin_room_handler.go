// Package handler 提供 HTTP 请求处理器
// 本文件处理客服侧的聊天房间接口，路由组由 JWTAuth 中间件保护
package handler

import (
	"shop_chat_server/internal/dto/request"
	"shop_chat_server/internal/infrastructure/middleware"
	"shop_chat_server/internal/service"
	"shop_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// AdminRoomHandler 客服侧房间接口
type AdminRoomHandler struct {
	svc service.RoomService
}

// NewAdminRoomHandler 创建 AdminRoomHandler
func NewAdminRoomHandler(svc service.RoomService) *AdminRoomHandler {
	return &AdminRoomHandler{svc: svc}
}

// ListRooms 房间列表，最近活跃的在前
// GET /api/admin/chat/rooms?status=
func (h *AdminRoomHandler) ListRooms(c *gin.Context) {
	var q request.ListRoomsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	rooms, err := h.svc.ListRooms(q.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rooms)
}

// GetRoom GET /api/admin/chat/rooms/:roomId
func (h *AdminRoomHandler) GetRoom(c *gin.Context) {
	room, err := h.svc.GetRoom(c.Param("roomId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, room)
}

// Messages 完整历史，包含内部备注
// GET /api/admin/chat/rooms/:roomId/messages
func (h *AdminRoomHandler) Messages(c *gin.Context) {
	msgs, err := h.svc.StaffMessages(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, msgs)
}

// UpdateStatus POST /api/admin/chat/rooms/:roomId/status
func (h *AdminRoomHandler) UpdateStatus(c *gin.Context) {
	var req request.UpdateRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	room, err := h.svc.UpdateStatus(c.Param("roomId"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, room)
}

// UpdatePriority POST /api/admin/chat/rooms/:roomId/priority
func (h *AdminRoomHandler) UpdatePriority(c *gin.Context) {
	var req request.UpdateRoomPriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	room, err := h.svc.UpdatePriority(c.Param("roomId"), req.Priority)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, room)
}

// Assign 分配负责客服，staffId 为空时分配给当前客服
// POST /api/admin/chat/rooms/:roomId/assign
func (h *AdminRoomHandler) Assign(c *gin.Context) {
	var req request.AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	staffId := req.StaffId
	if staffId == "" {
		staffId = c.GetString(middleware.ContextStaffID)
	}
	room, err := h.svc.AssignStaff(c.Param("roomId"), staffId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, room)
}

// MarkRead POST /api/admin/chat/rooms/:roomId/read
func (h *AdminRoomHandler) MarkRead(c *gin.Context) {
	if err := h.svc.StaffMarkRead(c.Request.Context(), c.Param("roomId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// AddNote 内部备注，只推送给房间内的客服连接
// POST /api/admin/chat/rooms/:roomId/notes
func (h *AdminRoomHandler) AddNote(c *gin.Context) {
	var req request.InternalNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	author := middleware.Principal(c)
	if author == nil {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "please log in first"))
		return
	}
	note, err := h.svc.AddInternalNote(c.Request.Context(), c.Param("roomId"), author, req.Message)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, note)
}

// Online 各房间在线人数
// GET /api/admin/chat/online
func (h *AdminRoomHandler) Online(c *gin.Context) {
	HandleSuccess(c, h.svc.Online())
}
