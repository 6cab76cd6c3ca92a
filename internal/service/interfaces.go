// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
package service

import (
	"context"

	"shop_chat_server/internal/dto/request"
	"shop_chat_server/internal/dto/respond"
	"shop_chat_server/internal/model"
	"shop_chat_server/internal/service/chat"
)

// RoomService 聊天房间的非实时操作
// 顾客侧接口以 sessionId 证明归属，客服侧接口由 JWT 中间件保护
type RoomService interface {
	// CreateRoom 顾客发起咨询，这是房间唯一的创建入口
	CreateRoom(ctx context.Context, req request.CreateRoomRequest) (*respond.ChatRoomRespond, error)
	// GetRoom 获取单个房间
	GetRoom(roomId string) (*respond.ChatRoomRespond, error)
	// ListRooms 按最近活跃时间倒序列出房间，status 为空时返回全部
	ListRooms(status string) ([]respond.ChatRoomRespond, error)
	// CustomerMessages 顾客查看历史消息，不含内部备注
	CustomerMessages(ctx context.Context, roomId, sessionId string) ([]respond.ChatMessageRespond, error)
	// StaffMessages 客服查看完整历史消息
	StaffMessages(ctx context.Context, roomId string) ([]respond.ChatMessageRespond, error)
	// CustomerMarkRead 顾客已读客服消息
	CustomerMarkRead(ctx context.Context, roomId, sessionId string) error
	// StaffMarkRead 客服已读顾客消息
	StaffMarkRead(ctx context.Context, roomId string) error
	// UpdateStatus 设置房间状态
	UpdateStatus(roomId, status string) (*respond.ChatRoomRespond, error)
	// UpdatePriority 设置房间优先级
	UpdatePriority(roomId, priority string) (*respond.ChatRoomRespond, error)
	// AssignStaff 分配负责客服
	AssignStaff(roomId, staffId string) (*respond.ChatRoomRespond, error)
	// AddInternalNote 写入内部备注并推送给房间内的客服连接
	AddInternalNote(ctx context.Context, roomId string, author *chat.Principal, message string) (*respond.ChatMessageRespond, error)
	// Online 各房间在线连接数
	Online() []respond.RoomPresenceRespond
}

// AuthService 客服认证
type AuthService interface {
	// Login 账号密码登录，签发双 Token
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	// Refresh 使用 Refresh Token 换发新的双 Token
	Refresh(ctx context.Context, refreshToken string) (*respond.LoginRespond, error)
	// Principal 由 Access Token 中的客服 UUID 得到聊天身份
	Principal(staffId string) (*chat.Principal, error)
	// CreateStaff 创建客服账号
	CreateStaff(username, password, displayName string) (*model.StaffUser, error)
	// EnsureStaff 账号不存在时创建，已存在时不做修改
	EnsureStaff(username, password, displayName string) (bool, error)
}
