// Package model 定义数据库实体模型
// 本文件定义客服聊天房间模型
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// ChatRoom 客服聊天房间
// 对应数据库 chat_room 表，一个房间代表一位顾客与客服之间的一条对话线
// 房间只会被归档（closed），不会被物理删除
type ChatRoom struct {
	gorm.Model

	// Uuid 房间对外 ID，格式：R + 雪花 ID
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(24);not null;comment:房间uuid"`

	// CustomerSessionId 匿名顾客会话 ID，顾客重连时凭此关联到自己的房间
	CustomerSessionId string `gorm:"column:customer_session_id;index;type:varchar(64);not null;comment:顾客会话id"`

	CustomerName  string `gorm:"column:customer_name;type:varchar(64);not null;comment:顾客称呼"`
	CustomerEmail string `gorm:"column:customer_email;type:varchar(128);comment:顾客邮箱"`
	CustomerPhone string `gorm:"column:customer_phone;type:varchar(32);comment:顾客电话"`

	// ProductId 咨询关联的商品，可为空
	ProductId string `gorm:"column:product_id;type:varchar(64);comment:关联商品id"`

	Subject string `gorm:"column:subject;type:varchar(255);not null;comment:咨询主题"`

	// Status waiting / active / resolved / closed，参见 pkg/enum/room_status_enum
	Status string `gorm:"column:status;index;type:varchar(16);not null;default:waiting;comment:房间状态"`

	// Priority low / normal / high / urgent，参见 pkg/enum/room_priority_enum
	Priority string `gorm:"column:priority;type:varchar(16);not null;default:normal;comment:优先级"`

	// AssignedStaffId 负责的客服 UUID，未分配为空
	AssignedStaffId string `gorm:"column:assigned_staff_id;index;type:varchar(24);comment:负责客服uuid"`

	// LastMessageAt 最后一条消息的写入时间，用于客服列表排序
	LastMessageAt sql.NullTime `gorm:"column:last_message_at;index;comment:最后消息时间"`

	// LastMessagePreview 最后一条消息的截断预览
	LastMessagePreview string `gorm:"column:last_message_preview;type:varchar(512);comment:最后消息预览"`

	UnreadByAdmin    bool `gorm:"column:unread_by_admin;not null;default:false;comment:客服未读"`
	UnreadByCustomer bool `gorm:"column:unread_by_customer;not null;default:false;comment:顾客未读"`
}

// TableName 指定表名
func (ChatRoom) TableName() string {
	return "chat_room"
}
