// Package model 定义数据库实体模型
// 本文件定义聊天消息模型
package model

import (
	"time"
)

// ChatMessage 聊天消息
// 对应数据库 chat_message 表，写入后内容不再修改，只有已读标记会更新
// 房间内的展示与回放顺序为 created_at ASC, id ASC
type ChatMessage struct {
	ID uint `gorm:"primarykey"`

	// Uuid 雪花算法生成的消息 ID
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// RoomId 所属房间 UUID
	RoomId string `gorm:"column:room_id;index:idx_room_created,priority:1;type:varchar(24);not null;comment:房间uuid"`

	// SenderType customer / admin，由服务端根据连接身份决定
	SenderType string `gorm:"column:sender_type;type:varchar(16);not null;comment:发送方类型"`

	SenderName string `gorm:"column:sender_name;type:varchar(64);not null;comment:发送者名称"`

	// SenderUserId 仅客服消息携带客服 UUID
	SenderUserId string `gorm:"column:sender_user_id;type:varchar(24);comment:发送客服uuid"`

	Message string `gorm:"column:message;type:TEXT;not null;comment:消息内容"`

	// MessageType 默认 text，system / image / file 为保留类型
	MessageType string `gorm:"column:message_type;type:varchar(16);not null;default:text;comment:消息类型"`

	AttachmentUrl string `gorm:"column:attachment_url;type:varchar(255);comment:附件url"`

	IsRead bool `gorm:"column:is_read;not null;default:false;comment:是否已读"`

	// IsInternal 客服内部备注，永远不会推送给顾客
	IsInternal bool `gorm:"column:is_internal;not null;default:false;comment:是否内部备注"`

	CreatedAt time.Time `gorm:"column:created_at;index:idx_room_created,priority:2;comment:创建时间"`
}

// TableName 指定表名
func (ChatMessage) TableName() string {
	return "chat_message"
}
