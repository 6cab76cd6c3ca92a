// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
package repository

import (
	"time"

	"shop_chat_server/internal/model"

	"gorm.io/gorm"
)

// ChatRoomRepository 聊天房间数据访问接口
type ChatRoomRepository interface {
	// Create 创建房间
	Create(room *model.ChatRoom) error
	// FindByUuid 根据房间 UUID 查找
	FindByUuid(uuid string) (*model.ChatRoom, error)
	// List 按最近活跃时间倒序列出房间，status 为空时不过滤
	List(status string) ([]model.ChatRoom, error)
	// UpdateColumns 按房间 UUID 更新指定列
	UpdateColumns(uuid string, updates map[string]interface{}) error
	// ArchiveIdle 将在 before 之前就已无活动的 resolved 房间归档为 closed，返回归档数量
	ArchiveIdle(before time.Time) (int64, error)
}

// ChatMessageRepository 聊天消息数据访问接口
type ChatMessageRepository interface {
	// Create 写入一条消息
	Create(msg *model.ChatMessage) error
	// FindByRoomId 按创建顺序升序返回房间消息，includeInternal 为 false 时排除内部备注
	FindByRoomId(roomId string, includeInternal bool) ([]model.ChatMessage, error)
	// MarkReadBySender 将房间内某一发送方类型的消息标记为已读
	MarkReadBySender(roomId, senderType string) (int64, error)
}

// StaffRepository 客服账号数据访问接口
type StaffRepository interface {
	// Create 创建客服账号
	Create(staff *model.StaffUser) error
	// FindByUuid 根据客服 UUID 查找
	FindByUuid(uuid string) (*model.StaffUser, error)
	// FindByUsername 根据登录名查找
	FindByUsername(username string) (*model.StaffUser, error)
	// List 列出全部客服
	List() ([]model.StaffUser, error)
}

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db      *gorm.DB
	Room    ChatRoomRepository
	Message ChatMessageRepository
	Staff   StaffRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:      db,
		Room:    NewChatRoomRepository(db),
		Message: NewChatMessageRepository(db),
		Staff:   NewStaffRepository(db),
	}
}

// Transaction 在数据库事务中执行函数，fn 返回错误时整体回滚
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// AutoMigrate 自动迁移聊天相关表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.ChatRoom{},
		&model.ChatMessage{},
		&model.StaffUser{},
	)
}
