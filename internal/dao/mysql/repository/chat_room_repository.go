package repository

import (
	"time"

	"shop_chat_server/internal/model"
	"shop_chat_server/pkg/enum/room_status_enum"

	"gorm.io/gorm"
)

type chatRoomRepository struct {
	db *gorm.DB
}

// NewChatRoomRepository 创建 ChatRoomRepository 实例
func NewChatRoomRepository(db *gorm.DB) ChatRoomRepository {
	return &chatRoomRepository{db: db}
}

func (r *chatRoomRepository) Create(room *model.ChatRoom) error {
	if err := r.db.Create(room).Error; err != nil {
		return wrapDBError(err, "创建聊天房间")
	}
	return nil
}

func (r *chatRoomRepository) FindByUuid(uuid string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.Where("uuid = ?", uuid).First(&room).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天房间 uuid=%s", uuid)
	}
	return &room, nil
}

// List 没有消息的房间按创建时间参与排序
func (r *chatRoomRepository) List(status string) ([]model.ChatRoom, error) {
	var rooms []model.ChatRoom
	query := r.db.Model(&model.ChatRoom{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.
		Order("COALESCE(last_message_at, created_at) DESC").
		Order("id DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询聊天房间列表 status=%s", status)
	}
	return rooms, nil
}

func (r *chatRoomRepository) UpdateColumns(uuid string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.Model(&model.ChatRoom{}).Where("uuid = ?", uuid).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新聊天房间 uuid=%s", uuid)
	}
	return nil
}

func (r *chatRoomRepository) ArchiveIdle(before time.Time) (int64, error) {
	res := r.db.Model(&model.ChatRoom{}).
		Where("status = ?", room_status_enum.Resolved).
		Where("COALESCE(last_message_at, updated_at) < ?", before).
		Update("status", room_status_enum.Closed)
	if res.Error != nil {
		return 0, wrapDBError(res.Error, "归档闲置房间")
	}
	return res.RowsAffected, nil
}
