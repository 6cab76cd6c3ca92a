package repository

import (
	"shop_chat_server/internal/model"

	"gorm.io/gorm"
)

type chatMessageRepository struct {
	db *gorm.DB
}

// NewChatMessageRepository 创建 ChatMessageRepository 实例
func NewChatMessageRepository(db *gorm.DB) ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

func (r *chatMessageRepository) Create(msg *model.ChatMessage) error {
	if err := r.db.Create(msg).Error; err != nil {
		return wrapDBErrorf(err, "写入聊天消息 room_id=%s", msg.RoomId)
	}
	return nil
}

func (r *chatMessageRepository) FindByRoomId(roomId string, includeInternal bool) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	query := r.db.Where("room_id = ?", roomId)
	if !includeInternal {
		query = query.Where("is_internal = ?", false)
	}
	if err := query.Order("created_at ASC").Order("id ASC").Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天消息 room_id=%s", roomId)
	}
	return messages, nil
}

func (r *chatMessageRepository) MarkReadBySender(roomId, senderType string) (int64, error) {
	res := r.db.Model(&model.ChatMessage{}).
		Where("room_id = ? AND sender_type = ? AND is_read = ?", roomId, senderType, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "标记消息已读 room_id=%s", roomId)
	}
	return res.RowsAffected, nil
}
