package respond

import (
	"time"

	"shop_chat_server/internal/model"
)

// ChatRoomRespond 房间完整信息
type ChatRoomRespond struct {
	Id                 string     `json:"id"`
	CustomerSessionId  string     `json:"customerSessionId"`
	CustomerName       string     `json:"customerName"`
	CustomerEmail      string     `json:"customerEmail,omitempty"`
	CustomerPhone      string     `json:"customerPhone,omitempty"`
	ProductId          string     `json:"productId,omitempty"`
	Subject            string     `json:"subject"`
	Status             string     `json:"status"`
	Priority           string     `json:"priority"`
	AssignedStaffId    string     `json:"assignedStaffId,omitempty"`
	LastMessageAt      *time.Time `json:"lastMessageAt"`
	LastMessagePreview string     `json:"lastMessagePreview"`
	UnreadByAdmin      bool       `json:"unreadByAdmin"`
	UnreadByCustomer   bool       `json:"unreadByCustomer"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// NewChatRoomRespond 由模型构造
func NewChatRoomRespond(room *model.ChatRoom) ChatRoomRespond {
	r := ChatRoomRespond{
		Id:                 room.Uuid,
		CustomerSessionId:  room.CustomerSessionId,
		CustomerName:       room.CustomerName,
		CustomerEmail:      room.CustomerEmail,
		CustomerPhone:      room.CustomerPhone,
		ProductId:          room.ProductId,
		Subject:            room.Subject,
		Status:             room.Status,
		Priority:           room.Priority,
		AssignedStaffId:    room.AssignedStaffId,
		LastMessagePreview: room.LastMessagePreview,
		UnreadByAdmin:      room.UnreadByAdmin,
		UnreadByCustomer:   room.UnreadByCustomer,
		CreatedAt:          room.CreatedAt,
		UpdatedAt:          room.UpdatedAt,
	}
	if room.LastMessageAt.Valid {
		t := room.LastMessageAt.Time
		r.LastMessageAt = &t
	}
	return r
}

// ChatMessageRespond 消息完整信息，new_message 帧与历史接口共用
type ChatMessageRespond struct {
	Id            string    `json:"id"`
	RoomId        string    `json:"roomId"`
	SenderType    string    `json:"senderType"`
	SenderName    string    `json:"senderName"`
	SenderUserId  string    `json:"senderUserId,omitempty"`
	Message       string    `json:"message"`
	MessageType   string    `json:"messageType"`
	AttachmentUrl string    `json:"attachmentUrl,omitempty"`
	IsRead        bool      `json:"isRead"`
	IsInternal    bool      `json:"isInternal"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewChatMessageRespond 由模型构造，雪花 ID 以字符串下发
func NewChatMessageRespond(msg *model.ChatMessage) ChatMessageRespond {
	return ChatMessageRespond{
		Id:            formatId(msg.Uuid),
		RoomId:        msg.RoomId,
		SenderType:    msg.SenderType,
		SenderName:    msg.SenderName,
		SenderUserId:  msg.SenderUserId,
		Message:       msg.Message,
		MessageType:   msg.MessageType,
		AttachmentUrl: msg.AttachmentUrl,
		IsRead:        msg.IsRead,
		IsInternal:    msg.IsInternal,
		CreatedAt:     msg.CreatedAt,
	}
}

// NewChatMessageList 批量转换
func NewChatMessageList(msgs []model.ChatMessage) []ChatMessageRespond {
	list := make([]ChatMessageRespond, 0, len(msgs))
	for i := range msgs {
		list = append(list, NewChatMessageRespond(&msgs[i]))
	}
	return list
}

// RoomPresenceRespond 房间在线连接数
type RoomPresenceRespond struct {
	RoomId    string `json:"roomId"`
	Customers int    `json:"customers"`
	Admins    int    `json:"admins"`
}
