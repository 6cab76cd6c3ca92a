// Package chatclient 是客服聊天 WebSocket 的 Go 客户端
// Supervisor 负责断线重连：固定延迟后重新拨号，重新加入最后所在的房间，并通过历史接口补齐断线期间的消息
package chatclient

import (
	"encoding/json"
	"time"
)

// 帧类型
const (
	frameJoinRoom    = "join_room"
	frameSendMessage = "send_message"
	frameLeaveRoom   = "leave_room"
	frameJoinedRoom  = "joined_room"
	frameNewMessage  = "new_message"
	frameError       = "error"
	frameWarning     = "warning"
)

type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	RoomId    string `json:"roomId"`
	SessionId string `json:"sessionId,omitempty"`
	UserType  string `json:"userType"`
}

type sendPayload struct {
	SenderName string `json:"senderName,omitempty"`
	Message    string `json:"message"`
}

// Message 服务端推送的聊天消息
type Message struct {
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

// Alert error / warning 帧，界面以短暂提示展示，不结束会话
type Alert struct {
	Warning bool   `json:"-"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
