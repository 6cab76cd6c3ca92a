// Package mq 负责把聊天事件投递到消息队列
// messageMode=channel 时不投递，messageMode=kafka 时写入 Kafka
package mq

import (
	"context"
	"time"
)

// 事件类型
const (
	EventRoomCreated    = "chat.room.created"
	EventMessageCreated = "chat.message.created"
	EventRoomUpdated    = "chat.room.updated"
	EventRoomsArchived  = "chat.rooms.archived"
)

// Event 聊天事件，以 RoomId 作为分区键，同一房间的事件保持顺序
type Event struct {
	Type       string    `json:"type"`
	RoomId     string    `json:"roomId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

// NewEvent 构造当前时间的事件
func NewEvent(eventType, roomId string, payload any) Event {
	return Event{Type: eventType, RoomId: roomId, OccurredAt: time.Now(), Payload: payload}
}

// EventPublisher 事件发布接口
type EventPublisher interface {
	// Publish 发布事件，不阻塞调用方等待 broker 确认
	Publish(ctx context.Context, event Event) error
	// Close 刷出缓冲并释放连接
	Close() error
}

// NoopPublisher channel 模式下使用，丢弃所有事件
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
