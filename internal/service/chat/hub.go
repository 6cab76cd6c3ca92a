package chat

import (
	"context"
	"sort"
	"sync"

	"shop_chat_server/internal/dao/mysql/repository"
	myredis "shop_chat_server/internal/dao/redis"
	"shop_chat_server/internal/dto/respond"
	"shop_chat_server/internal/infrastructure/mq"
	"shop_chat_server/pkg/enum/sender_type_enum"
	"shop_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// HubConfig Hub 的依赖
type HubConfig struct {
	RoomRepo      repository.ChatRoomRepository
	MessageRepo   repository.ChatMessageRepository
	History       *myredis.HistoryCache // 可为 nil
	Publisher     mq.EventPublisher     // 可为 nil
	PreviewLength int
}

// Hub 持有连接注册表和房间成员表，随服务启动创建、关闭时销毁
//
// mu 保护 registry 和 router，持锁期间不做任何数据库或网络 I/O；
// 同一房间的消息写入与推送由 roomLocks 串行化，推送顺序与写入顺序一致。
type Hub struct {
	mu       sync.Mutex
	registry *Registry
	router   *Router
	closed   bool

	roomLocks *keyedMutex

	rooms         repository.ChatRoomRepository
	messages      repository.ChatMessageRepository
	history       *myredis.HistoryCache
	publisher     mq.EventPublisher
	previewLength int
}

// NewHub 创建 Hub
func NewHub(cfg HubConfig) *Hub {
	registry := newRegistry()
	h := &Hub{
		registry:      registry,
		router:        newRouter(registry),
		roomLocks:     newKeyedMutex(),
		rooms:         cfg.RoomRepo,
		messages:      cfg.MessageRepo,
		history:       cfg.History,
		publisher:     cfg.Publisher,
		previewLength: cfg.PreviewLength,
	}
	if h.publisher == nil {
		h.publisher = mq.NoopPublisher{}
	}
	if h.previewLength <= 0 {
		h.previewLength = 100
	}
	return h
}

// Connect 登记新连接，Hub 已关闭时立即关闭 sink
func (h *Hub) Connect(sink Sink, principal *Principal) (Token, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sink.Close()
		return 0, false
	}
	return h.registry.Register(sink, principal), true
}

// Disconnect 同步清除连接在注册表和成员表中的全部状态
func (h *Hub) Disconnect(token Token) {
	h.mu.Lock()
	sink := h.registry.Unregister(token)
	h.mu.Unlock()
	if sink != nil {
		sink.Close()
	}
}

// Handle 解析并处理一帧，错误只回给发送方
func (h *Hub) Handle(ctx context.Context, token Token, data []byte) {
	frame, err := ParseFrame(data)
	if err != nil {
		h.sendTo(token, EncodeError(err))
		return
	}
	switch f := frame.(type) {
	case JoinRoom:
		h.HandleJoin(ctx, token, f)
	case SendMessage:
		h.HandleSendMessage(ctx, token, f)
	case LeaveRoom:
		h.HandleLeave(token)
	}
}

// sendTo 给单个连接推送，队列已满的连接被断开
func (h *Hub) sendTo(token Token, frame []byte) {
	h.mu.Lock()
	c, ok := h.registry.get(token)
	if !ok {
		h.mu.Unlock()
		return
	}
	delivered := c.sink.Send(frame)
	h.mu.Unlock()
	if !delivered {
		h.dropSlow([]Token{token})
	}
}

// broadcast 推送给房间当前成员，成员在推送时重新解析
// staffOnly 为 true 时只推送给客服连接
func (h *Hub) broadcast(roomId string, frame []byte, staffOnly bool) int {
	h.mu.Lock()
	var slow []Token
	delivered := 0
	for _, token := range h.router.MembersOf(roomId) {
		c, ok := h.registry.get(token)
		if !ok {
			continue
		}
		if staffOnly && c.identity.Type != sender_type_enum.Admin {
			continue
		}
		if c.sink.Send(frame) {
			delivered++
		} else {
			slow = append(slow, token)
		}
	}
	h.mu.Unlock()
	h.dropSlow(slow)
	return delivered
}

func (h *Hub) dropSlow(tokens []Token) {
	for _, token := range tokens {
		zap.L().Warn("dropping slow chat connection",
			zap.Uint64("token", uint64(token)),
			zap.Error(errorx.New(errorx.CodeSlowConsumer, "send queue full")))
		h.Disconnect(token)
	}
}

// BroadcastInternalNote 把已写入的内部备注推送给房间内的客服连接
func (h *Hub) BroadcastInternalNote(msg respond.ChatMessageRespond) int {
	return h.broadcast(msg.RoomId, EncodeNewMessage(msg), true)
}

// LockRoom 串行化同一房间的消息写入与推送，返回解锁函数
func (h *Hub) LockRoom(roomId string) func() {
	return h.roomLocks.Lock(roomId)
}

// StateOf 返回连接状态，连接不存在时 ok 为 false
func (h *Hub) StateOf(token Token) (JoinState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.registry.get(token)
	if !ok {
		return JoinState{}, false
	}
	return c.state, true
}

// MembersOf 返回房间当前成员
func (h *Hub) MembersOf(roomId string) []Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.router.MembersOf(roomId)
}

// Presence 各房间在线的顾客与客服连接数，按房间 ID 排序
func (h *Hub) Presence() []respond.RoomPresenceRespond {
	h.mu.Lock()
	defer h.mu.Unlock()
	rooms := h.router.Rooms()
	sort.Strings(rooms)
	list := make([]respond.RoomPresenceRespond, 0, len(rooms))
	for _, roomId := range rooms {
		p := respond.RoomPresenceRespond{RoomId: roomId}
		for _, token := range h.router.MembersOf(roomId) {
			if c, ok := h.registry.get(token); ok {
				if c.identity.Type == sender_type_enum.Admin {
					p.Admins++
				} else {
					p.Customers++
				}
			}
		}
		list = append(list, p)
	}
	return list
}

// ConnectionCount 当前连接数
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Len()
}

// Close 断开所有连接，之后的 Connect 都会失败
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var sinks []Sink
	for token := range h.registry.conns {
		if sink := h.registry.Unregister(token); sink != nil {
			sinks = append(sinks, sink)
		}
	}
	h.mu.Unlock()
	for _, sink := range sinks {
		sink.Close()
	}
	zap.L().Info("chat hub closed", zap.Int("connections", len(sinks)))
}

// publish 异步投递事件，失败只记日志
func (h *Hub) publish(event mq.Event) {
	if err := h.publisher.Publish(context.Background(), event); err != nil {
		zap.L().Warn("publish chat event failed", zap.String("type", event.Type), zap.String("room", event.RoomId), zap.Error(err))
	}
}

// roomNotFound 统一的房间不存在错误，不区分房间不存在与会话不匹配
func roomNotFound(cause error) error {
	if cause == nil {
		return errorx.ErrRoomNotFound
	}
	return errorx.Wrap(cause, errorx.CodeRoomNotFound, errorx.ErrRoomNotFound.Msg)
}
