// Package room 实现聊天房间的非实时操作：创建、列表、历史、状态与已读标记
// 实时收发消息由 chat.Hub 负责，内部备注写入后经 Hub 推送给在线客服
package room

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"shop_chat_server/internal/dao/mysql/repository"
	myredis "shop_chat_server/internal/dao/redis"
	"shop_chat_server/internal/dto/request"
	"shop_chat_server/internal/dto/respond"
	"shop_chat_server/internal/infrastructure/mq"
	"shop_chat_server/internal/model"
	"shop_chat_server/internal/service/chat"
	"shop_chat_server/pkg/enum/message_type_enum"
	"shop_chat_server/pkg/enum/room_priority_enum"
	"shop_chat_server/pkg/enum/room_status_enum"
	"shop_chat_server/pkg/enum/sender_type_enum"
	"shop_chat_server/pkg/errorx"
	"shop_chat_server/pkg/util/random"
	"shop_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

const (
	viewCustomer = "customer"
	viewStaff    = "staff"
)

// Broadcaster 房间服务依赖的 Hub 能力
type Broadcaster interface {
	LockRoom(roomId string) func()
	BroadcastInternalNote(msg respond.ChatMessageRespond) int
	Presence() []respond.RoomPresenceRespond
}

// roomService 通过构造函数注入依赖
type roomService struct {
	repos     *repository.Repositories
	hub       Broadcaster
	history   *myredis.HistoryCache
	publisher mq.EventPublisher
}

// NewRoomService 构造函数，history 和 publisher 可为 nil
func NewRoomService(repos *repository.Repositories, hub Broadcaster, history *myredis.HistoryCache, publisher mq.EventPublisher) *roomService {
	if publisher == nil {
		publisher = mq.NoopPublisher{}
	}
	return &roomService{repos: repos, hub: hub, history: history, publisher: publisher}
}

// findRoom 不存在时统一返回 RoomNotFound
func (s *roomService) findRoom(roomId string) (*model.ChatRoom, error) {
	room, err := s.repos.Room.FindByUuid(roomId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrRoomNotFound
		}
		zap.L().Error("find room failed", zap.String("room", roomId), zap.Error(err))
		return nil, err
	}
	return room, nil
}

// findCustomerRoom sessionId 不匹配与房间不存在返回同样的错误
func (s *roomService) findCustomerRoom(roomId, sessionId string) (*model.ChatRoom, error) {
	room, err := s.findRoom(roomId)
	if err != nil {
		return nil, err
	}
	if room.CustomerSessionId != sessionId {
		return nil, errorx.ErrRoomNotFound
	}
	return room, nil
}

func (s *roomService) publish(eventType, roomId string, payload any) {
	if err := s.publisher.Publish(context.Background(), mq.NewEvent(eventType, roomId, payload)); err != nil {
		zap.L().Warn("publish room event failed", zap.String("type", eventType), zap.String("room", roomId), zap.Error(err))
	}
}

// CreateRoom 创建房间，未提供 sessionId 时生成新的顾客会话
func (s *roomService) CreateRoom(ctx context.Context, req request.CreateRoomRequest) (*respond.ChatRoomRespond, error) {
	sessionId := strings.TrimSpace(req.SessionId)
	if sessionId == "" {
		sessionId = random.NewSessionId()
	}
	room := &model.ChatRoom{
		Uuid:              snowflake.RoomUuid(),
		CustomerSessionId: sessionId,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:     strings.TrimSpace(req.CustomerPhone),
		ProductId:         req.ProductId,
		Subject:           strings.TrimSpace(req.Subject),
		Status:            room_status_enum.Waiting,
		Priority:          room_priority_enum.Normal,
	}
	if room.CustomerName == "" || room.Subject == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "customerName and subject must not be blank")
	}
	if err := s.repos.Room.Create(room); err != nil {
		zap.L().Error("create room failed", zap.Error(err))
		return nil, err
	}
	zap.L().Info("chat room created", zap.String("room", room.Uuid), zap.String("product", room.ProductId))

	rsp := respond.NewChatRoomRespond(room)
	s.publish(mq.EventRoomCreated, room.Uuid, rsp)
	return &rsp, nil
}

// GetRoom 获取单个房间
func (s *roomService) GetRoom(roomId string) (*respond.ChatRoomRespond, error) {
	room, err := s.findRoom(roomId)
	if err != nil {
		return nil, err
	}
	rsp := respond.NewChatRoomRespond(room)
	return &rsp, nil
}

// ListRooms 客服房间列表
func (s *roomService) ListRooms(status string) ([]respond.ChatRoomRespond, error) {
	if status != "" && !room_status_enum.Valid(status) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "unknown room status %q", status)
	}
	rooms, err := s.repos.Room.List(status)
	if err != nil {
		return nil, err
	}
	list := make([]respond.ChatRoomRespond, 0, len(rooms))
	for i := range rooms {
		list = append(list, respond.NewChatRoomRespond(&rooms[i]))
	}
	return list, nil
}

// messages 先查缓存，未命中时查库并回填
func (s *roomService) messages(ctx context.Context, roomId, view string) ([]respond.ChatMessageRespond, error) {
	cached, version, ok := s.history.Load(ctx, roomId, view)
	if ok {
		var list []respond.ChatMessageRespond
		if err := json.Unmarshal([]byte(cached), &list); err == nil {
			return list, nil
		}
		zap.L().Warn("history cache entry is corrupt", zap.String("room", roomId))
	}

	msgs, err := s.repos.Message.FindByRoomId(roomId, view == viewStaff)
	if err != nil {
		return nil, err
	}
	list := respond.NewChatMessageList(msgs)
	if data, err := json.Marshal(list); err == nil {
		s.history.Store(ctx, roomId, version, view, string(data))
	}
	return list, nil
}

// CustomerMessages 顾客历史，内部备注被过滤
func (s *roomService) CustomerMessages(ctx context.Context, roomId, sessionId string) ([]respond.ChatMessageRespond, error) {
	if _, err := s.findCustomerRoom(roomId, sessionId); err != nil {
		return nil, err
	}
	return s.messages(ctx, roomId, viewCustomer)
}

// StaffMessages 客服历史，包含内部备注
func (s *roomService) StaffMessages(ctx context.Context, roomId string) ([]respond.ChatMessageRespond, error) {
	if _, err := s.findRoom(roomId); err != nil {
		return nil, err
	}
	return s.messages(ctx, roomId, viewStaff)
}

// markRead 清除一侧的未读标记，并把另一侧发来的消息标为已读
func (s *roomService) markRead(ctx context.Context, roomId, unreadColumn, fromSender string) error {
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Room.UpdateColumns(roomId, map[string]interface{}{unreadColumn: false}); err != nil {
			return err
		}
		_, err := tx.Message.MarkReadBySender(roomId, fromSender)
		return err
	})
	if err != nil {
		zap.L().Error("mark room read failed", zap.String("room", roomId), zap.Error(err))
		return err
	}
	s.history.Bump(ctx, roomId)
	return nil
}

// CustomerMarkRead 顾客已读
func (s *roomService) CustomerMarkRead(ctx context.Context, roomId, sessionId string) error {
	if _, err := s.findCustomerRoom(roomId, sessionId); err != nil {
		return err
	}
	return s.markRead(ctx, roomId, "unread_by_customer", sender_type_enum.Admin)
}

// StaffMarkRead 客服已读
func (s *roomService) StaffMarkRead(ctx context.Context, roomId string) error {
	if _, err := s.findRoom(roomId); err != nil {
		return err
	}
	return s.markRead(ctx, roomId, "unread_by_admin", sender_type_enum.Customer)
}

// updateRoom 更新后返回最新房间并发布 chat.room.updated
func (s *roomService) updateRoom(roomId string, updates map[string]interface{}) (*respond.ChatRoomRespond, error) {
	if _, err := s.findRoom(roomId); err != nil {
		return nil, err
	}
	if err := s.repos.Room.UpdateColumns(roomId, updates); err != nil {
		zap.L().Error("update room failed", zap.String("room", roomId), zap.Error(err))
		return nil, err
	}
	room, err := s.findRoom(roomId)
	if err != nil {
		return nil, err
	}
	rsp := respond.NewChatRoomRespond(room)
	s.publish(mq.EventRoomUpdated, roomId, updates)
	return &rsp, nil
}

// UpdateStatus 任意状态之间都可以切换
func (s *roomService) UpdateStatus(roomId, status string) (*respond.ChatRoomRespond, error) {
	if !room_status_enum.Valid(status) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "unknown room status %q", status)
	}
	return s.updateRoom(roomId, map[string]interface{}{"status": status})
}

// UpdatePriority 设置优先级
func (s *roomService) UpdatePriority(roomId, priority string) (*respond.ChatRoomRespond, error) {
	if !room_priority_enum.Valid(priority) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "unknown room priority %q", priority)
	}
	return s.updateRoom(roomId, map[string]interface{}{"priority": priority})
}

// AssignStaff staffId 必须是已存在的客服
func (s *roomService) AssignStaff(roomId, staffId string) (*respond.ChatRoomRespond, error) {
	if _, err := s.repos.Staff.FindByUuid(staffId); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeStaffNotExist, "staff account does not exist")
		}
		return nil, err
	}
	return s.updateRoom(roomId, map[string]interface{}{"assigned_staff_id": staffId})
}

// AddInternalNote 内部备注只进入客服视图，不更新房间预览和未读标记
func (s *roomService) AddInternalNote(ctx context.Context, roomId string, author *chat.Principal, message string) (*respond.ChatMessageRespond, error) {
	body := strings.TrimSpace(message)
	if body == "" {
		return nil, errorx.ErrEmptyMessage
	}
	if _, err := s.findRoom(roomId); err != nil {
		return nil, err
	}

	unlock := s.hub.LockRoom(roomId)
	defer unlock()
	note := &model.ChatMessage{
		Uuid:         snowflake.GenerateID(),
		RoomId:       roomId,
		SenderType:   sender_type_enum.Admin,
		SenderName:   author.DisplayName,
		SenderUserId: author.StaffId,
		Message:      body,
		MessageType:  message_type_enum.Text,
		IsInternal:   true,
		CreatedAt:    time.Now(),
	}
	if err := s.repos.Message.Create(note); err != nil {
		zap.L().Error("persist internal note failed", zap.String("room", roomId), zap.Error(err))
		return nil, errorx.Wrap(err, errorx.CodePersistenceFailure, "note could not be saved")
	}
	s.history.Bump(ctx, roomId)
	rsp := respond.NewChatMessageRespond(note)
	s.hub.BroadcastInternalNote(rsp)
	return &rsp, nil
}

// Online 各房间在线连接数
func (s *roomService) Online() []respond.RoomPresenceRespond {
	return s.hub.Presence()
}
