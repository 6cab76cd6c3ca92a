package chat

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"shop_chat_server/internal/dto/respond"
	"shop_chat_server/internal/infrastructure/mq"
	"shop_chat_server/internal/model"
	"shop_chat_server/pkg/enum/message_type_enum"
	"shop_chat_server/pkg/enum/sender_type_enum"
	"shop_chat_server/pkg/errorx"
	"shop_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// HandleJoin 处理 join_room
// 携带客服令牌的连接以 admin 身份加入，其余连接都是顾客，顾客必须持有房间的会话 ID
func (h *Hub) HandleJoin(ctx context.Context, token Token, f JoinRoom) {
	h.mu.Lock()
	c, ok := h.registry.get(token)
	var principal *Principal
	if ok {
		principal = c.principal
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	if f.UserType == sender_type_enum.Admin && principal == nil {
		h.sendTo(token, EncodeError(errorx.New(errorx.CodeUnauthorized, "staff token required to join as admin")))
		return
	}
	if principal == nil && f.SessionId == "" {
		h.sendTo(token, EncodeError(malformed("sessionId is required for customer connections")))
		return
	}

	room, err := h.rooms.FindByUuid(f.RoomId)
	if err != nil {
		if errorx.IsNotFound(err) {
			h.sendTo(token, EncodeError(roomNotFound(nil)))
			return
		}
		zap.L().Error("join room lookup failed", zap.String("room", f.RoomId), zap.Error(err))
		h.sendTo(token, EncodeError(err))
		return
	}

	var identity Identity
	if principal != nil {
		identity = Identity{
			Type:        sender_type_enum.Admin,
			DisplayName: principal.DisplayName,
			StaffId:     principal.StaffId,
		}
	} else {
		if f.SessionId != room.CustomerSessionId {
			h.sendTo(token, EncodeError(roomNotFound(nil)))
			return
		}
		identity = Identity{
			Type:        sender_type_enum.Customer,
			DisplayName: room.CustomerName,
			SessionId:   f.SessionId,
		}
	}

	h.mu.Lock()
	h.registry.SetIdentity(token, identity)
	joined := h.router.Join(token, room.Uuid)
	h.mu.Unlock()
	if !joined {
		return
	}

	zap.L().Debug("connection joined room",
		zap.Uint64("token", uint64(token)),
		zap.String("room", room.Uuid),
		zap.String("as", identity.Type))
	h.sendTo(token, EncodeJoined(room.Uuid))
}

// HandleSendMessage 处理 send_message
// 写入消息、更新房间元数据、推送给房间当前所有成员（包括发送方）在同一把房间锁内完成
func (h *Hub) HandleSendMessage(ctx context.Context, token Token, f SendMessage) {
	h.mu.Lock()
	c, ok := h.registry.get(token)
	var (
		identity Identity
		state    JoinState
	)
	if ok {
		identity, state = c.identity, c.state
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	roomId, joined := state.Room()
	if !joined {
		h.sendTo(token, EncodeError(errorx.ErrNotJoined))
		return
	}
	body := strings.TrimSpace(*f.Message)
	if body == "" {
		h.sendTo(token, EncodeError(errorx.ErrEmptyMessage))
		return
	}

	senderName := identity.DisplayName
	if name := strings.TrimSpace(f.SenderName); name != "" {
		senderName = name
	}
	// ID 与时间在房间锁内生成，保证写入顺序即推送顺序
	unlock := h.LockRoom(roomId)
	msg := &model.ChatMessage{
		Uuid:         snowflake.GenerateID(),
		RoomId:       roomId,
		SenderType:   identity.Type,
		SenderName:   senderName,
		SenderUserId: identity.StaffId,
		Message:      body,
		MessageType:  message_type_enum.Text,
		CreatedAt:    time.Now(),
	}
	if err := h.messages.Create(msg); err != nil {
		unlock()
		zap.L().Error("persist chat message failed", zap.String("room", roomId), zap.Error(err))
		h.sendTo(token, EncodeError(errorx.Wrap(err, errorx.CodePersistenceFailure, "message could not be saved")))
		return
	}
	metaErr := h.rooms.UpdateColumns(roomId, roomActivityUpdates(msg, h.previewLength))
	h.history.Bump(ctx, roomId)
	out := respond.NewChatMessageRespond(msg)
	delivered := h.broadcast(roomId, EncodeNewMessage(out), false)
	unlock()

	if metaErr != nil {
		zap.L().Warn("update room metadata failed", zap.String("room", roomId), zap.Error(metaErr))
		h.sendTo(token, EncodeWarning(errorx.Wrap(metaErr, errorx.CodeMetadataStale, "message saved but room summary is stale")))
	}
	zap.L().Debug("chat message fanned out",
		zap.String("room", roomId),
		zap.String("id", out.Id),
		zap.Int("delivered", delivered))
	h.publish(mq.NewEvent(mq.EventMessageCreated, roomId, out))
}

// HandleLeave 处理 leave_room，不通知其他成员
func (h *Hub) HandleLeave(token Token) {
	h.mu.Lock()
	h.router.Leave(token)
	h.mu.Unlock()
}

// roomActivityUpdates 新消息写入后房间需要更新的列
func roomActivityUpdates(msg *model.ChatMessage, previewLength int) map[string]interface{} {
	updates := map[string]interface{}{
		"last_message_at":      sql.NullTime{Time: msg.CreatedAt, Valid: true},
		"last_message_preview": Preview(msg.Message, previewLength),
	}
	if msg.SenderType == sender_type_enum.Customer {
		updates["unread_by_admin"] = true
	} else {
		updates["unread_by_customer"] = true
	}
	return updates
}

// Preview 截取前 n 个字符
func Preview(body string, n int) string {
	if utf8.RuneCountInString(body) <= n {
		return body
	}
	runes := []rune(body)
	return string(runes[:n])
}
