// Package chat 实现客服聊天的实时部分
// protocol.go 定义 WebSocket 帧格式：{"type": ..., "payload": {...}}
// 入站帧解析为带类型的结构体，在边界处完成校验，校验失败统一报告为 MalformedFrame
package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"shop_chat_server/internal/dto/respond"
	"shop_chat_server/pkg/errorx"

	"github.com/go-playground/validator/v10"
)

// FrameType 帧类型
type FrameType string

const (
	FrameJoinRoom    FrameType = "join_room"
	FrameSendMessage FrameType = "send_message"
	FrameLeaveRoom   FrameType = "leave_room"

	FrameJoinedRoom FrameType = "joined_room"
	FrameNewMessage FrameType = "new_message"
	FrameError      FrameType = "error"
	FrameWarning    FrameType = "warning"
)

// InboundFrame 客户端发来的帧，只有 JoinRoom / SendMessage / LeaveRoom 三种
type InboundFrame interface {
	frameType() FrameType
}

// JoinRoom 加入房间
// 匿名连接必须携带创建房间时拿到的 sessionId，由 HandleJoin 检查；
// 携带客服令牌的连接总以 admin 身份加入，UserType 与 SessionId 被忽略
type JoinRoom struct {
	RoomId    string `json:"roomId" validate:"required,max=24"`
	SessionId string `json:"sessionId" validate:"max=64"`
	UserType  string `json:"userType" validate:"required,oneof=admin customer"`
}

// SendMessage 发送消息，Message 缺失属于格式错误，空白属于 EmptyMessage
type SendMessage struct {
	SenderName string  `json:"senderName" validate:"max=64"`
	Message    *string `json:"message" validate:"required"`
}

// LeaveRoom 离开当前房间
type LeaveRoom struct{}

func (JoinRoom) frameType() FrameType    { return FrameJoinRoom }
func (SendMessage) frameType() FrameType { return FrameSendMessage }
func (LeaveRoom) frameType() FrameType   { return FrameLeaveRoom }

type inboundEnvelope struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OutboundFrame 服务端下发的帧
type OutboundFrame struct {
	Type    FrameType `json:"type"`
	Payload any       `json:"payload"`
}

// JoinedRoomPayload joined_room 帧内容
type JoinedRoomPayload struct {
	RoomId string `json:"roomId"`
}

// ErrorPayload error / warning 帧内容
type ErrorPayload struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var frameValidator = newFrameValidator()

func newFrameValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func malformed(format string, args ...any) *errorx.CodeError {
	return errorx.Newf(errorx.CodeMalformedFrame, format, args...)
}

// ParseFrame 解析并校验入站帧
func ParseFrame(data []byte) (InboundFrame, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, malformed("frame is not a JSON object")
	}

	var frame InboundFrame
	switch env.Type {
	case FrameJoinRoom:
		var p JoinRoom
		if err := decodePayload(env.Payload, &p); err != nil {
			return nil, err
		}
		frame = p
	case FrameSendMessage:
		var p SendMessage
		if err := decodePayload(env.Payload, &p); err != nil {
			return nil, err
		}
		frame = p
	case FrameLeaveRoom:
		return LeaveRoom{}, nil
	case "":
		return nil, malformed("frame type is missing")
	default:
		return nil, malformed("unknown frame type %q", env.Type)
	}

	if err := frameValidator.Struct(frame); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, malformed("%s: invalid field %s", env.Type, verrs[0].Field())
		}
		return nil, malformed("%s: invalid payload", env.Type)
	}
	return frame, nil
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return malformed("payload is missing")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return malformed("payload does not match the frame schema")
	}
	return nil
}

func encode(frame OutboundFrame) []byte {
	data, _ := json.Marshal(frame)
	return data
}

// EncodeJoined 编码 joined_room 帧
func EncodeJoined(roomId string) []byte {
	return encode(OutboundFrame{Type: FrameJoinedRoom, Payload: JoinedRoomPayload{RoomId: roomId}})
}

// EncodeNewMessage 编码 new_message 帧
func EncodeNewMessage(msg respond.ChatMessageRespond) []byte {
	return encode(OutboundFrame{Type: FrameNewMessage, Payload: msg})
}

// EncodeError 编码 error 帧，非 CodeError 一律报告为服务繁忙
func EncodeError(err error) []byte {
	return encode(OutboundFrame{Type: FrameError, Payload: errorPayload(err)})
}

// EncodeWarning 编码 warning 帧
func EncodeWarning(err error) []byte {
	return encode(OutboundFrame{Type: FrameWarning, Payload: errorPayload(err)})
}

func errorPayload(err error) ErrorPayload {
	var codeErr *errorx.CodeError
	if !errors.As(err, &codeErr) {
		return ErrorPayload{Message: errorx.ErrServerBusy.Msg, Code: errorx.CodeServerBusy}
	}
	return ErrorPayload{Message: codeErr.Msg, Code: codeErr.Code}
}
