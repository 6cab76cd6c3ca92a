package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultReconnectDelay 断线后等待多久重新拨号
const DefaultReconnectDelay = 3 * time.Second

// ErrNotConnected 当前没有可用连接，调用方应禁用输入等待重连
var ErrNotConnected = errors.New("chat connection is down")

// State 连接状态
type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// HistoryFunc 拉取房间完整消息历史
type HistoryFunc func(ctx context.Context, roomId string) ([]Message, error)

// Options Supervisor 配置，回调都在读协程中同步调用
type Options struct {
	URL            string      // 如 ws://localhost:8000/ws/chat
	Header         http.Header // 客服连接携带 Authorization
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer

	History HistoryFunc

	OnState   func(State)
	OnJoined  func(roomId string)
	OnMessage func(Message)
	OnHistory func(roomId string, messages []Message)
	OnAlert   func(Alert)

	Logger *zap.Logger
}

// Supervisor 维护一条会自动重连的聊天连接
type Supervisor struct {
	opts Options
	log  *zap.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	state State
	room  *joinPayload

	writeMu sync.Mutex
}

// NewSupervisor 创建 Supervisor，调用 Run 后开始拨号
func NewSupervisor(opts Options) *Supervisor {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	log := opts.Logger
	if log == nil {
		log = zap.L()
	}
	return &Supervisor{opts: opts, log: log.Named("chatclient"), state: StateConnecting}
}

// State 当前连接状态
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room 最后一次加入的房间，未加入时为空
func (s *Supervisor) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return ""
	}
	return s.room.RoomId
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()
	if changed && s.opts.OnState != nil {
		s.opts.OnState(state)
	}
}

// Run 拨号并保持连接直到 ctx 结束
// 连接意外断开时等待 ReconnectDelay 后重拨，重连成功后重新加入最后所在的房间
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.setState(StateClosed)

	for {
		conn, _, err := s.opts.Dialer.DialContext(ctx, s.opts.URL, s.opts.Header)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("dial chat server failed", zap.String("url", s.opts.URL), zap.Error(err))
		} else {
			s.serve(ctx, conn)
			if ctx.Err() != nil {
				return nil
			}
		}

		s.setState(StateReconnecting)
		timer := time.NewTimer(s.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// serve 在一条已建立的连接上读帧，连接断开时返回
func (s *Supervisor) serve(ctx context.Context, conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	rejoin := s.room
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		_ = conn.Close()
	}()

	s.setState(StateConnected)
	if rejoin != nil {
		if err := s.write(conn, outbound{Type: frameJoinRoom, Payload: *rejoin}); err != nil {
			s.log.Warn("rejoin failed", zap.String("room_id", rejoin.RoomId), zap.Error(err))
			return
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Info("chat connection lost", zap.Error(err))
			}
			return
		}
		s.dispatch(ctx, data)
	}
}

func (s *Supervisor) dispatch(ctx context.Context, data []byte) {
	var frame inbound
	if err := json.Unmarshal(data, &frame); err != nil {
		s.log.Warn("skip undecodable frame", zap.Error(err))
		return
	}

	switch frame.Type {
	case frameJoinedRoom:
		var p joinPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return
		}
		if s.opts.OnJoined != nil {
			s.opts.OnJoined(p.RoomId)
		}
		s.reconcile(ctx, p.RoomId)
	case frameNewMessage:
		var msg Message
		if err := json.Unmarshal(frame.Payload, &msg); err != nil {
			s.log.Warn("skip undecodable message", zap.Error(err))
			return
		}
		if s.opts.OnMessage != nil {
			s.opts.OnMessage(msg)
		}
	case frameError, frameWarning:
		var alert Alert
		if err := json.Unmarshal(frame.Payload, &alert); err != nil {
			return
		}
		alert.Warning = frame.Type == frameWarning
		if s.opts.OnAlert != nil {
			s.opts.OnAlert(alert)
		}
	}
}

// reconcile 加入房间后拉取完整历史，补齐断线期间错过的消息
func (s *Supervisor) reconcile(ctx context.Context, roomId string) {
	if s.opts.History == nil {
		return
	}
	messages, err := s.opts.History(ctx, roomId)
	if err != nil {
		s.log.Warn("fetch room history failed", zap.String("room_id", roomId), zap.Error(err))
		return
	}
	if s.opts.OnHistory != nil {
		s.opts.OnHistory(roomId, messages)
	}
}

func (s *Supervisor) write(conn *websocket.Conn, frame outbound) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(frame)
}

func (s *Supervisor) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Join 加入房间并记住它，重连后自动重新加入
// 当前断线时只记录房间，连接恢复后再发送
func (s *Supervisor) Join(roomId, sessionId, userType string) error {
	p := &joinPayload{RoomId: roomId, SessionId: sessionId, UserType: userType}
	s.mu.Lock()
	s.room = p
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return s.write(conn, outbound{Type: frameJoinRoom, Payload: *p})
}

// Send 在当前房间发送消息
func (s *Supervisor) Send(senderName, message string) error {
	conn := s.current()
	if conn == nil {
		return ErrNotConnected
	}
	return s.write(conn, outbound{Type: frameSendMessage, Payload: sendPayload{SenderName: senderName, Message: message}})
}

// Leave 离开当前房间，之后重连不再自动加入
func (s *Supervisor) Leave() error {
	s.mu.Lock()
	s.room = nil
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return s.write(conn, outbound{Type: frameLeaveRoom, Payload: struct{}{}})
}
